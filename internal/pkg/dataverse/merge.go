package dataverse

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2/log"

	"github.com/promocraft/catalog/app/models"
	"github.com/promocraft/catalog/app/repository"
	"github.com/promocraft/catalog/internal/pkg/metrics/counter"
	"github.com/promocraft/catalog/internal/pkg/sku"
)

// ProductState and VariantState are the post-merge snapshots echoed back to
// the sender so it can store the local linkage.
type ProductState struct {
	IDDataverse string `json:"idDataverse"`
	Visible     bool   `json:"visible"`
}

type VariantState struct {
	IDDataverse string `json:"idDataverse,omitempty"`
	SKU         string `json:"sku"`
	Stock       int    `json:"stock"`
	Visible     bool   `json:"visible"`
}

// Result is the merge outcome returned to the webhook controller.
type Result struct {
	OK       bool           `json:"ok"`
	IDLocal  string         `json:"idLocal"`
	Product  *ProductState  `json:"product,omitempty"`
	Variants []VariantState `json:"variants,omitempty"`
}

// Merger applies validated webhook payloads to the catalog store.
type Merger struct {
	repos *repository.Repositories
}

func NewMerger(repos *repository.Repositories) *Merger {
	return &Merger{repos: repos}
}

// Apply merges one webhook payload. Every call leaves an audit record, also
// when the merge fails. A payload for an unknown, invisible product is
// acknowledged without creating anything: the CRM routinely announces drafts
// that must not appear in the store.
func (m *Merger) Apply(p *Payload) (*Result, error) {
	entry, err := m.repos.Entry.GetByDataverseID(p.Product.IDDataverse)
	if err != nil {
		m.audit(p, nil, models.DvEventStatusError, fmt.Sprintf("lookup failed: %v", err))
		return nil, fmt.Errorf("looking up entry %s: %w", p.Product.IDDataverse, err)
	}

	if entry == nil && !p.Product.Visible {
		m.audit(p, nil, models.DvEventStatusOK, "invisible; entry not created")
		return &Result{OK: true, IDLocal: ""}, nil
	}

	created := false
	if entry == nil {
		id := p.Product.IDDataverse
		entry = &models.CatalogEntry{
			DataverseID: &id,
			Name:        p.Product.Name,
		}
		if p.Product.Description != nil {
			entry.Description = *p.Product.Description
		}
		created = true
	}

	if p.Product.Name != "" {
		entry.Name = p.Product.Name
	}
	if p.Product.Description != nil {
		entry.Description = *p.Product.Description
	}
	if p.Product.Price != nil {
		entry.Price = *p.Product.Price
	}
	entry.VisibleFromDataverse = p.Product.Visible

	m.mergeVariants(entry, p.Variants)
	sku.EnsureVariantSKUs(entry.BaseIdentifier(), entry.Variants)

	if created {
		err = m.repos.Entry.Create(entry)
	} else {
		err = m.repos.Entry.Save(entry)
	}
	if err != nil {
		m.audit(p, nil, models.DvEventStatusError, err.Error())
		return nil, fmt.Errorf("persisting entry %s: %w", p.Product.IDDataverse, err)
	}

	m.audit(p, entry, models.DvEventStatusOK, "sync ok")
	_ = counter.AddEntrySyncTouch(entry.ID)

	res := &Result{
		OK:      true,
		IDLocal: strconv.FormatUint(uint64(entry.ID), 10),
		Product: &ProductState{
			IDDataverse: p.Product.IDDataverse,
			Visible:     entry.VisibleFromDataverse,
		},
	}
	for _, v := range entry.Variants {
		state := VariantState{SKU: v.SKU, Stock: v.Stock, Visible: v.Visible}
		if v.DataverseID != nil {
			state.IDDataverse = *v.DataverseID
		}
		res.Variants = append(res.Variants, state)
	}
	return res, nil
}

// mergeVariants updates existing variants in place and appends new ones.
// Matching tries the Dataverse GUID first, then the SKU. A variant carrying
// neither is unaddressable and skipped.
func (m *Merger) mergeVariants(entry *models.CatalogEntry, incoming []VariantPayload) {
	byDvID := make(map[string]int, len(entry.Variants))
	bySKU := make(map[string]int, len(entry.Variants))
	for i, v := range entry.Variants {
		if v.DataverseID != nil && *v.DataverseID != "" {
			byDvID[*v.DataverseID] = i
		}
		if v.SKU != "" {
			bySKU[v.SKU] = i
		}
	}

	for _, nv := range incoming {
		if nv.IDDataverse == "" && nv.SKU == "" {
			continue
		}

		idx := -1
		if nv.IDDataverse != "" {
			if i, ok := byDvID[nv.IDDataverse]; ok {
				idx = i
			}
		}
		if idx < 0 && nv.SKU != "" {
			if i, ok := bySKU[nv.SKU]; ok {
				idx = i
			}
		}

		if idx < 0 {
			v := models.Variant{
				EntryID: entry.ID,
				SKU:     nv.SKU,
				Visible: nv.Visible,
			}
			if nv.IDDataverse != "" {
				id := nv.IDDataverse
				v.DataverseID = &id
			}
			if nv.Color != nil {
				v.Color = *nv.Color
			}
			if nv.Size != nil {
				v.Size = *nv.Size
			}
			if nv.Material != nil {
				v.Material = *nv.Material
			}
			if nv.Stock != nil {
				v.Stock = *nv.Stock
			}
			if nv.Achromatic != nil {
				v.Achromatic = *nv.Achromatic
			}
			entry.Variants = append(entry.Variants, v)
			idx = len(entry.Variants) - 1
			if v.DataverseID != nil {
				byDvID[*v.DataverseID] = idx
			}
			if v.SKU != "" {
				bySKU[v.SKU] = idx
			}
			continue
		}

		v := &entry.Variants[idx]
		if nv.IDDataverse != "" {
			id := nv.IDDataverse
			v.DataverseID = &id
			byDvID[id] = idx
		}
		if nv.SKU != "" && nv.SKU != v.SKU {
			delete(bySKU, v.SKU)
			v.SKU = nv.SKU
			bySKU[nv.SKU] = idx
		}
		if nv.Color != nil {
			v.Color = *nv.Color
		}
		if nv.Size != nil {
			v.Size = *nv.Size
		}
		if nv.Material != nil {
			v.Material = *nv.Material
		}
		if nv.Stock != nil {
			v.Stock = *nv.Stock
		}
		if nv.Achromatic != nil {
			v.Achromatic = *nv.Achromatic
		}
		v.Visible = nv.Visible
	}
}

// audit appends the immutable event record. Audit problems are logged only,
// they never change the webhook outcome.
func (m *Merger) audit(p *Payload, entry *models.CatalogEntry, status, message string) {
	ev := &models.DvEvent{
		EventType:   p.Event,
		DataverseID: p.Product.IDDataverse,
		Status:      status,
		Message:     message,
	}
	if entry != nil && entry.ID != 0 {
		id := entry.ID
		ev.EntryID = &id
	}

	var dvIDs []string
	for _, v := range p.Variants {
		if v.IDDataverse != "" {
			dvIDs = append(dvIDs, v.IDDataverse)
		}
	}
	if len(dvIDs) > 0 {
		if raw, err := json.Marshal(dvIDs); err == nil {
			ev.VariantIDs = raw
		}
	}
	if raw, err := json.Marshal(p); err == nil {
		ev.Payload = raw
	}

	if err := m.repos.DvEvent.Append(ev); err != nil {
		log.Errorf("[Dataverse] Audit append failed for %s: %v", p.Product.IDDataverse, err)
	}
}
