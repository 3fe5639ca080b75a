package zecat

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/promocraft/catalog/app/models"
)

// Wire shapes of the supplier API. The payload is inconsistent across
// endpoints (numbers arriving as strings, variant groups keyed by arbitrary
// strings, duplicated casings), so everything funnels through Normalize into
// the one canonical models.CatalogEntry shape and the raw payload is retained
// only as an opaque audit blob.

type listResponse struct {
	GenericProducts []listItem `json:"generic_products"`
	TotalPages      int        `json:"total_pages"`
}

type listItem struct {
	ID json.Number `json:"id"`
}

type detailResponse struct {
	GenericProduct *wireProduct `json:"generic_product"`
}

type wireProduct struct {
	ID                   json.Number     `json:"id"`
	ExternalID           string          `json:"external_id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	Price                flexFloat       `json:"price"`
	Tax                  flexFloat       `json:"tax"`
	Currency             string          `json:"currency"`
	MinimumOrderQuantity flexInt         `json:"minimum_order_quantity"`
	Published            bool            `json:"published"`
	Variants             wireVariantSet  `json:"variants"`
	PriceRanges          []wirePriceTier `json:"price_ranges"`
}

type wireVariant struct {
	ID         json.Number `json:"id"`
	SKU        string      `json:"sku"`
	Stock      flexInt     `json:"stock"`
	Color      string      `json:"color"`
	Size       string      `json:"size"`
	Material   string      `json:"material"`
	Achromatic bool        `json:"achromatic"`
	Active     *bool       `json:"active"`
}

type wirePriceTier struct {
	MinQuantity flexInt   `json:"min_quantity"`
	MaxQuantity *int      `json:"max_quantity"`
	UnitPrice   flexFloat `json:"unit_price"`
}

type familiesResponse struct {
	Families []WireFamily `json:"families"`
}

// WireFamily is one entry of the supplier's family listing.
type WireFamily struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Name        string      `json:"name"` // some responses use name instead of title
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	IconURL     string      `json:"icon_url"`
	Show        *bool       `json:"show"` // omitted by some tenants, nil means visible
}

// DisplayTitle returns whichever of the duplicated title fields is set.
func (f WireFamily) DisplayTitle() string {
	if f.Title != "" {
		return f.Title
	}
	return f.Name
}

// wireVariantSet tolerates the two shapes the API delivers for each variant
// group: a plain array, or an object keyed by an arbitrary (often empty)
// string wrapping the array.
type wireVariantSet struct {
	Colors []wireVariant
	Sizes  []wireVariant
}

func (s *wireVariantSet) UnmarshalJSON(data []byte) error {
	var groups struct {
		Colors json.RawMessage `json:"colors"`
		Sizes  json.RawMessage `json:"sizes"`
	}
	if err := json.Unmarshal(data, &groups); err != nil {
		return err
	}
	var err error
	if s.Colors, err = unwrapGroup(groups.Colors); err != nil {
		return err
	}
	if s.Sizes, err = unwrapGroup(groups.Sizes); err != nil {
		return err
	}
	return nil
}

func unwrapGroup(raw json.RawMessage) ([]wireVariant, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var arr []wireVariant
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}
	var wrapped map[string][]wireVariant
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected variant group shape: %w", err)
	}
	if arr, ok := wrapped[""]; ok {
		return arr, nil
	}
	keys := make([]string, 0, len(wrapped))
	for k := range wrapped {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		return wrapped[keys[0]], nil
	}
	return nil, nil
}

// flexInt accepts numbers, numeric strings, and empty strings (treated as 0).
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	var n json.Number = json.Number(s)
	v, err := n.Int64()
	if err != nil {
		// some payloads carry floats in integer fields
		fv, ferr := n.Float64()
		if ferr != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		v = int64(fv)
	}
	*f = flexInt(v)
	return nil
}

// flexFloat accepts numbers, numeric strings, and empty strings (treated as 0).
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := json.Number(s).Float64()
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*f = flexFloat(v)
	return nil
}

// Normalize maps a detail payload into the canonical CatalogEntry shape. The
// verbatim payload is kept on the entry for audit; nothing else reads it.
func Normalize(raw []byte) (*models.CatalogEntry, error) {
	var resp detailResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decoding detail payload: %w", err)
	}
	gp := resp.GenericProduct
	if gp == nil {
		return nil, fmt.Errorf("detail payload without generic_product")
	}

	supplierID := gp.ID.String()
	entry := &models.CatalogEntry{
		SupplierID:           &supplierID,
		Name:                 strings.TrimSpace(gp.Name),
		Description:          strings.TrimSpace(gp.Description),
		Price:                float64(gp.Price),
		Tax:                  float64(gp.Tax),
		Currency:             gp.Currency,
		MinimumOrderQuantity: int(gp.MinimumOrderQuantity),
		Published:            gp.Published,
		RawPayload:           json.RawMessage(raw),
	}
	if ext := strings.TrimSpace(gp.ExternalID); ext != "" {
		entry.ExternalID = &ext
	}

	for _, wv := range append(gp.Variants.Colors, gp.Variants.Sizes...) {
		v := models.Variant{
			SKU:        strings.TrimSpace(wv.SKU),
			Stock:      int(wv.Stock),
			Color:      strings.TrimSpace(wv.Color),
			Size:       strings.TrimSpace(wv.Size),
			Material:   strings.TrimSpace(wv.Material),
			Achromatic: wv.Achromatic,
			Visible:    wv.Active == nil || *wv.Active,
		}
		if pid, err := wv.ID.Int64(); err == nil {
			v.ProviderID = &pid
		}
		entry.Variants = append(entry.Variants, v)
	}

	for i, wt := range gp.PriceRanges {
		entry.PriceTiers = append(entry.PriceTiers, models.PriceTier{
			MinQty:    int(wt.MinQuantity),
			MaxQty:    wt.MaxQuantity,
			UnitPrice: float64(wt.UnitPrice),
			Position:  i,
		})
	}

	return entry, nil
}
