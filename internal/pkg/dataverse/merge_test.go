package dataverse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promocraft/catalog/app/models"
	"github.com/promocraft/catalog/app/repository"
)

type fakeEntryRepo struct {
	byDvID    map[string]*models.CatalogEntry
	lookupErr error
	saved     *models.CatalogEntry
	created   *models.CatalogEntry
}

func (r *fakeEntryRepo) GetByDataverseID(id string) (*models.CatalogEntry, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	return r.byDvID[id], nil
}

func (r *fakeEntryRepo) Create(e *models.CatalogEntry) error {
	e.ID = 101
	r.created = e
	return nil
}

func (r *fakeEntryRepo) Save(e *models.CatalogEntry) error {
	r.saved = e
	return nil
}

func (r *fakeEntryRepo) FindByAnyID(string) (*models.CatalogEntry, error) { return nil, nil }
func (r *fakeEntryRepo) GetByID(uint) (*models.CatalogEntry, error)       { return nil, nil }
func (r *fakeEntryRepo) Count() (int64, error)                            { return 0, nil }

func (r *fakeEntryRepo) UpsertFromSupplier(*models.CatalogEntry) (repository.UpsertOutcome, error) {
	return repository.OutcomeSkipped, nil
}

type fakeEventRepo struct {
	events []*models.DvEvent
}

func (r *fakeEventRepo) Append(ev *models.DvEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *fakeEventRepo) ListByEntry(uint, int) ([]models.DvEvent, error) { return nil, nil }

func newTestMerger(entries *fakeEntryRepo, events *fakeEventRepo) *Merger {
	return NewMerger(&repository.Repositories{Entry: entries, DvEvent: events})
}

func payloadFrom(t *testing.T, raw string) *Payload {
	t.Helper()
	p, err := ParsePayload([]byte(raw))
	require.NoError(t, err)
	return p
}

func TestParsePayloadValidates(t *testing.T) {
	t.Parallel()

	_, err := ParsePayload([]byte(`{"event":"sync","product":{}}`))
	assert.Error(t, err, "missing idDataverse must be rejected")

	_, err = ParsePayload([]byte(`{"event":"explode","product":{"idDataverse":"DV-1"}}`))
	assert.Error(t, err, "unknown event type must be rejected")

	_, err = ParsePayload([]byte(`not json`))
	assert.Error(t, err)

	p, err := ParsePayload([]byte(`{"product":{"idDataverse":"DV-1"}}`))
	require.NoError(t, err)
	assert.Equal(t, models.DvEventSync, p.Event, "event defaults to sync")
}

func TestApplyInvisibleNewProductNotCreated(t *testing.T) {
	t.Parallel()

	entries := &fakeEntryRepo{byDvID: map[string]*models.CatalogEntry{}}
	events := &fakeEventRepo{}
	m := newTestMerger(entries, events)

	p := payloadFrom(t, `{"event":"sync","product":{"idDataverse":"DV-NEW","visible":false,"name":"Draft"}}`)
	res, err := m.Apply(p)

	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Empty(t, res.IDLocal)
	assert.Nil(t, entries.created)
	assert.Nil(t, entries.saved)

	require.Len(t, events.events, 1)
	assert.Equal(t, models.DvEventStatusOK, events.events[0].Status)
	assert.Contains(t, events.events[0].Message, "not created")
}

func TestApplyCreatesVisibleNewProduct(t *testing.T) {
	t.Parallel()

	entries := &fakeEntryRepo{byDvID: map[string]*models.CatalogEntry{}}
	events := &fakeEventRepo{}
	m := newTestMerger(entries, events)

	p := payloadFrom(t, `{
		"event": "publish",
		"product": {"idDataverse":"DV-P1","name":"Mate Stanley","visible":true,"price":1234.56},
		"variants": [
			{"idDataverse":"DV-V1","sku":"MS-NEG-500","color":"Negro","size":"500 ml","stock":7,"visible":true},
			{"idDataverse":"DV-V2","color":"Verde","stock":2,"visible":true}
		]
	}`)
	res, err := m.Apply(p)

	require.NoError(t, err)
	require.NotNil(t, entries.created)
	assert.Equal(t, "101", res.IDLocal)
	assert.Equal(t, "Mate Stanley", entries.created.Name)
	assert.InDelta(t, 1234.56, entries.created.Price, 0.001)
	assert.True(t, entries.created.VisibleFromDataverse)

	require.Len(t, entries.created.Variants, 2)
	assert.Equal(t, "MS-NEG-500", entries.created.Variants[0].SKU)
	// The second variant had no SKU; one is derived from the base identifier.
	assert.Equal(t, "DV-P1-VERDE", entries.created.Variants[1].SKU)

	require.Len(t, events.events, 1)
	assert.Equal(t, models.DvEventStatusOK, events.events[0].Status)
	assert.JSONEq(t, `["DV-V1","DV-V2"]`, string(events.events[0].VariantIDs))
}

func TestApplyMergesVariantsByIDAndSKU(t *testing.T) {
	t.Parallel()

	dvVar := "DV-V1"
	existing := &models.CatalogEntry{
		ID:   7,
		Name: "Remera",
		Variants: []models.Variant{
			{ID: 1, EntryID: 7, DataverseID: &dvVar, SKU: "R-NEG", Stock: 10, Visible: true},
			{ID: 2, EntryID: 7, SKU: "R-VER", Stock: 5, Visible: true},
		},
	}
	dvid := "DV-P7"
	existing.DataverseID = &dvid

	entries := &fakeEntryRepo{byDvID: map[string]*models.CatalogEntry{"DV-P7": existing}}
	events := &fakeEventRepo{}
	m := newTestMerger(entries, events)

	p := payloadFrom(t, `{
		"product": {"idDataverse":"DV-P7","visible":true},
		"variants": [
			{"idDataverse":"DV-V1","stock":3,"visible":true},
			{"idDataverse":"DV-V2","sku":"R-VER","stock":0,"visible":false},
			{"color":"Sin identidad","stock":99,"visible":true}
		]
	}`)
	res, err := m.Apply(p)

	require.NoError(t, err)
	require.NotNil(t, entries.saved)
	require.Len(t, entries.saved.Variants, 2, "unaddressable variant must be skipped")

	// Matched by Dataverse id: stock updated in place.
	assert.Equal(t, 3, entries.saved.Variants[0].Stock)

	// Matched by SKU: linked to its Dataverse id and visibility applied.
	require.NotNil(t, entries.saved.Variants[1].DataverseID)
	assert.Equal(t, "DV-V2", *entries.saved.Variants[1].DataverseID)
	assert.Equal(t, 0, entries.saved.Variants[1].Stock)
	assert.False(t, entries.saved.Variants[1].Visible)

	assert.Equal(t, "7", res.IDLocal)
	require.Len(t, res.Variants, 2)
}

func TestApplyAppendsNewVariant(t *testing.T) {
	t.Parallel()

	dvid := "DV-P9"
	existing := &models.CatalogEntry{ID: 9, DataverseID: &dvid, Name: "Gorra"}

	entries := &fakeEntryRepo{byDvID: map[string]*models.CatalogEntry{"DV-P9": existing}}
	events := &fakeEventRepo{}
	m := newTestMerger(entries, events)

	p := payloadFrom(t, `{
		"product": {"idDataverse":"DV-P9","visible":true},
		"variants": [{"idDataverse":"DV-V9","color":"Azul","stock":4,"visible":true}]
	}`)
	_, err := m.Apply(p)

	require.NoError(t, err)
	require.Len(t, entries.saved.Variants, 1)
	assert.Equal(t, "Azul", entries.saved.Variants[0].Color)
	assert.Equal(t, 4, entries.saved.Variants[0].Stock)
	assert.NotEmpty(t, entries.saved.Variants[0].SKU)
}

func TestApplyAuditsLookupFailure(t *testing.T) {
	t.Parallel()

	entries := &fakeEntryRepo{lookupErr: errors.New("db down")}
	events := &fakeEventRepo{}
	m := newTestMerger(entries, events)

	p := payloadFrom(t, `{"product":{"idDataverse":"DV-X","visible":true}}`)
	_, err := m.Apply(p)

	require.Error(t, err)
	require.Len(t, events.events, 1)
	assert.Equal(t, models.DvEventStatusError, events.events[0].Status)
}
