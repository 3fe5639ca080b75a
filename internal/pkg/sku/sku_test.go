package sku

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/promocraft/catalog/app/models"
)

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain word", in: "Negro", want: "NEGRO"},
		{name: "diacritics folded", in: "Algodón", want: "ALGODON"},
		{name: "spaces become hyphens", in: "500 ml", want: "500-ML"},
		{name: "mixed punctuation collapses", in: "Mate  / Stanley!", want: "MATE-STANLEY"},
		{name: "leading and trailing junk trimmed", in: "  ¡Té verde!  ", want: "TE-VERDE"},
		{name: "empty", in: "", want: ""},
		{name: "only punctuation", in: "--//--", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	t.Parallel()

	v := models.Variant{Color: "Azul Marino", Material: "Algodón", Size: "XL"}
	first := Generate("1234", v)
	second := Generate("1234", v)

	assert.Equal(t, "1234-AZUL-MARINO-ALGODON-XL", first)
	assert.Equal(t, first, second)
}

func TestGenerateSkipsEmptyAttributes(t *testing.T) {
	t.Parallel()

	v := models.Variant{Color: "Rojo"}
	assert.Equal(t, "987-ROJO", Generate("987", v))
}

func TestEnsureVariantSKUsFillsBlanks(t *testing.T) {
	t.Parallel()

	variants := []models.Variant{
		{SKU: "KEEP-ME", Color: "Negro"},
		{Color: "Rojo", Size: "500 ml"},
		{Color: "Verde"},
	}

	assigned := EnsureVariantSKUs("42", variants)

	assert.Equal(t, 2, assigned)
	assert.Equal(t, "KEEP-ME", variants[0].SKU)
	assert.Equal(t, "42-ROJO-500-ML", variants[1].SKU)
	assert.Equal(t, "42-VERDE", variants[2].SKU)
}

func TestEnsureVariantSKUsResolvesCollisions(t *testing.T) {
	t.Parallel()

	// Two variants with identical attributes must still end up with unique SKUs.
	variants := []models.Variant{
		{Color: "Negro"},
		{Color: "Negro"},
		{Color: "Negro"},
	}

	assigned := EnsureVariantSKUs("7", variants)

	assert.Equal(t, 3, assigned)
	assert.Equal(t, "7-NEGRO", variants[0].SKU)
	assert.Equal(t, "7-NEGRO-2", variants[1].SKU)
	assert.Equal(t, "7-NEGRO-3", variants[2].SKU)
}

func TestEnsureVariantSKUsAvoidsExistingSKU(t *testing.T) {
	t.Parallel()

	variants := []models.Variant{
		{SKU: "7-NEGRO", Color: "Negro"},
		{Color: "Negro"},
	}

	assigned := EnsureVariantSKUs("7", variants)

	assert.Equal(t, 1, assigned)
	assert.Equal(t, "7-NEGRO-2", variants[1].SKU)
}

func TestEnsureVariantSKUsNoAttributes(t *testing.T) {
	t.Parallel()

	// A variant without any attributes and an empty base id yields nothing to
	// derive a SKU from and is left untouched.
	variants := []models.Variant{{}}
	assigned := EnsureVariantSKUs("", variants)

	assert.Equal(t, 0, assigned)
	assert.Empty(t, variants[0].SKU)
}
