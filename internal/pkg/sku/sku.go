package sku

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/promocraft/catalog/app/models"
)

// foldTransformer strips diacritics: decompose, drop combining marks, recompose.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug uppercases s, strips diacritics and collapses every non-alphanumeric
// run into a single hyphen. "Algodón" -> "ALGODON", "500 ml" -> "500-ML".
func Slug(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToUpper(r))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Generate builds a deterministic SKU for a variant from the entry's base
// identifier and the variant's normalized attributes. Empty attributes are
// dropped from the join.
func Generate(baseID string, v models.Variant) string {
	parts := []string{Slug(baseID)}
	for _, attr := range []string{v.Color, v.Material, v.Size} {
		if slugged := Slug(attr); slugged != "" {
			parts = append(parts, slugged)
		}
	}
	return strings.Join(parts, "-")
}

// EnsureVariantSKUs completes blank SKUs in place. Generated SKUs colliding
// with another SKU on the same entry get an incrementing numeric suffix
// starting at 2. Returns the number of SKUs assigned.
func EnsureVariantSKUs(baseID string, variants []models.Variant) int {
	taken := make(map[string]bool, len(variants))
	for _, v := range variants {
		if s := strings.TrimSpace(v.SKU); s != "" {
			taken[s] = true
		}
	}

	assigned := 0
	for i := range variants {
		if strings.TrimSpace(variants[i].SKU) != "" {
			continue
		}
		candidate := Generate(baseID, variants[i])
		if candidate == "" {
			continue // nothing to derive a SKU from
		}
		final := candidate
		for n := 2; taken[final]; n++ {
			final = fmt.Sprintf("%s-%d", candidate, n)
		}
		variants[i].SKU = final
		taken[final] = true
		assigned++
	}
	return assigned
}
