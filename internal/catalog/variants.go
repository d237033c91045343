// Package catalog groups catalog products into size/weight variant families
// for display. It is read-only and never touches the ledger.
package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/orhanozan33/epicebuhara-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// trailing weight token such as "500g", "1 kg", "2,5KG", "250 gr"
var weightSuffix = regexp.MustCompile(`(?i)\s*(\d+(?:[.,]\d+)?)\s*(kg|gr|g)\s*$`)

var spaces = regexp.MustCompile(`\s+`)

// Variant is one member of a family with its parsed weight.
type Variant struct {
	Product *model.Product
	// Grams is nil when no weight could be read from the name.
	Grams *decimal.Decimal
}

// Group is a family with at least two members, ordered by weight.
type Group struct {
	Key      string
	Variants []Variant
}

// GroupKey returns the clustering key: the explicit family id when present,
// then the legacy group key, then the normalized name.
func GroupKey(p *model.Product) string {
	if p.FamilyID != nil {
		return fmt.Sprintf("family:%d", *p.FamilyID)
	}
	if p.GroupKey != nil && strings.TrimSpace(*p.GroupKey) != "" {
		return "group:" + normalize(*p.GroupKey)
	}
	return "name:" + normalize(weightSuffix.ReplaceAllString(p.Name, ""))
}

func normalize(s string) string {
	return spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// ParseGrams reads the trailing weight token of a product name in grams.
func ParseGrams(name string) (decimal.Decimal, bool) {
	m := weightSuffix.FindStringSubmatch(name)
	if m == nil {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
	if err != nil {
		return decimal.Zero, false
	}
	if strings.EqualFold(m[2], "kg") {
		v = v.Mul(decimal.NewFromInt(1000))
	}
	return v, true
}

// GroupVariants clusters products by GroupKey and drops singletons.
// Groups come back ordered by key.
func GroupVariants(products []model.Product) []Group {
	byKey := make(map[string][]Variant)
	for i := range products {
		p := &products[i]
		v := Variant{Product: p}
		if g, ok := ParseGrams(p.Name); ok {
			v.Grams = &g
		}
		key := GroupKey(p)
		byKey[key] = append(byKey[key], v)
	}

	groups := make([]Group, 0, len(byKey))
	for key, members := range byKey {
		if len(members) < 2 {
			continue
		}
		sortVariants(members)
		groups = append(groups, Group{Key: key, Variants: members})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

// VariantsOf returns the whole family of target (target included), ordered
// by weight, or nil when target has no siblings in products.
func VariantsOf(target *model.Product, products []model.Product) []Variant {
	key := GroupKey(target)
	var members []Variant
	for i := range products {
		p := &products[i]
		if GroupKey(p) != key {
			continue
		}
		v := Variant{Product: p}
		if g, ok := ParseGrams(p.Name); ok {
			v.Grams = &g
		}
		members = append(members, v)
	}
	if len(members) < 2 {
		return nil
	}
	sortVariants(members)
	return members
}

// unknown weights last, ties by name
func sortVariants(vs []Variant) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		switch {
		case a.Grams != nil && b.Grams == nil:
			return true
		case a.Grams == nil && b.Grams != nil:
			return false
		case a.Grams != nil && b.Grams != nil && !a.Grams.Equal(*b.Grams):
			return a.Grams.LessThan(*b.Grams)
		}
		return a.Product.Name < b.Product.Name
	})
}
