package catalog

import (
	"testing"

	"github.com/orhanozan33/epicebuhara-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id uint, name string) model.Product {
	return model.Product{ID: id, Name: name, Active: true}
}

func names(vs []Variant) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Product.Name)
	}
	return out
}

func TestParseGrams(t *testing.T) {
	cases := []struct {
		name string
		want string
		ok   bool
	}{
		{"Sumac 500g", "500", true},
		{"Sumac 1 kg", "1000", true},
		{"Sumac 2,5KG", "2500", true},
		{"Sumac 250 gr", "250", true},
		{"Sumac 0.75kg", "750", true},
		{"Sumac", "0", false},
		{"Sumac 500 ml", "0", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseGrams(tc.name)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got.String())
			}
		})
	}
}

func TestGroupKey_NameNormalization(t *testing.T) {
	a := product(1, "Pul Biber 500g")
	b := product(2, "pul  biber 1 KG")
	assert.Equal(t, GroupKey(&a), GroupKey(&b))
	assert.Equal(t, "name:pul biber", GroupKey(&a))
}

func TestGroupKey_FamilyWinsOverName(t *testing.T) {
	fam := uint(7)
	a := product(1, "Isot 250g")
	a.FamilyID = &fam
	b := product(2, "Urfa Pepper 500g")
	b.FamilyID = &fam
	assert.Equal(t, GroupKey(&a), GroupKey(&b))

	c := product(3, "Isot 500g")
	assert.NotEqual(t, GroupKey(&a), GroupKey(&c))
}

func TestGroupKey_LegacyGroupKey(t *testing.T) {
	key := "Black Tea"
	a := product(1, "Rize Tea 1kg")
	a.GroupKey = &key
	b := product(2, "Ceylon Blend 500g")
	b.GroupKey = &key
	assert.Equal(t, GroupKey(&a), GroupKey(&b))
}

func TestGroupVariants_SortsByWeightAndDropsSingletons(t *testing.T) {
	products := []model.Product{
		product(1, "Sumac 1kg"),
		product(2, "Sumac 250g"),
		product(3, "Sumac 500 gr"),
		product(4, "Olive Oil 1L"),
		product(5, "Sumac"),
	}

	groups := GroupVariants(products)
	require.Len(t, groups, 1)
	assert.Equal(t, "name:sumac", groups[0].Key)
	assert.Equal(t, []string{"Sumac 250g", "Sumac 500 gr", "Sumac 1kg", "Sumac"}, names(groups[0].Variants))
	assert.Nil(t, groups[0].Variants[3].Grams)
}

func TestGroupVariants_TiesByName(t *testing.T) {
	fam := uint(3)
	a := product(1, "Zahter 500g")
	a.FamilyID = &fam
	b := product(2, "Kekik 500g")
	b.FamilyID = &fam

	groups := GroupVariants([]model.Product{a, b})
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"Kekik 500g", "Zahter 500g"}, names(groups[0].Variants))
}

func TestVariantsOf(t *testing.T) {
	products := []model.Product{
		product(1, "Cumin 100g"),
		product(2, "Cumin 1kg"),
		product(3, "Paprika 100g"),
	}

	got := VariantsOf(&products[1], products)
	assert.Equal(t, []string{"Cumin 100g", "Cumin 1kg"}, names(got))

	assert.Nil(t, VariantsOf(&products[2], products), "a singleton has no variants")
}
