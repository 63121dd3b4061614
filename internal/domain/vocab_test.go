package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferProductType(t *testing.T) {
	v := DefaultVocabulary()

	cases := []struct {
		name string
		p    Product
		want string
	}{
		{
			name: "explicit metadata wins over everything",
			p: Product{
				Name:     "Summer Dress",
				Category: "jeans",
				Metadata: map[string]string{MetaProductType: "shoes"},
			},
			want: "shoes",
		},
		{
			name: "metadata outside vocabulary is ignored",
			p: Product{
				Name:     "Summer Dress",
				Metadata: map[string]string{MetaProductType: "hats"},
			},
			want: "dresses",
		},
		{
			name: "category matches a garment type directly",
			p:    Product{Name: "Básica", Category: "bottoms"},
			want: "bottoms",
		},
		{
			name: "category synonym folds onto a garment type",
			p:    Product{Name: "Básica", Category: "sneakers"},
			want: "shoes",
		},
		{
			name: "category beats tag",
			p: Product{
				Name:     "Combo",
				Category: "jeans",
				Tags:     []Tag{{Value: "gowns"}},
			},
			want: "bottoms",
		},
		{
			name: "tag beats title keyword",
			p: Product{
				Name: "Vestido Dress",
				Tags: []Tag{{Value: "boots"}},
			},
			want: "shoes",
		},
		{
			name: "title keyword as last resort",
			p:    Product{Name: "Floral Maxi Dress"},
			want: "dresses",
		},
		{
			name: "nothing matches defaults to tops",
			p:    Product{Name: "Misterio"},
			want: "tops",
		},
		{
			name: "nested category handles are checked",
			p: Product{
				Name:       "Item",
				Categories: []Category{{Name: "Invierno", Handle: "skirts"}},
			},
			want: "bottoms",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, v.InferProductType(&c.p))
		})
	}
}

func TestVocabularyMembership(t *testing.T) {
	v := DefaultVocabulary()
	assert.True(t, v.HasStyle("Casual"), "style membership is case-insensitive")
	assert.False(t, v.HasColor("magenta"))
	assert.True(t, v.HasOccasion("night-out"))
	assert.True(t, v.HasProductType("DRESSES"), "product type membership is case-insensitive")
}
