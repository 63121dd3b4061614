package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/modaviva/internal/domain"
)

func productWithMeta(name string, meta map[string]string, sizes ...string) *domain.Product {
	p := &domain.Product{ID: uuid.New(), Slug: name, Name: name, Active: true, Metadata: meta}
	for _, s := range sizes {
		p.Variants = append(p.Variants, domain.Variant{ID: uuid.New(), ProductID: p.ID, Size: s, Stock: 1})
	}
	return p
}

func TestMatchScore(t *testing.T) {
	vocab := domain.DefaultVocabulary()

	t.Run("full preference overlap sums weighted dimensions", func(t *testing.T) {
		p := productWithMeta("remera", map[string]string{
			domain.MetaStyleTags:    "casual",
			domain.MetaColorTags:    "black",
			domain.MetaOccasionTags: "everyday",
		})
		profile := &domain.StyleProfile{
			PreferredStyles:    []string{"casual"},
			PreferredColors:    []string{"black"},
			PreferredOccasions: []string{"everyday"},
		}
		// 30 + 25 + 20
		assert.Equal(t, 75.0, MatchScore(p, profile, vocab))
	})

	t.Run("partial overlap scales by attribute ratio", func(t *testing.T) {
		p := productWithMeta("remera", map[string]string{
			domain.MetaStyleTags: "casual,streetwear",
		})
		profile := &domain.StyleProfile{PreferredStyles: []string{"casual"}}
		assert.Equal(t, 15.0, MatchScore(p, profile, vocab))
	})

	t.Run("dislikes outweigh likes on the same attribute", func(t *testing.T) {
		p := productWithMeta("remera", map[string]string{
			domain.MetaStyleTags: "casual",
		})
		profile := &domain.StyleProfile{
			PreferredStyles: []string{"casual"},
			DislikedStyles:  []string{"casual"},
		}
		// 30 - 40 clamps at zero
		assert.Equal(t, 0.0, MatchScore(p, profile, vocab))
	})

	t.Run("disliked tags rank below having no tag overlap at all", func(t *testing.T) {
		profile := &domain.StyleProfile{
			PreferredColors: []string{"black"},
			DislikedStyles:  []string{"edgy"},
		}
		tachas := productWithMeta("tachas", map[string]string{
			domain.MetaStyleTags: "edgy",
			domain.MetaColorTags: "black",
		})
		lisa := productWithMeta("lisa", map[string]string{
			domain.MetaColorTags: "black",
		})
		// 25 - 40 clamps at zero; la neutra conserva sus 25 de color
		assert.Equal(t, 0.0, MatchScore(tachas, profile, vocab))
		assert.Equal(t, 25.0, MatchScore(lisa, profile, vocab))
		assert.Less(t, MatchScore(tachas, profile, vocab), MatchScore(lisa, profile, vocab))
	})

	t.Run("size preference bonus requires the size in stock", func(t *testing.T) {
		p := productWithMeta("vestido midi", map[string]string{
			domain.MetaProductType: "dresses",
		}, "M")
		profile := &domain.StyleProfile{SizePreferences: map[string]string{"dresses": "M"}}
		assert.Equal(t, 25.0, MatchScore(p, profile, vocab))

		profile.SizePreferences["dresses"] = "XL"
		assert.Equal(t, 0.0, MatchScore(p, profile, vocab))
	})

	t.Run("products without attributes are neither rewarded nor penalized", func(t *testing.T) {
		p := productWithMeta("misterio", nil)
		profile := &domain.StyleProfile{
			PreferredStyles: []string{"casual"},
			DislikedStyles:  []string{"edgy"},
		}
		assert.Equal(t, 0.0, MatchScore(p, profile, vocab))
	})

	t.Run("score never exceeds 100", func(t *testing.T) {
		p := productWithMeta("todo", map[string]string{
			domain.MetaStyleTags:    "casual",
			domain.MetaColorTags:    "black",
			domain.MetaOccasionTags: "everyday",
			domain.MetaProductType:  "tops",
		}, "M")
		profile := &domain.StyleProfile{
			PreferredStyles:    []string{"casual"},
			PreferredColors:    []string{"black"},
			PreferredOccasions: []string{"everyday"},
			SizePreferences:    map[string]string{"tops": "M"},
		}
		assert.Equal(t, 100.0, MatchScore(p, profile, vocab))
	})

	t.Run("vocabulary tags count as attributes", func(t *testing.T) {
		p := &domain.Product{ID: uuid.New(), Name: "taggeada",
			Tags: []domain.Tag{{Value: "vintage"}, {Value: "oferta"}}}
		profile := &domain.StyleProfile{PreferredStyles: []string{"vintage"}}
		// "oferta" is not a style, so the attribute set is just {vintage}
		assert.Equal(t, 30.0, MatchScore(p, profile, vocab))
	})
}

func TestStyleUpsert(t *testing.T) {
	ctx := context.Background()
	vocab := domain.DefaultVocabulary()
	customerID := uuid.New()

	newUC := func() *StyleUC {
		return &StyleUC{Profiles: newFakeProfileRepo(), Products: newFakeProductRepo(), Vocab: vocab}
	}

	t.Run("rejects values outside the vocabulary", func(t *testing.T) {
		uc := newUC()
		_, err := uc.Upsert(ctx, customerID, StyleProfileInput{PreferredStyles: []string{"grunge"}}, true)
		assert.ErrorIs(t, err, domain.ErrInvalidData)
	})

	t.Run("rejects unknown size preference categories", func(t *testing.T) {
		uc := newUC()
		_, err := uc.Upsert(ctx, customerID, StyleProfileInput{SizePreferences: map[string]string{"hats": "M"}}, true)
		assert.ErrorIs(t, err, domain.ErrInvalidData)
	})

	t.Run("create twice is a conflict", func(t *testing.T) {
		uc := newUC()
		in := StyleProfileInput{PreferredStyles: []string{"casual"}}
		_, err := uc.Upsert(ctx, customerID, in, true)
		require.NoError(t, err)
		_, err = uc.Upsert(ctx, customerID, in, true)
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("update replaces the stored lists", func(t *testing.T) {
		uc := newUC()
		_, err := uc.Upsert(ctx, customerID, StyleProfileInput{PreferredStyles: []string{"casual"}}, true)
		require.NoError(t, err)
		p, err := uc.Upsert(ctx, customerID, StyleProfileInput{PreferredStyles: []string{"formal"}}, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"formal"}, p.PreferredStyles)
	})

	t.Run("update without existing profile creates one", func(t *testing.T) {
		uc := newUC()
		p, err := uc.Upsert(ctx, customerID, StyleProfileInput{PreferredColors: []string{"red"}}, false)
		require.NoError(t, err)
		assert.Equal(t, customerID, p.CustomerID)
	})
}

func TestRecommendations(t *testing.T) {
	ctx := context.Background()
	vocab := domain.DefaultVocabulary()
	customerID := uuid.New()

	liked := productWithMeta("favorita", map[string]string{
		domain.MetaStyleTags: "casual",
		domain.MetaColorTags: "black",
	})
	disliked := productWithMeta("evitada", map[string]string{
		domain.MetaStyleTags: "edgy",
	})
	neutral := productWithMeta("neutra", nil)

	profiles := newFakeProfileRepo()
	uc := &StyleUC{
		Profiles: profiles,
		Products: newFakeProductRepo(liked, disliked, neutral),
		Vocab:    vocab,
	}
	_, err := uc.Upsert(ctx, customerID, StyleProfileInput{
		PreferredStyles: []string{"casual"},
		PreferredColors: []string{"black"},
		DislikedStyles:  []string{"edgy"},
	}, true)
	require.NoError(t, err)

	matches, err := uc.Recommendations(ctx, customerID, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "favorita", matches[0].Product.Name)
	assert.Equal(t, 55.0, matches[0].Score)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)

	t.Run("missing profile is not found", func(t *testing.T) {
		_, err := uc.Recommendations(ctx, uuid.New(), 5)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
