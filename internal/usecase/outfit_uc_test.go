package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/modaviva/internal/domain"
)

func productWithRelations(name string, categories, tags []string) *domain.Product {
	p := &domain.Product{ID: uuid.New(), Slug: name, Name: name, Active: true}
	for _, c := range categories {
		p.Categories = append(p.Categories, domain.Category{ID: uuid.New(), Name: c})
	}
	for _, tg := range tags {
		p.Tags = append(p.Tags, domain.Tag{ID: uuid.New(), Value: tg})
	}
	return p
}

func outfitOf(products ...*domain.Product) *domain.Outfit {
	o := &domain.Outfit{ID: uuid.New(), Name: "look"}
	for i, p := range products {
		o.Items = append(o.Items, domain.OutfitItem{
			ID: uuid.New(), OutfitID: o.ID, ProductID: p.ID, Position: i, Product: *p,
		})
	}
	return o
}

func TestOutfitSimilarity(t *testing.T) {
	t.Run("bare product scores the floor", func(t *testing.T) {
		o := outfitOf(productWithRelations("a", []string{"tops"}, []string{"casual"}))
		p := productWithRelations("b", nil, nil)
		assert.Equal(t, 10.0, OutfitSimilarity(o, p))
	})

	t.Run("outfit without comparable members scores the base", func(t *testing.T) {
		o := outfitOf(productWithRelations("a", nil, nil))
		p := productWithRelations("b", []string{"tops"}, nil)
		assert.Equal(t, 15.0, OutfitSimilarity(o, p))
	})

	t.Run("full overlap reaches 100", func(t *testing.T) {
		member := productWithRelations("a", []string{"tops"}, []string{"casual"})
		o := outfitOf(member)
		p := productWithRelations("b", []string{"tops"}, []string{"casual"})
		assert.Equal(t, 100.0, OutfitSimilarity(o, p))
	})

	t.Run("ratios use the larger set as denominator", func(t *testing.T) {
		member := productWithRelations("a", []string{"tops"}, []string{"casual", "verano"})
		o := outfitOf(member)
		p := productWithRelations("b", []string{"tops"}, []string{"casual"})
		// categories 1/1, tags 1/2: 40*1 + 60*0.5 = 70
		assert.Equal(t, 70.0, OutfitSimilarity(o, p))
	})

	t.Run("averaged across comparable members only", func(t *testing.T) {
		full := productWithRelations("a", []string{"tops"}, []string{"casual"})
		bare := productWithRelations("b", nil, nil)
		o := outfitOf(full, bare)
		p := productWithRelations("c", []string{"tops"}, []string{"casual"})
		assert.Equal(t, 100.0, OutfitSimilarity(o, p))
	})

	t.Run("the product itself is skipped as a member", func(t *testing.T) {
		p := productWithRelations("a", []string{"tops"}, []string{"casual"})
		o := outfitOf(p)
		assert.Equal(t, 15.0, OutfitSimilarity(o, p))
	})
}

func TestOutfitCreate(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	p1 := productWithRelations("remera", []string{"tops"}, nil)
	p2 := productWithRelations("jean", []string{"bottoms"}, nil)

	t.Run("requires a name and at least one product", func(t *testing.T) {
		uc := &OutfitUC{Outfits: newFakeOutfitRepo(), Products: newFakeProductRepo(p1)}
		_, err := uc.Create(ctx, &customerID, OutfitInput{Name: " ", ProductIDs: []uuid.UUID{p1.ID}})
		assert.ErrorIs(t, err, domain.ErrInvalidData)
		_, err = uc.Create(ctx, &customerID, OutfitInput{Name: "look"})
		assert.ErrorIs(t, err, domain.ErrInvalidData)
	})

	t.Run("rejects unknown products", func(t *testing.T) {
		uc := &OutfitUC{Outfits: newFakeOutfitRepo(), Products: newFakeProductRepo(p1)}
		_, err := uc.Create(ctx, &customerID, OutfitInput{Name: "look", ProductIDs: []uuid.UUID{uuid.New()}})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("assigns positions in order and publishes the event", func(t *testing.T) {
		pub := &recordingPublisher{}
		uc := &OutfitUC{Outfits: newFakeOutfitRepo(), Products: newFakeProductRepo(p1, p2), Events: pub}
		o, err := uc.Create(ctx, &customerID, OutfitInput{Name: "look", ProductIDs: []uuid.UUID{p1.ID, p2.ID}})
		require.NoError(t, err)
		require.Len(t, o.Items, 2)
		assert.Equal(t, 0, o.Items[0].Position)
		assert.Equal(t, 1, o.Items[1].Position)
		require.Len(t, pub.topics, 1)
		assert.Equal(t, domain.TopicOutfitCreated, pub.topics[0])
	})
}

func TestOutfitMembership(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()
	p1 := productWithRelations("remera", nil, nil)
	p2 := productWithRelations("jean", nil, nil)

	setup := func(t *testing.T) (*OutfitUC, *domain.Outfit) {
		t.Helper()
		uc := &OutfitUC{Outfits: newFakeOutfitRepo(), Products: newFakeProductRepo(p1, p2)}
		o, err := uc.Create(ctx, &owner, OutfitInput{Name: "look", ProductIDs: []uuid.UUID{p1.ID}})
		require.NoError(t, err)
		return uc, o
	}

	t.Run("only the owner can add products", func(t *testing.T) {
		uc, o := setup(t)
		_, err := uc.AddProduct(ctx, stranger, o.ID, p2.ID)
		assert.ErrorIs(t, err, domain.ErrNotAllowed)
	})

	t.Run("adding a product twice is a conflict", func(t *testing.T) {
		uc, o := setup(t)
		_, err := uc.AddProduct(ctx, owner, o.ID, p1.ID)
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("removing a missing product is not found", func(t *testing.T) {
		uc, o := setup(t)
		_, err := uc.RemoveProduct(ctx, owner, o.ID, p2.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("cannot remove the last product, outfit unchanged", func(t *testing.T) {
		uc, o := setup(t)
		_, err := uc.RemoveProduct(ctx, owner, o.ID, p1.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidData)

		got, err := uc.Get(ctx, o.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, p1.ID, got.Items[0].ProductID)
	})

	t.Run("add then remove round-trips", func(t *testing.T) {
		uc, o := setup(t)
		got, err := uc.AddProduct(ctx, owner, o.ID, p2.ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 2)

		got, err = uc.RemoveProduct(ctx, owner, o.ID, p1.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, p2.ID, got.Items[0].ProductID)
	})

	t.Run("positions stay unique after a removal", func(t *testing.T) {
		p3 := productWithRelations("campera", nil, nil)
		uc := &OutfitUC{Outfits: newFakeOutfitRepo(), Products: newFakeProductRepo(p1, p2, p3)}
		o, err := uc.Create(ctx, &owner, OutfitInput{Name: "look", ProductIDs: []uuid.UUID{p1.ID, p2.ID}})
		require.NoError(t, err)

		_, err = uc.RemoveProduct(ctx, owner, o.ID, p1.ID)
		require.NoError(t, err)
		got, err := uc.AddProduct(ctx, owner, o.ID, p3.ID)
		require.NoError(t, err)

		seen := map[int]bool{}
		for _, it := range got.Items {
			assert.False(t, seen[it.Position], "posición repetida %d", it.Position)
			seen[it.Position] = true
		}
	})

	t.Run("only the owner can delete", func(t *testing.T) {
		uc, o := setup(t)
		assert.ErrorIs(t, uc.Delete(ctx, stranger, o.ID), domain.ErrNotAllowed)
		assert.NoError(t, uc.Delete(ctx, owner, o.ID))
	})
}

func TestSuggestProducts(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	member := productWithRelations("remera", []string{"tops"}, []string{"casual"})
	similar := productWithRelations("camisa", []string{"tops"}, []string{"casual"})
	other := productWithRelations("botas", []string{"shoes"}, []string{"winter"})

	uc := &OutfitUC{Outfits: newFakeOutfitRepo(), Products: newFakeProductRepo(member, similar, other)}
	o, err := uc.Create(ctx, &owner, OutfitInput{Name: "look", ProductIDs: []uuid.UUID{member.ID}})
	require.NoError(t, err)

	// Create persists items without preloaded relations; refresh the stored
	// outfit the way the DB preload would.
	require.NoError(t, uc.Outfits.Save(ctx, outfitOfWithID(o.ID, member)))

	suggestions, err := uc.SuggestProducts(ctx, o.ID, 10)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "camisa", suggestions[0].Product.Name)
	assert.Equal(t, 100.0, suggestions[0].Score)
	for _, sg := range suggestions {
		assert.NotEqual(t, member.ID, sg.Product.ID, "members must not be suggested")
	}
}

func outfitOfWithID(id uuid.UUID, products ...*domain.Product) *domain.Outfit {
	o := outfitOf(products...)
	o.ID = id
	for i := range o.Items {
		o.Items[i].OutfitID = id
	}
	return o
}

func TestRecommendedForProduct(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	p1 := productWithRelations("remera", nil, nil)
	p2 := productWithRelations("jean", nil, nil)

	uc := &OutfitUC{Outfits: newFakeOutfitRepo(), Products: newFakeProductRepo(p1, p2)}
	withP1, err := uc.Create(ctx, &owner, OutfitInput{Name: "con remera", ProductIDs: []uuid.UUID{p1.ID}})
	require.NoError(t, err)
	_, err = uc.Create(ctx, &owner, OutfitInput{Name: "solo jean", ProductIDs: []uuid.UUID{p2.ID}})
	require.NoError(t, err)

	t.Run("prefers outfits containing the product", func(t *testing.T) {
		got, err := uc.RecommendedForProduct(ctx, p1.ID, 5)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, withP1.ID, got[0].ID)
	})

	t.Run("falls back to recent outfits otherwise", func(t *testing.T) {
		got, err := uc.RecommendedForProduct(ctx, uuid.New(), 5)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}
