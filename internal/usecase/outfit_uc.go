package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/phenrril/modaviva/internal/domain"
)

// Outfit similarity weights. Each ratio uses max(|A|,|B|) as denominator.
const (
	categorySimWeight = 40.0
	tagSimWeight      = 60.0
	// baseOutfitScore applies when no outfit member has loaded relations.
	baseOutfitScore = 15.0
	// bareProductScore applies when the target product itself carries no
	// categories and no tags.
	bareProductScore = 10.0
)

type OutfitUC struct {
	Outfits  domain.OutfitRepo
	Products domain.ProductRepo
	Events   domain.EventPublisher
}

type OutfitInput struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ProductIDs  []uuid.UUID `json:"product_ids"`
}

func (uc *OutfitUC) Create(ctx context.Context, customerID *uuid.UUID, in OutfitInput) (*domain.Outfit, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("nombre vacío: %w", domain.ErrInvalidData)
	}
	if len(in.ProductIDs) == 0 {
		return nil, fmt.Errorf("un outfit necesita al menos un producto: %w", domain.ErrInvalidData)
	}

	items := make([]domain.OutfitItem, 0, len(in.ProductIDs))
	for i, pid := range in.ProductIDs {
		if _, err := uc.Products.FindByID(ctx, pid); err != nil {
			return nil, fmt.Errorf("producto %s: %w", pid, err)
		}
		items = append(items, domain.OutfitItem{
			ID:        uuid.New(),
			ProductID: pid,
			Position:  i,
		})
	}

	o := &domain.Outfit{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CustomerID:  customerID,
		Items:       items,
	}
	for i := range o.Items {
		o.Items[i].OutfitID = o.ID
	}
	if err := uc.Outfits.Save(ctx, o); err != nil {
		return nil, err
	}
	if uc.Events != nil {
		uc.Events.Publish(domain.TopicOutfitCreated, map[string]any{"outfit_id": o.ID.String()})
	}
	return o, nil
}

func (uc *OutfitUC) Get(ctx context.Context, id uuid.UUID) (*domain.Outfit, error) {
	return uc.Outfits.FindByID(ctx, id)
}

func (uc *OutfitUC) List(ctx context.Context, f domain.OutfitFilter) ([]domain.Outfit, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Outfits.List(ctx, f)
}

func (uc *OutfitUC) Delete(ctx context.Context, customerID, id uuid.UUID) error {
	o, err := uc.Outfits.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !o.OwnedBy(customerID) {
		return fmt.Errorf("el outfit pertenece a otro cliente: %w", domain.ErrNotAllowed)
	}
	return uc.Outfits.Delete(ctx, id)
}

func (uc *OutfitUC) AddProduct(ctx context.Context, customerID, outfitID, productID uuid.UUID) (*domain.Outfit, error) {
	o, err := uc.Outfits.FindByID(ctx, outfitID)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(customerID) {
		return nil, fmt.Errorf("el outfit pertenece a otro cliente: %w", domain.ErrNotAllowed)
	}
	if _, err := uc.Products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	for _, it := range o.Items {
		if it.ProductID == productID {
			return nil, fmt.Errorf("el producto ya está en el outfit: %w", domain.ErrDuplicate)
		}
	}
	// Las posiciones quedan con huecos tras un remove; max+1 evita duplicar.
	next := 0
	for _, it := range o.Items {
		if it.Position >= next {
			next = it.Position + 1
		}
	}
	item := &domain.OutfitItem{
		ID:        uuid.New(),
		OutfitID:  outfitID,
		ProductID: productID,
		Position:  next,
	}
	if err := uc.Outfits.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return uc.Outfits.FindByID(ctx, outfitID)
}

// RemoveProduct rejects removals that would leave the outfit empty; the
// outfit is left unchanged in that case.
func (uc *OutfitUC) RemoveProduct(ctx context.Context, customerID, outfitID, productID uuid.UUID) (*domain.Outfit, error) {
	o, err := uc.Outfits.FindByID(ctx, outfitID)
	if err != nil {
		return nil, err
	}
	if !o.OwnedBy(customerID) {
		return nil, fmt.Errorf("el outfit pertenece a otro cliente: %w", domain.ErrNotAllowed)
	}
	found := false
	for _, it := range o.Items {
		if it.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("el producto no está en el outfit: %w", domain.ErrNotFound)
	}
	if len(o.Items) <= 1 {
		return nil, fmt.Errorf("un outfit necesita al menos un producto: %w", domain.ErrInvalidData)
	}
	if err := uc.Outfits.RemoveItem(ctx, outfitID, productID); err != nil {
		return nil, err
	}
	return uc.Outfits.FindByID(ctx, outfitID)
}

func setRatio(a, b []string) float64 {
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	if max == 0 {
		return 0
	}
	shared := 0
	for _, v := range a {
		if containsFold(b, v) {
			shared++
		}
	}
	return float64(shared) / float64(max)
}

func categoryNames(p *domain.Product) []string {
	out := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		out = append(out, strings.ToLower(c.Name))
	}
	return out
}

func tagValues(p *domain.Product) []string {
	out := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		out = append(out, strings.ToLower(t.Value))
	}
	return out
}

// OutfitSimilarity scores how well a product fits an existing outfit on
// [0, 100], averaging shared-category and shared-tag ratios across every
// outfit member that has loaded relations.
func OutfitSimilarity(o *domain.Outfit, p *domain.Product) float64 {
	pCats := categoryNames(p)
	pTags := tagValues(p)
	if len(pCats) == 0 && len(pTags) == 0 {
		return bareProductScore
	}

	total := 0.0
	comparable := 0
	for i := range o.Items {
		member := &o.Items[i].Product
		if member.ID == p.ID {
			continue
		}
		mCats := categoryNames(member)
		mTags := tagValues(member)
		if len(mCats) == 0 && len(mTags) == 0 {
			continue
		}
		comparable++
		total += categorySimWeight*setRatio(mCats, pCats) + tagSimWeight*setRatio(mTags, pTags)
	}
	if comparable == 0 {
		return baseOutfitScore
	}
	return total / float64(comparable)
}

type ProductSuggestion struct {
	Product domain.Product `json:"product"`
	Score   float64        `json:"similarity_score"`
}

// SuggestProducts ranks the catalog by similarity with the outfit.
func (uc *OutfitUC) SuggestProducts(ctx context.Context, outfitID uuid.UUID, limit int) ([]ProductSuggestion, error) {
	o, err := uc.Outfits.FindByID(ctx, outfitID)
	if err != nil {
		return nil, err
	}
	products, err := uc.Products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	inOutfit := map[uuid.UUID]struct{}{}
	for _, it := range o.Items {
		inOutfit[it.ProductID] = struct{}{}
	}

	suggestions := make([]ProductSuggestion, 0, len(products))
	for i := range products {
		if _, ok := inOutfit[products[i].ID]; ok {
			continue
		}
		suggestions = append(suggestions, ProductSuggestion{
			Product: products[i],
			Score:   OutfitSimilarity(o, &products[i]),
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool { return suggestions[i].Score > suggestions[j].Score })
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// RecommendedForProduct prefers outfits that already contain the product and
// falls back to a recency-ordered list when none do.
func (uc *OutfitUC) RecommendedForProduct(ctx context.Context, productID uuid.UUID, limit int) ([]domain.Outfit, error) {
	if limit <= 0 {
		limit = 5
	}
	outfits, err := uc.Outfits.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(outfits) > 0 {
		if len(outfits) > limit {
			outfits = outfits[:limit]
		}
		return outfits, nil
	}
	return uc.Outfits.ListRecent(ctx, limit)
}
