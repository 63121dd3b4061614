package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phenrril/modaviva/internal/domain"
)

// Match scoring weights. Dislikes outweigh likes of the same dimension.
const (
	styleWeight          = 30.0
	colorWeight          = 25.0
	occasionWeight       = 20.0
	dislikedStylePenalty = 40.0
	dislikedColorPenalty = 30.0
	sizeMatchBonus       = 25.0
	maxMatchScore        = 100.0
)

type StyleUC struct {
	Profiles domain.StyleProfileRepo
	Products domain.ProductRepo
	Vocab    domain.Vocabulary
}

type StyleProfileInput struct {
	PreferredStyles    []string          `json:"preferred_styles"`
	PreferredColors    []string          `json:"preferred_colors"`
	PreferredOccasions []string          `json:"preferred_occasions"`
	DislikedStyles     []string          `json:"disliked_styles"`
	DislikedColors     []string          `json:"disliked_colors"`
	SizePreferences    map[string]string `json:"size_preferences"`
}

func (uc *StyleUC) validateInput(in StyleProfileInput) error {
	checkList := func(label string, values []string, ok func(string) bool) error {
		for _, v := range values {
			if !ok(v) {
				return fmt.Errorf("%s: %q fuera del vocabulario: %w", label, v, domain.ErrInvalidData)
			}
		}
		return nil
	}
	if err := checkList("preferred_styles", in.PreferredStyles, uc.Vocab.HasStyle); err != nil {
		return err
	}
	if err := checkList("preferred_colors", in.PreferredColors, uc.Vocab.HasColor); err != nil {
		return err
	}
	if err := checkList("preferred_occasions", in.PreferredOccasions, uc.Vocab.HasOccasion); err != nil {
		return err
	}
	if err := checkList("disliked_styles", in.DislikedStyles, uc.Vocab.HasStyle); err != nil {
		return err
	}
	if err := checkList("disliked_colors", in.DislikedColors, uc.Vocab.HasColor); err != nil {
		return err
	}
	for category := range in.SizePreferences {
		if !uc.Vocab.HasProductType(category) {
			return fmt.Errorf("size_preferences: categoría %q desconocida: %w", category, domain.ErrInvalidData)
		}
	}
	return nil
}

func (uc *StyleUC) Upsert(ctx context.Context, customerID uuid.UUID, in StyleProfileInput, create bool) (*domain.StyleProfile, error) {
	if customerID == uuid.Nil {
		return nil, fmt.Errorf("customer id: %w", domain.ErrInvalidData)
	}
	if err := uc.validateInput(in); err != nil {
		return nil, err
	}

	existing, err := uc.Profiles.FindByCustomer(ctx, customerID)
	switch {
	case err == nil:
		if create {
			return nil, fmt.Errorf("el perfil ya existe: %w", domain.ErrDuplicate)
		}
		existing.PreferredStyles = in.PreferredStyles
		existing.PreferredColors = in.PreferredColors
		existing.PreferredOccasions = in.PreferredOccasions
		existing.DislikedStyles = in.DislikedStyles
		existing.DislikedColors = in.DislikedColors
		existing.SizePreferences = in.SizePreferences
		existing.UpdatedAt = time.Now()
		if err := uc.Profiles.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, domain.ErrNotFound):
		p := &domain.StyleProfile{
			ID:                 uuid.New(),
			CustomerID:         customerID,
			PreferredStyles:    in.PreferredStyles,
			PreferredColors:    in.PreferredColors,
			PreferredOccasions: in.PreferredOccasions,
			DislikedStyles:     in.DislikedStyles,
			DislikedColors:     in.DislikedColors,
			SizePreferences:    in.SizePreferences,
		}
		if err := uc.Profiles.Save(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, err
	}
}

func (uc *StyleUC) Get(ctx context.Context, customerID uuid.UUID) (*domain.StyleProfile, error) {
	return uc.Profiles.FindByCustomer(ctx, customerID)
}

// productAttributeSet merges the explicit metadata tags for a dimension with
// the product's generic tags that happen to belong to the vocabulary list.
func productAttributeSet(p *domain.Product, metaKey string, vocabList []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	add := func(v string) {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range p.MetadataList(metaKey) {
		add(v)
	}
	for _, tag := range p.Tags {
		if containsFold(vocabList, tag.Value) {
			add(tag.Value)
		}
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// overlapRatio is |attrs ∩ prefs| / |attrs|.
func overlapRatio(attrs, prefs []string) float64 {
	if len(attrs) == 0 {
		return 0
	}
	matches := 0
	for _, a := range attrs {
		if containsFold(prefs, a) {
			matches++
		}
	}
	return float64(matches) / float64(len(attrs))
}

// MatchScore scores a product against a style profile on [0, 100].
func MatchScore(p *domain.Product, profile *domain.StyleProfile, vocab domain.Vocabulary) float64 {
	styles := productAttributeSet(p, domain.MetaStyleTags, vocab.Styles)
	colors := productAttributeSet(p, domain.MetaColorTags, vocab.Colors)
	occasions := productAttributeSet(p, domain.MetaOccasionTags, vocab.Occasions)

	score := 0.0
	if len(styles) > 0 {
		score += styleWeight * overlapRatio(styles, profile.PreferredStyles)
		score -= dislikedStylePenalty * overlapRatio(styles, profile.DislikedStyles)
	}
	if len(colors) > 0 {
		score += colorWeight * overlapRatio(colors, profile.PreferredColors)
		score -= dislikedColorPenalty * overlapRatio(colors, profile.DislikedColors)
	}
	if len(occasions) > 0 {
		score += occasionWeight * overlapRatio(occasions, profile.PreferredOccasions)
	}

	productType := vocab.InferProductType(p)
	if size, ok := profile.SizePreferences[productType]; ok && p.OffersSize(size) {
		score += sizeMatchBonus
	}

	if score < 0 {
		return 0
	}
	if score > maxMatchScore {
		return maxMatchScore
	}
	return score
}

type ProductMatch struct {
	Product domain.Product `json:"product"`
	Score   float64        `json:"match_score"`
}

// Recommendations scores the whole active catalog against the customer's
// profile and returns the top limit products sorted by descending score.
func (uc *StyleUC) Recommendations(ctx context.Context, customerID uuid.UUID, limit int) ([]ProductMatch, error) {
	profile, err := uc.Profiles.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	products, err := uc.Products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	matches := make([]ProductMatch, 0, len(products))
	for i := range products {
		matches = append(matches, ProductMatch{
			Product: products[i],
			Score:   MatchScore(&products[i], profile, uc.Vocab),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
