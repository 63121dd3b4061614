package domain

import "strings"

// Vocabulary is the closed set of style/color/occasion terms the scorers match
// against. The lists are injected at construction time, never hard-referenced
// from scoring code.
type Vocabulary struct {
	Styles       []string
	Colors       []string
	Occasions    []string
	ProductTypes []string
}

func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Styles: []string{
			"casual", "formal", "sporty", "bohemian", "vintage",
			"minimalist", "streetwear", "classic", "romantic", "edgy",
		},
		Colors: []string{
			"black", "white", "gray", "navy", "blue", "green", "yellow",
			"orange", "red", "pink", "purple", "brown", "beige", "cream",
		},
		Occasions: []string{
			"everyday", "work", "party", "sport", "beach", "wedding",
			"travel", "night-out",
		},
		ProductTypes: []string{"tops", "bottoms", "dresses", "shoes"},
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func (v Vocabulary) HasStyle(s string) bool       { return containsFold(v.Styles, s) }
func (v Vocabulary) HasColor(s string) bool       { return containsFold(v.Colors, s) }
func (v Vocabulary) HasOccasion(s string) bool    { return containsFold(v.Occasions, s) }
func (v Vocabulary) HasProductType(s string) bool { return containsFold(v.ProductTypes, s) }

// categorySynonyms folds common catalog category names onto garment types.
var categorySynonyms = map[string]string{
	"shirts": "tops", "t-shirts": "tops", "blouses": "tops", "sweaters": "tops",
	"jackets": "tops", "pants": "bottoms", "jeans": "bottoms", "trousers": "bottoms",
	"shorts": "bottoms", "skirts": "bottoms", "gowns": "dresses",
	"footwear": "shoes", "sneakers": "shoes", "boots": "shoes", "sandals": "shoes",
	"heels": "shoes",
}

var titleKeywords = []struct {
	keyword string
	result  string
}{
	{"dress", "dresses"}, {"gown", "dresses"},
	{"shirt", "tops"}, {"blouse", "tops"}, {"top", "tops"}, {"tee", "tops"},
	{"sweater", "tops"}, {"hoodie", "tops"}, {"jacket", "tops"},
	{"pant", "bottoms"}, {"jean", "bottoms"}, {"trouser", "bottoms"},
	{"short", "bottoms"}, {"skirt", "bottoms"}, {"legging", "bottoms"},
	{"shoe", "shoes"}, {"sneaker", "shoes"}, {"boot", "shoes"},
	{"sandal", "shoes"}, {"heel", "shoes"},
}

// typeRule is one step of the inference fallback chain.
type typeRule func(Vocabulary, *Product) (string, bool)

// productTypeRules declares inference precedence once: explicit metadata first,
// then category membership, then tag membership, then title keywords. The
// most authoritative signal wins.
var productTypeRules = []typeRule{
	func(v Vocabulary, p *Product) (string, bool) {
		t := strings.ToLower(strings.TrimSpace(p.Metadata[MetaProductType]))
		if t != "" && v.HasProductType(t) {
			return t, true
		}
		return "", false
	},
	func(v Vocabulary, p *Product) (string, bool) {
		names := []string{p.Category}
		for _, c := range p.Categories {
			names = append(names, c.Name, c.Handle)
		}
		for _, name := range names {
			n := strings.ToLower(strings.TrimSpace(name))
			if n == "" {
				continue
			}
			if v.HasProductType(n) {
				return n, true
			}
			if t, ok := categorySynonyms[n]; ok {
				return t, true
			}
		}
		return "", false
	},
	func(v Vocabulary, p *Product) (string, bool) {
		for _, tag := range p.Tags {
			t := strings.ToLower(strings.TrimSpace(tag.Value))
			if v.HasProductType(t) {
				return t, true
			}
			if mapped, ok := categorySynonyms[t]; ok {
				return mapped, true
			}
		}
		return "", false
	},
	func(_ Vocabulary, p *Product) (string, bool) {
		title := strings.ToLower(p.Name)
		for _, kw := range titleKeywords {
			if strings.Contains(title, kw.keyword) {
				return kw.result, true
			}
		}
		return "", false
	},
}

// InferProductType walks the rule chain in order and defaults to "tops".
func (v Vocabulary) InferProductType(p *Product) string {
	for _, rule := range productTypeRules {
		if t, ok := rule(v, p); ok {
			return t
		}
	}
	return "tops"
}
