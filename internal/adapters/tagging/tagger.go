package tagging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/phenrril/modaviva/internal/domain"
)

const batchSize = 25

// Tagger etiqueta productos con OpenAI: estilos, colores, ocasiones y tipo de
// prenda, restringidos al vocabulario configurado.
type Tagger struct {
	client *openai.Client
	vocab  domain.Vocabulary
}

func New(apiKey string, vocab domain.Vocabulary) *Tagger {
	return &Tagger{client: openai.NewClient(apiKey), vocab: vocab}
}

type taggedProduct struct {
	Slug        string   `json:"slug"`
	StyleTags   []string `json:"style_tags"`
	ColorTags   []string `json:"color_tags"`
	Occasions   []string `json:"occasions"`
	ProductType string   `json:"product_type"`
}

// TagProducts procesa productos en lotes y devuelve la metadata a aplicar por
// slug. Los valores fuera del vocabulario se descartan en vez de fallar.
func (t *Tagger) TagProducts(ctx context.Context, products []*domain.Product) (map[string]map[string]string, error) {
	if len(products) == 0 {
		return map[string]map[string]string{}, nil
	}

	totalBatches := (len(products) + batchSize - 1) / batchSize
	log.Info().Int("total_productos", len(products)).Int("lotes", totalBatches).Msg("etiquetando con OpenAI en lotes")

	out := make(map[string]map[string]string)
	for batchNum := 0; batchNum < totalBatches; batchNum++ {
		start := batchNum * batchSize
		end := start + batchSize
		if end > len(products) {
			end = len(products)
		}
		batch := products[start:end]

		tagged, err := t.tagBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("error en lote %d/%d: %w", batchNum+1, totalBatches, err)
		}
		for _, tp := range tagged {
			meta := t.metaFor(tp)
			if len(meta) > 0 {
				out[tp.Slug] = meta
			}
		}
		log.Info().Int("lote", batchNum+1).Int("total", totalBatches).Int("etiquetados", len(tagged)).Msg("lote completado")
	}
	return out, nil
}

func (t *Tagger) tagBatch(ctx context.Context, batch []*domain.Product) ([]taggedProduct, error) {
	lines := make([]string, 0, len(batch))
	for _, p := range batch {
		lines = append(lines, fmt.Sprintf("- slug: %s | nombre: %s | descripción: %s", p.Slug, p.Name, p.ShortDesc))
	}

	prompt := fmt.Sprintf(`Etiquetá estas prendas de ropa.

VOCABULARIO PERMITIDO:
estilos: %s
colores: %s
ocasiones: %s
tipos: %s

PRODUCTOS:
%s

Devuelve JSON con TODOS los productos:
{"productos":[{"slug":"...","style_tags":["..."],"color_tags":["..."],"occasions":["..."],"product_type":"..."}]}

Importante:
- Usá SOLO valores del vocabulario permitido.
- Máximo 3 estilos, 2 colores y 3 ocasiones por producto.
- Si no podés inferir un campo, dejalo vacío.
`, strings.Join(t.vocab.Styles, ", "), strings.Join(t.vocab.Colors, ", "),
		strings.Join(t.vocab.Occasions, ", "), strings.Join(t.vocab.ProductTypes, ", "),
		strings.Join(lines, "\n"))

	batchCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	resp, err := t.client.CreateChatCompletion(batchCtx, openai.ChatCompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Eres un experto en moda. Devuelve SIEMPRE JSON válido con TODOS los productos que te envían.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0,
		MaxTokens:   4000,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("respuesta vacía de OpenAI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var result struct {
		Productos []taggedProduct `json:"productos"`
	}
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		log.Error().Str("content", content).Err(err).Msg("error parseando respuesta de OpenAI")
		return nil, fmt.Errorf("error parseando JSON de OpenAI: %w", err)
	}
	return result.Productos, nil
}

func (t *Tagger) metaFor(tp taggedProduct) map[string]string {
	meta := make(map[string]string)
	if v := filterVocab(tp.StyleTags, t.vocab.HasStyle); v != "" {
		meta[domain.MetaStyleTags] = v
	}
	if v := filterVocab(tp.ColorTags, t.vocab.HasColor); v != "" {
		meta[domain.MetaColorTags] = v
	}
	if v := filterVocab(tp.Occasions, t.vocab.HasOccasion); v != "" {
		meta[domain.MetaOccasionTags] = v
	}
	if tp.ProductType != "" && t.vocab.HasProductType(tp.ProductType) {
		meta[domain.MetaProductType] = strings.ToLower(tp.ProductType)
	}
	return meta
}

func filterVocab(values []string, ok func(string) bool) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if ok(v) {
			kept = append(kept, strings.ToLower(strings.TrimSpace(v)))
		}
	}
	return strings.Join(kept, ",")
}
