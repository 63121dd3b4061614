package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/phenrril/modaviva/internal/domain"
)

const defaultModel = "gemini-2.0-flash-exp"

// Client genera imágenes de prueba virtual con Gemini. Abre un cliente del SDK
// por pedido y lo cierra al terminar.
type Client struct {
	apiKey string
	model  string
}

func New(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{apiKey: apiKey, model: model}
}

func buildPrompt(opts domain.TryOnOptions) string {
	var b strings.Builder
	b.WriteString("Generate a realistic image of the person in the first photo wearing the garment shown in the second photo. ")
	b.WriteString("Keep the person's face, body and pose unchanged; only replace the clothing. ")
	if opts.Pose != "" {
		b.WriteString(fmt.Sprintf("Pose: %s. ", opts.Pose))
	}
	if opts.Background != "" {
		b.WriteString(fmt.Sprintf("Background: %s. ", opts.Background))
	}
	b.WriteString("Return the generated image.")
	return b.String()
}

func (c *Client) Generate(ctx context.Context, personImage, garmentImage []byte, opts domain.TryOnOptions) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY no configurada")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("creando cliente Gemini: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.model)
	parts := []genai.Part{
		genai.Text(buildPrompt(opts)),
		genai.ImageData("jpeg", personImage),
		genai.ImageData("jpeg", garmentImage),
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generando imagen: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("respuesta vacía de Gemini")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok {
			return blob.Data, nil
		}
	}
	return nil, fmt.Errorf("Gemini no devolvió una imagen")
}
