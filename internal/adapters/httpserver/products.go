package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/modaviva/internal/domain"
)

type productView struct {
	ID        string            `json:"id"`
	Slug      string            `json:"slug"`
	Name      string            `json:"name"`
	BasePrice float64           `json:"base_price"`
	Category  string            `json:"category"`
	ShortDesc string            `json:"short_desc"`
	Brand     string            `json:"brand"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Images    []string          `json:"images"`
	Sizes     []string          `json:"sizes"`
	Variants  []variantView     `json:"variants,omitempty"`
}

type variantView struct {
	ID    string  `json:"id"`
	Size  string  `json:"size"`
	Color string  `json:"color"`
	SKU   string  `json:"sku,omitempty"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func toProductView(p *domain.Product, withVariants bool) productView {
	v := productView{
		ID:        p.ID.String(),
		Slug:      p.Slug,
		Name:      p.Name,
		BasePrice: p.BasePrice,
		Category:  p.Category,
		ShortDesc: p.ShortDesc,
		Brand:     p.Brand,
		Metadata:  p.Metadata,
		Images:    make([]string, 0, len(p.Images)),
		Sizes:     p.SizeLabels(),
	}
	for _, img := range p.Images {
		v.Images = append(v.Images, img.URL)
	}
	if withVariants {
		for _, va := range p.Variants {
			v.Variants = append(v.Variants, variantView{
				ID: va.ID.String(), Size: va.Size, Color: va.Color,
				SKU: va.SKU, Price: va.Price, Stock: va.Stock,
			})
		}
	}
	return v
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	f := domain.ProductFilter{
		Category: q.Get("category"),
		Query:    q.Get("q"),
		Size:     q.Get("size"),
		Sort:     q.Get("sort"),
		Page:     page,
		PageSize: pageSize,
	}
	items, total, err := s.products.List(r.Context(), f)
	if err != nil {
		writeErr(w, err)
		return
	}
	views := make([]productView, 0, len(items))
	for i := range items {
		views = append(views, toProductView(&items[i], false))
	}
	writeJSON(w, 200, map[string]any{"items": views, "total": total})
}

func (s *Server) apiProductBySlug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	slug := strings.TrimPrefix(r.URL.Path, "/api/products/")
	slug = strings.Trim(slug, "/")
	p, err := s.products.GetBySlug(r.Context(), slug)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, toProductView(p, true))
}

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	cats, err := s.products.Categories(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"categories": cats})
}

type productInput struct {
	Name      string            `json:"name"`
	BasePrice float64           `json:"base_price"`
	Category  string            `json:"category"`
	ShortDesc string            `json:"short_desc"`
	Brand     string            `json:"brand"`
	Active    *bool             `json:"active"`
	Metadata  map[string]string `json:"metadata"`
}

func (s *Server) apiAdminProducts(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var in productInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, fmt.Errorf("json inválido: %w", domain.ErrInvalidData))
		return
	}
	p := &domain.Product{
		Name:      in.Name,
		BasePrice: in.BasePrice,
		Category:  in.Category,
		ShortDesc: in.ShortDesc,
		Brand:     in.Brand,
		Active:    true,
		Metadata:  in.Metadata,
	}
	if err := s.products.Create(r.Context(), p); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 201, toProductView(p, true))
}

// apiAdminProductBySlug rutea /api/admin/products/{slug}[/images|/variants].
func (s *Server) apiAdminProductBySlug(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/admin/products/"), "/")
	parts := strings.SplitN(rest, "/", 2)
	slug := parts[0]
	if slug == "" {
		http.Error(w, "slug", 400)
		return
	}
	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch sub {
	case "":
		s.adminProduct(w, r, slug)
	case "images":
		s.adminProductImages(w, r, slug)
	case "variants":
		s.adminProductVariants(w, r, slug)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) adminProduct(w http.ResponseWriter, r *http.Request, slug string) {
	switch r.Method {
	case http.MethodPut:
		p, err := s.products.GetBySlug(r.Context(), slug)
		if err != nil {
			writeErr(w, err)
			return
		}
		var in productInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, fmt.Errorf("json inválido: %w", domain.ErrInvalidData))
			return
		}
		if in.Name != "" {
			p.Name = in.Name
		}
		if in.BasePrice > 0 {
			p.BasePrice = in.BasePrice
		}
		if in.Category != "" {
			p.Category = in.Category
		}
		if in.ShortDesc != "" {
			p.ShortDesc = in.ShortDesc
		}
		if in.Brand != "" {
			p.Brand = in.Brand
		}
		if in.Active != nil {
			p.Active = *in.Active
		}
		for k, v := range in.Metadata {
			if p.Metadata == nil {
				p.Metadata = map[string]string{}
			}
			p.Metadata[k] = v
		}
		if err := s.products.Update(r.Context(), p); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, toProductView(p, true))
	case http.MethodDelete:
		paths, err := s.products.DeleteFullBySlug(r.Context(), slug)
		if err != nil {
			writeErr(w, err)
			return
		}
		log.Info().Str("slug", slug).Int("imagenes", len(paths)).Msg("producto eliminado")
		writeJSON(w, 200, map[string]any{"deleted": slug})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) adminProductImages(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	p, err := s.products.GetBySlug(r.Context(), slug)
	if err != nil {
		writeErr(w, err)
		return
	}
	var in struct {
		Images []struct {
			URL string `json:"url"`
			Alt string `json:"alt"`
		} `json:"images"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || len(in.Images) == 0 {
		writeErr(w, fmt.Errorf("imágenes vacías: %w", domain.ErrInvalidData))
		return
	}
	imgs := make([]domain.Image, 0, len(in.Images))
	for _, im := range in.Images {
		imgs = append(imgs, domain.Image{URL: im.URL, Alt: im.Alt})
	}
	if err := s.products.AddImages(r.Context(), p.ID, imgs); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 201, map[string]any{"added": len(imgs)})
}

func (s *Server) adminProductVariants(w http.ResponseWriter, r *http.Request, slug string) {
	p, err := s.products.GetBySlug(r.Context(), slug)
	if err != nil {
		writeErr(w, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		vars, err := s.products.ListVariants(r.Context(), p.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"variants": vars})
	case http.MethodPost:
		var in struct {
			Size  string  `json:"size"`
			Color string  `json:"color"`
			SKU   string  `json:"sku"`
			Price float64 `json:"price"`
			Stock int     `json:"stock"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, fmt.Errorf("json inválido: %w", domain.ErrInvalidData))
			return
		}
		v := &domain.Variant{
			ProductID: p.ID,
			Size:      in.Size,
			Color:     in.Color,
			SKU:       in.SKU,
			Price:     in.Price,
			Stock:     in.Stock,
		}
		if err := s.products.CreateVariant(r.Context(), v); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, v)
	default:
		http.Error(w, "method", 405)
	}
}

// apiAdminCatalogExport arma un XLSX con el catálogo completo, una fila por
// variante.
func (s *Server) apiAdminCatalogExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	items, err := s.products.Products.ListAll(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}

	f := excelize.NewFile()
	sheet := "Catalogo"
	f.SetSheetName("Sheet1", sheet)
	headers := []string{"Producto", "Slug", "Categoría", "Marca", "Talle", "Color", "SKU", "Precio", "Stock", "Estilos", "Colores", "Ocasiones"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for i := range items {
		p := &items[i]
		styles := strings.Join(p.MetadataList(domain.MetaStyleTags), ",")
		colors := strings.Join(p.MetadataList(domain.MetaColorTags), ",")
		occasions := strings.Join(p.MetadataList(domain.MetaOccasionTags), ",")
		writeRow := func(v *domain.Variant) {
			values := []any{p.Name, p.Slug, p.Category, p.Brand}
			if v != nil {
				price := v.Price
				if price == 0 {
					price = p.BasePrice
				}
				values = append(values, v.Size, v.Color, v.SKU, price, v.Stock)
			} else {
				values = append(values, "", "", "", p.BasePrice, 0)
			}
			values = append(values, styles, colors, occasions)
			for col, val := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(sheet, cell, val)
			}
			row++
		}
		if len(p.Variants) == 0 {
			writeRow(nil)
			continue
		}
		for j := range p.Variants {
			writeRow(&p.Variants[j])
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="catalogo.xlsx"`)
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("exportando catálogo")
	}
}

// apiAdminCatalogTag corre el etiquetado del catálogo con OpenAI y persiste la
// metadata resultante.
func (s *Server) apiAdminCatalogTag(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if s.tagger == nil {
		http.Error(w, "tagger no configurado", 500)
		return
	}
	items, err := s.products.Products.ListAll(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	ptrs := make([]*domain.Product, 0, len(items))
	for i := range items {
		ptrs = append(ptrs, &items[i])
	}
	tagged, err := s.tagger.TagProducts(r.Context(), ptrs)
	if err != nil {
		writeErr(w, err)
		return
	}
	updated := 0
	for i := range items {
		meta, ok := tagged[items[i].Slug]
		if !ok {
			continue
		}
		if items[i].Metadata == nil {
			items[i].Metadata = map[string]string{}
		}
		for k, v := range meta {
			items[i].Metadata[k] = v
		}
		if err := s.products.Update(r.Context(), &items[i]); err != nil {
			log.Warn().Err(err).Str("slug", items[i].Slug).Msg("guardando etiquetas")
			continue
		}
		updated++
	}
	writeJSON(w, 200, map[string]any{"tagged": len(tagged), "updated": updated})
}
