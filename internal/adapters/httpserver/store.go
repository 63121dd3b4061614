package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/modaviva/internal/domain"
	"github.com/phenrril/modaviva/internal/usecase"
)

const maxUploadBytes = 10 << 20

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("id inválido: %w", domain.ErrInvalidData)
	}
	return id, nil
}

// handleSizeRecommendation calcula el talle sugerido para un producto, con
// medidas del body o las guardadas del cliente.
func (s *Server) handleSizeRecommendation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var in struct {
		ProductID    string             `json:"product_id"`
		Measurements map[string]float64 `json:"measurements"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, fmt.Errorf("json inválido: %w", domain.ErrInvalidData))
		return
	}
	productID, err := parseID(in.ProductID)
	if err != nil {
		writeErr(w, err)
		return
	}

	customerID := uuid.Nil
	if len(in.Measurements) == 0 {
		cust, err := s.currentCustomer(r)
		if err != nil {
			writeErr(w, fmt.Errorf("sin medidas en el pedido y sin sesión: %w", domain.ErrInvalidData))
			return
		}
		customerID = cust.ID
	}

	rec, err := s.sizing.RecommendForProduct(r.Context(), s.vocab, productID, customerID, in.Measurements)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, rec)
}

func (s *Server) handleMeasurements(w http.ResponseWriter, r *http.Request) {
	cust, err := s.currentCustomer(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		m, err := s.sizing.Get(r.Context(), cust.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, m)
	case http.MethodPost, http.MethodPut:
		var in usecase.MeasurementInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, fmt.Errorf("json inválido: %w", domain.ErrInvalidData))
			return
		}
		m, err := s.sizing.Upsert(r.Context(), cust.ID, in, r.Method == http.MethodPost)
		if err != nil {
			writeErr(w, err)
			return
		}
		code := 200
		if r.Method == http.MethodPost {
			code = 201
		}
		writeJSON(w, code, m)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleStyleProfile(w http.ResponseWriter, r *http.Request) {
	cust, err := s.currentCustomer(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := s.styles.Get(r.Context(), cust.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, p)
	case http.MethodPost, http.MethodPut:
		var in usecase.StyleProfileInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, fmt.Errorf("json inválido: %w", domain.ErrInvalidData))
			return
		}
		p, err := s.styles.Upsert(r.Context(), cust.ID, in, r.Method == http.MethodPost)
		if err != nil {
			writeErr(w, err)
			return
		}
		code := 200
		if r.Method == http.MethodPost {
			code = 201
		}
		writeJSON(w, code, p)
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleStyleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	cust, err := s.currentCustomer(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	matches, err := s.styles.Recommendations(r.Context(), cust.ID, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	type matchView struct {
		Product productView `json:"product"`
		Score   float64     `json:"score"`
	}
	views := make([]matchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, matchView{Product: toProductView(&m.Product, false), Score: m.Score})
	}
	writeJSON(w, 200, map[string]any{"items": views})
}

type outfitView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	CustomerID  *uuid.UUID       `json:"customer_id,omitempty"`
	Items       []outfitItemView `json:"items"`
}

type outfitItemView struct {
	ProductID string `json:"product_id"`
	Position  int    `json:"position"`
	Name      string `json:"name,omitempty"`
	Slug      string `json:"slug,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

func toOutfitView(o *domain.Outfit) outfitView {
	v := outfitView{
		ID:          o.ID.String(),
		Name:        o.Name,
		Description: o.Description,
		CustomerID:  o.CustomerID,
		Items:       make([]outfitItemView, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, outfitItemView{
			ProductID: it.ProductID.String(),
			Position:  it.Position,
			Name:      it.Product.Name,
			Slug:      it.Product.Slug,
			ImageURL:  it.Product.PrimaryImageURL(),
		})
	}
	return v
}

func (s *Server) handleOutfits(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		f := domain.OutfitFilter{}
		f.Page, _ = strconv.Atoi(q.Get("page"))
		f.PageSize, _ = strconv.Atoi(q.Get("page_size"))
		if q.Get("mine") == "true" {
			cust, err := s.currentCustomer(r)
			if err != nil {
				writeErr(w, err)
				return
			}
			f.CustomerID = &cust.ID
		}
		items, total, err := s.outfits.List(r.Context(), f)
		if err != nil {
			writeErr(w, err)
			return
		}
		views := make([]outfitView, 0, len(items))
		for i := range items {
			views = append(views, toOutfitView(&items[i]))
		}
		writeJSON(w, 200, map[string]any{"items": views, "total": total})
	case http.MethodPost:
		cust, err := s.currentCustomer(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		var in usecase.OutfitInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, fmt.Errorf("json inválido: %w", domain.ErrInvalidData))
			return
		}
		o, err := s.outfits.Create(r.Context(), &cust.ID, in)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 201, toOutfitView(o))
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) handleRecommendedOutfits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	productID, err := parseID(r.URL.Query().Get("product_id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	outfits, err := s.outfits.RecommendedForProduct(r.Context(), productID, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	views := make([]outfitView, 0, len(outfits))
	for i := range outfits {
		views = append(views, toOutfitView(&outfits[i]))
	}
	writeJSON(w, 200, map[string]any{"items": views})
}

// handleOutfitByID rutea /store/outfits/{id}[/items|/suggestions].
func (s *Server) handleOutfitByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/store/outfits/"), "/")
	parts := strings.SplitN(rest, "/", 2)
	id, err := parseID(parts[0])
	if err != nil {
		writeErr(w, err)
		return
	}
	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch sub {
	case "":
		s.outfitByID(w, r, id)
	case "items":
		s.outfitItems(w, r, id)
	case "suggestions":
		s.outfitSuggestions(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) outfitByID(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		o, err := s.outfits.Get(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, toOutfitView(o))
	case http.MethodDelete:
		cust, err := s.currentCustomer(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := s.outfits.Delete(r.Context(), cust.ID, id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": id.String()})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) outfitItems(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	cust, err := s.currentCustomer(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	var in struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, fmt.Errorf("json inválido: %w", domain.ErrInvalidData))
		return
	}
	productID, err := parseID(in.ProductID)
	if err != nil {
		writeErr(w, err)
		return
	}

	var o *domain.Outfit
	switch r.Method {
	case http.MethodPost:
		o, err = s.outfits.AddProduct(r.Context(), cust.ID, id, productID)
	case http.MethodDelete:
		o, err = s.outfits.RemoveProduct(r.Context(), cust.ID, id, productID)
	default:
		http.Error(w, "method", 405)
		return
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, toOutfitView(o))
}

func (s *Server) outfitSuggestions(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if r.Method != http.MethodGet {
		http.Error(w, "method", 405)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	suggestions, err := s.outfits.SuggestProducts(r.Context(), id, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	type suggestionView struct {
		Product productView `json:"product"`
		Score   float64     `json:"score"`
	}
	views := make([]suggestionView, 0, len(suggestions))
	for _, sg := range suggestions {
		views = append(views, suggestionView{Product: toProductView(&sg.Product, false), Score: sg.Score})
	}
	writeJSON(w, 200, map[string]any{"items": views})
}

// handleUserImages recibe la foto del cliente por multipart y la guarda en el
// storage configurado.
func (s *Server) handleUserImages(w http.ResponseWriter, r *http.Request) {
	cust, err := s.currentCustomer(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		imgs, err := s.userImages.ListByCustomer(r.Context(), cust.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		type imgView struct {
			ID        string `json:"id"`
			URL       string `json:"url"`
			CreatedAt string `json:"created_at"`
		}
		views := make([]imgView, 0, len(imgs))
		for _, img := range imgs {
			url, err := s.storage.PublicURL(r.Context(), img.Path)
			if err != nil {
				url = ""
			}
			views = append(views, imgView{ID: img.ID.String(), URL: url, CreatedAt: img.CreatedAt.Format("2006-01-02T15:04:05Z07:00")})
		}
		writeJSON(w, 200, map[string]any{"items": views})
	case http.MethodPost:
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeErr(w, fmt.Errorf("multipart inválido: %w", domain.ErrInvalidData))
			return
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			writeErr(w, fmt.Errorf("falta el campo image: %w", domain.ErrInvalidData))
			return
		}
		defer file.Close()
		ct := header.Header.Get("Content-Type")
		if ct != "image/jpeg" && ct != "image/png" && ct != "image/webp" {
			writeErr(w, fmt.Errorf("formato de imagen no soportado: %w", domain.ErrInvalidData))
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
		if err != nil {
			writeErr(w, err)
			return
		}
		if len(data) > maxUploadBytes {
			writeErr(w, fmt.Errorf("imagen demasiado grande: %w", domain.ErrInvalidData))
			return
		}
		ref, err := s.storage.SaveImage(r.Context(), header.Filename, data)
		if err != nil {
			writeErr(w, err)
			return
		}
		img := &domain.UserImage{CustomerID: cust.ID, Path: ref, ContentType: ct}
		if err := s.userImages.Save(r.Context(), img); err != nil {
			writeErr(w, err)
			return
		}
		url, _ := s.storage.PublicURL(r.Context(), ref)
		writeJSON(w, 201, map[string]any{"id": img.ID.String(), "url": url})
	default:
		http.Error(w, "method", 405)
	}
}

type tryOnView struct {
	ID        string            `json:"id"`
	ProductID string            `json:"product_id"`
	Status    string            `json:"status"`
	ResultURL string            `json:"result_url,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt string            `json:"created_at"`
}

func (s *Server) toTryOnView(r *http.Request, t *domain.TryOnRequest) tryOnView {
	v := tryOnView{
		ID:        t.ID.String(),
		ProductID: t.ProductID.String(),
		Status:    string(t.Status),
		Metadata:  t.Metadata,
		CreatedAt: t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if t.Status == domain.TryOnStatusCompleted && t.ResultImagePath != "" {
		if url, err := s.storage.PublicURL(r.Context(), t.ResultImagePath); err == nil {
			v.ResultURL = url
		}
	}
	return v
}

func (s *Server) handleTryOns(w http.ResponseWriter, r *http.Request) {
	cust, err := s.currentCustomer(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		items, err := s.tryons.ListForCustomer(r.Context(), cust.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		views := make([]tryOnView, 0, len(items))
		for i := range items {
			views = append(views, s.toTryOnView(r, &items[i]))
		}
		writeJSON(w, 200, map[string]any{"items": views})
	case http.MethodPost:
		var in struct {
			ProductID   string `json:"product_id"`
			UserImageID string `json:"user_image_id"`
			Pose        string `json:"pose"`
			Background  string `json:"background"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeErr(w, fmt.Errorf("json inválido: %w", domain.ErrInvalidData))
			return
		}
		productID, err := parseID(in.ProductID)
		if err != nil {
			writeErr(w, err)
			return
		}
		imageID, err := parseID(in.UserImageID)
		if err != nil {
			writeErr(w, err)
			return
		}
		t, err := s.tryons.Create(r.Context(), cust.ID, productID, imageID, domain.TryOnOptions{
			Pose:       in.Pose,
			Background: in.Background,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		// 202: la generación corre en el worker, el cliente hace polling.
		writeJSON(w, 202, s.toTryOnView(r, t))
	default:
		http.Error(w, "method", 405)
	}
}

// handleTryOnByID rutea /store/virtual-try-on/{id}[/generate].
func (s *Server) handleTryOnByID(w http.ResponseWriter, r *http.Request) {
	cust, err := s.currentCustomer(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/store/virtual-try-on/"), "/")
	parts := strings.SplitN(rest, "/", 2)
	id, err := parseID(parts[0])
	if err != nil {
		writeErr(w, err)
		return
	}

	if len(parts) == 2 && parts[1] == "generate" {
		if r.Method != http.MethodPost {
			http.Error(w, "method", 405)
			return
		}
		// Reencolado manual: solo pedidos propios que sigan en pending.
		t, err := s.tryons.Requeue(r.Context(), cust.ID, id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, s.toTryOnView(r, t))
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := s.tryons.Retrieve(r.Context(), cust.ID, id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, s.toTryOnView(r, t))
	case http.MethodDelete:
		if err := s.tryons.Delete(r.Context(), cust.ID, id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"deleted": id.String()})
	default:
		http.Error(w, "method", 405)
	}
}
