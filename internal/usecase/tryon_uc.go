package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phenrril/modaviva/internal/domain"
)

// TryOnUC drives the try-on request state machine:
// pending → processing → {completed | failed}.
type TryOnUC struct {
	TryOns     domain.TryOnRepo
	Products   domain.ProductRepo
	Customers  domain.CustomerRepo
	UserImages domain.UserImageRepo
	Storage    domain.FileStorage
	Downloader domain.ImageDownloader
	Generator  domain.TryOnGenerator
	Events     domain.EventPublisher
}

// Create validates every collaborator reference and persists a pending
// request. Nothing is generated here; the worker picks the request up from
// the tryon.generate topic.
func (uc *TryOnUC) Create(ctx context.Context, customerID, productID, userImageID uuid.UUID, opts domain.TryOnOptions) (*domain.TryOnRequest, error) {
	if customerID == uuid.Nil || productID == uuid.Nil || userImageID == uuid.Nil {
		return nil, fmt.Errorf("faltan referencias: %w", domain.ErrInvalidData)
	}
	if _, err := uc.Customers.FindByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("cliente: %w", err)
	}
	if _, err := uc.Products.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("producto: %w", err)
	}
	img, err := uc.UserImages.FindByID(ctx, userImageID)
	if err != nil {
		return nil, fmt.Errorf("imagen del cliente: %w", err)
	}
	if img.CustomerID != customerID {
		return nil, fmt.Errorf("la imagen pertenece a otro cliente: %w", domain.ErrNotAllowed)
	}

	t := &domain.TryOnRequest{
		ID:          uuid.New(),
		CustomerID:  customerID,
		ProductID:   productID,
		UserImageID: userImageID,
		Status:      domain.TryOnStatusPending,
	}
	if opts.Pose != "" {
		t.SetMeta(domain.TryOnMetaPose, opts.Pose)
	}
	if opts.Background != "" {
		t.SetMeta(domain.TryOnMetaBackground, opts.Background)
	}
	if err := uc.TryOns.Save(ctx, t); err != nil {
		return nil, err
	}
	if uc.Events != nil {
		uc.Events.Publish(domain.TopicTryOnGenerate, map[string]any{"id": t.ID.String()})
	}
	return t, nil
}

// StartGeneration moves a pending request through processing to a terminal
// state. The precondition check is the only error surfaced to the caller:
// any failure after the transition is captured on the record itself, because
// the triggering call is fire-and-forget and nobody is there to catch it.
func (uc *TryOnUC) StartGeneration(ctx context.Context, id uuid.UUID) (*domain.TryOnRequest, error) {
	t, err := uc.TryOns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.TryOnStatusPending {
		return nil, fmt.Errorf("el pedido está en estado %q, no pending: %w", t.Status, domain.ErrInvalidData)
	}

	t.Status = domain.TryOnStatusProcessing
	if err := uc.TryOns.Save(ctx, t); err != nil {
		return nil, err
	}
	uc.publishUpdated(t)

	resultPath, genErr := uc.generate(ctx, t)
	if genErr != nil {
		t.Status = domain.TryOnStatusFailed
		t.SetMeta(domain.TryOnMetaError, genErr.Error())
	} else {
		t.Status = domain.TryOnStatusCompleted
		t.ResultImagePath = resultPath
	}
	if err := uc.TryOns.Save(ctx, t); err != nil {
		return nil, err
	}
	uc.publishUpdated(t)
	return t, nil
}

func (uc *TryOnUC) generate(ctx context.Context, t *domain.TryOnRequest) (string, error) {
	if uc.Generator == nil || uc.Storage == nil {
		return "", fmt.Errorf("servicio de generación no configurado: %w", domain.ErrUnexpectedState)
	}

	img, err := uc.UserImages.FindByID(ctx, t.UserImageID)
	if err != nil {
		return "", fmt.Errorf("imagen del cliente: %w", err)
	}
	personData, err := uc.fetchRef(ctx, img.Path)
	if err != nil {
		return "", fmt.Errorf("descargando imagen del cliente: %w", err)
	}

	p, err := uc.Products.FindByID(ctx, t.ProductID)
	if err != nil {
		return "", fmt.Errorf("producto: %w", err)
	}
	garmentURL := p.PrimaryImageURL()
	if garmentURL == "" {
		return "", fmt.Errorf("el producto no tiene imagen: %w", domain.ErrNotFound)
	}
	garmentData, err := uc.fetchRef(ctx, garmentURL)
	if err != nil {
		return "", fmt.Errorf("descargando imagen del producto: %w", err)
	}

	opts := domain.TryOnOptions{
		Pose:       t.Metadata[domain.TryOnMetaPose],
		Background: t.Metadata[domain.TryOnMetaBackground],
	}
	result, err := uc.Generator.Generate(ctx, personData, garmentData, opts)
	if err != nil {
		return "", fmt.Errorf("generando imagen: %w", err)
	}

	filename := fmt.Sprintf("tryon_%s_%d.jpg", t.ID.String()[:8], time.Now().UnixNano())
	path, err := uc.Storage.SaveImage(ctx, filename, result)
	if err != nil {
		return "", fmt.Errorf("guardando resultado: %w", err)
	}
	return path, nil
}

// fetchRef resolves either an absolute URL (CDN product shots) or a storage
// reference (uploaded customer photos).
func (uc *TryOnUC) fetchRef(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		if uc.Downloader == nil {
			return nil, fmt.Errorf("downloader no configurado: %w", domain.ErrUnexpectedState)
		}
		return uc.Downloader.Fetch(ctx, ref)
	}
	return uc.Storage.FetchImage(ctx, ref)
}

func (uc *TryOnUC) publishUpdated(t *domain.TryOnRequest) {
	if uc.Events == nil {
		return
	}
	uc.Events.Publish(domain.TopicTryOnUpdated, map[string]any{
		"id":     t.ID.String(),
		"status": string(t.Status),
	})
}

// Requeue re-lanza la generación de un pedido propio que sigue en pending.
// El worker usa StartGeneration directo; esta entrada es la del handler HTTP
// y exige que el pedido pertenezca al cliente que lo pide.
func (uc *TryOnUC) Requeue(ctx context.Context, customerID, id uuid.UUID) (*domain.TryOnRequest, error) {
	t, err := uc.TryOns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.CustomerID != customerID {
		return nil, fmt.Errorf("el pedido pertenece a otro cliente: %w", domain.ErrNotAllowed)
	}
	return uc.StartGeneration(ctx, id)
}

// Retrieve enforces ownership: a customer can only see their own requests.
func (uc *TryOnUC) Retrieve(ctx context.Context, customerID, id uuid.UUID) (*domain.TryOnRequest, error) {
	t, err := uc.TryOns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.CustomerID != customerID {
		return nil, fmt.Errorf("el pedido pertenece a otro cliente: %w", domain.ErrNotAllowed)
	}
	return t, nil
}

func (uc *TryOnUC) ListForCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.TryOnRequest, error) {
	return uc.TryOns.ListByCustomer(ctx, customerID)
}

func (uc *TryOnUC) Delete(ctx context.Context, customerID, id uuid.UUID) error {
	t, err := uc.TryOns.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if t.CustomerID != customerID {
		return fmt.Errorf("el pedido pertenece a otro cliente: %w", domain.ErrNotAllowed)
	}
	return uc.TryOns.Delete(ctx, id)
}
