package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phenrril/modaviva/internal/domain"
)

// SizingUC owns body measurements and size recommendation on top of the
// static size chart.
type SizingUC struct {
	Products     domain.ProductRepo
	Measurements domain.MeasurementRepo
	Chart        domain.SizeChart
}

// MeasurementInput mirrors BodyMeasurement; nil fields are left untouched on
// update and absent on create.
type MeasurementInput struct {
	Height        *float64 `json:"height"`
	Weight        *float64 `json:"weight"`
	Bust          *float64 `json:"bust"`
	Waist         *float64 `json:"waist"`
	Hips          *float64 `json:"hips"`
	ShoulderWidth *float64 `json:"shoulder_width"`
	Inseam        *float64 `json:"inseam"`
}

func (in MeasurementInput) validate() error {
	check := func(name string, v *float64) error {
		if v == nil {
			return nil
		}
		b := domain.MeasurementBounds[name]
		if *v < b.Min || *v > b.Max {
			return fmt.Errorf("%s fuera de rango (%.0f-%.0f): %w", name, b.Min, b.Max, domain.ErrInvalidData)
		}
		return nil
	}
	for _, c := range []struct {
		name string
		v    *float64
	}{
		{"height", in.Height}, {"weight", in.Weight}, {"bust", in.Bust},
		{"waist", in.Waist}, {"hips", in.Hips},
		{"shoulder_width", in.ShoulderWidth}, {"inseam", in.Inseam},
	} {
		if err := check(c.name, c.v); err != nil {
			return err
		}
	}
	return nil
}

func (in MeasurementInput) apply(m *domain.BodyMeasurement) {
	if in.Height != nil {
		m.Height = in.Height
	}
	if in.Weight != nil {
		m.Weight = in.Weight
	}
	if in.Bust != nil {
		m.Bust = in.Bust
	}
	if in.Waist != nil {
		m.Waist = in.Waist
	}
	if in.Hips != nil {
		m.Hips = in.Hips
	}
	if in.ShoulderWidth != nil {
		m.ShoulderWidth = in.ShoulderWidth
	}
	if in.Inseam != nil {
		m.Inseam = in.Inseam
	}
}

// Upsert creates or updates the customer's measurement set. With create set,
// an existing record is a duplicate error; without it, missing is not.
func (uc *SizingUC) Upsert(ctx context.Context, customerID uuid.UUID, in MeasurementInput, create bool) (*domain.BodyMeasurement, error) {
	if customerID == uuid.Nil {
		return nil, fmt.Errorf("customer id: %w", domain.ErrInvalidData)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := uc.Measurements.FindByCustomer(ctx, customerID)
	switch {
	case err == nil:
		if create {
			return nil, fmt.Errorf("las medidas ya existen: %w", domain.ErrDuplicate)
		}
		in.apply(existing)
		existing.UpdatedAt = time.Now()
		if err := uc.Measurements.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, domain.ErrNotFound):
		m := &domain.BodyMeasurement{ID: uuid.New(), CustomerID: customerID}
		in.apply(m)
		if err := uc.Measurements.Save(ctx, m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, err
	}
}

func (uc *SizingUC) Get(ctx context.Context, customerID uuid.UUID) (*domain.BodyMeasurement, error) {
	return uc.Measurements.FindByCustomer(ctx, customerID)
}

// RecommendForProduct scores the product's available sizes against the chart.
// When the caller supplies no measurements, the customer's stored set is used.
func (uc *SizingUC) RecommendForProduct(ctx context.Context, vocab domain.Vocabulary, productID, customerID uuid.UUID, measurements map[string]float64) (*domain.SizeRecommendation, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id: %w", domain.ErrInvalidData)
	}
	p, err := uc.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	sizes := p.SizeLabels()
	if len(sizes) == 0 {
		return nil, fmt.Errorf("producto sin talles: %w", domain.ErrNotFound)
	}

	if len(measurements) == 0 && customerID != uuid.Nil {
		stored, err := uc.Measurements.FindByCustomer(ctx, customerID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if stored != nil {
			measurements = stored.Fields()
		}
	}

	category := vocab.InferProductType(p)
	return domain.RecommendSize(uc.Chart, category, measurements, sizes)
}
