package domain

import (
	"fmt"
	"sort"
)

// MeasurementRange is an inclusive [Min, Max] band in cm.
type MeasurementRange struct {
	Min float64
	Max float64
}

// SizeChart maps garment category → size label → measurement field → range.
// Immutable reference data, injected so it can be swapped in tests.
type SizeChart map[string]map[string]map[string]MeasurementRange

type SizeScore struct {
	Size       string  `json:"size"`
	Confidence float64 `json:"confidence"`
}

type SizeRecommendation struct {
	Category     string      `json:"garment_category"`
	Size         string      `json:"recommended_size"`
	Confidence   float64     `json:"confidence"`
	Alternatives []SizeScore `json:"alternative_sizes"`
}

const (
	// inRangeReward is the per-field score for a measurement inside the band.
	inRangeReward = 1.0
	// altInRangeReward caps alternative confidences below the winner's.
	altInRangeReward = 0.8
	// outOfRangeDecay scales the normalized distance outside the band.
	outOfRangeDecay = 0.5
	// fallbackConfidence applies when the chart has nothing to say.
	fallbackConfidence = 0.5
	maxAlternatives    = 2
)

// RecommendSize scores every available size against the chart and returns the
// best fit with up to two alternatives. Unknown categories fall back to the
// first available size at fallback confidence.
func RecommendSize(chart SizeChart, category string, measurements map[string]float64, availableSizes []string) (*SizeRecommendation, error) {
	if len(availableSizes) == 0 {
		return nil, fmt.Errorf("sin talles disponibles: %w", ErrNotFound)
	}

	bands, ok := chart[category]
	if !ok {
		return &SizeRecommendation{
			Category:   category,
			Size:       availableSizes[0],
			Confidence: fallbackConfidence,
		}, nil
	}

	best := 0
	bestConf := -1.0
	confidences := make([]float64, len(availableSizes))
	for i, size := range availableSizes {
		confidences[i] = scoreSize(bands[size], measurements, inRangeReward)
		// strict comparison keeps the first occurrence on ties
		if confidences[i] > bestConf {
			bestConf = confidences[i]
			best = i
		}
	}

	alts := make([]SizeScore, 0, len(availableSizes)-1)
	for i, size := range availableSizes {
		if i == best {
			continue
		}
		alts = append(alts, SizeScore{
			Size:       size,
			Confidence: scoreSize(bands[size], measurements, altInRangeReward),
		})
	}
	sort.SliceStable(alts, func(i, j int) bool { return alts[i].Confidence > alts[j].Confidence })
	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}

	return &SizeRecommendation{
		Category:     category,
		Size:         availableSizes[best],
		Confidence:   bestConf,
		Alternatives: alts,
	}, nil
}

// scoreSize averages the per-field scores over the fields the chart defines
// AND the caller supplied. A size absent from the chart, or one with no
// supplied fields, scores the fallback confidence rather than 0 or 1.
func scoreSize(bands map[string]MeasurementRange, measurements map[string]float64, reward float64) float64 {
	if len(bands) == 0 {
		return fallbackConfidence
	}
	total := 0.0
	count := 0
	for field, rng := range bands {
		v, ok := measurements[field]
		if !ok {
			continue
		}
		count++
		if v >= rng.Min && v <= rng.Max {
			total += reward
			continue
		}
		dist := rng.Min - v
		if v > rng.Max {
			dist = v - rng.Max
		}
		span := rng.Max - rng.Min
		if span <= 0 {
			continue
		}
		s := 1.0 - outOfRangeDecay*(dist/span)
		if s > 0 {
			total += s
		}
	}
	if count == 0 {
		return fallbackConfidence
	}
	return total / float64(count)
}

func band(min, max float64) MeasurementRange { return MeasurementRange{Min: min, Max: max} }

// DefaultSizeChart is the static reference standard for the store's garments.
// Shoes carry no measurement bands; shoe products take the unknown-category
// fallback.
func DefaultSizeChart() SizeChart {
	return SizeChart{
		"tops": {
			"XS": {"bust": band(76, 81), "waist": band(58, 63), "shoulder_width": band(36, 38), "height": band(150, 158)},
			"S":  {"bust": band(81, 86), "waist": band(63, 68), "shoulder_width": band(38, 40), "height": band(155, 163)},
			"M":  {"bust": band(86, 91), "waist": band(68, 73), "shoulder_width": band(40, 42), "height": band(160, 168)},
			"L":  {"bust": band(91, 97), "waist": band(73, 79), "shoulder_width": band(42, 44), "height": band(165, 173)},
			"XL": {"bust": band(97, 103), "waist": band(79, 86), "shoulder_width": band(44, 46), "height": band(170, 178)},
		},
		"bottoms": {
			"XS": {"waist": band(58, 63), "hips": band(83, 88), "inseam": band(70, 74), "height": band(150, 158)},
			"S":  {"waist": band(63, 68), "hips": band(88, 93), "inseam": band(72, 76), "height": band(155, 163)},
			"M":  {"waist": band(68, 73), "hips": band(93, 98), "inseam": band(74, 78), "height": band(160, 168)},
			"L":  {"waist": band(73, 79), "hips": band(98, 104), "inseam": band(76, 80), "height": band(165, 173)},
			"XL": {"waist": band(79, 86), "hips": band(104, 110), "inseam": band(78, 82), "height": band(170, 178)},
		},
		"dresses": {
			"XS": {"bust": band(78, 83), "waist": band(60, 65), "hips": band(85, 90), "height": band(150, 158)},
			"S":  {"bust": band(83, 88), "waist": band(65, 70), "hips": band(90, 95), "height": band(155, 163)},
			"M":  {"bust": band(88, 93), "waist": band(70, 75), "hips": band(95, 100), "height": band(160, 168)},
			"L":  {"bust": band(93, 99), "waist": band(75, 81), "hips": band(100, 106), "height": band(165, 173)},
			"XL": {"bust": band(99, 105), "waist": band(81, 88), "hips": band(106, 112), "height": band(170, 178)},
		},
	}
}

// MeasurementBounds are the sanity ranges enforced when a customer saves
// measurements. Values outside are rejected as invalid data.
var MeasurementBounds = map[string]MeasurementRange{
	"height":         band(100, 230),
	"weight":         band(25, 250),
	"bust":           band(40, 200),
	"waist":          band(40, 200),
	"hips":           band(40, 200),
	"shoulder_width": band(25, 70),
	"inseam":         band(40, 120),
}
