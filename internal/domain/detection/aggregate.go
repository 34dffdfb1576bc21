package detection

import (
	"fmt"
	"strings"
)

// Aggregation is the structured outcome of one provider response
// matched against a candidate SKU set. It is a pure value; persistence
// wraps it in a Result.
type Aggregation struct {
	Matches      []SKUMatch
	MissingSKUs  []CandidateSKU
	ShareOfShelf ShareOfShelf
	Summary      string
}

// Aggregate turns a raw provider response and the tenant's candidate
// SKU set into a structured result. It is deterministic and performs
// no I/O: identical inputs always produce an identical Aggregation.
//
// Detections below the confidence threshold are discarded entirely.
// Every surviving detection counts toward the total shelf area; only
// those attributed to a candidate SKU count toward the trained area.
// Attribution is case-insensitive exact match between the provider
// label and the SKU name. Matches and missing SKUs keep candidate
// order; the category breakdown keeps first-appearance order.
//
// The threshold arrives already validated by the configuration
// boundary; Aggregate applies it as given.
func Aggregate(raw []RawDetection, candidates []CandidateSKU, confidenceThreshold float64) Aggregation {
	byLabel := make(map[string]int, len(candidates))
	for i, c := range candidates {
		key := normalizeLabel(c.Name)
		if _, taken := byLabel[key]; !taken {
			byLabel[key] = i
		}
	}

	matches := make([]SKUMatch, len(candidates))
	for i, c := range candidates {
		matches[i] = SKUMatch{
			SKUID:    c.ID,
			Name:     c.Name,
			Category: c.Category,
		}
	}

	var totalArea float64
	trainedAreas := make([]float64, len(candidates))

	for _, d := range raw {
		if d.Confidence < confidenceThreshold {
			continue
		}
		area := d.Box.Area()
		totalArea += area

		idx, ok := byLabel[normalizeLabel(d.Label)]
		if !ok {
			continue
		}
		m := &matches[idx]
		m.IsAvailable = true
		m.Facings++
		if d.Confidence > m.Confidence {
			m.Confidence = d.Confidence
			m.Box = d.Box
		}
		trainedAreas[idx] += area
	}

	matched := make([]SKUMatch, 0, len(candidates))
	missing := make([]CandidateSKU, 0)
	var trainedArea float64
	categoryOrder := make([]string, 0)
	categoryAreas := make(map[string]float64)

	for i, m := range matches {
		if !m.IsAvailable {
			missing = append(missing, candidates[i])
			continue
		}
		matched = append(matched, m)
		trainedArea += trainedAreas[i]
		if _, seen := categoryAreas[m.Category]; !seen {
			categoryOrder = append(categoryOrder, m.Category)
		}
		categoryAreas[m.Category] += trainedAreas[i]
	}

	shelf := ShareOfShelf{
		TotalShelfArea:      totalArea,
		TrainedProductsArea: trainedArea,
		Percentage:          shelfPercentage(trainedArea, totalArea),
		Categories:          make([]CategoryShare, 0, len(categoryOrder)),
	}
	for _, cat := range categoryOrder {
		shelf.Categories = append(shelf.Categories, CategoryShare{
			Category:   cat,
			Area:       categoryAreas[cat],
			Percentage: shelfPercentage(categoryAreas[cat], totalArea),
		})
	}

	return Aggregation{
		Matches:      matched,
		MissingSKUs:  missing,
		ShareOfShelf: shelf,
		Summary: fmt.Sprintf("%d of %d SKUs detected, %d missing, share of shelf %.1f%%",
			len(matched), len(candidates), len(missing), shelf.Percentage),
	}
}

// shelfPercentage computes area/total as a percentage clamped to
// [0, 100]. Overlapping boxes can push the trained area past the
// total, so the clamp is load-bearing. A zero total yields 0.
func shelfPercentage(area, total float64) float64 {
	if total <= 0 {
		return 0
	}
	pct := area / total * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
