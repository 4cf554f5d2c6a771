package services

import (
	"fmt"

	"tripplanner/internal/catalog"
	"tripplanner/internal/domain"
	"tripplanner/internal/domain/models"
	"tripplanner/internal/utils"
)

const totalBasisPoints = 10000

// MaxBudgetPKR caps a trip total so that envelope arithmetic in basis points
// stays inside int64.
const MaxBudgetPKR int64 = 1_000_000_000_000

type BudgetAllocator struct {
	Catalog *catalog.Catalog
}

// MinimumViable is the lowest total that can fund a trip: the style's daily
// per-person spend scaled by the destination cost factor, rounded up, for
// every person and day.
func (a BudgetAllocator) MinimumViable(numPeople, durationDays int, style domain.Style, destination string) (int64, error) {
	if err := a.checkParty(numPeople, durationDays); err != nil {
		return 0, err
	}
	dest, ok := a.Catalog.Destination(destination)
	if !ok {
		return 0, domain.ValidationError{Field: "destination", Msg: fmt.Sprintf("unsupported destination %q", destination)}
	}
	ppd, ok := a.Catalog.Budget.PerPersonPerDay[style]
	if !ok {
		return 0, domain.ValidationError{Field: "style", Msg: fmt.Sprintf("unsupported style %q", style)}
	}
	factor := int64(dest.CostFactorPct)
	daily := (ppd*factor + 99) / 100
	return daily * int64(numPeople) * int64(durationDays), nil
}

// Allocate splits a trip total into category envelopes inside the guardrails.
func (a BudgetAllocator) Allocate(total int64, numPeople, durationDays int, style domain.Style, destination string) (models.BudgetAllocation, error) {
	if total > MaxBudgetPKR {
		return models.BudgetAllocation{}, domain.ValidationError{
			Field:      "budget_pkr",
			Msg:        fmt.Sprintf("budget above the supported maximum %s", utils.FormatPKR(MaxBudgetPKR)),
			Suggestion: MaxBudgetPKR,
		}
	}
	floor, err := a.MinimumViable(numPeople, durationDays, style, destination)
	if err != nil {
		return models.BudgetAllocation{}, err
	}
	if total < floor {
		return models.BudgetAllocation{}, domain.ValidationError{
			Field:      "budget_pkr",
			Msg:        fmt.Sprintf("budget below the minimum viable %s for this trip", utils.FormatPKR(floor)),
			Suggestion: floor,
		}
	}

	bps, err := a.basisPoints(style)
	if err != nil {
		return models.BudgetAllocation{}, err
	}

	out := models.BudgetAllocation{
		Total:           total,
		NumPeople:       numPeople,
		DurationDays:    durationDays,
		Style:           style,
		PerPersonPerDay: total / int64(numPeople*durationDays),
		MinimumViable:   floor,
	}
	var spent int64
	for _, cat := range domain.SpendCategories {
		amount := total * int64(bps[cat]) / totalBasisPoints
		spent += amount
		out.Envelopes = append(out.Envelopes, envelope(cat, amount, bps[cat]))
	}
	out.Envelopes = append(out.Envelopes, envelope(domain.CategoryBuffer, total-spent, bps[domain.CategoryBuffer]))
	return out, nil
}

// checkParty bounds head count and length by catalog policy.
func (a BudgetAllocator) checkParty(numPeople, durationDays int) error {
	pol := a.Catalog.Policy
	if numPeople < 1 || numPeople > pol.MaxPeople {
		return domain.ValidationError{
			Field:      "num_people",
			Msg:        fmt.Sprintf("must be between 1 and %d", pol.MaxPeople),
			Suggestion: pol.MaxPeople,
		}
	}
	if durationDays < 1 || durationDays > pol.MaxDurationDays {
		return domain.ValidationError{
			Field:      "duration_days",
			Msg:        fmt.Sprintf("must be between 1 and %d days", pol.MaxDurationDays),
			Suggestion: pol.MaxDurationDays,
		}
	}
	return nil
}

func envelope(cat domain.Category, amount int64, bps int) models.BudgetEnvelope {
	return models.BudgetEnvelope{
		Category:    cat,
		Amount:      amount,
		BasisPoints: bps,
		Percent:     float64(bps) / 100,
	}
}

// basisPoints places each spend category in its guardrail by style, then
// scales the spend categories so that together with the buffer they total
// exactly 10000.
func (a BudgetAllocator) basisPoints(style domain.Style) (map[domain.Category]int, error) {
	guard := a.Catalog.Budget.Guardrails
	positions, ok := a.Catalog.Budget.StylePositions[style]
	if !ok {
		return nil, domain.ValidationError{Field: "style", Msg: fmt.Sprintf("unsupported style %q", style)}
	}
	buf, ok := guard[domain.CategoryBuffer]
	if !ok || buf.Min <= 0 {
		return nil, domain.InternalError{Msg: "budget guardrails: buffer minimum missing"}
	}

	raw := map[domain.Category]int{}
	var sum, sumLo, sumHi int
	for _, cat := range domain.SpendCategories {
		g, ok := guard[cat]
		if !ok {
			return nil, domain.InternalError{Msg: fmt.Sprintf("budget guardrails: %s missing", cat)}
		}
		raw[cat] = g.Min + (g.Max-g.Min)*positionStep(positions[cat])/2
		sum += raw[cat]
		sumLo += g.Min
		sumHi += g.Max
	}

	avail := totalBasisPoints - buf.Min
	if sumLo > avail || sumHi+buf.Max < totalBasisPoints {
		return nil, domain.InternalError{Msg: "budget guardrails cannot total 100%"}
	}

	out := map[domain.Category]int{}
	switch {
	case sum > avail:
		for _, cat := range domain.SpendCategories {
			lo := guard[cat].Min
			out[cat] = lo + (raw[cat]-lo)*(avail-sumLo)/(sum-sumLo)
		}
	default:
		surplus := avail - sum
		toBuffer := min(surplus, buf.Max-buf.Min)
		rest := surplus - toBuffer
		for _, cat := range domain.SpendCategories {
			out[cat] = raw[cat]
			if rest > 0 && sumHi > sum {
				out[cat] += (guard[cat].Max - raw[cat]) * rest / (sumHi - sum)
			}
		}
	}

	spend := 0
	for _, cat := range domain.SpendCategories {
		spend += out[cat]
	}
	buffer := totalBasisPoints - spend
	// rounding leftovers past the buffer cap go to categories with headroom
	for _, cat := range domain.SpendCategories {
		if buffer <= buf.Max {
			break
		}
		room := min(guard[cat].Max-out[cat], buffer-buf.Max)
		out[cat] += room
		buffer -= room
	}
	out[domain.CategoryBuffer] = buffer
	return out, nil
}

func positionStep(pos string) int {
	switch pos {
	case "low":
		return 0
	case "high":
		return 2
	default:
		return 1
	}
}
