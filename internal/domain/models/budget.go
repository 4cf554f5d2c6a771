package models

import "tripplanner/internal/domain"

// BudgetEnvelope is the whole-trip amount allotted to one category.
type BudgetEnvelope struct {
	Category    domain.Category `json:"category"`
	Amount      int64           `json:"amount"`
	BasisPoints int             `json:"basis_points"`
	Percent     float64         `json:"percent"`
}

// BudgetAllocation is the allocator output for one request.
type BudgetAllocation struct {
	Total           int64            `json:"total"`
	NumPeople       int              `json:"num_people"`
	DurationDays    int              `json:"duration_days"`
	Style           domain.Style     `json:"style"`
	Envelopes       []BudgetEnvelope `json:"envelopes"`
	PerPersonPerDay int64            `json:"per_person_per_day"`
	MinimumViable   int64            `json:"minimum_viable"`
}

// Amount returns the envelope amount for a category, zero when absent.
func (a BudgetAllocation) Amount(c domain.Category) int64 {
	for _, e := range a.Envelopes {
		if e.Category == c {
			return e.Amount
		}
	}
	return 0
}

// Sum adds every envelope amount.
func (a BudgetAllocation) Sum() int64 {
	var total int64
	for _, e := range a.Envelopes {
		total += e.Amount
	}
	return total
}
