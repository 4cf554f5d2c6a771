package handlers

import (
	"net/http"

	"tripplanner/internal/domain"
	"tripplanner/internal/services"

	"github.com/gin-gonic/gin"
)

type allocateRequest struct {
	BudgetPKR    int64  `json:"budget_pkr"`
	NumPeople    int    `json:"num_people"`
	DurationDays int    `json:"duration_days"`
	Style        string `json:"style"`
	Destination  string `json:"destination"`
}

// POST /api/budget/allocate
func AllocateBudget(c *gin.Context) {
	var req allocateRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	style, ok := domain.ParseStyle(req.Style)
	if !ok {
		RespondDomainError(c, domain.ValidationError{Field: "style", Msg: "must be one of budget, comfort, adventure, luxury"})
		return
	}
	allocator := services.BudgetAllocator{Catalog: current().Catalog}
	alloc, err := allocator.Allocate(req.BudgetPKR, req.NumPeople, req.DurationDays, style, req.Destination)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, alloc)
}
