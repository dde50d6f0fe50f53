package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"spendscan/internal/core"
)

type (
	incomeRequest struct {
		MonthlyIncome decimal.Decimal `json:"monthlyIncome"`
	}

	allocationRequest struct {
		Percent decimal.Decimal `json:"percent"`
	}
)

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	overview, err := s.service.Budgets(r.Context())
	if err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	NewResponse().JSON(overview).Write(w)
}

// handleSetIncome stores the monthly income and returns the recomputed budgets.
func (s *Server) handleSetIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := s.service.SetMonthlyIncome(r.Context(), req.MonthlyIncome); err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	s.handleBudgets(w, r)
}

// handleSetAllocation stores one category's share of income and returns the
// recomputed budgets.
func (s *Server) handleSetAllocation(w http.ResponseWriter, r *http.Request) {
	var req allocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	category := core.Category(r.PathValue("category"))
	if err := s.service.SetAllocation(r.Context(), category, req.Percent); err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	s.handleBudgets(w, r)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.service.Dashboard(r.Context())
	if err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	NewResponse().JSON(dash).Write(w)
}

// handleReport summarises ?from=&to=; without either bound it covers the last 30 days.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDateParam(q, "from")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	to, err := parseDateParam(q, "to")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if !from.IsZero() && !to.IsZero() && from.After(to.Time) {
		BadRequestError("from must not be after to").Write(w)
		return
	}

	report, err := s.service.Report(r.Context(), from, to)
	if err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	NewResponse().JSON(report).Write(w)
}
