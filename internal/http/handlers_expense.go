package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"spendscan/internal/core"
)

// expenseRequest is the body of POST /api/expenses. A missing date means today.
type expenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    core.Category   `json:"category"`
	Date        core.Date       `json:"date"`
	Receipt     *string         `json:"receipt,omitempty"`
}

type categoryInfo struct {
	Name  core.Category `json:"name"`
	Color string        `json:"color"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseExpenseFilter(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	expenses, err := s.service.ListExpenses(r.Context(), filter)
	if err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	NewResponse().JSON(expenses).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if req.Date.IsZero() {
		req.Date = core.DateOf(time.Now())
	}

	desc := sanitizeInput(req.Description)
	if err := core.ValidateEnteredDescription(desc); err != nil {
		errorResponse(r, err).Write(w)
		return
	}

	e := core.Expense{
		Amount:      req.Amount,
		Description: desc,
		Category:    req.Category,
		Date:        req.Date,
		Receipt:     req.Receipt,
	}
	created, err := s.service.CreateExpense(r.Context(), e)
	if err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	s.structured.LogExpenseCreated(r.Context(), created)
	NewResponse().Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+created.ID).
		JSON(created).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.service.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	NewResponse().JSON(e).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var u core.ExpenseUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if u.IsEmpty() {
		BadRequestError("no fields to update").Write(w)
		return
	}
	if err := sanitizeUpdate(&u); err != nil {
		errorResponse(r, err).Write(w)
		return
	}

	e, err := s.service.UpdateExpense(r.Context(), r.PathValue("id"), u)
	if err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	NewResponse().JSON(e).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}

// handleExportCSV writes the filtered expense list as a CSV download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseExpenseFilter(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	// Buffer so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := s.service.ExportCSV(r.Context(), &buf, filter); err != nil {
		errorResponse(r, err).Write(w)
		return
	}

	filename := fmt.Sprintf("expenses-%s.csv", core.DateOf(time.Now()))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := core.Categories()
	out := make([]categoryInfo, len(cats))
	for i, c := range cats {
		out[i] = categoryInfo{Name: c, Color: c.Color()}
	}
	NewResponse().JSON(out).Write(w)
}

// sanitizeUpdate cleans user-entered fields in place and rejects overlong
// descriptions.
func sanitizeUpdate(u *core.ExpenseUpdate) error {
	if u.Receipt != nil {
		ref := sanitizeInput(*u.Receipt)
		u.Receipt = &ref
	}
	if u.Description != nil {
		d := sanitizeInput(*u.Description)
		u.Description = &d
		return core.ValidateEnteredDescription(d)
	}
	return nil
}
