package http

import (
	"errors"
	"net/http"

	"spendscan/internal/core"
)

type (
	parseRequest struct {
		Text string `json:"text"`
	}

	scanRequest struct {
		Text    string  `json:"text"`
		Receipt *string `json:"receipt,omitempty"`
	}
)

// handleParseReceipt returns the draft extracted from OCR text without storing it.
func (s *Server) handleParseReceipt(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	draft := s.service.ParseReceipt(r.Context(), req.Text)
	s.structured.LogReceiptParsed(r.Context(), "", draft)
	NewResponse().JSON(draft).Write(w)
}

// handleScanReceipt queues a scan, or stores its draft when it was processed inline.
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if req.Receipt != nil {
		ref := sanitizeInput(*req.Receipt)
		req.Receipt = &ref
		if ref == "" {
			req.Receipt = nil
		}
	}

	res, err := s.service.SubmitScan(r.Context(), req.Text, req.Receipt)
	if err != nil {
		errorResponse(r, err).Write(w)
		return
	}

	if res.Queued {
		NewResponse().Status(http.StatusAccepted).JSON(res).Write(w)
		return
	}
	s.structured.LogReceiptParsed(r.Context(), res.ScanID, res.Draft.Draft)
	NewResponse().Status(http.StatusCreated).
		Header("Location", "/api/drafts/"+res.ScanID).
		JSON(res).Write(w)
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.service.ListDrafts(r.Context())
	if err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	NewResponse().JSON(drafts).Write(w)
}

// handleConfirmDraft turns a reviewed draft into an expense. The body holds
// optional edits and may be empty.
func (s *Server) handleConfirmDraft(w http.ResponseWriter, r *http.Request) {
	var edits core.ExpenseUpdate
	if err := decodeJSON(w, r, &edits); err != nil && !errors.Is(err, errEmptyBody) {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := sanitizeUpdate(&edits); err != nil {
		errorResponse(r, err).Write(w)
		return
	}

	expense, err := s.service.ConfirmDraft(r.Context(), r.PathValue("id"), edits)
	if err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	s.structured.LogExpenseCreated(r.Context(), expense)
	NewResponse().Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+expense.ID).
		JSON(expense).Write(w)
}

func (s *Server) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DiscardDraft(r.Context(), r.PathValue("id")); err != nil {
		errorResponse(r, err).Write(w)
		return
	}
	NewResponse().Status(http.StatusNoContent).Write(w)
}
