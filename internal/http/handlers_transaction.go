package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"expensek/internal/core"
	applog "expensek/internal/log"
)

// handleCreateTransaction records a transaction posted by the dashboard form.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if s.deps.Recorder == nil {
		http.Error(w, "recording not available", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid form").Write(w)
		return
	}

	t, err := parseTransactionForm(r)
	if err != nil {
		logger.WarnContext(ctx, "Invalid transaction form", applog.FieldError, err)
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	saved, err := s.deps.Recorder.Record(ctx, t)
	if err != nil {
		if isValidationError(err) {
			UnprocessableEntityError(err.Error()).Write(w)
			return
		}
		logger.ErrorContext(ctx, "Failed to record transaction",
			applog.NewFields().WithOperation(applog.OpCreate).WithError(err).ToSlice()...)
		InternalServerError("Could not save the transaction").
			TriggerErrorNotification("Could not save the transaction").
			Write(w)
		return
	}

	logger.InfoContext(ctx, "Transaction recorded",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithTransaction(saved.ID, saved.Date.Format("2006-01-02"), saved.Amount, saved.CategoryID).
			ToSlice()...)

	NewHTMXResponse().
		TriggerTransactionCreated(saved.ID, saved.Date).
		TriggerFormReset().
		TriggerDashboardRefresh().
		TriggerSuccessNotification("Transaction saved").
		BodyHTML(fmt.Sprintf(`<div class="success">Saved %s on %s</div>`,
			s.deps.Formatter.Format(saved.Amount), saved.Date.Format("2006-01-02"))).
		Write(w)
}

func parseTransactionForm(r *http.Request) (core.Transaction, error) {
	date, err := parseDate(sanitizeInput(r.FormValue("date")))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: use YYYY-MM-DD", core.ErrInvalidDate)
	}
	amount, err := strconv.ParseInt(sanitizeInput(r.FormValue("amount")), 10, 64)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: must be a whole number", core.ErrInvalidAmount)
	}
	var categoryID int64
	if raw := sanitizeInput(r.FormValue("category_id")); raw != "" {
		categoryID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || categoryID < 0 {
			return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrUnknownCategory, raw)
		}
	}
	return core.Transaction{
		Date:       date,
		Amount:     amount,
		CategoryID: categoryID,
		Note:       sanitizeInput(r.FormValue("note")),
	}, nil
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrNoteTooLong) ||
		errors.Is(err, core.ErrUnknownCategory)
}
