package http

import (
	"context"
	"net/http"
	"time"

	"expensek/internal/core"
	"expensek/internal/dashboard"
	applog "expensek/internal/log"
)

type dashboardPage struct {
	View       dashboard.View
	Categories []core.Category
	Today      string
}

// handleIndex renders the dashboard page. A failed build answers 500 and
// never renders a partial view.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()
	logger := applog.FromContext(ctx)

	view, ok := s.buildDashboard(ctx, w)
	if !ok {
		return
	}

	page := dashboardPage{View: view, Today: time.Now().Format("2006-01-02")}
	if s.deps.Categories != nil {
		cats, err := s.deps.Categories.ListCategories(ctx)
		if err != nil {
			logger.WarnContext(ctx, "Failed to list categories for form", applog.FieldError, err)
		}
		page.Categories = cats
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard_page", page); err != nil {
		logger.ErrorContext(ctx, "Dashboard template execution failed", applog.FieldError, err)
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

// handleDashboardAPI returns the view as JSON for the client side charts.
func (s *Server) handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	view, ok := s.buildDashboard(ctx, w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleCategories lists the categories offered by the transaction form.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	if s.deps.Categories == nil {
		writeJSON(w, http.StatusOK, []core.Category{})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	cats, err := s.deps.Categories.ListCategories(ctx)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to list categories", applog.FieldError, err)
		http.Error(w, "categories unavailable", http.StatusInternalServerError)
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) buildDashboard(ctx context.Context, w http.ResponseWriter) (dashboard.View, bool) {
	logger := applog.FromContext(ctx)
	if s.deps.Dashboard == nil {
		http.Error(w, "dashboard unavailable", http.StatusServiceUnavailable)
		return dashboard.View{}, false
	}
	start := time.Now()
	view, err := s.deps.Dashboard.Build(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to build dashboard",
			applog.NewFields().WithOperation(applog.OpRender).WithError(err).ToSlice()...)
		http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
		return dashboard.View{}, false
	}
	fields := applog.NewFields().
		WithOperation(applog.OpRender).
		WithTotals(view.TotalIncome, view.TotalExpense, view.Balance).
		ToSlice()
	fields = append(fields, applog.FieldDuration, time.Since(start).Milliseconds())
	logger.DebugContext(ctx, "Dashboard built", fields...)
	return view, true
}
