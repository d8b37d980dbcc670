package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finwise/internal/export"
)

// Reporting endpoints are best effort: once the transactions load, rate
// trouble degrades individual conversions instead of failing the request.

func (s *Server) handleSpendingTrend(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	filter, granularity, err := parseReportQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report query", err)
		return
	}

	txs, err := s.repo.ListTransactions(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Trend report load failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load transactions", err)
		return
	}

	points := s.aggregator.BuildTrendReport(r.Context(), txs, filter, granularity, s.reportingCurrency)
	writeJSON(w, http.StatusOK, toTrendPointResponses(points))
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	if cached, ok := s.summaryCache.Get(uid); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	txs, err := s.repo.ListTransactions(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard summary load failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "could not load transactions", err)
		return
	}

	summary := s.aggregator.BuildDashboardSummary(r.Context(), txs, s.reportingCurrency)
	resp := toSummaryResponse(summary)
	s.summaryCache.Set(uid, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrendExport(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		writeError(w, http.StatusBadRequest, "invalid format", fmt.Errorf("format must be csv or pdf, got %q", format))
		return
	}

	filter, granularity, err := parseReportQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid report query", err)
		return
	}

	txs, err := s.repo.ListTransactions(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load transactions", err)
		return
	}

	points := s.aggregator.BuildTrendReport(r.Context(), txs, filter, granularity, s.reportingCurrency)
	filename := fmt.Sprintf("spending-trend-%s.%s", time.Now().Format("2006-01-02"), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		err = export.WriteCSV(w, points, s.reportingCurrency)
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		err = export.WritePDF(w, points, s.reportingCurrency)
	}
	if err != nil {
		// Headers are already out; log and cut the response short.
		slog.ErrorContext(r.Context(), "Trend export failed",
			"user_id", uid,
			"format", format,
			"error", err)
	}
}
