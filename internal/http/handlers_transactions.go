package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"finwise/internal/storage"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	tx, err := req.toDomain(uid, s.reportingCurrency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction", err)
		return
	}

	saved, err := s.txService.Create(r.Context(), tx)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "could not create transaction", err)
		return
	}

	s.summaryCache.Delete(uid)
	writeJSON(w, http.StatusCreated, toTransactionResponse(saved))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	txs, err := s.repo.ListTransactions(r.Context(), uid)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction list failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "could not list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id", err)
		return
	}

	tx, err := s.repo.GetTransaction(r.Context(), uid, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id", err)
		return
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	tx, err := req.toDomain(uid, s.reportingCurrency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction", err)
		return
	}
	tx.ID = id

	updated, err := s.repo.UpdateTransaction(r.Context(), tx)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found", err)
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction update failed", "user_id", uid, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "could not update transaction", err)
		return
	}

	s.summaryCache.Delete(uid)
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id", err)
		return
	}

	err = s.repo.DeleteTransaction(r.Context(), uid, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete transaction", err)
		return
	}

	s.summaryCache.Delete(uid)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpcomingRecurring(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	txs, err := s.repo.ListRecurringTransactions(r.Context(), uid, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list recurring transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}
