package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finwise/internal/storage"
)

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	b, err := req.toDomain(uid)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget", err)
		return
	}

	saved, err := s.repo.CreateBudget(r.Context(), b)
	if err != nil {
		slog.ErrorContext(r.Context(), "Budget create failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "could not create budget", err)
		return
	}

	writeJSON(w, http.StatusCreated, toBudgetResponse(saved))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	budgets, err := s.repo.ListBudgets(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list budgets", err)
		return
	}

	out := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = toBudgetResponse(b)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
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

	b, err := s.repo.GetBudget(r.Context(), uid, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "budget not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load budget", err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
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

	var req budgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	b, err := req.toDomain(uid)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget", err)
		return
	}
	b.ID = id

	updated, err := s.repo.UpdateBudget(r.Context(), b)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "budget not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not update budget", err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetResponse(updated))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
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

	err = s.repo.DeleteBudget(r.Context(), uid, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "budget not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete budget", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
