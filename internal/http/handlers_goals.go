package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finwise/internal/storage"
)

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	g, err := req.toDomain(uid)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid goal", err)
		return
	}

	saved, err := s.repo.CreateGoal(r.Context(), g)
	if err != nil {
		slog.ErrorContext(r.Context(), "Goal create failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "could not create goal", err)
		return
	}

	writeJSON(w, http.StatusCreated, toGoalResponse(saved))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	goals, err := s.repo.ListGoals(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list goals", err)
		return
	}

	out := make([]goalResponse, len(goals))
	for i, g := range goals {
		out[i] = toGoalResponse(g)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
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

	g, err := s.repo.GetGoal(r.Context(), uid, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goal not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load goal", err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
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

	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	g, err := req.toDomain(uid)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid goal", err)
		return
	}
	g.ID = id

	// Reaching the target through an update flags the goal achieved, same as
	// the allocator would.
	if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		g.Achieved = true
	}

	updated, err := s.repo.UpdateGoal(r.Context(), g)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goal not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not update goal", err)
		return
	}

	writeJSON(w, http.StatusOK, toGoalResponse(updated))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
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

	err = s.repo.DeleteGoal(r.Context(), uid, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "goal not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete goal", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
