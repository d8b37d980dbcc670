package http

import (
	"errors"
	"log/slog"
	"net/http"

	"finwise/internal/storage"
)

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	var req paymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	p, err := req.toDomain(uid)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment", err)
		return
	}

	saved, err := s.repo.CreatePayment(r.Context(), p)
	if err != nil {
		slog.ErrorContext(r.Context(), "Payment create failed", "user_id", uid, "error", err)
		writeError(w, http.StatusInternalServerError, "could not create payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentResponse(saved))
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	payments, err := s.repo.ListPayments(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list payments", err)
		return
	}

	out := make([]paymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toPaymentResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
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

	p, err := s.repo.GetPayment(r.Context(), uid, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "payment not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load payment", err)
		return
	}

	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
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

	var req paymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err)
		return
	}

	p, err := req.toDomain(uid)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment", err)
		return
	}
	p.ID = id

	updated, err := s.repo.UpdatePayment(r.Context(), p)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "payment not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not update payment", err)
		return
	}

	writeJSON(w, http.StatusOK, toPaymentResponse(updated))
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
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

	err = s.repo.DeletePayment(r.Context(), uid, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "payment not found", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not delete payment", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
