package http

import (
	"net/http"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", err)
		return
	}

	notifications, err := s.repo.ListNotifications(r.Context(), uid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not list notifications", err)
		return
	}

	out := make([]notificationResponse, len(notifications))
	for i, n := range notifications {
		out[i] = toNotificationResponse(n)
	}
	writeJSON(w, http.StatusOK, out)
}
