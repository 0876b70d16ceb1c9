package http

import (
	"net/http"

	"sendbox-backend/internal/domain"
)

type notificationListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int32                 `json:"total"`
	Page          int32                 `json:"page"`
	PageSize      int32                 `json:"page_size"`
}

func (s *Server) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	notifications, total, err := s.notifications.GetNotifications(r.Context(), callerID(r), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notificationListResponse{
		Notifications: notifications,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
	})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid notification id")
		return
	}
	if err := s.notifications.MarkAsRead(r.Context(), callerID(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
