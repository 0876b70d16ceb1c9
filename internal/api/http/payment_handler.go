package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/logger"
)

type payResponse struct {
	Booking      *domain.Booking `json:"booking"`
	AlreadyPaid  bool            `json:"already_paid"`
	IntentID     string          `json:"intent_id,omitempty"`
	ClientSecret string          `json:"client_secret,omitempty"`
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid booking id")
		return
	}

	result, err := s.payments.Pay(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payResponse{
		Booking:      result.Booking,
		AlreadyPaid:  result.AlreadyPaid,
		IntentID:     result.IntentID,
		ClientSecret: result.ClientSecret,
	})
}

type webhookEvent struct {
	Type     string `json:"type"`
	IntentID string `json:"intent_id"`
}

// handlePaymentWebhook receives confirmation callbacks from the payment
// provider. The shared secret in the X-Webhook-Secret header stands in
// for provider signature verification.
func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	if s.webhookSecret != "" {
		got := r.Header.Get("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.webhookSecret)) != 1 {
			http.Error(w, "invalid webhook secret", http.StatusUnauthorized)
			return
		}
	}

	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeBadRequest(w, "invalid webhook payload")
		return
	}
	if event.Type != "payment_intent.succeeded" || event.IntentID == "" {
		// Unhandled event types are acknowledged so the provider stops retrying.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if _, err := s.payments.HandlePaymentConfirmed(r.Context(), event.IntentID); err != nil {
		logger.Error("Webhook processing failed", "intent_id", event.IntentID, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}
