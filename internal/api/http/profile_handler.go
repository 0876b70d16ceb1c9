package http

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.Get(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSubmitKyc(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.SubmitKyc(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type reviewKycRequest struct {
	UserID  int32  `json:"user_id"`
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// handleReviewKyc resolves a pending verification. Exposed for back
// office tooling; the decision applies to the user named in the body.
func (s *Server) handleReviewKyc(w http.ResponseWriter, r *http.Request) {
	var req reviewKycRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	profile, err := s.profiles.ReviewKyc(r.Context(), req.UserID, req.Approve, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
