package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/service"
)

type bookingListResponse struct {
	Bookings []domain.Booking `json:"bookings"`
	Total    int32            `json:"total"`
	Page     int32            `json:"page"`
	PageSize int32            `json:"page_size"`
}

// handleCreateBooking accepts a multipart form: listing_id, weight_kg,
// description, declared_value, insurance_opted plus up to five files
// under "photos".
func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeBadRequest(w, "invalid multipart form")
		return
	}

	listingID, err := strconv.ParseInt(r.FormValue("listing_id"), 10, 32)
	if err != nil || listingID <= 0 {
		writeBadRequest(w, "invalid listing_id")
		return
	}
	weight, err := strconv.ParseFloat(r.FormValue("weight_kg"), 64)
	if err != nil {
		writeBadRequest(w, "invalid weight_kg")
		return
	}
	declaredValue := 0.0
	if raw := r.FormValue("declared_value"); raw != "" {
		declaredValue, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeBadRequest(w, "invalid declared_value")
			return
		}
	}
	insuranceOpted, _ := strconv.ParseBool(r.FormValue("insurance_opted"))

	in := service.CreateBookingInput{
		ListingID:      int32(listingID),
		WeightKg:       weight,
		Description:    r.FormValue("description"),
		DeclaredValue:  declaredValue,
		InsuranceOpted: insuranceOpted,
		Photos:         formFiles(r.MultipartForm, "photos"),
	}

	booking, err := s.bookings.Create(r.Context(), callerID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid booking id")
		return
	}
	booking, err := s.bookings.Get(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleAcceptBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid booking id")
		return
	}
	booking, err := s.bookings.Accept(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleRefuseBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid booking id")
		return
	}
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	booking, err := s.bookings.Refuse(r.Context(), callerID(r), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid booking id")
		return
	}
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	booking, err := s.bookings.Cancel(r.Context(), callerID(r), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid booking id")
		return
	}
	if err := s.bookings.DeleteCancelled(r.Context(), callerID(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) scanInput(r *http.Request) (service.ScanInput, bool) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return service.ScanInput{}, false
	}
	return service.ScanInput{
		Token:     r.FormValue("token"),
		Photo:     formFile(r.MultipartForm, "photo"),
		Signature: formFile(r.MultipartForm, "signature"),
		Location:  r.FormValue("location"),
	}, true
}

func (s *Server) handleDepositScan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid booking id")
		return
	}
	in, ok := s.scanInput(r)
	if !ok {
		writeBadRequest(w, "invalid multipart form")
		return
	}
	booking, err := s.bookings.DepositScan(r.Context(), callerID(r), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleDeliveryScan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid booking id")
		return
	}
	in, ok := s.scanInput(r)
	if !ok {
		writeBadRequest(w, "invalid multipart form")
		return
	}
	booking, err := s.bookings.DeliveryScan(r.Context(), callerID(r), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid booking id")
		return
	}
	booking, err := s.bookings.ConfirmReceipt(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleListSent(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	bookings, total, err := s.bookings.ListSent(r.Context(), callerID(r), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingListResponse{Bookings: bookings, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) handleListCarried(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	bookings, total, err := s.bookings.ListCarried(r.Context(), callerID(r), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingListResponse{Bookings: bookings, Total: total, Page: page, PageSize: pageSize})
}
