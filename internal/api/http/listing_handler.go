package http

import (
	"encoding/json"
	"net/http"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/service"
)

type listingResponse struct {
	Listing     *domain.Listing `json:"listing"`
	AvailableKg float64         `json:"available_kg"`
}

type listingListResponse struct {
	Listings []domain.Listing `json:"listings"`
	Total    int32            `json:"total"`
	Page     int32            `json:"page"`
	PageSize int32            `json:"page_size"`
}

type createListingRequest struct {
	DepartureCity    string  `json:"departure_city"`
	DepartureCountry string  `json:"departure_country"`
	ArrivalCity      string  `json:"arrival_city"`
	ArrivalCountry   string  `json:"arrival_country"`
	DepartureDate    string  `json:"departure_date"`
	ArrivalDate      string  `json:"arrival_date"`
	CapacityKg       float64 `json:"capacity_kg"`
	PricePerKg       float64 `json:"price_per_kg"`
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	listing, err := s.listings.Create(r.Context(), callerID(r), service.CreateListingInput{
		DepartureCity:    req.DepartureCity,
		DepartureCountry: req.DepartureCountry,
		ArrivalCity:      req.ArrivalCity,
		ArrivalCountry:   req.ArrivalCountry,
		DepartureDate:    req.DepartureDate,
		ArrivalDate:      req.ArrivalDate,
		CapacityKg:       req.CapacityKg,
		PricePerKg:       req.PricePerKg,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (s *Server) handlePublishListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid listing id")
		return
	}
	listing, err := s.listings.Publish(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleCancelListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid listing id")
		return
	}
	listing, err := s.listings.Cancel(r.Context(), callerID(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid listing id")
		return
	}
	listing, available, err := s.listings.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingResponse{Listing: listing, AvailableKg: available})
}

func (s *Server) handleListActive(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	listings, total, err := s.listings.ListActive(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingListResponse{Listings: listings, Total: total, Page: page, PageSize: pageSize})
}

func (s *Server) handleListMine(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	listings, total, err := s.listings.ListMine(r.Context(), callerID(r), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listingListResponse{Listings: listings, Total: total, Page: page, PageSize: pageSize})
}
