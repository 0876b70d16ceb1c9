package http

import (
	"github.com/gorilla/mux"

	"sendbox-backend/internal/security"
	"sendbox-backend/internal/service"
	"sendbox-backend/internal/storage"
)

// Server wires the HTTP API: public routes (payment webhook, file
// downloads) plus authenticated routes for everything else.
type Server struct {
	bookings      service.BookingService
	payments      service.PaymentService
	listings      service.ListingService
	profiles      service.ProfileService
	notifications service.NotificationService
	store         storage.Storage
	tokenManager  security.TokenManager
	webhookSecret string
}

func NewServer(
	bookings service.BookingService,
	payments service.PaymentService,
	listings service.ListingService,
	profiles service.ProfileService,
	notifications service.NotificationService,
	store storage.Storage,
	tokenManager security.TokenManager,
	webhookSecret string,
) *Server {
	return &Server{
		bookings:      bookings,
		payments:      payments,
		listings:      listings,
		profiles:      profiles,
		notifications: notifications,
		store:         store,
		tokenManager:  tokenManager,
		webhookSecret: webhookSecret,
	}
}

// Router builds the full route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	// Public endpoints.
	r.HandleFunc("/api/v1/payments/webhook", s.handlePaymentWebhook).Methods("POST")
	r.HandleFunc("/api/v1/files", s.handleFileDownload).Methods("GET")
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// Everything else requires an access token.
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware(s.tokenManager))

	api.HandleFunc("/bookings", s.handleCreateBooking).Methods("POST")
	api.HandleFunc("/bookings/sent", s.handleListSent).Methods("GET")
	api.HandleFunc("/bookings/carried", s.handleListCarried).Methods("GET")
	api.HandleFunc("/bookings/{id:[0-9]+}", s.handleGetBooking).Methods("GET")
	api.HandleFunc("/bookings/{id:[0-9]+}", s.handleDeleteBooking).Methods("DELETE")
	api.HandleFunc("/bookings/{id:[0-9]+}/accept", s.handleAcceptBooking).Methods("POST")
	api.HandleFunc("/bookings/{id:[0-9]+}/refuse", s.handleRefuseBooking).Methods("POST")
	api.HandleFunc("/bookings/{id:[0-9]+}/cancel", s.handleCancelBooking).Methods("POST")
	api.HandleFunc("/bookings/{id:[0-9]+}/deposit", s.handleDepositScan).Methods("POST")
	api.HandleFunc("/bookings/{id:[0-9]+}/delivery", s.handleDeliveryScan).Methods("POST")
	api.HandleFunc("/bookings/{id:[0-9]+}/confirm", s.handleConfirmReceipt).Methods("POST")
	api.HandleFunc("/bookings/{id:[0-9]+}/pay", s.handlePay).Methods("POST")

	api.HandleFunc("/listings", s.handleCreateListing).Methods("POST")
	api.HandleFunc("/listings", s.handleListActive).Methods("GET")
	api.HandleFunc("/listings/mine", s.handleListMine).Methods("GET")
	api.HandleFunc("/listings/{id:[0-9]+}", s.handleGetListing).Methods("GET")
	api.HandleFunc("/listings/{id:[0-9]+}/publish", s.handlePublishListing).Methods("POST")
	api.HandleFunc("/listings/{id:[0-9]+}/cancel", s.handleCancelListing).Methods("POST")

	api.HandleFunc("/profile", s.handleGetProfile).Methods("GET")
	api.HandleFunc("/profile/kyc", s.handleSubmitKyc).Methods("POST")
	api.HandleFunc("/profile/kyc/review", s.handleReviewKyc).Methods("POST")

	api.HandleFunc("/notifications", s.handleGetNotifications).Methods("GET")
	api.HandleFunc("/notifications/{id:[0-9]+}/read", s.handleMarkNotificationRead).Methods("POST")

	return r
}
