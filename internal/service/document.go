package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/repository"
	"sendbox-backend/internal/storage"
)

type documentService struct {
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	profileRepo repository.ProfileRepository
	store       storage.Storage
}

func NewDocumentService(
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	profileRepo repository.ProfileRepository,
	store storage.Storage,
) DocumentService {
	return &documentService{
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		profileRepo: profileRepo,
		store:       store,
	}
}

// GenerateBookingProof renders the proof-of-shipment PDF for a booking
// and uploads it to storage. Returns the document URL.
func (s *documentService) GenerateBookingProof(ctx context.Context, bookingID int32) (string, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	listing, err := s.listingRepo.GetByID(ctx, booking.ListingID)
	if err != nil {
		return "", err
	}
	sender, err := s.profileRepo.GetByID(ctx, booking.SenderID)
	if err != nil {
		return "", err
	}
	traveler, err := s.profileRepo.GetByID(ctx, listing.TravelerID)
	if err != nil {
		return "", err
	}

	content, err := buildProofPDF(booking, listing, sender, traveler)
	if err != nil {
		return "", fmt.Errorf("failed to build proof document: %w", err)
	}

	key := fmt.Sprintf("documents/%d/proof.pdf", booking.ID)
	url, err := s.store.Save(ctx, key, "application/pdf", bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to store proof document: %w", err)
	}
	return url, nil
}

func buildProofPDF(b *domain.Booking, l *domain.Listing, sender, traveler *domain.Profile) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Proof of Shipment", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PROOF OF SHIPMENT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Booking reference : #%d", b.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued on         : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Parties")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Sender    : %s (%s)", sender.Name, sender.Email),
		fmt.Sprintf("Traveler  : %s (%s)", traveler.Name, traveler.Email),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Shipment")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	lines = []string{
		fmt.Sprintf("Route       : %s, %s -> %s, %s",
			l.DepartureCity, l.DepartureCountry, l.ArrivalCity, l.ArrivalCountry),
		fmt.Sprintf("Departure   : %s", l.DepartureDate.Format("2006-01-02")),
		fmt.Sprintf("Weight      : %.1f kg", b.WeightKg),
		fmt.Sprintf("Total price : %.2f EUR", b.TotalPrice),
		fmt.Sprintf("Proof token : %s", b.ProofToken),
	}
	if b.InsurancePremium != nil && b.InsuranceCoverage != nil {
		lines = append(lines, fmt.Sprintf("Protection  : covered up to %.2f EUR", *b.InsuranceCoverage))
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This document certifies that the package described above was handed over to the traveler. Keep it until delivery is confirmed.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
