package service

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password, from string) EmailService {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body+"\n\nBest regards,\nThe Sendbox Team")

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *emailService) SendBookingRequestNotification(ctx context.Context, travelerEmail, senderName, route string) error {
	return s.send(travelerEmail,
		"New booking request",
		fmt.Sprintf("Hello,\n\n%s requested space for a package on your %s trip.\n\nReview the request in your dashboard.", senderName, route))
}

func (s *emailService) SendBookingAcceptedNotification(ctx context.Context, senderEmail, route string) error {
	return s.send(senderEmail,
		"Your booking was accepted",
		fmt.Sprintf("Hello,\n\nYour booking request on the %s trip was accepted.\n\nYou can now proceed to payment.", route))
}

func (s *emailService) SendBookingCancelledNotification(ctx context.Context, email, counterpartyName, route, reason string) error {
	body := fmt.Sprintf("Hello,\n\nA booking on the %s trip was cancelled.", route)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	return s.send(email, "Booking cancelled", body)
}

func (s *emailService) SendPaymentReceivedNotification(ctx context.Context, travelerEmail, route string, amount float64) error {
	return s.send(travelerEmail,
		"Booking paid",
		fmt.Sprintf("Hello,\n\nA booking was paid (%.2f EUR). Arrange the package handoff with the sender.", amount))
}

func (s *emailService) SendPackageDepositedNotification(ctx context.Context, email, route string) error {
	return s.send(email,
		"Package deposited",
		fmt.Sprintf("Hello,\n\nThe package for the %s trip was handed over and is now in transit.", route))
}

func (s *emailService) SendPackageDeliveredNotification(ctx context.Context, email, route string) error {
	return s.send(email,
		"Package delivered",
		fmt.Sprintf("Hello,\n\nThe package for the %s trip was delivered.", route))
}

func (s *emailService) SendReceiptConfirmedNotification(ctx context.Context, travelerEmail, route string, payout float64) error {
	return s.send(travelerEmail,
		"Receipt confirmed",
		fmt.Sprintf("Hello,\n\nThe sender confirmed receipt for the %s trip. Your payout of %.2f EUR is being released.", route, payout))
}

func (s *emailService) SendDepartureReminder(ctx context.Context, travelerEmail, route string, departure string) error {
	return s.send(travelerEmail,
		"Upcoming trip reminder",
		fmt.Sprintf("Hello,\n\nYour %s trip departs on %s. Make sure all booked packages are collected before departure.", route, departure))
}
