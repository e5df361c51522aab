package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"cabinfolio-backend/internal/domain"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(to, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

const dateLayout = "2006-01-02"

func (s *emailService) SendBookingConfirmation(ctx context.Context, to, propertyID string, checkIn, checkOut time.Time, nights, daysRemaining int) error {
	subject := "Your cabin booking is confirmed"
	body := fmt.Sprintf(
		"Your stay at property %s from %s to %s (%d nights) is confirmed.\n\nYou have %d allowance days remaining this year.\n\nBest regards,\nThe Cabinfolio Team",
		propertyID, checkIn.Format(dateLayout), checkOut.Format(dateLayout), nights, daysRemaining)
	return s.send(to, subject, body)
}

func (s *emailService) SendBookingCancellation(ctx context.Context, to, propertyID string, checkIn time.Time, daysReturned int) error {
	subject := "Your cabin booking has been cancelled"
	body := fmt.Sprintf(
		"Your booking at property %s starting %s has been cancelled.\n\n%d allowance days have been returned to your annual quota.\n\nBest regards,\nThe Cabinfolio Team",
		propertyID, checkIn.Format(dateLayout), daysReturned)
	return s.send(to, subject, body)
}

func (s *emailService) SendReauthorizationAlert(ctx context.Context, to, ownerRef string) error {
	subject := "Accounting connection needs re-authorization"
	body := fmt.Sprintf(
		"The accounting connection for %s could not be refreshed because its refresh token was rejected.\n\nPlease re-authorize the integration from the settings page.",
		ownerRef)
	return s.send(to, subject, body)
}

func (s *emailService) SendCloseoutNotice(ctx context.Context, to, ownerID, propertyID string, year, daysUsed int) error {
	subject := fmt.Sprintf("Allowance closeout required for %d", year)
	body := fmt.Sprintf(
		"The %d allowance for owner %s on property %s has passed its reset date with %d days used.\n\nRun the annual closeout to roll the quota over; it is not reset automatically.",
		year, ownerID, propertyID, daysUsed)
	return s.send(to, subject, body)
}

func (s *emailService) SendReconciliationAlert(ctx context.Context, to string, entries []domain.ReconciliationEntry) error {
	subject := fmt.Sprintf("%d unreconciled booking ledger entries", len(entries))

	var b strings.Builder
	b.WriteString("The following bookings changed external state without a matching allowance ledger update:\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- booking %s (owner %s, property %s, %d nights): %s\n",
			e.BookingID, e.OwnerID, e.PropertyID, e.Nights, e.Cause)
	}
	b.WriteString("\nEach entry needs manual repair and a MarkResolved once done.")
	return s.send(to, subject, b.String())
}
