// Package mailer sends operational mail to hotel staff. Guests are never
// emailed; the only recipients are the configured staff inboxes.
package mailer

import (
	"fmt"

	"github.com/diagnosis/luxstay-hotel/pkg/logger"
)

type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	// SendHousekeepingAlert notifies the staff inbox about a new guest request.
	SendHousekeepingAlert(toEmail, roomNumber, category, notes string) error
}

// HousekeepingAlert renders the staff notification body shared by every
// implementation.
func housekeepingAlert(roomNumber, category, notes string) (subject, text, html string) {
	subject = fmt.Sprintf("Housekeeping request: room %s (%s)", roomNumber, category)
	text = fmt.Sprintf("Room %s requested %s.\n\nNotes: %s", roomNumber, category, notes)
	html = fmt.Sprintf("<p>Room <b>%s</b> requested <b>%s</b>.</p><p>Notes: %s</p>", roomNumber, category, notes)
	return subject, text, html
}

// DevMailer logs mail instead of sending it. Used when EMAIL_DEV_MODE is set.
type DevMailer struct{}

func NewDevMailer() *DevMailer { return &DevMailer{} }

func (m *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("Dev mailer: would send email",
		"to", toEmail,
		"subject", subject,
		"text", text,
	)
	return "dev", nil
}

func (m *DevMailer) SendHousekeepingAlert(toEmail, roomNumber, category, notes string) error {
	subject, text, html := housekeepingAlert(roomNumber, category, notes)
	_, err := m.Send(toEmail, "", subject, text, html)
	return err
}
