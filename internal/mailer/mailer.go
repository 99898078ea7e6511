// ClassGo - Google Classroom Assignment Assistant
// Copyright 2026 ClassGo Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/classgo/classgo

// Package mailer sends transactional email through SendGrid. Sending is
// best-effort: a mail failure is logged, never surfaced to the API caller.
package mailer

import (
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/classgo/classgo/internal/config"
	"github.com/classgo/classgo/internal/logging"
)

var (
	host     = "https://api.sendgrid.com"
	endpoint = "/v3/mail/send"
)

// Mailer sends ClassGo's outbound email.
type Mailer interface {
	// SendWaitlistConfirmation mails a detox-waitlist confirmation.
	SendWaitlistConfirmation(name, email string) error
}

// SendGridMailer implements Mailer on the SendGrid v3 API.
type SendGridMailer struct {
	key  string
	from *sgmail.Email
}

// NewSendGridMailer builds a mailer from the mail configuration.
func NewSendGridMailer(cfg config.MailConfig) *SendGridMailer {
	return &SendGridMailer{
		key:  cfg.SendGridAPIKey,
		from: sgmail.NewEmail(cfg.FromName, cfg.From),
	}
}

// SendWaitlistConfirmation mails a detox-waitlist confirmation.
func (m *SendGridMailer) SendWaitlistConfirmation(name, email string) error {
	p := sgmail.NewPersonalization()
	p.Subject = "You're on the Detox It waitlist"
	p.AddTos(sgmail.NewEmail(name, email))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(sgmail.NewContent("text/plain", fmt.Sprintf(
		"Hi %s,\n\nThanks for joining the Detox It waitlist. We'll email you as soon as your spot opens up.\n\nThe ClassGo Team\n", name)))

	req := sendgrid.GetRequest(m.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected message with status %d", res.StatusCode)
	}

	logging.Debug().Str("email", email).Msg("Waitlist confirmation sent")
	return nil
}

// NopMailer discards all mail. Used when no SendGrid key is configured and
// in tests.
type NopMailer struct{}

// SendWaitlistConfirmation discards the message.
func (NopMailer) SendWaitlistConfirmation(name, email string) error { return nil }
