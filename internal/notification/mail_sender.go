package notification

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"bidding-engine/internal/biddingerrors"
	model "bidding-engine/internal/models"

	"github.com/resend/resend-go/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[Kind]string{
	KindOutbid:              "You have been outbid",
	KindAutoBidAlert:        "Your auto-bid budget is running low",
	KindAutoBidExhausted:    "Your auto-bid budget is exhausted",
	KindAutoBidFundsRelease: "Auto-bid funds released",
	KindAuctionWon:          "Congratulations, you won the auction",
	KindAuctionLost:         "The auction has ended",
}

// AddressBook resolves a participant to a deliverable address
type AddressBook interface {
	FindParticipant(ctx context.Context, participantID string) (model.Participant, error)
}

// StaticAddressBook is an AddressBook backed by a fixed map of participant id to email
type StaticAddressBook map[string]string

// FindParticipant looks up participantID in the map
func (b StaticAddressBook) FindParticipant(ctx context.Context, participantID string) (model.Participant, error) {
	email, ok := b[participantID]
	if !ok {
		return model.Participant{}, fmt.Errorf("address book: %s: %w", participantID, biddingerrors.ErrParticipantNotFound)
	}
	return model.Participant{ParticipantID: participantID, Email: email}, nil
}

// ChainAddressBook tries each book in order
type ChainAddressBook []AddressBook

// FindParticipant returns the first successful lookup
func (c ChainAddressBook) FindParticipant(ctx context.Context, participantID string) (model.Participant, error) {
	err := fmt.Errorf("address book: %s: %w", participantID, biddingerrors.ErrParticipantNotFound)
	for _, book := range c {
		p, lookupErr := book.FindParticipant(ctx, participantID)
		if lookupErr == nil && p.Email != "" {
			return p, nil
		}
		if lookupErr != nil {
			err = lookupErr
		}
	}
	return model.Participant{}, err
}

// EmailClient is the part of the Resend API used to deliver mail
type EmailClient interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// MailSender renders a notification template and delivers it by email
type MailSender struct {
	client    EmailClient
	book      AddressBook
	from      string
	templates *template.Template
}

// NewMailSender creates a MailSender using the Resend API key
func NewMailSender(apiKey, from string, book AddressBook) (*MailSender, error) {
	return NewMailSenderWithClient(resend.NewClient(apiKey).Emails, from, book)
}

// NewMailSenderWithClient creates a MailSender around an existing client
func NewMailSenderWithClient(client EmailClient, from string, book AddressBook) (*MailSender, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("notification: parse templates: %w", err)
	}
	return &MailSender{client: client, book: book, from: from, templates: tmpl}, nil
}

// Notify renders the template for kind and sends it to the participant's address
func (m *MailSender) Notify(ctx context.Context, participantID string, kind Kind, data Data) error {
	p, err := m.book.FindParticipant(ctx, participantID)
	if err != nil {
		return err
	}

	html, err := m.Render(kind, p, data)
	if err != nil {
		return err
	}

	_, err = m.client.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{p.Email},
		Subject: subjects[kind],
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("notification: deliver %s to %s: %w", kind, participantID, err)
	}
	return nil
}

// Render executes the template for kind
func (m *MailSender) Render(kind Kind, p model.Participant, data Data) (string, error) {
	name := string(kind) + ".html"
	if m.templates.Lookup(name) == nil {
		return "", fmt.Errorf("notification: no template for %s", kind)
	}

	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, map[string]any{
		"Participant": p,
		"Data":        data,
	}); err != nil {
		return "", fmt.Errorf("notification: render %s: %w", kind, err)
	}
	return buf.String(), nil
}
