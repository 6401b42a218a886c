package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"

	"github.com/socialvibe/socialvibe/internal/config"
	"github.com/socialvibe/socialvibe/internal/logging"
	"github.com/socialvibe/socialvibe/internal/models"
)

// Email is a rendered notification ready for delivery.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// EmailProvider is the delivery backend for notifications.
type EmailProvider interface {
	Send(ctx context.Context, email *Email) error
}

// NotifyService sends activity emails. Every entry point consults the
// recipient's notification preferences and never returns delivery failures
// to the caller; a lost email must not fail the action that triggered it.
type NotifyService struct {
	db          DB
	provider    EmailProvider
	fromAddress string
	fromName    string
}

func NewNotifyService(cfg *config.EmailConfig, db DB) *NotifyService {
	var provider EmailProvider

	switch cfg.Provider {
	case "resend":
		provider = NewResendProvider(cfg.ResendAPIKey, cfg.FromName, cfg.FromAddress)
	default:
		provider = NewConsoleProvider()
	}

	return &NotifyService{
		db:          db,
		provider:    provider,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
	}
}

// FriendRequestReceived notifies the target of a new pending request.
func (s *NotifyService) FriendRequestReceived(ctx context.Context, targetID uuid.UUID, fromUsername string) {
	s.deliver(ctx, targetID, func(p models.NotificationPrefs) bool { return p.Follows },
		"New friend request on SocialVibe",
		fmt.Sprintf("%s sent you a friend request. Open SocialVibe to accept or reject it.", fromUsername),
	)
}

// FriendRequestAccepted notifies the requester that their request went through.
func (s *NotifyService) FriendRequestAccepted(ctx context.Context, requesterID uuid.UUID, byUsername string) {
	s.deliver(ctx, requesterID, func(p models.NotificationPrefs) bool { return p.Follows },
		"Friend request accepted",
		fmt.Sprintf("%s accepted your friend request. You are now friends on SocialVibe.", byUsername),
	)
}

// TipReceived notifies a feed author about a tip.
func (s *NotifyService) TipReceived(ctx context.Context, authorID uuid.UUID, fromUsername string, amount int64) {
	s.deliver(ctx, authorID, func(p models.NotificationPrefs) bool { return p.Tips },
		"You received a tip",
		fmt.Sprintf("%s tipped your feed %d Vibe coins.", fromUsername, amount),
	)
}

func (s *NotifyService) deliver(ctx context.Context, userID uuid.UUID, wants func(models.NotificationPrefs) bool, subject, text string) {
	var email string
	var prefs models.Preferences
	err := s.db.QueryRow(ctx,
		`SELECT email, preferences FROM users WHERE id = $1 AND is_active = true`,
		userID,
	).Scan(&email, &prefs)
	if err != nil {
		if !isNoRows(err) {
			logging.Warn("Failed to load notification recipient", map[string]interface{}{
				"error":   err.Error(),
				"user_id": userID.String(),
			})
		}
		return
	}
	if !wants(prefs.Notifications) {
		return
	}

	msg := &Email{
		To:      email,
		Subject: subject,
		HTML:    fmt.Sprintf("<p>%s</p>", text),
		Text:    text,
	}
	if err := s.provider.Send(ctx, msg); err != nil {
		logging.Warn("Failed to send notification email", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID.String(),
			"subject": subject,
		})
	}
}

// ResendProvider sends emails through the Resend API.
type ResendProvider struct {
	client *resend.Client
	from   string
}

func NewResendProvider(apiKey, fromName, fromAddress string) *ResendProvider {
	return &ResendProvider{
		client: resend.NewClient(apiKey),
		from:   fmt.Sprintf("%s <%s>", fromName, fromAddress),
	}
}

func (p *ResendProvider) Send(ctx context.Context, email *Email) error {
	params := &resend.SendEmailRequest{
		From:    p.from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	}

	if _, err := p.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("sending email via Resend: %w", err)
	}

	logging.Info("Email sent via Resend", map[string]interface{}{"to": email.To, "subject": email.Subject})
	return nil
}

// ConsoleProvider logs emails instead of sending them (development default).
type ConsoleProvider struct{}

func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

func (p *ConsoleProvider) Send(ctx context.Context, email *Email) error {
	logging.Info("=== EMAIL (Console Provider) ===", map[string]interface{}{
		"to":      email.To,
		"subject": email.Subject,
		"text":    email.Text,
	})
	return nil
}
