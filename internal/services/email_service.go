package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

// EmailService mirrors in-app notifications to the recipient's inbox through Gmail.
type EmailService struct {
	Profiles    ProfileStore
	GmailClient *gmail.Service
	From        string
	BaseURL     string
}

func NewEmailService(profiles ProfileStore, gmailClient *gmail.Service, from, baseURL string) *EmailService {
	return &EmailService{
		Profiles:    profiles,
		GmailClient: gmailClient,
		From:        from,
		BaseURL:     strings.TrimRight(baseURL, "/"),
	}
}

func (s *EmailService) Name() string { return "email" }

// Send looks up the recipient address and sends the notification as a plain
// text mail. A nil Gmail client disables the channel.
func (s *EmailService) Send(ctx context.Context, n *models.Notification) error {
	if s.GmailClient == nil {
		return nil
	}
	profile, err := s.Profiles.GetProfile(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", n.UserID, err)
	}
	if profile.Email == "" {
		logrus.WithField("user_id", n.UserID).Debug("recipient has no email, skipping")
		return nil
	}

	raw := base64.URLEncoding.EncodeToString([]byte(s.compose(profile.Email, n)))
	return retry(ctx, 3, 500*time.Millisecond, func() error {
		_, err := s.GmailClient.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
		return err
	})
}

func (s *EmailService) compose(to string, n *models.Notification) string {
	var b strings.Builder
	if s.From != "" {
		fmt.Fprintf(&b, "From: %s\r\n", s.From)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", n.Title)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(n.Message)
	if n.Link != nil && *n.Link != "" {
		fmt.Fprintf(&b, "\r\n\r\n%s%s", s.BaseURL, *n.Link)
	}
	b.WriteString("\r\n")
	return b.String()
}

// --- HELPERS ---

// retry executes a function with exponential backoff, giving up early when
// ctx is done
func retry(ctx context.Context, attempts int, sleep time.Duration, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		// client errors will not succeed on a second try
		if isPermanentError(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		logrus.WithError(err).Warnf("gmail API error, retrying in %v", sleep)
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return fmt.Errorf("gave up after %d attempts: %w", i+1, ctx.Err())
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}

func isPermanentError(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code >= 400 && gErr.Code < 500 && gErr.Code != 429
	}
	return false
}
