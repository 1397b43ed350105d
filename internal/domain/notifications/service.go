package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store       StoreAPI
	Mailer      Mailer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@example.com"}
}

// Send persists an in-app notification for msg.To and emails it when the
// tenant has email enabled. Email problems are logged, never returned.
func (s *Service) Send(ctx context.Context, tenantID string, msg Message) error {
	if strings.TrimSpace(msg.To) == "" || strings.TrimSpace(msg.Type) == "" {
		return ErrInvalidMessage
	}
	title := Title(msg.Type)
	if err := s.store.CreateNotification(ctx, tenantID, msg.To, msg.Type, title, msg.Message); err != nil {
		return fmt.Errorf("notifications: create %s for %s: %w", msg.Type, msg.To, err)
	}

	if s.Mailer == nil {
		return nil
	}
	settings, err := s.store.EmailSettings(ctx, tenantID)
	if err != nil {
		slog.WarnContext(ctx, "notification settings lookup failed", "tenantId", tenantID, "err", err)
		return nil
	}
	if !settings.EmailEnabled {
		return nil
	}
	from := settings.EmailFrom
	if from == "" {
		from = s.DefaultFrom
	}

	email, err := s.store.UserEmail(ctx, tenantID, msg.To)
	if err != nil {
		slog.WarnContext(ctx, "notification email lookup failed", "userId", msg.To, "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, from, email, title, msg.Message); err != nil {
		slog.WarnContext(ctx, "notification email send failed", "userId", msg.To, "type", msg.Type, "err", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, tenantID, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, tenantID, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, tenantID, userID string) (int, error) {
	return s.store.CountNotifications(ctx, tenantID, userID)
}

func (s *Service) MarkRead(ctx context.Context, tenantID, userID, notificationID string) error {
	return s.store.MarkRead(ctx, tenantID, userID, notificationID)
}

func (s *Service) GetSettings(ctx context.Context, tenantID string) (Settings, error) {
	return s.store.EmailSettings(ctx, tenantID)
}

func (s *Service) UpdateSettings(ctx context.Context, tenantID string, settings Settings) error {
	return s.store.UpdateSettings(ctx, tenantID, settings)
}
