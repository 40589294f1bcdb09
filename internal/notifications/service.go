package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/db/models"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/enums"
	pkgerrors "github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/errors"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/logger"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/metrics"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/pagination"
)

// Service emits in-app notifications and serves the inbox.
type Service interface {
	Notify(ctx context.Context, userID uuid.UUID, message Message) error
	NotifyMany(ctx context.Context, userIDs []uuid.UUID, message Message) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Message is the content of a notification; GroupID is nil for account-level messages.
type Message struct {
	GroupID *uuid.UUID
	Kind    enums.NotificationKind
	Text    string
}

// ListParams configures pagination for notifications.
type ListParams struct {
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor,omitempty"`
}

// ServiceParams wires the notifications service.
type ServiceParams struct {
	Repo    Repository
	Logger  *logger.Logger
	Metrics *metrics.Workflow
	Clock   func() time.Time
}

type service struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.Workflow
	now     func() time.Time
}

// NewService wires notifications dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, logg: logg, metrics: params.Metrics, now: now}, nil
}

func (s *service) Notify(ctx context.Context, userID uuid.UUID, message Message) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	if message.Text == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification message required")
	}
	row := newRow(userID, message)
	if err := s.repo.Create(ctx, &row); err != nil {
		s.metrics.Notification(false)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create notification")
	}
	s.metrics.Notification(true)
	return nil
}

// NotifyMany writes one row per distinct recipient in a single insert.
func (s *service) NotifyMany(ctx context.Context, userIDs []uuid.UUID, message Message) error {
	if message.Text == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification message required")
	}
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	rows := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, newRow(id, message))
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.repo.CreateMany(ctx, rows); err != nil {
		for range rows {
			s.metrics.Notification(false)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create notifications")
	}
	for range rows {
		s.metrics.Notification(true)
	}
	return nil
}

func newRow(userID uuid.UUID, message Message) models.Notification {
	return models.Notification{
		UserID:  userID,
		GroupID: message.GroupID,
		Kind:    message.Kind,
		Message: message.Text,
	}
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		UserID:     params.UserID,
		Limit:      pagination.LimitWithBuffer(params.Limit),
		UnreadOnly: params.UnreadOnly,
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list notifications")
	}

	page := pagination.Trim(rows, params.Limit, func(n models.Notification) pagination.Cursor {
		return pagination.Cursor{CreatedAt: n.CreatedAt, ID: n.ID}
	})
	return &ListResult{Items: page.Items, Cursor: page.NextCursor}, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, userID, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notifications read")
	}
	if count > 0 {
		s.logg.Debug(s.logg.WithField(ctx, "count", count), "notifications marked read")
	}
	return count, nil
}
