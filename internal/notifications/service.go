package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timele/timele-backend/pkg/db/models"
	pkgerrors "github.com/timele/timele-backend/pkg/errors"
)

// ListResult is the in-app notification read model: the coalesced
// reminder flag plus the derived order-status event stream.
type ListResult struct {
	PendingOrderNotification bool          `json:"pending_order_notification"`
	Events                   []StatusEvent `json:"notifications"`
}

// Service surfaces notifications and acknowledges them. The event
// stream is a derivation over immutable history; nothing here writes
// an inbox table.
type Service interface {
	List(ctx context.Context, externalID uuid.UUID) (*ListResult, error)
	MarkViewed(ctx context.Context, externalID uuid.UUID) (time.Time, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) List(ctx context.Context, externalID uuid.UUID) (*ListResult, error) {
	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.StatusEventsSince(ctx, user.InternalID, user.LastNotificationsViewedAt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read status events")
	}
	if events == nil {
		events = []StatusEvent{}
	}

	return &ListResult{
		PendingOrderNotification: user.PendingOrderNotification,
		Events:                   events,
	}, nil
}

func (s *service) MarkViewed(ctx context.Context, externalID uuid.UUID) (time.Time, error) {
	user, err := s.lookup(ctx, externalID)
	if err != nil {
		return time.Time{}, err
	}

	now := s.now().UTC()
	if err := s.repo.MarkViewed(ctx, user.InternalID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notifications viewed")
	}
	return now, nil
}

func (s *service) lookup(ctx context.Context, externalID uuid.UUID) (*models.User, error) {
	if externalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidIDFormat, "user id is required")
	}
	user, err := s.repo.FindUserByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return user, nil
}
