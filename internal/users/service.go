package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/timele/timele-backend/internal/notifications"
	"github.com/timele/timele-backend/pkg/config"
	pkgerrors "github.com/timele/timele-backend/pkg/errors"
	"github.com/timele/timele-backend/pkg/db/models"
	"github.com/timele/timele-backend/pkg/security"
)

// Service defines identity and profile operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*View, error)
	Login(ctx context.Context, email, password string) (*LoginView, error)
	Get(ctx context.Context, externalID uuid.UUID) (*View, error)
	Update(ctx context.Context, externalID uuid.UUID, patch Patch) (*View, error)
	ChangePassword(ctx context.Context, externalID uuid.UUID, current, next string) error
	ChangeEmail(ctx context.Context, externalID uuid.UUID, currentPassword, newEmail string) (*View, error)
	Delete(ctx context.Context, externalID uuid.UUID, password string) error
	GetNotificationSettings(ctx context.Context, externalID uuid.UUID) (*NotificationSettingsView, error)
	UpdateNotificationSettings(ctx context.Context, externalID uuid.UUID, input NotificationSettingsInput) (*NotificationSettingsView, error)
	ResolveInternalID(ctx context.Context, externalID uuid.UUID) (int64, error)
}

type service struct {
	repo     Repository
	password config.PasswordConfig
	now      func() time.Time
}

// NewService wires the identity service. The clock is injectable for
// deterministic tests.
func NewService(repo Repository, password config.PasswordConfig, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{repo: repo, password: password, now: now}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*View, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" || strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "first name, last name, email and password are required")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup email")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := s.now()
	days := 7
	if input.DaysBetweenOrderNotifications != nil {
		days = *input.DaysBetweenOrderNotifications
	}
	if days < 1 || days > 365 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "days_between_order_notifications must be between 1 and 365")
	}
	start := now
	if input.OrderNotificationsStartAt != nil {
		start = input.OrderNotificationsStartAt.UTC()
	}
	viaEmail := false
	if input.OrderNotificationsViaEmail != nil {
		viaEmail = *input.OrderNotificationsViaEmail
	}

	user := &models.User{
		ExternalID:                    uuid.New(),
		Email:                         email,
		PasswordHash:                  hash,
		FirstName:                     strings.TrimSpace(input.FirstName),
		LastName:                      strings.TrimSpace(input.LastName),
		PhoneNumber:                   input.PhoneNumber,
		StreetAddress:                 input.StreetAddress,
		City:                          input.City,
		PostalCode:                    input.PostalCode,
		Country:                       input.Country,
		DaysBetweenOrderNotifications: days,
		OrderNotificationsStartAt:     start,
		OrderNotificationsNextAt:      notifications.NextReminderAt(start, days, now),
		OrderNotificationsViaEmail:    viaEmail,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return viewFromModel(user), nil
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginView, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeAuthFailed, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if err := s.verifyPassword(password, user.PasswordHash); err != nil {
		return nil, err
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record login")
	}

	hasCart, err := s.repo.HasActiveCart(ctx, user.InternalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check cart")
	}

	return &LoginView{View: *viewFromModel(user), HasActiveCart: hasCart}, nil
}

func (s *service) Get(ctx context.Context, externalID uuid.UUID) (*View, error) {
	user, err := s.resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return viewFromModel(user), nil
}

func (s *service) Update(ctx context.Context, externalID uuid.UUID, patch Patch) (*View, error) {
	if patch.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "update requires at least one field")
	}

	user, err := s.resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.PhoneNumber != nil {
		user.PhoneNumber = patch.PhoneNumber
	}
	if patch.StreetAddress != nil {
		user.StreetAddress = patch.StreetAddress
	}
	if patch.City != nil {
		user.City = patch.City
	}
	if patch.PostalCode != nil {
		user.PostalCode = patch.PostalCode
	}
	if patch.Country != nil {
		user.Country = patch.Country
	}
	if patch.DaysBetweenOrderNotifications != nil {
		days := *patch.DaysBetweenOrderNotifications
		if days < 1 || days > 365 {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "days_between_order_notifications must be between 1 and 365")
		}
		user.DaysBetweenOrderNotifications = days
	}
	if patch.OrderNotificationsStartAt != nil {
		user.OrderNotificationsStartAt = patch.OrderNotificationsStartAt.UTC()
	}
	if patch.OrderNotificationsViaEmail != nil {
		user.OrderNotificationsViaEmail = *patch.OrderNotificationsViaEmail
	}

	if patch.TouchesPreferences() {
		user.OrderNotificationsNextAt = notifications.NextReminderAt(
			user.OrderNotificationsStartAt,
			user.DaysBetweenOrderNotifications,
			s.now(),
		)
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save user")
	}
	return viewFromModel(user), nil
}

func (s *service) ChangePassword(ctx context.Context, externalID uuid.UUID, current, next string) error {
	if next == "" {
		return pkgerrors.New(pkgerrors.CodeInvalidInput, "new password is required")
	}

	user, err := s.resolve(ctx, externalID)
	if err != nil {
		return err
	}
	if err := s.verifyPassword(current, user.PasswordHash); err != nil {
		return err
	}

	hash, err := security.HashPassword(next, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user.PasswordHash = hash

	if err := s.repo.Save(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save user")
	}
	return nil
}

func (s *service) ChangeEmail(ctx context.Context, externalID uuid.UUID, currentPassword, newEmail string) (*View, error) {
	email := strings.ToLower(strings.TrimSpace(newEmail))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "new email is required")
	}

	user, err := s.resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if err := s.verifyPassword(currentPassword, user.PasswordHash); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing.InternalID != user.InternalID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup email")
	}

	user.Email = email
	if err := s.repo.Save(ctx, user); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save user")
	}
	return viewFromModel(user), nil
}

func (s *service) Delete(ctx context.Context, externalID uuid.UUID, password string) error {
	user, err := s.resolve(ctx, externalID)
	if err != nil {
		return err
	}
	if err := s.verifyPassword(password, user.PasswordHash); err != nil {
		return err
	}

	// The schema cascades the cart and tombstones orders (user_id set
	// to NULL) so order history survives for reporting.
	if err := s.repo.Delete(ctx, user.InternalID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}

func (s *service) GetNotificationSettings(ctx context.Context, externalID uuid.UUID) (*NotificationSettingsView, error) {
	user, err := s.resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return settingsFromModel(user), nil
}

func (s *service) UpdateNotificationSettings(ctx context.Context, externalID uuid.UUID, input NotificationSettingsInput) (*NotificationSettingsView, error) {
	if input.DaysBetweenOrderNotifications == nil && input.OrderNotificationsStartAt == nil && input.OrderNotificationsViaEmail == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidInput, "update requires at least one field")
	}

	view, err := s.Update(ctx, externalID, Patch{
		DaysBetweenOrderNotifications: input.DaysBetweenOrderNotifications,
		OrderNotificationsStartAt:     input.OrderNotificationsStartAt,
		OrderNotificationsViaEmail:    input.OrderNotificationsViaEmail,
	})
	if err != nil {
		return nil, err
	}
	return &NotificationSettingsView{
		DaysBetweenOrderNotifications: view.DaysBetweenOrderNotifications,
		OrderNotificationsStartAt:     view.OrderNotificationsStartAt,
		OrderNotificationsNextAt:      view.OrderNotificationsNextAt,
		PendingOrderNotification:      view.PendingOrderNotification,
		OrderNotificationsViaEmail:    view.OrderNotificationsViaEmail,
		LastNotificationSentAt:        view.LastNotificationSentAt,
	}, nil
}

// ResolveInternalID maps an external UUID onto the internal numeric id
// used by every foreign key.
func (s *service) ResolveInternalID(ctx context.Context, externalID uuid.UUID) (int64, error) {
	user, err := s.resolve(ctx, externalID)
	if err != nil {
		return 0, err
	}
	return user.InternalID, nil
}

func (s *service) resolve(ctx context.Context, externalID uuid.UUID) (*models.User, error) {
	if externalID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidIDFormat, "user id is required")
	}
	user, err := s.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return user, nil
}

func (s *service) verifyPassword(password, hash string) error {
	ok, err := security.VerifyPassword(password, hash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeAuthFailed, "invalid email or password")
	}
	return nil
}
