package notifications

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/timele/timele-backend/pkg/config"
	"github.com/timele/timele-backend/pkg/db"
	"github.com/timele/timele-backend/pkg/email"
	"github.com/timele/timele-backend/pkg/logger"
	"github.com/timele/timele-backend/pkg/metrics"
)

const (
	reminderJobName = "order_reminder_sweep"

	reminderSubject = "Time to restock your groceries"
)

// Scheduler is the order-reminder tick loop. Exactly one instance may
// sweep at a time: on Postgres an advisory lock gates each tick, so
// extra replicas simply skip.
type Scheduler struct {
	logg    *logger.Logger
	client  *db.Client
	repo    Repository
	sender  email.Sender
	metrics *metrics.JobMetrics
	cfg     config.SchedulerConfig
	now     func() time.Time
}

type SchedulerParams struct {
	Logger  *logger.Logger
	Client  *db.Client
	Repo    Repository
	Sender  email.Sender
	Metrics *metrics.JobMetrics
	Config  config.SchedulerConfig
	Now     func() time.Time
}

func NewScheduler(params SchedulerParams) (*Scheduler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	if params.Config.TickPeriod <= 0 {
		params.Config.TickPeriod = 45 * time.Second
	}
	return &Scheduler{
		logg:    params.Logger,
		client:  params.Client,
		repo:    params.Repo,
		sender:  params.Sender,
		metrics: params.Metrics,
		cfg:     params.Config,
		now:     params.Now,
	}, nil
}

// Run executes the tick loop until the context is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.Tick(ctx); err != nil {
		s.logg.Error(ctx, "notification tick failed", err)
	}

	ticker := time.NewTicker(s.cfg.TickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "notification scheduler context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.logg.Error(ctx, "notification tick failed", err)
			}
		}
	}
}

// Tick performs one sweep. Each due user is committed individually, so
// a restart mid-tick loses nothing and repeats nothing.
func (s *Scheduler) Tick(ctx context.Context) error {
	started := time.Now()
	defer func() {
		s.metrics.ObserveDuration(reminderJobName, time.Since(started))
	}()

	release, acquired, err := s.acquireTickLock(ctx)
	if err != nil {
		s.metrics.IncFailure(reminderJobName)
		return fmt.Errorf("acquire tick lock: %w", err)
	}
	if !acquired {
		s.logg.Info(ctx, "another replica holds the scheduler lock, skipping tick")
		return nil
	}
	defer release()

	now := s.now().UTC()
	due, err := s.repo.FindDue(ctx, now, s.cfg.BatchSize)
	if err != nil {
		s.metrics.IncFailure(reminderJobName)
		return fmt.Errorf("find due users: %w", err)
	}
	if len(due) == 0 {
		s.metrics.IncSuccess(reminderJobName)
		return nil
	}

	var errs error
	flagged := 0
	for i := range due {
		user := &due[i]

		err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
			sentAt := now
			user.PendingOrderNotification = true
			user.LastNotificationSentAt = &sentAt
			user.OrderNotificationsNextAt = AdvanceReminderAt(
				user.OrderNotificationsStartAt,
				user.DaysBetweenOrderNotifications,
				now,
			)
			return s.repo.WithTx(tx).SaveReminderState(ctx, user)
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("user %s: %w", user.ExternalID, err))
			continue
		}
		flagged++

		// Email delivery stays outside the transaction; failures only
		// get logged.
		if user.OrderNotificationsViaEmail {
			body := fmt.Sprintf("Hi %s,\n\nIt looks like it's time for your next grocery order. Your cart is waiting!\n", user.FirstName)
			if err := s.sender.Send(ctx, user.Email, reminderSubject, body); err != nil {
				userCtx := s.logg.WithUserID(ctx, user.ExternalID.String())
				s.logg.Warn(userCtx, fmt.Sprintf("reminder email failed: %v", err))
			}
		}
	}

	s.metrics.AddReminders(flagged)
	if errs != nil {
		s.metrics.IncFailure(reminderJobName)
		return errs
	}

	s.logg.Info(s.logg.WithField(ctx, "reminders", flagged), "order reminder sweep complete")
	s.metrics.IncSuccess(reminderJobName)
	return nil
}

// acquireTickLock serializes ticks across gateway replicas with a
// Postgres advisory lock held on a dedicated connection. Other
// dialects (sqlite in tests) run unguarded.
func (s *Scheduler) acquireTickLock(ctx context.Context) (release func(), acquired bool, err error) {
	noop := func() {}
	if s.client.Dialect() != "postgres" {
		return noop, true, nil
	}

	sqlDB, err := s.client.DB().DB()
	if err != nil {
		return noop, false, err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return noop, false, err
	}

	var got bool
	row := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", s.cfg.AdvisoryLockKey)
	if err := row.Scan(&got); err != nil {
		_ = conn.Close()
		return noop, false, err
	}
	if !got {
		_ = conn.Close()
		return noop, false, nil
	}

	release = func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", s.cfg.AdvisoryLockKey)
		_ = conn.Close()
	}
	return release, true, nil
}
