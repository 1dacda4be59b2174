package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"quizhub/internal/models"
)

// Reminder threshold: a customer is inactive after three days without an
// attempt.
const inactivityThreshold = 72 * time.Hour

// UserSource lists the customers the notification jobs cover.
// Satisfied by repository.UserRepository.
type UserSource interface {
	FindCustomers() ([]models.User, error)
}

// ActivitySource is the score data the notification jobs read.
// Satisfied by repository.ScoreRepository.
type ActivitySource interface {
	LatestTimestampForUser(userID uint) (time.Time, bool, error)
	FindByUserInWindow(userID uint, from, to time.Time) ([]models.Score, error)
	AverageInWindow(from, to time.Time) (float64, error)
}

// QuizDirectory resolves quizzes for reminder eligibility and report rows.
// Satisfied by repository.QuizRepository.
type QuizDirectory interface {
	AnyScheduledOnOrAfter(day time.Time) (bool, error)
	FindByID(id string) (*models.Quiz, error)
	NameByID(id string) (string, error)
}

// Mailer sends outbound mail. Satisfied by mailer.SMTPMailer; tests inject
// a recording fake.
type Mailer interface {
	Send(to, subject, body string, attachments ...string) error
}

// Notifier runs the two time-triggered jobs. Email delivery is fire and
// forget: a failed send is logged and skipped, and the job's own state only
// reflects whether the aggregate pass completed.
type Notifier struct {
	users   UserSource
	scores  ActivitySource
	quizzes QuizDirectory
	mailer  Mailer
	dir     string
	logger  *zap.Logger
	now     func() time.Time
}

func NewNotifier(users UserSource, scores ActivitySource, quizzes QuizDirectory, mailer Mailer, dir string, logger *zap.Logger) *Notifier {
	return &Notifier{
		users:   users,
		scores:  scores,
		quizzes: quizzes,
		mailer:  mailer,
		dir:     dir,
		logger:  logger,
		now:     time.Now,
	}
}

// DailyReminder is the handler for the daily-reminder kind. A customer gets
// a reminder when their latest attempt is missing or older than the
// threshold, provided at least one quiz is scheduled today or later.
func (n *Notifier) DailyReminder(_ context.Context, _ json.RawMessage) (string, error) {
	now := n.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	upcoming, err := n.quizzes.AnyScheduledOnOrAfter(today)
	if err != nil {
		return "", fmt.Errorf("check upcoming quizzes: %w", err)
	}
	if !upcoming {
		return "reminders sent: 0, failed: 0 (no upcoming quizzes)", nil
	}

	customers, err := n.users.FindCustomers()
	if err != nil {
		return "", fmt.Errorf("load customers: %w", err)
	}

	var sent, failed int
	for _, user := range customers {
		latest, has, err := n.scores.LatestTimestampForUser(user.ID)
		if err != nil {
			return "", fmt.Errorf("latest score for user %d: %w", user.ID, err)
		}
		if has && now.Sub(latest) <= inactivityThreshold {
			continue
		}

		body := fmt.Sprintf(
			"Hi %s,\n\nIt has been a while since your last quiz attempt. "+
				"New quizzes are waiting for you — log in and keep your streak going!\n",
			user.Name,
		)
		if err := n.mailer.Send(user.Email, "Quiz reminder", body); err != nil {
			// One bad mailbox must not abort the rest of the batch.
			n.logger.Warn("reminder email failed",
				zap.Uint("user_id", user.ID), zap.Error(err))
			failed++
			continue
		}
		sent++
	}

	return fmt.Sprintf("reminders sent: %d, failed: %d", sent, failed), nil
}

// MonthlyReport is the handler for the monthly-report kind, covering the
// previous calendar month. Users without scores in the window are skipped
// entirely: no artifact, no email.
func (n *Notifier) MonthlyReport(_ context.Context, _ json.RawMessage) (string, error) {
	now := n.now()
	from, to := previousMonthWindow(now)

	overallAvg, err := n.scores.AverageInWindow(from, to)
	if err != nil {
		return "", fmt.Errorf("window average: %w", err)
	}

	customers, err := n.users.FindCustomers()
	if err != nil {
		return "", fmt.Errorf("load customers: %w", err)
	}

	var sent, skipped, failed int
	for _, user := range customers {
		scores, err := n.scores.FindByUserInWindow(user.ID, from, to)
		if err != nil {
			return "", fmt.Errorf("scores for user %d: %w", user.ID, err)
		}
		if len(scores) == 0 {
			skipped++
			continue
		}

		report := buildReport(user, scores, from, overallAvg, n.quizzes)

		filename, err := n.persistReport(report)
		if err != nil {
			return "", fmt.Errorf("persist report for user %d: %w", user.ID, err)
		}

		subject := fmt.Sprintf("Your quiz performance report — %s", from.Format("January 2006"))
		if err := n.mailer.Send(user.Email, subject, report.SummaryText(), n.artifactPath(filename)); err != nil {
			n.logger.Warn("report email failed",
				zap.Uint("user_id", user.ID), zap.Error(err))
			failed++
			continue
		}
		sent++
	}

	return fmt.Sprintf("reports sent: %d, skipped: %d, failed: %d", sent, skipped, failed), nil
}

func (n *Notifier) artifactPath(filename string) string {
	return filepath.Join(n.dir, filename)
}

// previousMonthWindow returns [first day of last month, first day of this
// month) in the reference time's location.
func previousMonthWindow(ref time.Time) (time.Time, time.Time) {
	firstOfThis := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	firstOfLast := firstOfThis.AddDate(0, -1, 0)
	return firstOfLast, firstOfThis
}
