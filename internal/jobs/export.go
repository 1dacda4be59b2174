package jobs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizhub/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// ScoreSource is the score data the export jobs read.
// Satisfied by repository.ScoreRepository.
type ScoreSource interface {
	FindByUser(userID uint) ([]models.Score, error)
	FindAll() ([]models.Score, error)
}

// QuizNamer resolves a quiz ID to its display name, "" when deleted.
// Satisfied by repository.QuizRepository.
type QuizNamer interface {
	NameByID(id string) (string, error)
}

// Exporter produces CSV artifacts on durable storage. Artifacts are
// write-once: every run generates a fresh timestamp-qualified filename and
// never touches earlier ones.
type Exporter struct {
	scores  ScoreSource
	quizzes QuizNamer
	dir     string
	now     func() time.Time
}

func NewExporter(scores ScoreSource, quizzes QuizNamer, dir string) *Exporter {
	return &Exporter{
		scores:  scores,
		quizzes: quizzes,
		dir:     dir,
		now:     time.Now,
	}
}

// UserExport is the handler for the user-export kind. Result is the
// generated filename.
func (e *Exporter) UserExport(_ context.Context, raw json.RawMessage) (string, error) {
	var args UserExportArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("decode user-export args: %w", err)
	}
	if args.UserID == 0 {
		return "", fmt.Errorf("user-export requires a user id")
	}

	scores, err := e.scores.FindByUser(args.UserID)
	if err != nil {
		return "", fmt.Errorf("load scores: %w", err)
	}

	rows := [][]string{{"Quiz ID", "Quiz Name", "Score", "Timestamp"}}
	for _, s := range scores {
		name, err := e.quizzes.NameByID(s.QuizID)
		if err != nil {
			return "", fmt.Errorf("resolve quiz name: %w", err)
		}
		rows = append(rows, []string{
			s.QuizID,
			name,
			formatScore(s.TotalScore),
			s.Timestamp.UTC().Format(timestampLayout),
		})
	}

	filename := ExportFilename(fmt.Sprintf("user_%d_scores", args.UserID), e.now())
	if err := e.writeCSV(filename, rows); err != nil {
		return "", err
	}
	return filename, nil
}

// AllExport is the handler for the all-export kind, covering every user.
func (e *Exporter) AllExport(_ context.Context, _ json.RawMessage) (string, error) {
	scores, err := e.scores.FindAll()
	if err != nil {
		return "", fmt.Errorf("load scores: %w", err)
	}

	rows := [][]string{{"User ID", "Quiz ID", "Quiz Name", "Score", "Timestamp"}}
	for _, s := range scores {
		name, err := e.quizzes.NameByID(s.QuizID)
		if err != nil {
			return "", fmt.Errorf("resolve quiz name: %w", err)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(s.UserID), 10),
			s.QuizID,
			name,
			formatScore(s.TotalScore),
			s.Timestamp.UTC().Format(timestampLayout),
		})
	}

	filename := ExportFilename("all_scores", e.now())
	if err := e.writeCSV(filename, rows); err != nil {
		return "", err
	}
	return filename, nil
}

// writeCSV writes rows to a temporary file in the export directory and
// renames it into place, so a crashed run never leaves a half-written
// artifact under the final name.
func (e *Exporter) writeCSV(filename string, rows [][]string) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp, err := os.CreateTemp(e.dir, filename+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)
	if err := writer.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(e.dir, filename)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize artifact: %w", err)
	}
	return nil
}

// ExportFilename builds a unique artifact name: subject, UTC timestamp and a
// short random qualifier so two runs in the same second never collide. The
// owning identity stays recoverable from the name for download access checks.
func ExportFilename(subject string, now time.Time) string {
	qualifier := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s.csv", subject, now.UTC().Format("20060102150405"), qualifier)
}

// ExportOwnerID extracts the numeric user ID embedded in a user-export
// filename. Returns 0 for all-export and report artifacts.
func ExportOwnerID(filename string) uint {
	if !strings.HasPrefix(filename, "user_") {
		return 0
	}
	rest := strings.TrimPrefix(filename, "user_")
	idx := strings.IndexByte(rest, '_')
	if idx <= 0 {
		return 0
	}
	id, err := strconv.ParseUint(rest[:idx], 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
