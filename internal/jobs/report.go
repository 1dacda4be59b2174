package jobs

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"quizhub/internal/models"
)

// Report holds one user's aggregated statistics for a month window plus the
// rows of the per-quiz table.
type Report struct {
	UserName     string
	UserID       uint
	Month        time.Time
	QuizCount    int
	TotalScore   float64
	AverageScore float64
	BestScore    float64
	WorstScore   float64
	SubjectAvgs  []SubjectAverage
	Ranking      string // "above average" or "below average"
	OverallAvg   float64
	Rows         []ReportRow
}

type SubjectAverage struct {
	Subject string
	Average float64
}

type ReportRow struct {
	QuizName  string
	Score     float64
	Timestamp time.Time
}

// buildReport computes the statistics for one user from their window scores.
// Rows come in ascending timestamp order from the repository and stay that
// way in the rendered table.
func buildReport(user models.User, scores []models.Score, month time.Time, overallAvg float64, quizzes QuizDirectory) Report {
	report := Report{
		UserName:   user.Name,
		UserID:     user.ID,
		Month:      month,
		QuizCount:  len(scores),
		BestScore:  scores[0].TotalScore,
		WorstScore: scores[0].TotalScore,
		OverallAvg: overallAvg,
	}

	subjectTotals := make(map[string]float64)
	subjectCounts := make(map[string]int)

	for _, s := range scores {
		report.TotalScore += s.TotalScore
		if s.TotalScore > report.BestScore {
			report.BestScore = s.TotalScore
		}
		if s.TotalScore < report.WorstScore {
			report.WorstScore = s.TotalScore
		}

		// A deleted quiz still counts toward the totals; it just loses its
		// display name and subject grouping.
		quizName := ""
		subjectID := ""
		if quiz, err := quizzes.FindByID(s.QuizID); err == nil && quiz != nil {
			quizName = quiz.Name
			subjectID = quiz.SubjectID
		}
		if subjectID != "" {
			subjectTotals[subjectID] += s.TotalScore
			subjectCounts[subjectID]++
		}

		report.Rows = append(report.Rows, ReportRow{
			QuizName:  quizName,
			Score:     s.TotalScore,
			Timestamp: s.Timestamp,
		})
	}

	report.AverageScore = report.TotalScore / float64(len(scores))
	if report.AverageScore >= overallAvg {
		report.Ranking = "above average"
	} else {
		report.Ranking = "below average"
	}

	subjects := make([]string, 0, len(subjectTotals))
	for subject := range subjectTotals {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	for _, subject := range subjects {
		report.SubjectAvgs = append(report.SubjectAvgs, SubjectAverage{
			Subject: subject,
			Average: subjectTotals[subject] / float64(subjectCounts[subject]),
		})
	}

	return report
}

// SummaryText is the plain-text email body accompanying the attached report.
func (r Report) SummaryText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", r.UserName)
	fmt.Fprintf(&b, "Here is your quiz performance for %s:\n\n", r.Month.Format("January 2006"))
	fmt.Fprintf(&b, "  Quizzes taken:  %d\n", r.QuizCount)
	fmt.Fprintf(&b, "  Average score:  %.1f\n", r.AverageScore)
	fmt.Fprintf(&b, "  Best score:     %.1f\n", r.BestScore)
	fmt.Fprintf(&b, "  Worst score:    %.1f\n", r.WorstScore)
	fmt.Fprintf(&b, "  Standing:       %s (cohort average %.1f)\n", r.Ranking, r.OverallAvg)
	b.WriteString("\nThe attached report has the full breakdown.\n")
	return b.String()
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Quiz report — {{.Month.Format "January 2006"}}</title></head>
<body>
<h1>Performance report for {{.UserName}}</h1>
<p>Period: {{.Month.Format "January 2006"}}</p>
<ul>
  <li>Quizzes taken: {{.QuizCount}}</li>
  <li>Total score: {{printf "%.1f" .TotalScore}}</li>
  <li>Average score: {{printf "%.1f" .AverageScore}}</li>
  <li>Best score: {{printf "%.1f" .BestScore}}</li>
  <li>Worst score: {{printf "%.1f" .WorstScore}}</li>
  <li>Standing: {{.Ranking}} (cohort average {{printf "%.1f" .OverallAvg}})</li>
</ul>
{{if .SubjectAvgs}}
<h2>Average per subject</h2>
<table border="1" cellpadding="4">
  <tr><th>Subject</th><th>Average</th></tr>
  {{range .SubjectAvgs}}<tr><td>{{.Subject}}</td><td>{{printf "%.1f" .Average}}</td></tr>
  {{end}}
</table>
{{end}}
<h2>Attempts</h2>
<table border="1" cellpadding="4">
  <tr><th>Quiz</th><th>Score</th><th>Taken at</th></tr>
  {{range .Rows}}<tr><td>{{.QuizName}}</td><td>{{printf "%.1f" .Score}}</td><td>{{.Timestamp.Format "2006-01-02 15:04"}}</td></tr>
  {{end}}
</table>
</body>
</html>
`))

// persistReport renders the document and writes it as a write-once artifact
// next to the CSV exports, using the same temp-then-rename discipline.
func (n *Notifier) persistReport(report Report) (string, error) {
	if err := os.MkdirAll(n.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	qualifier := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	filename := fmt.Sprintf("report_%d_%s_%s.html",
		report.UserID, report.Month.Format("200601"), qualifier)

	tmp, err := os.CreateTemp(n.dir, filename+".tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := reportTemplate.Execute(tmp, report); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("render report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, filepath.Join(n.dir, filename)); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("finalize report: %w", err)
	}
	return filename, nil
}
