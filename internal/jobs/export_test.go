package jobs

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizhub/internal/models"
)

type fakeScores struct {
	byUser map[uint][]models.Score
	all    []models.Score
}

func (f *fakeScores) FindByUser(userID uint) ([]models.Score, error) {
	return f.byUser[userID], nil
}

func (f *fakeScores) FindAll() ([]models.Score, error) {
	return f.all, nil
}

type fakeNamer map[string]string

func (f fakeNamer) NameByID(id string) (string, error) {
	return f[id], nil
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func testExporter(t *testing.T, scores *fakeScores, names fakeNamer) (*Exporter, string) {
	t.Helper()
	dir := t.TempDir()
	e := NewExporter(scores, names, dir)
	e.now = func() time.Time {
		return time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	}
	return e, dir
}

func TestUserExport(t *testing.T) {
	ts := time.Date(2026, 2, 1, 9, 15, 30, 0, time.UTC)
	scores := &fakeScores{byUser: map[uint][]models.Score{
		7: {
			{ID: "s1", QuizID: "q1", UserID: 7, Timestamp: ts, TotalScore: 87.5},
			{ID: "s2", QuizID: "q2", UserID: 7, Timestamp: ts.Add(time.Hour), TotalScore: 60},
		},
	}}
	names := fakeNamer{"q1": "Algebra Basics", "q2": "Geometry"}
	e, dir := testExporter(t, scores, names)

	args, _ := json.Marshal(UserExportArgs{UserID: 7})
	filename, err := e.UserExport(context.Background(), args)
	require.NoError(t, err)

	assert.Contains(t, filename, "user_7_scores_20260315103000_")
	assert.Equal(t, uint(7), ExportOwnerID(filename))

	rows := readCSV(t, filepath.Join(dir, filename))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Quiz ID", "Quiz Name", "Score", "Timestamp"}, rows[0])
	assert.Equal(t, []string{"q1", "Algebra Basics", "87.5", "2026-02-01 09:15:30"}, rows[1])
	assert.Equal(t, []string{"q2", "Geometry", "60", "2026-02-01 10:15:30"}, rows[2])
}

func TestUserExportEmptyHistory(t *testing.T) {
	e, dir := testExporter(t, &fakeScores{byUser: map[uint][]models.Score{}}, fakeNamer{})

	args, _ := json.Marshal(UserExportArgs{UserID: 3})
	filename, err := e.UserExport(context.Background(), args)
	require.NoError(t, err)

	// Header-only artifact, still a valid file.
	rows := readCSV(t, filepath.Join(dir, filename))
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Quiz ID", "Quiz Name", "Score", "Timestamp"}, rows[0])
}

func TestUserExportRejectsMissingUser(t *testing.T) {
	e, _ := testExporter(t, &fakeScores{}, fakeNamer{})

	_, err := e.UserExport(context.Background(), json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestAllExport(t *testing.T) {
	ts := time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)
	scores := &fakeScores{all: []models.Score{
		{ID: "s1", QuizID: "q1", UserID: 2, Timestamp: ts, TotalScore: 100},
		{ID: "s2", QuizID: "gone", UserID: 5, Timestamp: ts.Add(time.Minute), TotalScore: 42.25},
	}}
	names := fakeNamer{"q1": "Algebra Basics"}
	e, dir := testExporter(t, scores, names)

	filename, err := e.AllExport(context.Background(), nil)
	require.NoError(t, err)

	assert.Contains(t, filename, "all_scores_20260315103000_")
	assert.Zero(t, ExportOwnerID(filename))

	rows := readCSV(t, filepath.Join(dir, filename))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"User ID", "Quiz ID", "Quiz Name", "Score", "Timestamp"}, rows[0])
	assert.Equal(t, []string{"2", "q1", "Algebra Basics", "100", "2026-02-10 14:00:00"}, rows[1])
	// A deleted quiz keeps its row with an empty name.
	assert.Equal(t, []string{"5", "gone", "", "42.25", "2026-02-10 14:01:00"}, rows[2])
}

func TestExportFilenamesNeverCollide(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	a := ExportFilename("user_7_scores", now)
	b := ExportFilename("user_7_scores", now)
	assert.NotEqual(t, a, b, "same subject and second must still yield distinct names")
}

func TestExportOwnerID(t *testing.T) {
	assert.Equal(t, uint(12), ExportOwnerID("user_12_scores_20260315103000_abcd1234.csv"))
	assert.Zero(t, ExportOwnerID("all_scores_20260315103000_abcd1234.csv"))
	assert.Zero(t, ExportOwnerID("report_12_202602_abcd1234.html"))
	assert.Zero(t, ExportOwnerID("user__scores.csv"))
	assert.Zero(t, ExportOwnerID("user_abc_scores.csv"))
}
