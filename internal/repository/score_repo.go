package repository

import (
	"time"

	"gorm.io/gorm"

	"quizhub/internal/models"
)

// ScoreRepository handles score database operations.
type ScoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Create inserts a new score record.
func (r *ScoreRepository) Create(score *models.Score) error {
	return r.db.Create(score).Error
}

// FindByUser returns all scores of a user in insertion order.
func (r *ScoreRepository) FindByUser(userID uint) ([]models.Score, error) {
	var scores []models.Score
	err := r.db.Where("user_id = ?", userID).Order("timestamp ASC").Find(&scores).Error
	return scores, err
}

// FindAll returns every score record in insertion order.
func (r *ScoreRepository) FindAll() ([]models.Score, error) {
	var scores []models.Score
	err := r.db.Order("timestamp ASC").Find(&scores).Error
	return scores, err
}

// Filter returns scores optionally restricted by user and/or quiz.
func (r *ScoreRepository) Filter(userID uint, quizID string) ([]models.Score, error) {
	var scores []models.Score
	db := r.db.Model(&models.Score{})
	if userID != 0 {
		db = db.Where("user_id = ?", userID)
	}
	if quizID != "" {
		db = db.Where("quiz_id = ?", quizID)
	}
	err := db.Order("timestamp ASC").Find(&scores).Error
	return scores, err
}

// LatestForUserQuiz returns the most recent score of a user on a quiz.
func (r *ScoreRepository) LatestForUserQuiz(userID uint, quizID string) (*models.Score, error) {
	var score models.Score
	err := r.db.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("timestamp DESC").First(&score).Error
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// LatestTimestampForUser returns the most recent score timestamp of a user.
// The bool result is false when the user has no scores at all.
func (r *ScoreRepository) LatestTimestampForUser(userID uint) (time.Time, bool, error) {
	var score models.Score
	err := r.db.Where("user_id = ?", userID).Order("timestamp DESC").First(&score).Error
	if IsNotFound(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return score.Timestamp, true, nil
}

// FindByUserInWindow returns a user's scores inside [from, to), oldest first.
func (r *ScoreRepository) FindByUserInWindow(userID uint, from, to time.Time) ([]models.Score, error) {
	var scores []models.Score
	err := r.db.Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, from, to).
		Order("timestamp ASC").Find(&scores).Error
	return scores, err
}

// AverageInWindow returns the average of every score (any user) inside
// [from, to). Zero when the window is empty.
func (r *ScoreRepository) AverageInWindow(from, to time.Time) (float64, error) {
	var avg *float64
	err := r.db.Model(&models.Score{}).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Select("AVG(total_score)").Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// Count returns the total number of recorded attempts.
func (r *ScoreRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Score{}).Count(&count).Error
	return count, err
}

// Average returns the average score across all attempts, zero when none exist.
func (r *ScoreRepository) Average() (float64, error) {
	var avg *float64
	err := r.db.Model(&models.Score{}).Select("AVG(total_score)").Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}
