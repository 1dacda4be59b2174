package repository

import (
	"time"

	"gorm.io/gorm"

	"quizhub/internal/models"
)

// QuizRepository handles quiz database operations.
type QuizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// FindByChapter returns all quizzes of a chapter.
func (r *QuizRepository) FindByChapter(chapterID string) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.db.Where("chapter_id = ?", chapterID).Find(&quizzes).Error
	return quizzes, err
}

// FindAll returns all quizzes.
func (r *QuizRepository) FindAll() ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.db.Find(&quizzes).Error
	return quizzes, err
}

// FindByID finds a quiz by ID.
func (r *QuizRepository) FindByID(id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.Where("id = ?", id).First(&quiz).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// Exists checks whether a quiz with the given ID exists.
func (r *QuizRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Quiz{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Create inserts a new quiz.
func (r *QuizRepository) Create(quiz *models.Quiz) error {
	return r.db.Create(quiz).Error
}

// Update updates quiz fields.
func (r *QuizRepository) Update(id string, updates map[string]interface{}) error {
	return r.db.Model(&models.Quiz{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes a quiz and its questions. Score rows keep their quiz ID;
// exports fall back to an empty quiz name for them.
func (r *QuizRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Quiz{}).Error
	})
}

// NameByID returns the quiz display name, or "" when the quiz was deleted.
func (r *QuizRepository) NameByID(id string) (string, error) {
	var quiz models.Quiz
	err := r.db.Select("name").Where("id = ?", id).First(&quiz).Error
	if IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return quiz.Name, nil
}

// Search returns quizzes whose name matches the query.
// An empty query returns everything.
func (r *QuizRepository) Search(query string) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	db := r.db.Model(&models.Quiz{})
	if query != "" {
		db = db.Where("name LIKE ?", "%"+query+"%")
	}
	err := db.Find(&quizzes).Error
	return quizzes, err
}

// AnyScheduledOnOrAfter reports whether at least one quiz is dated on or
// after the given day.
func (r *QuizRepository) AnyScheduledOnOrAfter(day time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.Quiz{}).Where("date_of_quiz >= ?", day).Count(&count).Error
	return count > 0, err
}

// Count returns the total number of quizzes.
func (r *QuizRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Quiz{}).Count(&count).Error
	return count, err
}
