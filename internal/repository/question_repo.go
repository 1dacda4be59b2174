package repository

import (
	"gorm.io/gorm"

	"quizhub/internal/models"
)

// QuestionRepository handles question database operations.
type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// FindByQuiz returns all questions of a quiz.
func (r *QuestionRepository) FindByQuiz(quizID string) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.Where("quiz_id = ?", quizID).Find(&questions).Error
	return questions, err
}

// FindByID finds a question by ID.
func (r *QuestionRepository) FindByID(id string) (*models.Question, error) {
	var question models.Question
	if err := r.db.Where("id = ?", id).First(&question).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// Exists checks whether a question with the given ID exists.
func (r *QuestionRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Question{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Create inserts a new question.
func (r *QuestionRepository) Create(question *models.Question) error {
	return r.db.Create(question).Error
}

// Update updates question fields.
func (r *QuestionRepository) Update(id string, updates map[string]interface{}) error {
	return r.db.Model(&models.Question{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes a question.
func (r *QuestionRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Question{}).Error
}
