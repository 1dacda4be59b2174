package repository

import (
	"gorm.io/gorm"

	"quizhub/internal/models"
)

// ChapterRepository handles chapter database operations.
type ChapterRepository struct {
	db *gorm.DB
}

func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// FindBySubject returns all chapters of a subject.
func (r *ChapterRepository) FindBySubject(subjectID string) ([]models.Chapter, error) {
	var chapters []models.Chapter
	err := r.db.Where("subject_id = ?", subjectID).Find(&chapters).Error
	return chapters, err
}

// FindByID finds a chapter by ID.
func (r *ChapterRepository) FindByID(id string) (*models.Chapter, error) {
	var chapter models.Chapter
	if err := r.db.Where("id = ?", id).First(&chapter).Error; err != nil {
		return nil, err
	}
	return &chapter, nil
}

// Exists checks whether a chapter with the given ID exists.
func (r *ChapterRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Chapter{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Create inserts a new chapter.
func (r *ChapterRepository) Create(chapter *models.Chapter) error {
	return r.db.Create(chapter).Error
}

// Update updates chapter fields.
func (r *ChapterRepository) Update(id string, updates map[string]interface{}) error {
	return r.db.Model(&models.Chapter{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes a chapter and its dependent quizzes and questions.
func (r *ChapterRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chapter_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chapter_id = ?", id).Delete(&models.Quiz{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Chapter{}).Error
	})
}

// CountQuestions counts questions belonging to a chapter.
func (r *ChapterRepository) CountQuestions(chapterID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Question{}).Where("chapter_id = ?", chapterID).Count(&count).Error
	return count, err
}
