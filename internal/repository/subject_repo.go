package repository

import (
	"gorm.io/gorm"

	"quizhub/internal/models"
)

// SubjectRepository handles subject database operations.
type SubjectRepository struct {
	db *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindAll returns all subjects.
func (r *SubjectRepository) FindAll() ([]models.Subject, error) {
	var subjects []models.Subject
	err := r.db.Find(&subjects).Error
	return subjects, err
}

// FindByID finds a subject by ID.
func (r *SubjectRepository) FindByID(id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.Where("id = ?", id).First(&subject).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

// Exists checks whether a subject with the given ID exists.
func (r *SubjectRepository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Subject{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Create inserts a new subject.
func (r *SubjectRepository) Create(subject *models.Subject) error {
	return r.db.Create(subject).Error
}

// Update updates subject fields.
func (r *SubjectRepository) Update(id string, updates map[string]interface{}) error {
	return r.db.Model(&models.Subject{}).Where("id = ?", id).Updates(updates).Error
}

// Count returns the total number of subjects.
func (r *SubjectRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Subject{}).Count(&count).Error
	return count, err
}

// Delete removes a subject and its dependent chapters, quizzes and questions.
func (r *SubjectRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("subject_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&models.Quiz{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&models.Chapter{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Subject{}).Error
	})
}
