package repository

import (
	"errors"

	"gorm.io/gorm"

	"quizhub/internal/models"
)

// UserRepository handles all user database operations.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID finds a user by numeric ID.
func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email address.
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail checks whether a user with the given email is registered.
func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Create inserts a new user.
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindCustomers returns all active users with the customer role.
func (r *UserRepository) FindCustomers() ([]models.User, error) {
	var users []models.User
	err := r.db.Where("role = ? AND active = ?", models.RoleCustomer, true).Find(&users).Error
	return users, err
}

// Search returns users matching the query against name or email.
// An empty query returns everyone.
func (r *UserRepository) Search(query string) ([]models.User, error) {
	var users []models.User
	db := r.db.Model(&models.User{})
	if query != "" {
		like := "%" + query + "%"
		db = db.Where("name LIKE ? OR email LIKE ?", like, like)
	}
	err := db.Find(&users).Error
	return users, err
}

// Count returns the total number of users.
func (r *UserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
