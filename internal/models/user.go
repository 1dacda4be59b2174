package models

import "time"

// User roles. Admin accounts are seeded, never self-registered.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User maps to the `users` table.
type User struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email         string    `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	Name          string    `gorm:"column:name;size:255" json:"name"`
	PasswordHash  string    `gorm:"column:password_hash;size:255" json:"-"`
	Role          string    `gorm:"column:role;size:20;default:'customer';index" json:"role"`
	Qualification string    `gorm:"column:qualification;size:255" json:"qualification"`
	DOB           string    `gorm:"column:dob;size:20" json:"dob"`
	Active        bool      `gorm:"column:active;default:true" json:"active"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
