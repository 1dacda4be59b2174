package models

import "time"

// Score maps to the `scores` table. One row per completed quiz attempt.
type Score struct {
	ID         string    `gorm:"column:id;primaryKey;size:64" json:"score_id"`
	QuizID     string    `gorm:"column:quiz_id;size:64;index" json:"q_id"`
	UserID     uint      `gorm:"column:user_id;index" json:"user_id"`
	Timestamp  time.Time `gorm:"column:timestamp;index" json:"time_stamp"`
	TotalScore float64   `gorm:"column:total_score" json:"total_score"`
}

func (Score) TableName() string {
	return "scores"
}
