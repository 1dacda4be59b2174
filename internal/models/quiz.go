package models

import "time"

// Quiz maps to the `quizzes` table. DateOfQuiz is the scheduled date;
// quizzes dated today or later count as upcoming for reminder purposes.
type Quiz struct {
	ID         string    `gorm:"column:id;primaryKey;size:64" json:"q_id"`
	Name       string    `gorm:"column:name;size:255" json:"q_name"`
	ChapterID  string    `gorm:"column:chapter_id;size:64;index" json:"chp_id"`
	SubjectID  string    `gorm:"column:subject_id;size:64;index" json:"sub_id"`
	DateOfQuiz time.Time `gorm:"column:date_of_quiz" json:"date_of_quiz"`
	Duration   string    `gorm:"column:duration;size:20" json:"time_dur"`
	Remarks    string    `gorm:"column:remarks;type:text" json:"remarks"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question maps to the `questions` table.
type Question struct {
	ID        string     `gorm:"column:id;primaryKey;size:64" json:"ques_id"`
	SubjectID string     `gorm:"column:subject_id;size:64;index" json:"sub_id"`
	ChapterID string     `gorm:"column:chapter_id;size:64;index" json:"chp_id"`
	QuizID    string     `gorm:"column:quiz_id;size:64;index" json:"q_id"`
	Statement string     `gorm:"column:statement;type:text" json:"statement"`
	Options   StringList `gorm:"column:options;type:text" json:"options"`
	Answer    string     `gorm:"column:answer;size:500" json:"answer,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
