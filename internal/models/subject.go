package models

// Subject maps to the `subjects` table.
type Subject struct {
	ID          string `gorm:"column:id;primaryKey;size:64" json:"sub_id"`
	Name        string `gorm:"column:name;size:255" json:"sub_name"`
	Description string `gorm:"column:description;type:text" json:"sub_desc"`
}

func (Subject) TableName() string {
	return "subjects"
}

// Chapter maps to the `chapters` table.
type Chapter struct {
	ID          string `gorm:"column:id;primaryKey;size:64" json:"chp_id"`
	Name        string `gorm:"column:name;size:255" json:"chp_name"`
	Description string `gorm:"column:description;type:text" json:"chp_desc"`
	SubjectID   string `gorm:"column:subject_id;size:64;index" json:"sub_id"`
}

func (Chapter) TableName() string {
	return "chapters"
}
