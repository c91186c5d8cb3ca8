package model

type Skill struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Category string `gorm:"size:50;index" json:"category"`
}

func (Skill) TableName() string {
	return "skills"
}
