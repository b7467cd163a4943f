package models

import "time"

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"type:varchar(20)" json:"icon"`
	JobCount    int       `gorm:"not null;default:0" json:"job_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type Skill struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug       string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
}
