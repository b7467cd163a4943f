package models

import (
	"time"

	"github.com/google/uuid"
)

// FreelancerSkill links a freelancer profile to a skill.
type FreelancerSkill struct {
	ProfileID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"profile_id"`
	SkillID          uint      `gorm:"primaryKey" json:"skill_id"`
	ProficiencyLevel string    `gorm:"type:varchar(30)" json:"proficiency_level"`

	Skill *Skill `gorm:"foreignKey:SkillID;constraint:OnDelete:CASCADE" json:"skill,omitempty"`
}

type Education struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProfileID   uuid.UUID `gorm:"type:uuid;index;not null" json:"profile_id"`
	Degree      string    `gorm:"type:varchar(150)" json:"degree"`
	Institution string    `gorm:"type:varchar(200)" json:"institution"`
	Year        int       `json:"year"`
	Description string    `gorm:"type:text" json:"description"`
}

func (Education) TableName() string { return "education" }

type Certification struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	ProfileID           uuid.UUID  `gorm:"type:uuid;index;not null" json:"profile_id"`
	Name                string     `gorm:"type:varchar(200)" json:"name"`
	IssuingOrganization string     `gorm:"type:varchar(200)" json:"issuing_organization"`
	IssueDate           *time.Time `json:"issue_date,omitempty"`
	CredentialURL       string     `gorm:"type:text" json:"credential_url"`
}

type PortfolioItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProfileID   uuid.UUID `gorm:"type:uuid;index;not null" json:"profile_id"`
	Title       string    `gorm:"type:varchar(200)" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"type:text" json:"image_url"`
	ProjectURL  string    `gorm:"type:text" json:"project_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func (PortfolioItem) TableName() string { return "portfolio" }
