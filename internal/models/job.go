package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusClosed     JobStatus = "closed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusInProgress, JobStatusClosed:
		return true
	}
	return false
}

type BudgetType string

const (
	BudgetFixed  BudgetType = "fixed"
	BudgetHourly BudgetType = "hourly"
)

func (b BudgetType) Valid() bool {
	return b == BudgetFixed || b == BudgetHourly
}

type Job struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Title           string          `gorm:"type:varchar(200);not null" json:"title"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	LongDescription string          `gorm:"type:text" json:"long_description"`
	CategoryID      *uint           `gorm:"index" json:"category_id,omitempty"`
	BudgetMin       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"budget_min"`
	BudgetMax       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"budget_max"`
	BudgetType      BudgetType      `gorm:"type:varchar(20);not null;default:fixed" json:"budget_type"`
	Location        string          `gorm:"type:varchar(150);index" json:"location"`
	Duration        string          `gorm:"type:varchar(100)" json:"duration"`
	Status          JobStatus       `gorm:"type:varchar(20);not null;default:open;index" json:"status"`
	ProposalsCount  int             `gorm:"not null;default:0" json:"proposals_count"`
	ViewsCount      int             `gorm:"not null;default:0" json:"views_count"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client   *Profile  `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Skills   []Skill   `gorm:"many2many:job_skills;" json:"skills,omitempty"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobStatusOpen
	}
	if j.BudgetType == "" {
		j.BudgetType = BudgetFixed
	}
	return nil
}
