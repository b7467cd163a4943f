package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "pending"
	ProposalAccepted  ProposalStatus = "accepted"
	ProposalRejected  ProposalStatus = "rejected"
	ProposalWithdrawn ProposalStatus = "withdrawn"
)

type Proposal struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	JobID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_proposals_job_freelancer" json:"job_id"`
	FreelancerID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_proposals_job_freelancer;index" json:"freelancer_id"`
	CoverLetter      string          `gorm:"type:text;not null" json:"cover_letter"`
	ProposedBudget   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"proposed_budget"`
	ProposedDuration string          `gorm:"type:varchar(100)" json:"proposed_duration"`
	Status           ProposalStatus  `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Job        *Job     `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"job,omitempty"`
	Freelancer *Profile `gorm:"foreignKey:FreelancerID;constraint:OnDelete:CASCADE" json:"freelancer,omitempty"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProposalPending
	}
	return nil
}
