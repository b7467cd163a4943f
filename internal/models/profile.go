package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserType string

const (
	UserTypeClient     UserType = "client"
	UserTypeFreelancer UserType = "freelancer"
)

func (t UserType) Valid() bool {
	return t == UserTypeClient || t == UserTypeFreelancer
}

// Profile is the marketplace account behind an identity-provider user.
// ExternalID holds the provider's user id (the token subject).
type Profile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"type:varchar(191);uniqueIndex;not null" json:"-"`
	Email      string    `gorm:"type:varchar(255)" json:"email"`
	FullName   string    `gorm:"type:varchar(150)" json:"full_name"`
	UserType   UserType  `gorm:"type:varchar(20);not null;default:client;index" json:"user_type"`

	Bio       string `gorm:"type:text" json:"bio"`
	Location  string `gorm:"type:varchar(150);index" json:"location"`
	Phone     string `gorm:"type:varchar(30)" json:"phone"`
	AvatarURL string `gorm:"type:text" json:"avatar_url"`

	HourlyRate    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"hourly_rate"`
	AvgRating     float64         `gorm:"not null;default:0" json:"avg_rating"`
	ReviewCount   int             `gorm:"not null;default:0" json:"review_count"`
	CompletedJobs int             `gorm:"not null;default:0;index" json:"completed_jobs"`
	SuccessRate   int             `gorm:"not null;default:0" json:"success_rate"`
	TotalEarnings decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_earnings"`

	Availability string         `gorm:"type:varchar(50)" json:"availability"`
	ResponseTime string         `gorm:"type:varchar(50)" json:"response_time"`
	Languages    datatypes.JSON `json:"languages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClientInfo     *ClientInfo       `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"client_info,omitempty"`
	Skills         []FreelancerSkill `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"skills,omitempty"`
	Education      []Education       `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"education,omitempty"`
	Certifications []Certification   `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"certifications,omitempty"`
	Portfolio      []PortfolioItem   `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"portfolio,omitempty"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.UserType == "" {
		p.UserType = UserTypeClient
	}
	return nil
}

// DisplayName falls back to the email when the name is empty.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

// ClientInfo holds optional hiring details for client profiles.
type ClientInfo struct {
	ProfileID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"profile_id"`
	CompanyName string    `gorm:"type:varchar(150)" json:"company_name"`
	HireRate    int       `gorm:"not null;default:0" json:"hire_rate"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ClientInfo) TableName() string { return "client_info" }
