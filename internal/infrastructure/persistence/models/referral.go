package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/worldref/backend/internal/domain/referral"
)

// MemberModel is the persistence model for the Member aggregate.
// current_assignments and max_assignments back the guarded slot
// reservation UPDATE, so both live on this row rather than being
// derived from assignments.
type MemberModel struct {
	AggregateModel
	AccountID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Name               string          `gorm:"type:varchar(200);not null"`
	ReferralCode       string          `gorm:"type:varchar(64);index"`
	ReferralLink       string          `gorm:"type:varchar(500)"`
	CurrentAssignments int             `gorm:"not null;default:0"`
	MaxAssignments     int             `gorm:"not null;default:10"`
	IsActive           bool            `gorm:"not null;default:false;index"`
	TotalEarned        decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0"`
}

// TableName returns the table name for GORM
func (MemberModel) TableName() string {
	return "members"
}

// ToDomain converts the persistence model to a domain Member entity
func (m *MemberModel) ToDomain() *referral.Member {
	member := &referral.Member{
		AccountID:          m.AccountID,
		Name:               m.Name,
		ReferralCode:       m.ReferralCode,
		ReferralLink:       m.ReferralLink,
		CurrentAssignments: m.CurrentAssignments,
		MaxAssignments:     m.MaxAssignments,
		IsActive:           m.IsActive,
		TotalEarned:        m.TotalEarned,
	}
	m.PopulateAggregateRoot(&member.BaseAggregateRoot)
	return member
}

// FromDomain populates the persistence model from a domain Member entity
func (m *MemberModel) FromDomain(member *referral.Member) {
	m.FromDomainAggregateRoot(member.BaseAggregateRoot)
	m.AccountID = member.AccountID
	m.Name = member.Name
	m.ReferralCode = member.ReferralCode
	m.ReferralLink = member.ReferralLink
	m.CurrentAssignments = member.CurrentAssignments
	m.MaxAssignments = member.MaxAssignments
	m.IsActive = member.IsActive
	m.TotalEarned = member.TotalEarned
}

// AssignmentModel is the persistence model for the Assignment aggregate
type AssignmentModel struct {
	AggregateModel
	MemberID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID    *uuid.UUID      `gorm:"type:uuid;index"`
	IPAddress    string          `gorm:"type:varchar(45);index"`
	UserAgent    string          `gorm:"type:varchar(500)"`
	ReferralCode string          `gorm:"type:varchar(64)"`
	Status       string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	RewardAmount decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0"`
	AssignedAt   time.Time       `gorm:"not null;index"`
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (AssignmentModel) TableName() string {
	return "assignments"
}

// ToDomain converts the persistence model to a domain Assignment entity
func (m *AssignmentModel) ToDomain() *referral.Assignment {
	assignment := &referral.Assignment{
		MemberID:     m.MemberID,
		AccountID:    m.AccountID,
		IPAddress:    m.IPAddress,
		UserAgent:    m.UserAgent,
		ReferralCode: m.ReferralCode,
		Status:       referral.AssignmentStatus(m.Status),
		RewardAmount: m.RewardAmount,
		AssignedAt:   m.AssignedAt,
		CompletedAt:  m.CompletedAt,
	}
	m.PopulateAggregateRoot(&assignment.BaseAggregateRoot)
	return assignment
}

// FromDomain populates the persistence model from a domain Assignment entity
func (m *AssignmentModel) FromDomain(assignment *referral.Assignment) {
	m.FromDomainAggregateRoot(assignment.BaseAggregateRoot)
	m.MemberID = assignment.MemberID
	m.AccountID = assignment.AccountID
	m.IPAddress = assignment.IPAddress
	m.UserAgent = assignment.UserAgent
	m.ReferralCode = assignment.ReferralCode
	m.Status = string(assignment.Status)
	m.RewardAmount = assignment.RewardAmount
	m.AssignedAt = assignment.AssignedAt
	m.CompletedAt = assignment.CompletedAt
}

// ClickModel is the persistence model for the Click aggregate
type ClickModel struct {
	AggregateModel
	MemberID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	ReferralCode       string     `gorm:"type:varchar(64);index"`
	IPAddress          string     `gorm:"type:varchar(45)"`
	UserAgent          string     `gorm:"type:varchar(500)"`
	ClickedAt          time.Time  `gorm:"not null;index"`
	Converted          bool       `gorm:"not null;default:false;index"`
	ConvertedAt        *time.Time
	ConvertedAccountID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ClickModel) TableName() string {
	return "clicks"
}

// ToDomain converts the persistence model to a domain Click entity
func (m *ClickModel) ToDomain() *referral.Click {
	click := &referral.Click{
		MemberID:           m.MemberID,
		ReferralCode:       m.ReferralCode,
		IPAddress:          m.IPAddress,
		UserAgent:          m.UserAgent,
		ClickedAt:          m.ClickedAt,
		Converted:          m.Converted,
		ConvertedAt:        m.ConvertedAt,
		ConvertedAccountID: m.ConvertedAccountID,
	}
	m.PopulateAggregateRoot(&click.BaseAggregateRoot)
	return click
}

// FromDomain populates the persistence model from a domain Click entity
func (m *ClickModel) FromDomain(click *referral.Click) {
	m.FromDomainAggregateRoot(click.BaseAggregateRoot)
	m.MemberID = click.MemberID
	m.ReferralCode = click.ReferralCode
	m.IPAddress = click.IPAddress
	m.UserAgent = click.UserAgent
	m.ClickedAt = click.ClickedAt
	m.Converted = click.Converted
	m.ConvertedAt = click.ConvertedAt
	m.ConvertedAccountID = click.ConvertedAccountID
}
