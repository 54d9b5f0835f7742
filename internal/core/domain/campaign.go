package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Platform identifies the ad platform a campaign runs on.
type Platform string

const (
	PlatformMeta      Platform = "meta"
	PlatformGoogle    Platform = "google"
	PlatformTikTok    Platform = "tiktok"
	PlatformPinterest Platform = "pinterest"
	PlatformLinkedIn  Platform = "linkedin"
)

// Objective is the declared goal of a campaign.
type Objective string

const (
	ObjectiveAwareness  Objective = "awareness"
	ObjectiveTraffic    Objective = "traffic"
	ObjectiveEngagement Objective = "engagement"
	ObjectiveLeads      Objective = "leads"
	ObjectiveSales      Objective = "sales"
)

// Status is the lifecycle state of a campaign.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusPaused  Status = "paused"
	StatusDeleted Status = "deleted"
)

// Campaign represents an advertising campaign managed by the automation
// engine. Money fields are decimal, currency-denominated.
type Campaign struct {
	ID          string
	Name        string
	Platform    Platform
	Status      Status
	Objective   Objective
	DailyBudget decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanTransitionTo reports whether moving from s to the given status is a
// legal lifecycle step. Deleted campaigns never come back.
func (s Status) CanTransitionTo(to Status) bool {
	switch s {
	case StatusDraft:
		return to == StatusActive
	case StatusActive:
		return to == StatusPaused || to == StatusDeleted
	case StatusPaused:
		return to == StatusActive || to == StatusDeleted
	default:
		return false
	}
}

func IsSupportedPlatform(value Platform) bool {
	switch value {
	case PlatformMeta, PlatformGoogle, PlatformTikTok, PlatformPinterest, PlatformLinkedIn:
		return true
	default:
		return false
	}
}

func IsSupportedObjective(value Objective) bool {
	switch value {
	case ObjectiveAwareness, ObjectiveTraffic, ObjectiveEngagement, ObjectiveLeads, ObjectiveSales:
		return true
	default:
		return false
	}
}

// ValidateBasics checks the fields a new campaign must carry before it is
// persisted. The budget may be zero but never negative.
func (c Campaign) ValidateBasics() bool {
	name := strings.TrimSpace(c.Name)
	return name != "" &&
		IsSupportedPlatform(c.Platform) &&
		IsSupportedObjective(c.Objective) &&
		!c.DailyBudget.IsNegative() &&
		!c.EndDate.Before(c.StartDate)
}
