package models

import "time"

// ProjectStatus is the backend-owned lifecycle state of a funding project.
type ProjectStatus string

const (
	StatusDraft     ProjectStatus = "draft"
	StatusActive    ProjectStatus = "active"
	StatusFunded    ProjectStatus = "funded"
	StatusCompleted ProjectStatus = "completed"
	StatusCancelled ProjectStatus = "cancelled"
)

// ProjectKind distinguishes public crowdfunding campaigns from private deals.
type ProjectKind string

const (
	KindCrowdfunding ProjectKind = "crowdfunding"
	KindPrivate      ProjectKind = "private"
)

// ProjectSnapshot is the client's read-only cached copy of a project's funding
// state. The backend is authoritative; snapshots held here are overwritten by
// the next successful poll.
type ProjectSnapshot struct {
	ID           string        `json:"id" bson:"id"`
	Title        string        `json:"title,omitempty" bson:"title,omitempty"`
	Kind         ProjectKind   `json:"kind" bson:"kind"`
	Status       ProjectStatus `json:"status" bson:"status"`
	FundingGoal  float64       `json:"funding_goal" bson:"funding_goal"`
	AmountRaised float64       `json:"amount_raised" bson:"amount_raised"`
	BackersCount int           `json:"backers_count" bson:"backers_count"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// Fingerprint derives a value from the render-relevant fields so pollers can
// detect "no meaningful change" between responses without deep comparison.
func (p ProjectSnapshot) Fingerprint() string {
	return string(p.Status) + "|" +
		formatAmount(p.AmountRaised) + "|" +
		formatCount(p.BackersCount) + "|" +
		p.UpdatedAt.UTC().Format(time.RFC3339Nano)
}
