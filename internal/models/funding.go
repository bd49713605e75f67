package models

import (
	"strconv"
	"time"
)

// Contribution is the backend's record of a payment to a crowdfunding project.
type Contribution struct {
	ID            string    `json:"id"`
	ContributorID string    `json:"contributor_wallet"`
	Amount        float64   `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// Donation is the backend's record of a payment to a private-funding project.
// Older crowdfunding projects may also carry legacy donations.
type Donation struct {
	ID           string    `json:"id"`
	DonorAddress string    `json:"donor_wallet"`
	Amount       float64   `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// FundingRecord is the single normalized shape both entity kinds are mapped to
// before being merged into one feed.
type FundingRecord struct {
	ID                 string    `json:"id"`
	DonorWalletAddress string    `json:"donor_wallet_address"`
	Amount             float64   `json:"amount"`
	CreatedAt          time.Time `json:"created_at"`
}

// NormalizeContribution maps a contribution to the shared feed shape.
func NormalizeContribution(c Contribution) FundingRecord {
	return FundingRecord{
		ID:                 c.ID,
		DonorWalletAddress: c.ContributorID,
		Amount:             c.Amount,
		CreatedAt:          c.CreatedAt,
	}
}

// NormalizeDonation maps a donation to the shared feed shape.
func NormalizeDonation(d Donation) FundingRecord {
	return FundingRecord{
		ID:                 d.ID,
		DonorWalletAddress: d.DonorAddress,
		Amount:             d.Amount,
		CreatedAt:          d.CreatedAt,
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCount(v int) string {
	return strconv.Itoa(v)
}
