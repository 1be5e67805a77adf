package models

import "time"

// Settlement is a finalized monthly accounting record, structurally parallel
// to Transaction but batched per settlement month.
type Settlement struct {
	ID          int64       `json:"id"`
	PublisherID int64       `json:"publisher_id"`
	CampaignID  *int64      `json:"campaign_id,omitempty"`
	Month       string      `json:"month"` // "2024-05"
	TotalPrice  string      `json:"total_price"`
	Commission  string      `json:"commission"`
	Currency    Currency    `json:"currency"`
	OrderStatus OrderStatus `json:"order_status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
