package models

import "time"

// CommissionRule describes how a campaign pays out. Exactly one of Ratio
// (PERCENTAGE mode) or Commission (FIXED mode) is meaningful; the payloads
// deliver both fields independently so both stay nullable here and Mode
// decides which one is read.
type CommissionRule struct {
	ID         int64          `json:"id"`
	CampaignID int64          `json:"campaign_id"`
	Name       string         `json:"name"`
	Mode       CommissionMode `json:"mode"`
	Ratio      *string        `json:"ratio,omitempty"`      // decimal string, e.g. "0.10"
	Commission *string        `json:"commission,omitempty"` // decimal string, e.g. "15.00"
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
