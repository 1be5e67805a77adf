package models

import "time"

// PromotionCampaign is a time-bounded promotion (discount or coupon) the
// network runs for a campaign.
type PromotionCampaign struct {
	ID            int64         `json:"id"`
	PublisherID   int64         `json:"publisher_id"`
	CampaignID    *int64        `json:"campaign_id,omitempty"`
	Name          string        `json:"name"`
	PromotionType PromotionType `json:"promotion_type"`
	CouponCode    string        `json:"coupon_code"`
	URL           string        `json:"url"`
	StartTime     string        `json:"start_time"`
	EndTime       string        `json:"end_time"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
