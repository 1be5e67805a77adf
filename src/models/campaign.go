package models

import "time"

// Campaign mirrors an advertiser campaign on the affiliate network.
// The ID is the network's numeric id, assigned by the caller on first sync,
// never auto-generated locally.
type Campaign struct {
	ID                int64             `json:"id"`
	PublisherID       int64             `json:"publisher_id"`
	Name              string            `json:"name"`
	URL               string            `json:"url"`
	ApplicationStatus ApplicationStatus `json:"application_status"`
	CrossDevice       YesNo             `json:"cross_device"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
