package reconcile

import (
	"fmt"

	"github.com/username/linkpulse/backend/src/models"
	"github.com/username/linkpulse/backend/src/normalize"
)

func findOrCreateCampaign(q dbtx, id, publisherID int64) (*models.Campaign, error) {
	// Atomic insert-if-absent: the primary key makes concurrent syncs of the
	// same campaign converge on a single row.
	_, err := q.Exec(`INSERT INTO campaigns (id, publisher_id) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`, id, publisherID)
	if err != nil && !isUniqueConstraintErr(err) {
		return nil, fmt.Errorf("inserting campaign %d: %w", id, err)
	}

	row := q.QueryRow(`SELECT id, publisher_id, name, url, application_status, cross_device FROM campaigns WHERE id = ?`, id)
	var c models.Campaign
	if err := row.Scan(&c.ID, &c.PublisherID, &c.Name, &c.URL, &c.ApplicationStatus, &c.CrossDevice); err != nil {
		return nil, fmt.Errorf("reading campaign %d: %w", id, err)
	}
	return &c, nil
}

func mergeCampaign(c *models.Campaign, p normalize.Payload) {
	c.Name, _ = p.String("name", "")
	c.URL, _ = p.String("url", "")
	c.ApplicationStatus, _ = p.ApplicationStatus("application_status")
	c.CrossDevice, _ = p.YesNo("cross_device")
}

func updateCampaign(q dbtx, c *models.Campaign) error {
	_, err := q.Exec(`UPDATE campaigns SET name = ?, url = ?, application_status = ?, cross_device = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		c.Name, c.URL, c.ApplicationStatus, c.CrossDevice, c.ID)
	return err
}

// FindOrCreateCampaign looks a campaign up by its external id, creating a
// bare row attached to the publisher when absent. An existing row is returned
// untouched.
func (u *Upserter) FindOrCreateCampaign(id, publisherID int64) (*models.Campaign, error) {
	return findOrCreateCampaign(u.db, id, publisherID)
}

// MergeCampaign overwrites every mapped field from the payload and persists
// the result. Wholesale per-field replacement, not a diff.
func (u *Upserter) MergeCampaign(c *models.Campaign, p normalize.Payload) error {
	mergeCampaign(c, p)
	return updateCampaign(u.db, c)
}

// UpsertCampaign is find-or-create plus merge in one transaction. The
// external id comes from the payload's campaign_id field.
func (u *Upserter) UpsertCampaign(publisherID int64, p normalize.Payload) (*models.Campaign, error) {
	id, ok := p.Int64("campaign_id", 0)
	if !ok || id == 0 {
		return nil, ErrMissingExternalID
	}

	var c *models.Campaign
	err := u.withTx(func(tx dbtx) error {
		var err error
		c, err = findOrCreateCampaign(tx, id, publisherID)
		if err != nil {
			return err
		}
		mergeCampaign(c, p)
		return updateCampaign(tx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}
