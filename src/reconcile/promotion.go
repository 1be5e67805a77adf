package reconcile

import (
	"fmt"

	"github.com/username/linkpulse/backend/src/models"
	"github.com/username/linkpulse/backend/src/normalize"
)

func findOrCreatePromotion(q dbtx, id, publisherID int64) (*models.PromotionCampaign, error) {
	_, err := q.Exec(`INSERT INTO promotion_campaigns (id, publisher_id) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`, id, publisherID)
	if err != nil && !isUniqueConstraintErr(err) {
		return nil, fmt.Errorf("inserting promotion campaign %d: %w", id, err)
	}

	row := q.QueryRow(`SELECT id, publisher_id, campaign_id, name, promotion_type, coupon_code, url, start_time, end_time FROM promotion_campaigns WHERE id = ?`, id)
	var pc models.PromotionCampaign
	if err := row.Scan(&pc.ID, &pc.PublisherID, &pc.CampaignID, &pc.Name, &pc.PromotionType, &pc.CouponCode, &pc.URL, &pc.StartTime, &pc.EndTime); err != nil {
		return nil, fmt.Errorf("reading promotion campaign %d: %w", id, err)
	}
	return &pc, nil
}

func mergePromotion(pc *models.PromotionCampaign, p normalize.Payload) {
	pc.CampaignID, _ = p.OptionalInt64("campaign_id")
	pc.Name, _ = p.String("name", "")
	pc.PromotionType, _ = p.PromotionType("promotion_type")
	pc.CouponCode, _ = p.String("coupon_code", "")
	pc.URL, _ = p.String("url", "")
	pc.StartTime, _ = p.String("start_time", "")
	pc.EndTime, _ = p.String("end_time", "")
}

func updatePromotion(q dbtx, pc *models.PromotionCampaign) error {
	_, err := q.Exec(`UPDATE promotion_campaigns SET campaign_id = ?, name = ?, promotion_type = ?, coupon_code = ?, url = ?, start_time = ?, end_time = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		pc.CampaignID, pc.Name, pc.PromotionType, pc.CouponCode, pc.URL, pc.StartTime, pc.EndTime, pc.ID)
	return err
}

func (u *Upserter) FindOrCreatePromotion(id, publisherID int64) (*models.PromotionCampaign, error) {
	return findOrCreatePromotion(u.db, id, publisherID)
}

func (u *Upserter) MergePromotion(pc *models.PromotionCampaign, p normalize.Payload) error {
	mergePromotion(pc, p)
	return updatePromotion(u.db, pc)
}

// UpsertPromotion reconciles one promotion campaign.
func (u *Upserter) UpsertPromotion(publisherID int64, p normalize.Payload) (*models.PromotionCampaign, error) {
	id, ok := p.Int64("id", 0)
	if !ok || id == 0 {
		return nil, ErrMissingExternalID
	}

	var pc *models.PromotionCampaign
	err := u.withTx(func(tx dbtx) error {
		var err error
		pc, err = findOrCreatePromotion(tx, id, publisherID)
		if err != nil {
			return err
		}
		mergePromotion(pc, p)
		return updatePromotion(tx, pc)
	})
	if err != nil {
		return nil, err
	}
	return pc, nil
}
