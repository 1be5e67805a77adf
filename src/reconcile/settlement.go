package reconcile

import (
	"fmt"

	"github.com/username/linkpulse/backend/src/models"
	"github.com/username/linkpulse/backend/src/normalize"
)

func findOrCreateSettlement(q dbtx, id, publisherID int64) (*models.Settlement, error) {
	_, err := q.Exec(`INSERT INTO settlements (id, publisher_id) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`, id, publisherID)
	if err != nil && !isUniqueConstraintErr(err) {
		return nil, fmt.Errorf("inserting settlement %d: %w", id, err)
	}

	row := q.QueryRow(`SELECT id, publisher_id, campaign_id, month, total_price, commission, currency, order_status FROM settlements WHERE id = ?`, id)
	var s models.Settlement
	if err := row.Scan(&s.ID, &s.PublisherID, &s.CampaignID, &s.Month, &s.TotalPrice, &s.Commission, &s.Currency, &s.OrderStatus); err != nil {
		return nil, fmt.Errorf("reading settlement %d: %w", id, err)
	}
	return &s, nil
}

func mergeSettlement(s *models.Settlement, p normalize.Payload) {
	s.CampaignID, _ = p.OptionalInt64("campaign_id")
	s.Month, _ = p.String("month", "")
	s.TotalPrice, _ = p.Decimal("total_price", "0")
	s.Commission, _ = p.Decimal("commission", "0")
	s.Currency, _ = p.Currency("currency")
	s.OrderStatus, _ = p.SettlementStatus("order_status")
}

func updateSettlement(q dbtx, s *models.Settlement) error {
	_, err := q.Exec(`UPDATE settlements SET campaign_id = ?, month = ?, total_price = ?, commission = ?, currency = ?, order_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		s.CampaignID, s.Month, s.TotalPrice, s.Commission, s.Currency, s.OrderStatus, s.ID)
	return err
}

func (u *Upserter) FindOrCreateSettlement(id, publisherID int64) (*models.Settlement, error) {
	return findOrCreateSettlement(u.db, id, publisherID)
}

func (u *Upserter) MergeSettlement(s *models.Settlement, p normalize.Payload) error {
	mergeSettlement(s, p)
	return updateSettlement(u.db, s)
}

// UpsertSettlement reconciles one monthly settlement record.
func (u *Upserter) UpsertSettlement(publisherID int64, p normalize.Payload) (*models.Settlement, error) {
	id, ok := p.Int64("id", 0)
	if !ok || id == 0 {
		return nil, ErrMissingExternalID
	}

	var s *models.Settlement
	err := u.withTx(func(tx dbtx) error {
		var err error
		s, err = findOrCreateSettlement(tx, id, publisherID)
		if err != nil {
			return err
		}
		mergeSettlement(s, p)
		return updateSettlement(tx, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
