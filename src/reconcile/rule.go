package reconcile

import (
	"fmt"

	"github.com/username/linkpulse/backend/src/models"
	"github.com/username/linkpulse/backend/src/normalize"
)

func findOrCreateCommissionRule(q dbtx, id, campaignID int64) (*models.CommissionRule, error) {
	_, err := q.Exec(`INSERT INTO commission_rules (id, campaign_id) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`, id, campaignID)
	if err != nil && !isUniqueConstraintErr(err) {
		return nil, fmt.Errorf("inserting commission rule %d: %w", id, err)
	}

	row := q.QueryRow(`SELECT id, campaign_id, name, mode, ratio, commission FROM commission_rules WHERE id = ?`, id)
	var r models.CommissionRule
	if err := row.Scan(&r.ID, &r.CampaignID, &r.Name, &r.Mode, &r.Ratio, &r.Commission); err != nil {
		return nil, fmt.Errorf("reading commission rule %d: %w", id, err)
	}
	return &r, nil
}

func mergeCommissionRule(r *models.CommissionRule, p normalize.Payload) {
	r.Name, _ = p.String("name", "")
	r.Mode, _ = p.CommissionMode("mode")
	r.Ratio, _ = p.OptionalDecimal("ratio")
	r.Commission, _ = p.OptionalDecimal("commission")
}

func updateCommissionRule(q dbtx, r *models.CommissionRule) error {
	_, err := q.Exec(`UPDATE commission_rules SET name = ?, mode = ?, ratio = ?, commission = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		r.Name, r.Mode, r.Ratio, r.Commission, r.ID)
	return err
}

func (u *Upserter) FindOrCreateCommissionRule(id, campaignID int64) (*models.CommissionRule, error) {
	return findOrCreateCommissionRule(u.db, id, campaignID)
}

func (u *Upserter) MergeCommissionRule(r *models.CommissionRule, p normalize.Payload) error {
	mergeCommissionRule(r, p)
	return updateCommissionRule(u.db, r)
}

// UpsertCommissionRule reconciles one rule under its parent campaign.
func (u *Upserter) UpsertCommissionRule(campaignID int64, p normalize.Payload) (*models.CommissionRule, error) {
	id, ok := p.Int64("id", 0)
	if !ok || id == 0 {
		return nil, ErrMissingExternalID
	}

	var r *models.CommissionRule
	err := u.withTx(func(tx dbtx) error {
		var err error
		r, err = findOrCreateCommissionRule(tx, id, campaignID)
		if err != nil {
			return err
		}
		mergeCommissionRule(r, p)
		return updateCommissionRule(tx, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}
