package reconcile

import (
	"fmt"

	"github.com/username/linkpulse/backend/src/models"
	"github.com/username/linkpulse/backend/src/normalize"
)

func findOrCreateTransaction(q dbtx, id, publisherID int64) (*models.Transaction, error) {
	_, err := q.Exec(`INSERT INTO transactions (id, publisher_id) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`, id, publisherID)
	if err != nil && !isUniqueConstraintErr(err) {
		return nil, fmt.Errorf("inserting transaction %d: %w", id, err)
	}

	row := q.QueryRow(`SELECT id, publisher_id, campaign_id, order_id, order_time, total_price, commission, currency, order_status, balance_time, user_id FROM transactions WHERE id = ?`, id)
	var t models.Transaction
	if err := row.Scan(&t.ID, &t.PublisherID, &t.CampaignID, &t.OrderID, &t.OrderTime, &t.TotalPrice, &t.Commission, &t.Currency, &t.OrderStatus, &t.BalanceTime, &t.UserID); err != nil {
		return nil, fmt.Errorf("reading transaction %d: %w", id, err)
	}
	return &t, nil
}

func mergeTransaction(t *models.Transaction, p normalize.Payload) {
	t.CampaignID, _ = p.OptionalInt64("campaign_id")
	t.OrderID, _ = p.String("order_id", "")
	t.OrderTime, _ = p.String("order_time", "")
	t.TotalPrice, _ = p.Decimal("total_price", "0")
	t.Commission, _ = p.Decimal("commission", "0")
	t.Currency, _ = p.Currency("currency")
	t.OrderStatus, _ = p.TransactionStatus("order_status")
	t.BalanceTime, _ = p.OptionalString("balance_time")
	applyTransactionUserID(t, p)
}

// applyTransactionUserID is the one field with non-uniform merge policy:
// preserve-if-absent. A stored user id usually came from a resolved
// attribution tag, and a payload that simply omits the field must not wipe
// that linkage. Only an explicit user_id in the payload overwrites.
func applyTransactionUserID(t *models.Transaction, p normalize.Payload) {
	if !p.Has("user_id") {
		return
	}
	t.UserID, _ = p.OptionalInt64("user_id")
}

func updateTransaction(q dbtx, t *models.Transaction) error {
	_, err := q.Exec(`UPDATE transactions SET campaign_id = ?, order_id = ?, order_time = ?, total_price = ?, commission = ?, currency = ?, order_status = ?, balance_time = ?, user_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		t.CampaignID, t.OrderID, t.OrderTime, t.TotalPrice, t.Commission, t.Currency, t.OrderStatus, t.BalanceTime, t.UserID, t.ID)
	return err
}

func (u *Upserter) FindOrCreateTransaction(id, publisherID int64) (*models.Transaction, error) {
	return findOrCreateTransaction(u.db, id, publisherID)
}

func (u *Upserter) MergeTransaction(t *models.Transaction, p normalize.Payload) error {
	mergeTransaction(t, p)
	return updateTransaction(u.db, t)
}

// LinkTransactionToTag copies a resolved attribution tag's user onto the
// stored transaction. A later resync without a user_id field keeps this value.
func (u *Upserter) LinkTransactionToTag(t *models.Transaction, tag *models.AttributionTag) error {
	if tag.UserID == nil {
		return nil
	}
	t.UserID = tag.UserID
	return updateTransaction(u.db, t)
}

// UpsertTransaction reconciles one order report under its publisher.
func (u *Upserter) UpsertTransaction(publisherID int64, p normalize.Payload) (*models.Transaction, error) {
	id, ok := p.Int64("id", 0)
	if !ok || id == 0 {
		return nil, ErrMissingExternalID
	}

	var t *models.Transaction
	err := u.withTx(func(tx dbtx) error {
		var err error
		t, err = findOrCreateTransaction(tx, id, publisherID)
		if err != nil {
			return err
		}
		mergeTransaction(t, p)
		return updateTransaction(tx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
