package models

import "time"

// Transaction is an order reported by the affiliate network, keyed by the
// network's transaction id. Amounts stay as decimal strings; no arithmetic
// happens on them outside the commission evaluator.
type Transaction struct {
	ID          int64       `json:"id"`
	PublisherID int64       `json:"publisher_id"`
	CampaignID  *int64      `json:"campaign_id,omitempty"`
	OrderID     string      `json:"order_id"`
	OrderTime   string      `json:"order_time"`
	TotalPrice  string      `json:"total_price"`
	Commission  string      `json:"commission"`
	Currency    Currency    `json:"currency"`
	OrderStatus OrderStatus `json:"order_status"`
	// BalanceTime is the settled-month marker ("2024-05"); nil until the
	// network settles the order.
	BalanceTime *string `json:"balance_time,omitempty"`
	// UserID is either delivered in the sync payload or backfilled from a
	// resolved attribution tag. Merge preserves it when the payload carries
	// no user_id field.
	UserID    *int64    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSettled reports whether the network has settled this order. Independent
// of OrderStatus.
func (t *Transaction) IsSettled() bool {
	return t.BalanceTime != nil
}
