package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/username/linkpulse/backend/src/database"
	"github.com/username/linkpulse/backend/src/models"
	"github.com/username/linkpulse/backend/src/utils"
)

type TransactionHandler struct {
}

func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{}
}

func publisherIDParam(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("publisher_id")
	if raw == "" {
		return 0, fmt.Errorf("publisher_id query parameter is required")
	}
	return strconv.ParseInt(raw, 10, 64)
}

// HandleGetTransactions lists a publisher's synced transactions.
//
// GET /api/transactions?publisher_id=500
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	publisherID, err := publisherIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := database.DB.Query(`
		SELECT id, publisher_id, campaign_id, order_id, order_time, total_price,
		commission, currency, order_status, balance_time, user_id
		FROM transactions
		WHERE publisher_id = ?
		ORDER BY order_time DESC, id DESC`, publisherID)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying transactions for publisher %d: %v", publisherID, err), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		scanErr := rows.Scan(
			&t.ID, &t.PublisherID, &t.CampaignID, &t.OrderID, &t.OrderTime,
			&t.TotalPrice, &t.Commission, &t.Currency, &t.OrderStatus,
			&t.BalanceTime, &t.UserID)
		if scanErr != nil {
			utils.SendJSONError(w, fmt.Sprintf("Error scanning transaction for publisher %d: %v", publisherID, scanErr), http.StatusInternalServerError)
			return
		}
		transactions = append(transactions, t)
	}
	if err = rows.Err(); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error iterating over transactions for publisher %d: %v", publisherID, err), http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	utils.SendJSON(w, http.StatusOK, transactions)
}

// HandleGetSettlements lists a publisher's settlements, optionally filtered
// by settlement month.
//
// GET /api/settlements?publisher_id=500&month=2024-05
func (h *TransactionHandler) HandleGetSettlements(w http.ResponseWriter, r *http.Request) {
	publisherID, err := publisherIDParam(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	query := `
		SELECT id, publisher_id, campaign_id, month, total_price, commission,
		currency, order_status
		FROM settlements
		WHERE publisher_id = ?`
	args := []any{publisherID}
	if month := r.URL.Query().Get("month"); month != "" {
		if _, err := utils.ParseMonth(month); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		query += ` AND month = ?`
		args = append(args, month)
	}
	query += ` ORDER BY month DESC, id DESC`

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error querying settlements for publisher %d: %v", publisherID, err), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		var s models.Settlement
		scanErr := rows.Scan(
			&s.ID, &s.PublisherID, &s.CampaignID, &s.Month,
			&s.TotalPrice, &s.Commission, &s.Currency, &s.OrderStatus)
		if scanErr != nil {
			utils.SendJSONError(w, fmt.Sprintf("Error scanning settlement for publisher %d: %v", publisherID, scanErr), http.StatusInternalServerError)
			return
		}
		settlements = append(settlements, s)
	}
	if err = rows.Err(); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error iterating over settlements for publisher %d: %v", publisherID, err), http.StatusInternalServerError)
		return
	}
	if settlements == nil {
		settlements = []models.Settlement{}
	}
	utils.SendJSON(w, http.StatusOK, settlements)
}
