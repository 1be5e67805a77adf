package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/services"
	"github.com/username/linkpulse/backend/src/utils"
)

type SyncHandler struct {
	syncService services.SyncService
}

func NewSyncHandler(syncService services.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

type syncRequest struct {
	PublisherID int64  `json:"publisher_id"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Month       string `json:"month,omitempty"`
}

// HandleTriggerSync runs one reconciliation pass for a publisher, optionally
// scoped by a date range or a settlement month. The report is returned even
// when the run fails upstream, since items committed before the failure stay.
//
// POST /api/sync {"publisher_id": 500, "start_date": "2024-05-01"}
func (h *SyncHandler) HandleTriggerSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PublisherID == 0 {
		utils.SendJSONError(w, "publisher_id is required", http.StatusBadRequest)
		return
	}
	if req.StartDate != "" {
		if _, err := utils.ParseDate(req.StartDate); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.EndDate != "" {
		if _, err := utils.ParseDate(req.EndDate); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Month != "" {
		if _, err := utils.ParseMonth(req.Month); err != nil {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	opts := services.SyncOptions{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Month:     req.Month,
	}
	report, err := h.syncService.SyncPublisher(r.Context(), req.PublisherID, opts)
	if err != nil {
		if errors.Is(err, services.ErrPublisherNotFound) {
			utils.SendJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		if errors.Is(err, services.ErrUpstreamFailure) {
			// Partial success: return the report alongside the failure.
			utils.SendJSON(w, http.StatusBadGateway, report)
			return
		}
		logger.L.Error("Sync run failed", "publisherID", req.PublisherID, "error", err)
		utils.SendJSONError(w, "sync failed", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, report)
}
