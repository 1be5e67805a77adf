package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/tagging"
	"github.com/username/linkpulse/backend/src/utils"
)

type TagHandler struct {
	taggingService *tagging.Service
}

func NewTagHandler(taggingService *tagging.Service) *TagHandler {
	return &TagHandler{taggingService: taggingService}
}

// HandleResolveTag returns the active tag record for a tag string. Absent and
// expired tags are indistinguishable: both are 404.
//
// GET /api/tags/resolve?tag=abc123
func (h *TagHandler) HandleResolveTag(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	if tag == "" {
		utils.SendJSONError(w, "tag query parameter is required", http.StatusBadRequest)
		return
	}

	t, err := h.taggingService.FindActiveByTag(tag)
	if err != nil {
		logger.L.Error("Failed to resolve tag", "error", err)
		utils.SendJSONError(w, "error resolving tag", http.StatusInternalServerError)
		return
	}
	if t == nil {
		utils.SendJSONError(w, "tag not found", http.StatusNotFound)
		return
	}
	utils.SendJSON(w, http.StatusOK, t)
}

type contextDataRequest struct {
	Tag   string          `json:"tag"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// HandleAddContextData merges one key into a tag's context map.
//
// POST /api/tags/context {"tag": "...", "key": "sub_channel", "value": "app"}
func (h *TagHandler) HandleAddContextData(w http.ResponseWriter, r *http.Request) {
	var req contextDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Tag == "" || req.Key == "" {
		utils.SendJSONError(w, "tag and key are required", http.StatusBadRequest)
		return
	}

	t, err := h.taggingService.FindActiveByTag(req.Tag)
	if err != nil {
		utils.SendJSONError(w, "error resolving tag", http.StatusInternalServerError)
		return
	}
	if t == nil {
		utils.SendJSONError(w, "tag not found", http.StatusNotFound)
		return
	}

	var value any
	if len(req.Value) > 0 {
		if err := json.Unmarshal(req.Value, &value); err != nil {
			utils.SendJSONError(w, "value is not valid JSON", http.StatusBadRequest)
			return
		}
	}
	if err := h.taggingService.AddContextData(t, req.Key, value); err != nil {
		logger.L.Error("Failed to add tag context data", "tag", req.Tag, "error", err)
		utils.SendJSONError(w, "failed to update tag", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, t)
}

// HandlePurgeExpiredTags deletes tags whose validity window has closed.
// Meant to be invoked by an external retention job.
//
// POST /api/tags/purge
func (h *TagHandler) HandlePurgeExpiredTags(w http.ResponseWriter, r *http.Request) {
	count, err := h.taggingService.DeleteExpiredTags(time.Now())
	if err != nil {
		logger.L.Error("Failed to purge expired tags", "error", err)
		utils.SendJSONError(w, "failed to purge expired tags", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]int64{"purged": count})
}
