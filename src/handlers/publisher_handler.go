package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/username/linkpulse/backend/src/database"
	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/models"
	"github.com/username/linkpulse/backend/src/utils"
)

type PublisherHandler struct {
}

func NewPublisherHandler() *PublisherHandler {
	return &PublisherHandler{}
}

type registerPublisherRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// HandleRegisterPublisher stores a publisher account with its network-issued
// id and API token so sync runs and click tracking can reference it.
//
// POST /api/publishers {"id": 500, "name": "acme", "token": "s3cret"}
func (h *PublisherHandler) HandleRegisterPublisher(w http.ResponseWriter, r *http.Request) {
	var req registerPublisherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == 0 || req.Token == "" {
		utils.SendJSONError(w, "id and token are required", http.StatusBadRequest)
		return
	}

	p := &models.Publisher{ID: req.ID, Name: req.Name, Token: req.Token}
	if err := models.CreatePublisher(database.DB, p); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
			utils.SendJSONError(w, "publisher already registered", http.StatusConflict)
			return
		}
		logger.L.Error("Failed to register publisher", "publisherID", req.ID, "error", err)
		utils.SendJSONError(w, "failed to register publisher", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Publisher registered", "publisherID", p.ID, "name", p.Name)
	utils.SendJSON(w, http.StatusCreated, p)
}
