package handlers

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/username/linkpulse/backend/src/config"
	"github.com/username/linkpulse/backend/src/database"
	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/models"
	"github.com/username/linkpulse/backend/src/tagging"
	"github.com/username/linkpulse/backend/src/utils"
)

type ClickHandler struct {
	taggingService *tagging.Service
}

func NewClickHandler(taggingService *tagging.Service) *ClickHandler {
	return &ClickHandler{taggingService: taggingService}
}

// HandleClick mints an attribution tag for an outbound click and redirects to
// the destination with the tag appended. Without a destination it returns the
// tag as JSON so callers can build the link themselves.
//
// GET /api/click?pid=500&cid=77&uid=9&to=https://merchant.example/deal
func (h *ClickHandler) HandleClick(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	publisherID, err := strconv.ParseInt(q.Get("pid"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "pid (publisher id) is required and must be numeric", http.StatusBadRequest)
		return
	}
	publisher, err := models.GetPublisherByID(database.DB, publisherID)
	if err != nil {
		utils.SendJSONError(w, "error loading publisher", http.StatusInternalServerError)
		return
	}
	if publisher == nil {
		utils.SendJSONError(w, "unknown publisher", http.StatusNotFound)
		return
	}

	var campaignID *int64
	if raw := q.Get("cid"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.SendJSONError(w, "cid must be numeric", http.StatusBadRequest)
			return
		}
		campaignID = &id
	}

	clickCtx := tagging.ClickContext{
		UserIP:      clientIP(r),
		UserAgent:   r.UserAgent(),
		ReferrerURL: r.Referer(),
	}
	if raw := q.Get("uid"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.SendJSONError(w, "uid must be numeric", http.StatusBadRequest)
			return
		}
		clickCtx.UserID = &id
	}
	// Click-endpoint policy only: the stored model itself treats a missing
	// expiry as "never expires".
	if ttl := config.Cfg.DefaultTagTTL; ttl > 0 {
		exp := time.Now().Add(ttl)
		clickCtx.ExpireTime = &exp
	}

	tag, err := h.taggingService.Create(publisher, campaignID, time.Now(), clickCtx)
	if err != nil {
		logger.L.Error("Failed to create attribution tag", "publisherID", publisherID, "error", err)
		utils.SendJSONError(w, "failed to create attribution tag", http.StatusInternalServerError)
		return
	}

	if dest := q.Get("to"); dest != "" {
		target, err := url.Parse(dest)
		if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
			utils.SendJSONError(w, "to must be an absolute http(s) URL", http.StatusBadRequest)
			return
		}
		tq := target.Query()
		tq.Set("lp_tag", tag.Tag)
		target.RawQuery = tq.Encode()
		http.Redirect(w, r, target.String(), http.StatusFound)
		return
	}

	utils.SendJSON(w, http.StatusCreated, tag)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
