// Package tagging mints and resolves attribution tags.
package tagging

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/models"
)

// createRetries bounds the insert→on-conflict-regenerate loop. The digest
// space makes a second collision in a row effectively impossible.
const createRetries = 3

type Service struct {
	db       *sql.DB
	tagCache *cache.Cache
}

func NewService(db *sql.DB, tagCache *cache.Cache) *Service {
	return &Service{db: db, tagCache: tagCache}
}

// Generate produces a fixed-length hex digest for a new attribution tag.
// The digest hashes the identifiers together with a nanosecond timestamp and
// a random salt, so identical inputs at different instants never repeat.
// Pure: nothing is persisted.
func (s *Service) Generate(publisherID int64, campaignID, userID *int64) string {
	var buf [48]byte
	binary.BigEndian.PutUint64(buf[0:], uint64(publisherID))
	if campaignID != nil {
		binary.BigEndian.PutUint64(buf[8:], uint64(*campaignID))
	}
	if userID != nil {
		binary.BigEndian.PutUint64(buf[16:], uint64(*userID))
	}
	binary.BigEndian.PutUint64(buf[24:], uint64(time.Now().UnixNano()))
	if _, err := rand.Read(buf[32:]); err != nil {
		// crypto/rand failure is unrecoverable for tag generation purposes;
		// the timestamp still salts the digest.
		logger.L.Error("crypto/rand failed while generating tag salt", "error", err)
	}
	sum := sha256.Sum256(buf[:])
	return hex.EncodeToString(sum[:])
}

// ClickContext carries the optional click-time enrichment captured alongside
// a new tag.
type ClickContext struct {
	UserID      *int64
	UserIP      string
	UserAgent   string
	ReferrerURL string
	ExpireTime  *time.Time
}

// Create mints a tag for the publisher/campaign pair, persists it, and
// returns the stored record. On the (vanishingly rare) unique-constraint
// collision the tag is regenerated and the insert retried.
func (s *Service) Create(publisher *models.Publisher, campaignID *int64, clickTime time.Time, ctx ClickContext) (*models.AttributionTag, error) {
	var lastErr error
	for attempt := 0; attempt < createRetries; attempt++ {
		t := &models.AttributionTag{
			Tag:         s.Generate(publisher.ID, campaignID, ctx.UserID),
			PublisherID: publisher.ID,
			CampaignID:  campaignID,
			UserID:      ctx.UserID,
			ClickTime:   clickTime,
			ExpireTime:  ctx.ExpireTime,
			UserIP:      ctx.UserIP,
			UserAgent:   ctx.UserAgent,
			ReferrerURL: ctx.ReferrerURL,
			CreatedAt:   time.Now(),
		}
		err := models.InsertAttributionTag(s.db, t)
		if err == nil {
			return t, nil
		}
		if !isUniqueConstraintErr(err) {
			return nil, fmt.Errorf("inserting attribution tag: %w", err)
		}
		logger.L.Warn("attribution tag collision, regenerating", "attempt", attempt+1)
		lastErr = err
	}
	return nil, fmt.Errorf("could not insert a unique attribution tag after %d attempts: %w", createRetries, lastErr)
}

// AddContextData merges one key into the tag's context map (last write wins)
// and persists the result.
func (s *Service) AddContextData(t *models.AttributionTag, key string, value any) error {
	t.AddContextData(key, value)
	if err := models.UpdateAttributionTagContext(s.db, t); err != nil {
		return err
	}
	s.tagCache.Delete(t.Tag)
	return nil
}

// SetUserID backfills the user onto the tag once an order identifies them.
func (s *Service) SetUserID(t *models.AttributionTag, userID int64) error {
	t.UserID = &userID
	if err := models.UpdateAttributionTagContext(s.db, t); err != nil {
		return err
	}
	s.tagCache.Delete(t.Tag)
	return nil
}

// FindActiveByTag resolves a tag iff it exists and is not expired. An expired
// tag behaves exactly like an absent one: nil, nil.
func (s *Service) FindActiveByTag(tag string) (*models.AttributionTag, error) {
	if cached, found := s.tagCache.Get(tag); found {
		t := cached.(*models.AttributionTag)
		if t.IsExpired() {
			s.tagCache.Delete(tag)
			return nil, nil
		}
		return t, nil
	}

	t, err := models.GetAttributionTagByTag(s.db, tag)
	if err != nil {
		return nil, err
	}
	if t == nil || t.IsExpired() {
		return nil, nil
	}
	s.tagCache.Set(tag, t, cache.DefaultExpiration)
	return t, nil
}

// FindExpiredTags lists tags whose validity window closed at or before the
// cutoff, for the retention job.
func (s *Service) FindExpiredTags(before time.Time) ([]models.AttributionTag, error) {
	return models.FindExpiredAttributionTags(s.db, before)
}

// DeleteExpiredTags purges expired tags and returns the purge count.
func (s *Service) DeleteExpiredTags(before time.Time) (int64, error) {
	count, err := models.DeleteExpiredAttributionTags(s.db, before)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.tagCache.Flush()
		logger.L.Info("Purged expired attribution tags", "count", count, "before", before)
	}
	return count, nil
}

func isUniqueConstraintErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
