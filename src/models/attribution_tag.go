package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// AttributionTag correlates an outbound click to a publisher/campaign/user
// context so a later order can be credited. The tag string is the only
// locally-generated identity in the data model and is globally unique.
type AttributionTag struct {
	ID          int64          `json:"id"`
	Tag         string         `json:"tag"`
	PublisherID int64          `json:"publisher_id"`
	CampaignID  *int64         `json:"campaign_id,omitempty"`
	UserID      *int64         `json:"user_id,omitempty"`
	ClickTime   time.Time      `json:"click_time"`
	// ExpireTime nil means the tag never expires, regardless of ClickTime age.
	ExpireTime  *time.Time     `json:"expire_time,omitempty"`
	UserIP      string         `json:"user_ip"`
	UserAgent   string         `json:"user_agent"`
	ReferrerURL string         `json:"referrer_url"`
	ContextData map[string]any `json:"context_data,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// IsExpired reports whether the tag's validity window has passed.
func (t *AttributionTag) IsExpired() bool {
	if t.ExpireTime == nil {
		return false
	}
	return time.Now().After(*t.ExpireTime)
}

// AddContextData merges a key into the context map, overwriting any existing
// value for that key. The map is initialized on first use.
func (t *AttributionTag) AddContextData(key string, value any) {
	if t.ContextData == nil {
		t.ContextData = make(map[string]any)
	}
	t.ContextData[key] = value
}

func (t *AttributionTag) contextJSON() (sql.NullString, error) {
	if t.ContextData == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(t.ContextData)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

// InsertAttributionTag persists a freshly-minted tag. A unique constraint on
// the tag column backs the probabilistic uniqueness of generation; callers
// must treat a constraint violation as "regenerate and retry".
func InsertAttributionTag(db *sql.DB, t *AttributionTag) error {
	ctx, err := t.contextJSON()
	if err != nil {
		return err
	}

	query := `
	INSERT INTO attribution_tags (tag, publisher_id, campaign_id, user_id, click_time, expire_time, user_ip, user_agent, referrer_url, context_data)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(t.Tag, t.PublisherID, t.CampaignID, t.UserID, t.ClickTime, t.ExpireTime, t.UserIP, t.UserAgent, t.ReferrerURL, ctx)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func scanAttributionTag(scan func(dest ...any) error) (*AttributionTag, error) {
	var t AttributionTag
	var campaignID, userID sql.NullInt64
	var expireTime sql.NullTime
	var contextData sql.NullString

	err := scan(&t.ID, &t.Tag, &t.PublisherID, &campaignID, &userID, &t.ClickTime, &expireTime, &t.UserIP, &t.UserAgent, &t.ReferrerURL, &contextData, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if campaignID.Valid {
		t.CampaignID = &campaignID.Int64
	}
	if userID.Valid {
		t.UserID = &userID.Int64
	}
	if expireTime.Valid {
		exp := expireTime.Time
		t.ExpireTime = &exp
	}
	if contextData.Valid && contextData.String != "" {
		if err := json.Unmarshal([]byte(contextData.String), &t.ContextData); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

const attributionTagColumns = `id, tag, publisher_id, campaign_id, user_id, click_time, expire_time, user_ip, user_agent, referrer_url, context_data, created_at`

// GetAttributionTagByTag retrieves a tag regardless of expiry.
// Returns nil, nil when absent.
func GetAttributionTagByTag(db *sql.DB, tag string) (*AttributionTag, error) {
	row := db.QueryRow(`SELECT `+attributionTagColumns+` FROM attribution_tags WHERE tag = ?`, tag)
	t, err := scanAttributionTag(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// UpdateAttributionTagContext rewrites the stored context map and user id
// after enrichment calls.
func UpdateAttributionTagContext(db *sql.DB, t *AttributionTag) error {
	ctx, err := t.contextJSON()
	if err != nil {
		return err
	}
	_, err = db.Exec(`UPDATE attribution_tags SET context_data = ?, user_id = ? WHERE id = ?`, ctx, t.UserID, t.ID)
	return err
}

// FindExpiredAttributionTags returns tags whose expire_time is set and at or
// before the cutoff. Tags with a null expire_time never show up here.
func FindExpiredAttributionTags(db *sql.DB, before time.Time) ([]AttributionTag, error) {
	rows, err := db.Query(`SELECT `+attributionTagColumns+` FROM attribution_tags WHERE expire_time IS NOT NULL AND expire_time <= ?`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []AttributionTag
	for rows.Next() {
		t, err := scanAttributionTag(rows.Scan)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

// DeleteExpiredAttributionTags removes expired tags and reports how many rows
// went away. Intended for the periodic retention job.
func DeleteExpiredAttributionTags(db *sql.DB, before time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM attribution_tags WHERE expire_time IS NOT NULL AND expire_time <= ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
