package tagging

import (
	"regexp"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/linkpulse/backend/src/database"
	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/models"
)

func int64Ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func newTestService(t *testing.T) (*Service, *models.Publisher) {
	t.Helper()
	logger.InitLogger("error")
	database.InitDB(":memory:")

	pub := &models.Publisher{ID: 42, Name: "Acme Media", Token: "test-token"}
	require.NoError(t, models.CreatePublisher(database.DB, pub))

	return NewService(database.DB, cache.New(time.Minute, time.Minute)), pub
}

var hexTag = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestGenerateUnique(t *testing.T) {
	svc, _ := newTestService(t)

	// Identical inputs must still yield distinct tags on every call.
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		tag := svc.Generate(42, int64Ptr(7), int64Ptr(9))
		assert.Regexp(t, hexTag, tag)
		assert.False(t, seen[tag], "duplicate tag %s", tag)
		seen[tag] = true
	}
}

func TestCreateAndResolve(t *testing.T) {
	svc, pub := newTestService(t)

	clickTime := time.Now().UTC().Truncate(time.Second)
	created, err := svc.Create(pub, int64Ptr(7), clickTime, ClickContext{
		UserID:      int64Ptr(9),
		UserIP:      "203.0.113.4",
		UserAgent:   "Mozilla/5.0",
		ReferrerURL: "https://blog.example.com/review",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Regexp(t, hexTag, created.Tag)
	assert.NotZero(t, created.ID)

	got, err := svc.FindActiveByTag(created.Tag)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pub.ID, got.PublisherID)
	require.NotNil(t, got.CampaignID)
	assert.Equal(t, int64(7), *got.CampaignID)
	require.NotNil(t, got.UserID)
	assert.Equal(t, int64(9), *got.UserID)
	assert.Equal(t, "203.0.113.4", got.UserIP)
	assert.Equal(t, "https://blog.example.com/review", got.ReferrerURL)
	assert.Nil(t, got.ExpireTime)

	missing, err := svc.FindActiveByTag("no-such-tag")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestResolveExpiredBehavesLikeAbsent(t *testing.T) {
	svc, pub := newTestService(t)

	expired, err := svc.Create(pub, nil, time.Now().Add(-48*time.Hour), ClickContext{
		ExpireTime: timePtr(time.Now().Add(-time.Hour)),
	})
	require.NoError(t, err)

	got, err := svc.FindActiveByTag(expired.Tag)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveNeverExpiresWithoutExpireTime(t *testing.T) {
	svc, pub := newTestService(t)

	// Old click time alone does not expire a tag; only expire_time does.
	ancient, err := svc.Create(pub, nil, time.Now().AddDate(-2, 0, 0), ClickContext{})
	require.NoError(t, err)

	got, err := svc.FindActiveByTag(ancient.Tag)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ancient.Tag, got.Tag)
}

func TestAddContextDataPersists(t *testing.T) {
	svc, pub := newTestService(t)

	tag, err := svc.Create(pub, int64Ptr(7), time.Now(), ClickContext{})
	require.NoError(t, err)

	require.NoError(t, svc.AddContextData(tag, "landing_page", "/deals"))
	require.NoError(t, svc.AddContextData(tag, "landing_page", "/deals/summer"))
	require.NoError(t, svc.AddContextData(tag, "device", "mobile"))

	got, err := svc.FindActiveByTag(tag.Tag)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "/deals/summer", got.ContextData["landing_page"])
	assert.Equal(t, "mobile", got.ContextData["device"])
}

func TestSetUserIDPersists(t *testing.T) {
	svc, pub := newTestService(t)

	tag, err := svc.Create(pub, nil, time.Now(), ClickContext{})
	require.NoError(t, err)
	require.Nil(t, tag.UserID)

	require.NoError(t, svc.SetUserID(tag, 9))

	got, err := svc.FindActiveByTag(tag.Tag)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.UserID)
	assert.Equal(t, int64(9), *got.UserID)
}

func TestPurgeExpiredTags(t *testing.T) {
	svc, pub := newTestService(t)

	expired, err := svc.Create(pub, nil, time.Now().Add(-2*time.Hour), ClickContext{
		ExpireTime: timePtr(time.Now().Add(-time.Hour)),
	})
	require.NoError(t, err)

	forever, err := svc.Create(pub, nil, time.Now(), ClickContext{})
	require.NoError(t, err)

	active, err := svc.Create(pub, nil, time.Now(), ClickContext{
		ExpireTime: timePtr(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)

	found, err := svc.FindExpiredTags(time.Now())
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, expired.Tag, found[0].Tag)

	count, err := svc.DeleteExpiredTags(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// The nil-expire tag and the not-yet-expired tag survive the purge.
	got, err := svc.FindActiveByTag(forever.Tag)
	require.NoError(t, err)
	assert.NotNil(t, got)

	got, err = svc.FindActiveByTag(active.Tag)
	require.NoError(t, err)
	assert.NotNil(t, got)

	gone, err := models.GetAttributionTagByTag(database.DB, expired.Tag)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
