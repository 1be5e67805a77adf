package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/linkpulse/backend/src/apiclient"
	"github.com/username/linkpulse/backend/src/database"
	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/models"
	"github.com/username/linkpulse/backend/src/reconcile"
)

type recordingNotifier struct {
	report *SyncReport
	runErr error
	calls  int
}

func (n *recordingNotifier) SendSyncReport(report *SyncReport, runErr error) error {
	n.report = report
	n.runErr = runErr
	n.calls++
	return nil
}

func newSyncFixture(t *testing.T, handler http.Handler) (SyncService, *recordingNotifier, *httptest.Server) {
	t.Helper()
	logger.InitLogger("error")
	database.InitDB(":memory:")
	require.NoError(t, models.CreatePublisher(database.DB, &models.Publisher{ID: 42, Name: "Acme Media", Token: "test-token"}))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := apiclient.NewClient(srv.URL, 5*time.Second, 100)
	notifier := &recordingNotifier{}
	svc := NewSyncService(database.DB, client, reconcile.NewUpserter(database.DB), notifier)
	return svc, notifier, srv
}

func fakeAffiliateAPI(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(apiclient.EndpointCampaigns, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "data": [
			{"campaign_id": 77, "name": "Spring Sale", "application_status": 2, "cross_device": 1},
			{"name": "missing id"}
		]}`))
	})
	mux.HandleFunc(apiclient.EndpointRules, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "77", r.URL.Query().Get("campaign_id"))
		w.Write([]byte(`{"code": 0, "data": [
			{"id": 5, "name": "Standard", "mode": 1, "ratio": "0.10"}
		]}`))
	})
	mux.HandleFunc(apiclient.EndpointTransaction, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-05-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2024-05-31", r.URL.Query().Get("end_date"))
		w.Write([]byte(`{"code": 0, "data": [
			{"id": 900, "order_id": "O1", "campaign_id": 77, "total_price": "200.00", "order_status": 1},
			{"id": 901, "order_id": "O2", "campaign_id": 77, "total_price": "50.00", "order_status": 2}
		]}`))
	})
	mux.HandleFunc(apiclient.EndpointSettlements, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-05", r.URL.Query().Get("month"))
		w.Write([]byte(`{"code": 0, "data": [
			{"id": 30, "campaign_id": 77, "month": "2024-05", "total_price": "1200.00", "commission": "120.00", "order_status": 2}
		]}`))
	})
	mux.HandleFunc(apiclient.EndpointPromotions, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "data": [
			{"id": 12, "name": "Summer Coupon", "promotion_type": 2, "coupon_code": "SUMMER10"}
		]}`))
	})
	return mux
}

func TestSyncPublisher(t *testing.T) {
	svc, notifier, _ := newSyncFixture(t, fakeAffiliateAPI(t))

	report, err := svc.SyncPublisher(context.Background(), 42, SyncOptions{
		StartDate: "2024-05-01",
		EndDate:   "2024-05-31",
		Month:     "2024-05",
	})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, int64(42), report.PublisherID)
	assert.Equal(t, 1, report.Upserted["campaigns"])
	assert.Equal(t, 1, report.Skipped["campaigns"])
	assert.Equal(t, 1, report.Upserted["commission_rules"])
	assert.Equal(t, 2, report.Upserted["transactions"])
	assert.Equal(t, 1, report.Upserted["settlements"])
	assert.Equal(t, 1, report.Upserted["promotions"])
	assert.Empty(t, report.Errors)

	assert.Equal(t, 1, notifier.calls)
	assert.Same(t, report, notifier.report)
	assert.NoError(t, notifier.runErr)

	var n int
	require.NoError(t, database.DB.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&n))
	assert.Equal(t, 2, n)
}

func TestSyncPublisherRerunIsIdempotent(t *testing.T) {
	svc, _, _ := newSyncFixture(t, fakeAffiliateAPI(t))
	opts := SyncOptions{StartDate: "2024-05-01", EndDate: "2024-05-31", Month: "2024-05"}

	_, err := svc.SyncPublisher(context.Background(), 42, opts)
	require.NoError(t, err)
	_, err = svc.SyncPublisher(context.Background(), 42, opts)
	require.NoError(t, err)

	for table, want := range map[string]int{
		"campaigns":           1,
		"commission_rules":    1,
		"transactions":        2,
		"settlements":         1,
		"promotion_campaigns": 1,
	} {
		var n int
		require.NoError(t, database.DB.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Equal(t, want, n, table)
	}
}

func TestSyncPublisherUnknownPublisher(t *testing.T) {
	svc, notifier, _ := newSyncFixture(t, fakeAffiliateAPI(t))

	_, err := svc.SyncPublisher(context.Background(), 999, SyncOptions{})
	assert.ErrorIs(t, err, ErrPublisherNotFound)
	assert.Zero(t, notifier.calls)
}

func TestSyncPublisherUpstreamFailureKeepsPartialProgress(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(apiclient.EndpointCampaigns, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "data": [{"campaign_id": 77, "name": "Spring Sale"}]}`))
	})
	mux.HandleFunc(apiclient.EndpointRules, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "data": []}`))
	})
	mux.HandleFunc(apiclient.EndpointTransaction, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	svc, notifier, _ := newSyncFixture(t, mux)

	report, err := svc.SyncPublisher(context.Background(), 42, SyncOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Upserted["campaigns"])
	assert.NotEmpty(t, report.Errors)

	// The abort happens after campaigns committed; they stay committed.
	var n int
	require.NoError(t, database.DB.QueryRow("SELECT COUNT(*) FROM campaigns").Scan(&n))
	assert.Equal(t, 1, n)

	assert.Equal(t, 1, notifier.calls)
	assert.ErrorIs(t, notifier.runErr, ErrUpstreamFailure)
}
