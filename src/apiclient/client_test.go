package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/models"
)

func testPublisher() *models.Publisher {
	return &models.Publisher{ID: 42, Name: "Acme Media", Token: "test-token"}
}

func TestFetchSignsRequest(t *testing.T) {
	logger.InitLogger("error")
	pub := testPublisher()

	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"publisher_id": q.Get("publisher_id"),
			"timestamp":    q.Get("timestamp"),
			"sign":         q.Get("sign"),
			"page":         q.Get("page"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": 0, "data": [{"campaign_id": 77, "name": "Spring Sale"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 100)
	payloads, err := c.Fetch(context.Background(), pub, EndpointCampaigns, url.Values{"page": {"1"}})
	require.NoError(t, err)

	assert.Equal(t, "42", gotQuery["publisher_id"])
	assert.Equal(t, "1", gotQuery["page"])
	require.NotEmpty(t, gotQuery["timestamp"])
	// The server can recompute and verify the signature from its copy of the
	// publisher token.
	assert.Equal(t, pub.GenerateSign(gotQuery["timestamp"]), gotQuery["sign"])

	require.Len(t, payloads, 1)
	name, ok := payloads[0].String("name", "")
	assert.True(t, ok)
	assert.Equal(t, "Spring Sale", name)
}

func TestFetchHTTPError(t *testing.T) {
	logger.InitLogger("error")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 100)
	_, err := c.Fetch(context.Background(), testPublisher(), EndpointTransaction, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}

func TestFetchEnvelopeError(t *testing.T) {
	logger.InitLogger("error")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 1203, "message": "invalid sign"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 100)
	_, err := c.Fetch(context.Background(), testPublisher(), EndpointSettlements, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=1203")
}

func TestFetchSkipsUndecodableItems(t *testing.T) {
	logger.InitLogger("error")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "data": [{"id": 1}, "not-an-object", {"id": 2}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 100)
	payloads, err := c.Fetch(context.Background(), testPublisher(), EndpointPromotions, nil)
	require.NoError(t, err)
	assert.Len(t, payloads, 2)
}
