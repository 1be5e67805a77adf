// Package apiclient talks to the affiliate network's HTTP API.
//
// Requests are signed with the publisher's token (see Publisher.GenerateSign)
// and throttled client-side. Responses arrive as loosely-typed JSON arrays;
// the client only decodes, it never validates — that is the normalizer's job
// downstream. No retry/backoff here: an unreachable API or a non-success
// response surfaces as a hard error for the batch.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/models"
	"github.com/username/linkpulse/backend/src/normalize"
)

// Endpoint paths per entity kind.
const (
	EndpointCampaigns   = "/v2/campaigns"
	EndpointRules       = "/v2/commission-rules"
	EndpointTransaction = "/v2/transactions"
	EndpointSettlements = "/v2/settlements"
	EndpointPromotions  = "/v2/promotions"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string, timeout time.Duration, ratePerSec int) *Client {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

// apiResponse is the affiliate API's envelope. code 0 means success; data is
// an array of loosely-typed items.
type apiResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    []json.RawMessage `json:"data"`
}

// Fetch performs one signed, rate-limited GET and returns the decoded items.
func (c *Client) Fetch(ctx context.Context, pub *models.Publisher, endpoint string, params url.Values) ([]normalize.Payload, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if params == nil {
		params = url.Values{}
	}
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params.Set("publisher_id", strconv.FormatInt(pub.ID, 10))
	params.Set("timestamp", timestamp)
	params.Set("sign", pub.GenerateSign(timestamp))

	reqURL := c.baseURL + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("affiliate API unreachable at %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("affiliate API returned HTTP %d for %s", resp.StatusCode, endpoint)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding affiliate API response for %s: %w", endpoint, err)
	}
	if envelope.Code != 0 {
		return nil, fmt.Errorf("affiliate API error for %s: code=%d message=%q", endpoint, envelope.Code, envelope.Message)
	}

	payloads := make([]normalize.Payload, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		var p normalize.Payload
		if err := json.Unmarshal(raw, &p); err != nil {
			// A single malformed item must not sink the page.
			logger.L.Warn("Skipping undecodable payload item", "endpoint", endpoint, "error", err)
			continue
		}
		payloads = append(payloads, p)
	}

	logger.L.Debug("Affiliate API fetch complete", "endpoint", endpoint, "items", len(payloads), "duration", time.Since(start))
	return payloads, nil
}
