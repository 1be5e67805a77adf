package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/username/linkpulse/backend/src/apiclient"
	"github.com/username/linkpulse/backend/src/logger"
	"github.com/username/linkpulse/backend/src/models"
	"github.com/username/linkpulse/backend/src/normalize"
	"github.com/username/linkpulse/backend/src/reconcile"
)

type syncServiceImpl struct {
	db       *sql.DB
	client   *apiclient.Client
	upserter *reconcile.Upserter
	notifier NotifierService
}

func NewSyncService(db *sql.DB, client *apiclient.Client, upserter *reconcile.Upserter, notifier NotifierService) SyncService {
	return &syncServiceImpl{
		db:       db,
		client:   client,
		upserter: upserter,
		notifier: notifier,
	}
}

// SyncPublisher runs one reconciliation pass for a publisher. Each entity
// kind is fetched and upserted independently; a per-item failure is logged,
// counted and skipped, while an upstream fetch failure aborts the run and is
// returned — everything committed up to that point stays committed.
func (s *syncServiceImpl) SyncPublisher(ctx context.Context, publisherID int64, opts SyncOptions) (*SyncReport, error) {
	pub, err := models.GetPublisherByID(s.db, publisherID)
	if err != nil {
		return nil, err
	}
	if pub == nil {
		return nil, fmt.Errorf("%w: id %d", ErrPublisherNotFound, publisherID)
	}

	report := &SyncReport{
		RunID:       uuid.NewString(),
		PublisherID: publisherID,
		StartedAt:   time.Now(),
		Upserted:    make(map[string]int),
		Skipped:     make(map[string]int),
	}
	logger.L.Info("Sync run START", "runID", report.RunID, "publisherID", publisherID,
		"startDate", opts.StartDate, "endDate", opts.EndDate, "month", opts.Month)

	runErr := s.runAll(ctx, pub, opts, report)
	report.Duration = time.Since(report.StartedAt)

	if runErr != nil {
		report.Errors = append(report.Errors, runErr.Error())
		logger.L.Error("Sync run FAILED", "runID", report.RunID, "error", runErr, "duration", report.Duration)
	} else {
		logger.L.Info("Sync run END", "runID", report.RunID, "duration", report.Duration,
			"upserted", report.Upserted, "skipped", report.Skipped)
	}

	if s.notifier != nil {
		if err := s.notifier.SendSyncReport(report, runErr); err != nil {
			logger.L.Warn("Failed to send sync report", "runID", report.RunID, "error", err)
		}
	}
	return report, runErr
}

func (s *syncServiceImpl) runAll(ctx context.Context, pub *models.Publisher, opts SyncOptions, report *SyncReport) error {
	dateParams := url.Values{}
	if opts.StartDate != "" {
		dateParams.Set("start_date", opts.StartDate)
	}
	if opts.EndDate != "" {
		dateParams.Set("end_date", opts.EndDate)
	}

	campaigns, err := s.syncCampaigns(ctx, pub, report)
	if err != nil {
		return err
	}
	if err := s.syncCommissionRules(ctx, pub, campaigns, report); err != nil {
		return err
	}
	if err := s.syncKind(ctx, pub, "transactions", apiclient.EndpointTransaction, dateParams, report,
		func(p normalize.Payload) error {
			_, err := s.upserter.UpsertTransaction(pub.ID, p)
			return err
		}); err != nil {
		return err
	}

	settlementParams := url.Values{}
	if opts.Month != "" {
		settlementParams.Set("month", opts.Month)
	}
	if err := s.syncKind(ctx, pub, "settlements", apiclient.EndpointSettlements, settlementParams, report,
		func(p normalize.Payload) error {
			_, err := s.upserter.UpsertSettlement(pub.ID, p)
			return err
		}); err != nil {
		return err
	}

	return s.syncKind(ctx, pub, "promotions", apiclient.EndpointPromotions, nil, report,
		func(p normalize.Payload) error {
			_, err := s.upserter.UpsertPromotion(pub.ID, p)
			return err
		})
}

func (s *syncServiceImpl) syncCampaigns(ctx context.Context, pub *models.Publisher, report *SyncReport) ([]*models.Campaign, error) {
	payloads, err := s.client.Fetch(ctx, pub, apiclient.EndpointCampaigns, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: campaigns: %v", ErrUpstreamFailure, err)
	}

	var campaigns []*models.Campaign
	for _, p := range payloads {
		c, err := s.upserter.UpsertCampaign(pub.ID, p)
		if err != nil {
			logger.L.Warn("Skipping campaign item", "runID", report.RunID, "error", err)
			report.Skipped["campaigns"]++
			continue
		}
		campaigns = append(campaigns, c)
		report.Upserted["campaigns"]++
	}
	return campaigns, nil
}

// syncCommissionRules pulls rules per campaign since the API scopes its rule
// listing to a campaign id.
func (s *syncServiceImpl) syncCommissionRules(ctx context.Context, pub *models.Publisher, campaigns []*models.Campaign, report *SyncReport) error {
	for _, c := range campaigns {
		params := url.Values{}
		params.Set("campaign_id", fmt.Sprintf("%d", c.ID))
		payloads, err := s.client.Fetch(ctx, pub, apiclient.EndpointRules, params)
		if err != nil {
			return fmt.Errorf("%w: commission rules for campaign %d: %v", ErrUpstreamFailure, c.ID, err)
		}
		for _, p := range payloads {
			if _, err := s.upserter.UpsertCommissionRule(c.ID, p); err != nil {
				logger.L.Warn("Skipping commission rule item", "runID", report.RunID, "campaignID", c.ID, "error", err)
				report.Skipped["commission_rules"]++
				continue
			}
			report.Upserted["commission_rules"]++
		}
	}
	return nil
}

func (s *syncServiceImpl) syncKind(ctx context.Context, pub *models.Publisher, kind, endpoint string, params url.Values, report *SyncReport, upsert func(normalize.Payload) error) error {
	payloads, err := s.client.Fetch(ctx, pub, endpoint, params)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpstreamFailure, kind, err)
	}
	for _, p := range payloads {
		if err := upsert(p); err != nil {
			logger.L.Warn("Skipping sync item", "runID", report.RunID, "kind", kind, "error", err)
			report.Skipped[kind]++
			continue
		}
		report.Upserted[kind]++
	}
	return nil
}
