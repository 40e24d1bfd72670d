package googleads

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	gadsdomain "github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/domain"
	"github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/gadsclient"
	"github.com/toastdai/googleadsdashboard/internal/config"
)

type GoogleAdsIntegrator interface {
	ListChildAccounts(ctx context.Context) ([]*gadsdomain.ChildAccount, error)
	ListCampaigns(ctx context.Context, customerID string) ([]*gadsdomain.CampaignRecord, error)
	FetchDailyMetrics(ctx context.Context, customerID string, startDate, endDate time.Time) ([]*gadsdomain.MetricRow, error)
	UseRefreshToken(token string)
	UseManagerAccount(customerID string)
}

type GoogleAdsService struct {
	cfg    *config.Config
	Client gadsclient.Client
}

func New(cfg *config.Config, client gadsclient.Client) GoogleAdsIntegrator {
	return &GoogleAdsService{
		cfg:    cfg,
		Client: client,
	}
}

func (s *GoogleAdsService) ListChildAccounts(ctx context.Context) ([]*gadsdomain.ChildAccount, error) {
	accounts, err := s.Client.ListChildAccounts(ctx)
	if err != nil {
		logrus.WithError(err).Error("sync: failed to list child accounts from API")
		return nil, err
	}

	logrus.WithField("total_accounts", len(accounts)).Debug("sync: successfully retrieved child accounts")

	return accounts, nil
}

func (s *GoogleAdsService) ListCampaigns(ctx context.Context, customerID string) ([]*gadsdomain.CampaignRecord, error) {
	campaigns, err := s.Client.ListCampaignsByCustomerID(ctx, customerID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id": customerID,
			"error":       err.Error(),
		}).Error("sync: failed to list campaigns from API")
		return nil, err
	}

	return campaigns, nil
}

// FetchDailyMetrics busca o relatório diário da conta e descarta linhas com
// formato inesperado antes de entregar ao sync
func (s *GoogleAdsService) FetchDailyMetrics(ctx context.Context, customerID string, startDate, endDate time.Time) ([]*gadsdomain.MetricRow, error) {
	rows, err := s.Client.GetDailyMetricsByCustomerID(ctx, customerID, startDate, endDate)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id": customerID,
			"error":       err.Error(),
		}).Error("sync: failed to fetch daily metrics from API")
		return nil, err
	}

	validRows := make([]*gadsdomain.MetricRow, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			dropped++
			logrus.WithFields(logrus.Fields{
				"customer_id": customerID,
				"error":       err.Error(),
			}).Warn("sync: discarding malformed report row")
			continue
		}

		validRows = append(validRows, row)
	}

	if dropped > 0 {
		logrus.WithFields(logrus.Fields{
			"customer_id":  customerID,
			"rows_dropped": dropped,
		}).Warn("sync: report rows discarded by validation")
	}

	return validRows, nil
}

func (s *GoogleAdsService) UseRefreshToken(token string) {
	s.Client.UseRefreshToken(token)
}

func (s *GoogleAdsService) UseManagerAccount(customerID string) {
	s.Client.UseManagerAccount(customerID)
}
