package gadsclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	gadsdomain "github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const dailyMetricsQueryTemplate = `
	SELECT
		segments.date,
		segments.device,
		segments.ad_network_type,
		campaign.id,
		campaign.name,
		metrics.impressions,
		metrics.clicks,
		metrics.cost_micros,
		metrics.conversions,
		metrics.conversions_value
	FROM campaign
	WHERE segments.date >= '%s'
		AND segments.date <= '%s'
	ORDER BY segments.date, campaign.id`

func (c *GoogleAdsClient) GetDailyMetricsByCustomerID(ctx context.Context, customerID string, startDate, endDate time.Time) ([]*gadsdomain.MetricRow, error) {
	query := fmt.Sprintf(dailyMetricsQueryTemplate,
		startDate.Format(time.DateOnly),
		endDate.Format(time.DateOnly),
	)

	rows, err := c.search(ctx, NormalizeCustomerID(customerID), query)
	if err != nil {
		return nil, err
	}

	metricRows := make([]*gadsdomain.MetricRow, 0, len(rows))
	for _, row := range rows {
		metricRows = append(metricRows, factoryMetricRow(customerID, row))
	}

	return metricRows, nil
}

// factoryMetricRow converte uma linha do relatório para o formato interno
func factoryMetricRow(customerID string, row gadsdomain.SearchRow) *gadsdomain.MetricRow {
	metricRow := &gadsdomain.MetricRow{}

	if row.Segments != nil {
		metricRow.Date = row.Segments.Date
		metricRow.Device = row.Segments.Device
		metricRow.Network = row.Segments.AdNetworkType
	}

	if row.Campaign != nil {
		metricRow.CampaignID = row.Campaign.ID
		metricRow.CampaignName = row.Campaign.Name
	}

	if row.Metrics == nil {
		return metricRow
	}

	metricRow.Impressions = parseMetricCount(customerID, "impressions", row.Metrics.Impressions)
	metricRow.Clicks = parseMetricCount(customerID, "clicks", row.Metrics.Clicks)
	metricRow.CostMicros = parseMetricCount(customerID, "cost_micros", row.Metrics.CostMicros)
	metricRow.Conversions = decimal.NewFromFloat(row.Metrics.Conversions)
	metricRow.ConversionValue = decimal.NewFromFloat(row.Metrics.ConversionsValue)

	return metricRow
}

// parseMetricCount converte os contadores que a API REST serializa como string
func parseMetricCount(customerID, metric, value string) int64 {
	if value == "" {
		return 0
	}

	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id": customerID,
			"metric":      metric,
			"value":       value,
			"error":       err.Error(),
		}).Warn("report: error converting metric count to int64")
		return 0
	}

	return count
}
