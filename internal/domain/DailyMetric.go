package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyMetric guarda os contadores brutos de um dia de uma campanha,
// segmentados por dispositivo e rede, mais as razões derivadas.
// A chave natural é (campaign_id, date, device, network).
type DailyMetric struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	CampaignID      string          `json:"campaign_id"`
	Date            time.Time       `json:"date"`
	Device          string          `json:"device"`
	Network         string          `json:"network"`
	Impressions     int64           `json:"impressions"`
	Clicks          int64           `json:"clicks"`
	CostMicros      int64           `json:"cost_micros"`
	Conversions     decimal.Decimal `json:"conversions"`
	ConversionValue decimal.Decimal `json:"conversion_value"`
	CTR             decimal.Decimal `json:"ctr"`
	CPC             decimal.Decimal `json:"cpc"`
	CPA             decimal.Decimal `json:"cpa"`
	ROAS            decimal.Decimal `json:"roas"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type MetricKey struct {
	CampaignID string
	Date       string
	Device     string
	Network    string
}

// DailySeriesPoint é a soma dos contadores de um dia de uma campanha,
// agregada sobre dispositivos e redes. Alimenta o detector de picos.
type DailySeriesPoint struct {
	Date        time.Time       `json:"date"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	CostMicros  int64           `json:"cost_micros"`
	Conversions decimal.Decimal `json:"conversions"`
}

func (m *DailyMetric) Key() MetricKey {
	return MetricKey{
		CampaignID: m.CampaignID,
		Date:       m.Date.Format("2006-01-02"),
		Device:     m.Device,
		Network:    m.Network,
	}
}

// Cost converte o custo em micros para a moeda da conta
func (m *DailyMetric) Cost() decimal.Decimal {
	return decimal.NewFromInt(m.CostMicros).Div(decimal.NewFromInt(1_000_000))
}

// CalculateDerivedMetrics recalcula ctr, cpc, cpa e roas a partir dos
// contadores brutos. As razões nunca são gravadas de forma independente:
// sempre que os contadores mudam, este método roda antes de persistir.
func (m *DailyMetric) CalculateDerivedMetrics() {
	m.CTR = decimal.Zero
	m.CPC = decimal.Zero
	m.CPA = decimal.Zero
	m.ROAS = decimal.Zero

	cost := m.Cost()

	if m.Impressions > 0 {
		m.CTR = decimal.NewFromInt(m.Clicks).Div(decimal.NewFromInt(m.Impressions))
	}

	if m.Clicks > 0 {
		m.CPC = cost.Div(decimal.NewFromInt(m.Clicks))
	}

	if m.Conversions.IsPositive() {
		m.CPA = cost.Div(m.Conversions)

		if cost.IsPositive() {
			m.ROAS = m.ConversionValue.Div(cost)
		}
	}
}
