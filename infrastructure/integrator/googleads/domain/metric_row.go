package gadsdomain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MetricRow é uma linha do relatório diário segmentado por data, dispositivo
// e rede de anúncio. Os valores chegam crus da API e só entram no banco
// depois de validados.
type MetricRow struct {
	Date            string
	Device          string
	Network         string
	CampaignID      string
	CampaignName    string
	Impressions     int64
	Clicks          int64
	CostMicros      int64
	Conversions     decimal.Decimal
	ConversionValue decimal.Decimal
}

// Validate rejeita linhas com formato inesperado antes da persistência.
// Linhas sem campaign id passam pela validação: o sync as contabiliza à
// parte como puladas.
func (r *MetricRow) Validate() error {
	if _, err := time.Parse(time.DateOnly, r.Date); err != nil {
		return fmt.Errorf("data inválida %q: %w", r.Date, err)
	}

	if r.Impressions < 0 || r.Clicks < 0 || r.CostMicros < 0 {
		return fmt.Errorf("contadores negativos na campanha %q em %s", r.CampaignID, r.Date)
	}

	if r.Conversions.IsNegative() || r.ConversionValue.IsNegative() {
		return fmt.Errorf("conversões negativas na campanha %q em %s", r.CampaignID, r.Date)
	}

	return nil
}
