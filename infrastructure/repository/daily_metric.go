package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/toastdai/googleadsdashboard/infrastructure/database/postgres"
	"github.com/toastdai/googleadsdashboard/internal/domain"
)

const dailyMetricsTable = "daily_metrics dm"

// metricBatchSize limita o número de linhas por INSERT para não estourar o
// limite de parâmetros de uma query do Postgres
const metricBatchSize = 500

type DailyMetricRepository interface {
	GetLatestMetricDate() (*time.Time, error)
	GetEarliestMetricDate() (*time.Time, error)
	UpsertMetrics(q postgres.Queryer, metrics []*domain.DailyMetric) (int, error)
	GetDailySeries(accountID, campaignID string, start, end time.Time) ([]*domain.DailySeriesPoint, error)
}

type dailyMetricRepository struct {
	conn *postgres.Connection
}

func NewDailyMetricRepository(conn *postgres.Connection) DailyMetricRepository {
	return &dailyMetricRepository{
		conn: conn,
	}
}

// GetLatestMetricDate retorna a data mais recente já armazenada, ou nil
// quando a base está vazia. O planejador de janelas parte daqui.
func (d *dailyMetricRepository) GetLatestMetricDate() (*time.Time, error) {
	return d.boundaryMetricDate("MAX(dm.date)")
}

func (d *dailyMetricRepository) GetEarliestMetricDate() (*time.Time, error) {
	return d.boundaryMetricDate("MIN(dm.date)")
}

func (d *dailyMetricRepository) boundaryMetricDate(aggregate string) (*time.Time, error) {
	querySQL, queryArgs, err := squirrel.
		Select(aggregate).
		From(dailyMetricsTable).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var boundary sql.NullTime

	if err := d.conn.QueryRow(querySQL, queryArgs...).Scan(&boundary); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}

	if !boundary.Valid {
		return nil, nil
	}

	date := boundary.Time

	return &date, nil
}

// UpsertMetrics grava as linhas de uma janela em lotes. A chave natural
// (campaign_id, date, device, network) garante que ressincronizar uma
// janela já coberta atualiza as linhas existentes em vez de duplicá-las.
func (d *dailyMetricRepository) UpsertMetrics(q postgres.Queryer, metrics []*domain.DailyMetric) (int, error) {
	if len(metrics) == 0 {
		return 0, nil
	}

	metrics = dedupeMetrics(metrics)

	written := 0

	for start := 0; start < len(metrics); start += metricBatchSize {
		end := start + metricBatchSize
		if end > len(metrics) {
			end = len(metrics)
		}

		if err := d.upsertMetricsBatch(q, metrics[start:end]); err != nil {
			return written, err
		}

		written += end - start
	}

	return written, nil
}

// dedupeMetrics colapsa linhas repetidas da mesma chave natural, ficando com
// a última. O ON CONFLICT do Postgres rejeita o comando inteiro quando duas
// linhas do mesmo INSERT disputam a mesma chave.
func dedupeMetrics(metrics []*domain.DailyMetric) []*domain.DailyMetric {
	byKey := make(map[domain.MetricKey]int, len(metrics))
	deduped := make([]*domain.DailyMetric, 0, len(metrics))

	for _, metric := range metrics {
		key := metric.Key()
		if i, ok := byKey[key]; ok {
			deduped[i] = metric
			continue
		}

		byKey[key] = len(deduped)
		deduped = append(deduped, metric)
	}

	return deduped
}

func (d *dailyMetricRepository) upsertMetricsBatch(q postgres.Queryer, metrics []*domain.DailyMetric) error {
	query := squirrel.StatementBuilder.
		Insert("daily_metrics").
		Columns(
			"id", "account_id", "campaign_id", "date", "device", "network",
			"impressions", "clicks", "cost_micros", "conversions", "conversion_value",
			"ctr", "cpc", "cpa", "roas",
		).
		PlaceholderFormat(squirrel.Dollar)

	for _, metric := range metrics {
		query = query.Values(
			uuid.New().String(),
			metric.AccountID,
			metric.CampaignID,
			metric.Date,
			metric.Device,
			metric.Network,
			metric.Impressions,
			metric.Clicks,
			metric.CostMicros,
			metric.Conversions,
			metric.ConversionValue,
			metric.CTR,
			metric.CPC,
			metric.CPA,
			metric.ROAS,
		)
	}

	query = query.Suffix(`
		ON CONFLICT (campaign_id, date, device, network) DO UPDATE SET
			impressions = EXCLUDED.impressions,
			clicks = EXCLUDED.clicks,
			cost_micros = EXCLUDED.cost_micros,
			conversions = EXCLUDED.conversions,
			conversion_value = EXCLUDED.conversion_value,
			ctr = EXCLUDED.ctr,
			cpc = EXCLUDED.cpc,
			cpa = EXCLUDED.cpa,
			roas = EXCLUDED.roas,
			updated_at = NOW()
	`)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := q.Exec(sqlQuery, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

// GetDailySeries soma os contadores brutos por dia de uma campanha, do
// mais antigo para o mais recente
func (d *dailyMetricRepository) GetDailySeries(accountID, campaignID string, start, end time.Time) ([]*domain.DailySeriesPoint, error) {
	seriesSQL, seriesArgs, err := squirrel.
		Select(
			"dm.date",
			"COALESCE(SUM(dm.impressions), 0)",
			"COALESCE(SUM(dm.clicks), 0)",
			"COALESCE(SUM(dm.cost_micros), 0)",
			"COALESCE(SUM(dm.conversions), 0)",
		).
		From(dailyMetricsTable).
		Where(squirrel.Eq{"dm.account_id": accountID, "dm.campaign_id": campaignID}).
		Where(squirrel.GtOrEq{"dm.date": start}).
		Where(squirrel.LtOrEq{"dm.date": end}).
		GroupBy("dm.date").
		OrderBy("dm.date ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := d.conn.Query(seriesSQL, seriesArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	series := make([]*domain.DailySeriesPoint, 0)

	for rows.Next() {
		point := &domain.DailySeriesPoint{}

		if err := rows.Scan(
			&point.Date,
			&point.Impressions,
			&point.Clicks,
			&point.CostMicros,
			&point.Conversions,
		); err != nil {
			return nil, fmt.Errorf("erro ao deserializar a série diária: %w", err)
		}

		series = append(series, point)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return series, nil
}
