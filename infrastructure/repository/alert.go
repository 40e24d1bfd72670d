package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/toastdai/googleadsdashboard/infrastructure/database/postgres"
	"github.com/toastdai/googleadsdashboard/internal/domain"
)

const alertsTable = "alerts al"

type AlertRepository interface {
	SaveAlerts(alerts []*domain.Alert) error
	ListUnnotifiedAlerts(limit uint64) ([]*domain.Alert, error)
	MarkAsNotified(alertID string) error
}

type alertRepository struct {
	conn *postgres.Connection
}

func NewAlertRepository(conn *postgres.Connection) AlertRepository {
	return &alertRepository{
		conn: conn,
	}
}

func (a *alertRepository) SaveAlerts(alerts []*domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	query := squirrel.StatementBuilder.
		Insert("alerts").
		Columns("id", "account_id", "campaign_id", "metric", "alert_type", "severity", "message", "context", "is_read", "is_notified", "detected_at").
		PlaceholderFormat(squirrel.Dollar)

	for _, alert := range alerts {
		contextJSON, err := json.Marshal(alert.Context)
		if err != nil {
			return fmt.Errorf("erro ao serializar o contexto do alerta: %w", err)
		}

		query = query.Values(
			uuid.New().String(),
			alert.AccountID,
			alert.CampaignID,
			alert.Metric,
			alert.Type,
			alert.Severity,
			alert.Message,
			contextJSON,
			alert.IsRead,
			alert.IsNotified,
			alert.DetectedAt,
		)
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := a.conn.Exec(sqlQuery, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

// ListUnnotifiedAlerts retorna os alertas pendentes de notificação, dos
// mais recentes para os mais antigos
func (a *alertRepository) ListUnnotifiedAlerts(limit uint64) ([]*domain.Alert, error) {
	alertsSQL, alertsArgs, err := squirrel.
		Select("al.id, al.account_id, al.campaign_id, al.metric, al.alert_type, al.severity, al.message, al.context, al.is_read, al.is_notified, al.detected_at, al.created_at").
		From(alertsTable).
		Where(squirrel.Eq{"al.is_notified": false}).
		OrderBy("al.detected_at DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := a.conn.Query(alertsSQL, alertsArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	alerts := make([]*domain.Alert, 0)

	for rows.Next() {
		alert, err := a.deserializeAlert(rows)
		if err != nil {
			return nil, err
		}

		alerts = append(alerts, alert)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return alerts, nil
}

func (a *alertRepository) deserializeAlert(rows *sql.Rows) (*domain.Alert, error) {
	alert := &domain.Alert{}

	var contextJSON []byte

	if err := rows.Scan(
		&alert.ID,
		&alert.AccountID,
		&alert.CampaignID,
		&alert.Metric,
		&alert.Type,
		&alert.Severity,
		&alert.Message,
		&contextJSON,
		&alert.IsRead,
		&alert.IsNotified,
		&alert.DetectedAt,
		&alert.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("erro ao deserializar o alerta: %w", err)
	}

	if len(contextJSON) > 0 {
		if err := json.Unmarshal(contextJSON, &alert.Context); err != nil {
			return nil, fmt.Errorf("erro ao deserializar o contexto do alerta: %w", err)
		}
	}

	return alert, nil
}

func (a *alertRepository) MarkAsNotified(alertID string) error {
	if alertID == "" {
		return errors.New("ID is required")
	}

	sqlQuery, args, err := squirrel.
		Update("alerts").
		Set("is_notified", true).
		Where(squirrel.Eq{"id": alertID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := a.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.New("alert not found")
	}

	return nil
}
