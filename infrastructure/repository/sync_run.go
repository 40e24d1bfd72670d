package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/toastdai/googleadsdashboard/infrastructure/database/postgres"
	"github.com/toastdai/googleadsdashboard/internal/domain"
)

const syncRunsTable = "sync_runs sr"

type SyncRunRepository interface {
	AcquireLease(managerCustomerID, ownerID string, ttl time.Duration) (bool, error)
	ReleaseLease(managerCustomerID, ownerID string) error
	CreateRun(run *domain.SyncRun) error
	CompleteRun(runID string, status domain.SyncRunStatus, summary *domain.SyncSummary) error
	GetLatestRun(managerCustomerID string, runType domain.SyncRunType) (*domain.SyncRun, error)
}

type syncRunRepository struct {
	conn *postgres.Connection
}

func NewSyncRunRepository(conn *postgres.Connection) SyncRunRepository {
	return &syncRunRepository{
		conn: conn,
	}
}

// AcquireLease tenta tomar a tranca persistida do gerenciador. Só toma
// quando não há tranca ou quando a existente já expirou, então duas
// instâncias nunca sincronizam o mesmo gerenciador ao mesmo tempo.
func (s *syncRunRepository) AcquireLease(managerCustomerID, ownerID string, ttl time.Duration) (bool, error) {
	expiresAt := time.Now().UTC().Add(ttl)

	query := squirrel.StatementBuilder.
		Insert("sync_leases").
		Columns("manager_customer_id", "owner_id", "expires_at").
		Values(managerCustomerID, ownerID, expiresAt).
		Suffix(`
			ON CONFLICT (manager_customer_id) DO UPDATE SET
				owner_id = EXCLUDED.owner_id,
				expires_at = EXCLUDED.expires_at
			WHERE sync_leases.expires_at < NOW()
			RETURNING owner_id
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var acquiredBy string

	if err := s.conn.QueryRow(sqlQuery, args...).Scan(&acquiredBy); err != nil {
		if err == sql.ErrNoRows {
			// Tranca vigente de outro dono
			return false, nil
		}
		if pqErr, ok := err.(*pq.Error); ok {
			return false, fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return false, fmt.Errorf("failed to execute query: %w", err)
	}

	return acquiredBy == ownerID, nil
}

func (s *syncRunRepository) ReleaseLease(managerCustomerID, ownerID string) error {
	sqlQuery, args, err := squirrel.
		Delete("sync_leases").
		Where(squirrel.Eq{"manager_customer_id": managerCustomerID, "owner_id": ownerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := s.conn.Exec(sqlQuery, args...); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

func (s *syncRunRepository) CreateRun(run *domain.SyncRun) error {
	sqlQuery, args, err := squirrel.StatementBuilder.
		Insert("sync_runs").
		Columns("id", "manager_customer_id", "type", "status", "window_start", "window_end", "started_at").
		Values(run.ID, run.ManagerCustomerID, run.Type, run.Status, run.WindowStart, run.WindowEnd, run.StartedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := s.conn.Exec(sqlQuery, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

func (s *syncRunRepository) CompleteRun(runID string, status domain.SyncRunStatus, summary *domain.SyncSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("erro ao serializar o resumo da execução: %w", err)
	}

	sqlQuery, args, err := squirrel.
		Update("sync_runs").
		Set("status", status).
		Set("summary", summaryJSON).
		Set("completed_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": runID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := s.conn.Exec(sqlQuery, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	return nil
}

func (s *syncRunRepository) GetLatestRun(managerCustomerID string, runType domain.SyncRunType) (*domain.SyncRun, error) {
	runSQL, runArgs, err := squirrel.
		Select("sr.id, sr.manager_customer_id, sr.type, sr.status, sr.window_start, sr.window_end, sr.summary, sr.started_at, sr.completed_at").
		From(syncRunsTable).
		Where(squirrel.Eq{"sr.manager_customer_id": managerCustomerID, "sr.type": runType}).
		OrderBy("sr.started_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	run := &domain.SyncRun{}

	var summaryJSON []byte

	if err := s.conn.QueryRow(runSQL, runArgs...).Scan(
		&run.ID,
		&run.ManagerCustomerID,
		&run.Type,
		&run.Status,
		&run.WindowStart,
		&run.WindowEnd,
		&summaryJSON,
		&run.StartedAt,
		&run.CompletedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}

	if len(summaryJSON) > 0 {
		summary := &domain.SyncSummary{}
		if err := json.Unmarshal(summaryJSON, summary); err != nil {
			return nil, fmt.Errorf("erro ao deserializar o resumo da execução: %w", err)
		}
		run.Summary = summary
	}

	return run, nil
}
