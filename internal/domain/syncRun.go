package domain

import (
	"time"
)

type SyncRunType string

const (
	SyncRunTypeRecent   SyncRunType = "RECENT"
	SyncRunTypeBackfill SyncRunType = "BACKFILL"
)

type SyncRunStatus string

const (
	SyncRunStatusRunning SyncRunStatus = "RUNNING"
	SyncRunStatusSuccess SyncRunStatus = "SUCCESS"
	SyncRunStatusPartial SyncRunStatus = "PARTIAL"
	SyncRunStatusFailed  SyncRunStatus = "FAILED"
)

// SyncRun registra uma execução de sincronização de um gerenciador, com a
// janela planejada e o resumo final.
type SyncRun struct {
	ID                string        `json:"id"`
	ManagerCustomerID string        `json:"manager_customer_id"`
	Type              SyncRunType   `json:"type"`
	Status            SyncRunStatus `json:"status"`
	WindowStart       time.Time     `json:"window_start"`
	WindowEnd         time.Time     `json:"window_end"`
	Summary           *SyncSummary  `json:"summary,omitempty"`
	StartedAt         time.Time     `json:"started_at"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
}

type AccountSyncResult struct {
	CustomerID  string `json:"customer_id"`
	AccountName string `json:"account_name"`
	Success     bool   `json:"success"`
	Retryable   bool   `json:"retryable"`
	RowsWritten int    `json:"rows_written"`
	RowsSkipped int    `json:"rows_skipped"`
	Error       string `json:"error,omitempty"`
}

type SyncSummary struct {
	ManagerCustomerID string               `json:"manager_customer_id"`
	WindowStart       time.Time            `json:"window_start"`
	WindowEnd         time.Time            `json:"window_end"`
	AccountsTotal     int                  `json:"accounts_total"`
	AccountsSucceeded int                  `json:"accounts_succeeded"`
	AccountsFailed    int                  `json:"accounts_failed"`
	RowsWritten       int                  `json:"rows_written"`
	RowsSkipped       int                  `json:"rows_skipped"`
	Results           []*AccountSyncResult `json:"results,omitempty"`
}

// Add acumula o resultado de uma conta no resumo
func (s *SyncSummary) Add(result *AccountSyncResult) {
	if result == nil {
		return
	}

	s.AccountsTotal++
	s.RowsWritten += result.RowsWritten
	s.RowsSkipped += result.RowsSkipped

	if result.Success {
		s.AccountsSucceeded++
	} else {
		s.AccountsFailed++
	}

	s.Results = append(s.Results, result)
}

// Status deriva o estado final da execução a partir dos resultados por conta
func (s *SyncSummary) Status() SyncRunStatus {
	switch {
	case s.AccountsFailed == 0:
		return SyncRunStatusSuccess
	case s.AccountsSucceeded > 0:
		return SyncRunStatusPartial
	default:
		return SyncRunStatusFailed
	}
}
