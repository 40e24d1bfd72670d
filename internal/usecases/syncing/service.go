package syncing

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/toastdai/googleadsdashboard/infrastructure/database/postgres"
	"github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads"
	gadsdomain "github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/domain"
	"github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/gadsclient"
	"github.com/toastdai/googleadsdashboard/infrastructure/repository"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/domain"
	"github.com/toastdai/googleadsdashboard/internal/monitoring"
	"github.com/toastdai/googleadsdashboard/pkg/apiErrors"
	"github.com/toastdai/googleadsdashboard/pkg/utils"
)

type SyncService interface {
	// SyncRecent traz as métricas da janela recente de todas as contas
	// filhas da conta gerente informada
	SyncRecent(ctx context.Context, managerCustomerID, refreshToken, userID string) (*domain.SyncSummary, error)

	// BackfillHistory estende o histórico para trás em um bloco de
	// chunkDays (zero ou negativo cai no padrão da configuração). Retorna
	// (nil, nil) quando o horizonte já foi alcançado.
	BackfillHistory(ctx context.Context, managerCustomerID, refreshToken, userID string, chunkDays int) (*domain.SyncSummary, error)
}

type Service struct {
	cfg                   *config.Config
	conn                  postgres.Conn
	googleAdsService      googleads.GoogleAdsIntegrator
	accountRepository     repository.AccountRepository
	campaignRepository    repository.CampaignRepository
	dailyMetricRepository repository.DailyMetricRepository
	syncRunRepository     repository.SyncRunRepository
}

func NewService(
	cfg *config.Config,
	conn postgres.Conn,
	googleAdsService googleads.GoogleAdsIntegrator,
	accountRepository repository.AccountRepository,
	campaignRepository repository.CampaignRepository,
	dailyMetricRepository repository.DailyMetricRepository,
	syncRunRepository repository.SyncRunRepository,
) SyncService {
	return &Service{
		cfg:                   cfg,
		conn:                  conn,
		googleAdsService:      googleAdsService,
		accountRepository:     accountRepository,
		campaignRepository:    campaignRepository,
		dailyMetricRepository: dailyMetricRepository,
		syncRunRepository:     syncRunRepository,
	}
}

func (s *Service) SyncRecent(ctx context.Context, managerCustomerID, refreshToken, userID string) (*domain.SyncSummary, error) {
	return s.runSync(ctx, domain.SyncRunTypeRecent, managerCustomerID, refreshToken, userID, 0)
}

func (s *Service) BackfillHistory(ctx context.Context, managerCustomerID, refreshToken, userID string, chunkDays int) (*domain.SyncSummary, error) {
	return s.runSync(ctx, domain.SyncRunTypeBackfill, managerCustomerID, refreshToken, userID, chunkDays)
}

func (s *Service) runSync(ctx context.Context, runType domain.SyncRunType, managerCustomerID, refreshToken, userID string, chunkDays int) (*domain.SyncSummary, error) {
	managerID := gadsclient.NormalizeCustomerID(managerCustomerID)
	if managerID == "" {
		return nil, NewSyncError(ErrManagerNotConfigured, apiErrors.ErrMissingRequiredData, "Id da conta gerente não informado")
	}

	// Cada execução tem seu próprio dono de tranca, então duas execuções
	// da mesma instância também se excluem
	ownerID, err := utils.GenerateID()
	if err != nil {
		return nil, NewSyncError(ErrGenerateID, apiErrors.ErrInternalServer, "Falha ao gerar o identificador do dono da tranca")
	}

	leaseTTL := time.Duration(s.cfg.Sync.LeaseTTLMinutes) * time.Minute
	acquired, err := s.syncRunRepository.AcquireLease(managerID, ownerID, leaseTTL)
	if err != nil {
		return nil, NewSyncError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao adquirir a tranca de sincronização")
	}
	if !acquired {
		logrus.WithFields(logrus.Fields{
			"manager_customer_id": managerID,
			"type":                string(runType),
		}).Warn("sync: lease held by another worker, skipping run")
		return nil, NewSyncError(ErrLeaseHeld, apiErrors.ErrSyncLeaseHeld, "Outra instância já está sincronizando esta conta gerente")
	}
	defer func() {
		if releaseErr := s.syncRunRepository.ReleaseLease(managerID, ownerID); releaseErr != nil {
			logrus.WithError(releaseErr).Warn("sync: failed to release the sync lease")
		}
	}()

	manager, err := s.ensureManagerAccount(managerID, refreshToken, userID)
	if err != nil {
		return nil, err
	}

	// As consultas da rodada são autorizadas pela conta gerente informada.
	// O token do chamador vale para a rodada; sem ele, vale o persistido
	// da conta gerente
	s.googleAdsService.UseManagerAccount(managerID)
	switch {
	case refreshToken != "":
		s.googleAdsService.UseRefreshToken(refreshToken)
	case manager.RefreshToken != nil:
		s.googleAdsService.UseRefreshToken(*manager.RefreshToken)
	}

	window, err := s.planWindow(runType, chunkDays)
	if err != nil {
		return nil, err
	}
	if window == nil {
		return nil, nil
	}

	runID, err := utils.GenerateID()
	if err != nil {
		return nil, NewSyncError(ErrGenerateID, apiErrors.ErrInternalServer, "Falha ao gerar o identificador da execução")
	}

	run := &domain.SyncRun{
		ID:                runID,
		ManagerCustomerID: managerID,
		Type:              runType,
		Status:            domain.SyncRunStatusRunning,
		WindowStart:       window.Start,
		WindowEnd:         window.End,
		StartedAt:         time.Now().UTC(),
	}
	if err := s.syncRunRepository.CreateRun(run); err != nil {
		return nil, NewSyncError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao registrar a execução de sincronização")
	}

	logrus.WithFields(logrus.Fields{
		"manager_customer_id": managerID,
		"type":                string(runType),
		"window_start":        utils.FormatDate(window.Start),
		"window_end":          utils.FormatDate(window.End),
	}).Info("sync: run started")

	summary := &domain.SyncSummary{
		ManagerCustomerID: managerID,
		WindowStart:       window.Start,
		WindowEnd:         window.End,
	}

	children, err := s.googleAdsService.ListChildAccounts(ctx)
	if err != nil {
		// Sem a lista de contas não há o que sincronizar
		s.completeRun(run.ID, domain.SyncRunStatusFailed, summary)
		monitoring.SyncRunsTotal.WithLabelValues(string(runType), string(domain.SyncRunStatusFailed)).Inc()
		return nil, NewSyncError(ErrDiscoveryFailed, apiErrors.ErrExternalService, err.Error())
	}

	if len(children) == 0 {
		logrus.WithField("manager_customer_id", managerID).Warn("sync: manager has no enabled child accounts")
	}

	results := s.fetchAll(ctx, children, window)

	syncedAt := time.Now().UTC()
	for _, result := range results {
		accountResult := s.reconcileAccount(ctx, result, syncedAt)
		summary.Add(accountResult)

		outcome := "failed"
		if accountResult.Success {
			outcome = "success"
		}
		monitoring.SyncAccountsTotal.WithLabelValues(outcome).Inc()
		monitoring.SyncRowsWrittenTotal.Add(float64(accountResult.RowsWritten))
		monitoring.SyncRowsSkippedTotal.Add(float64(accountResult.RowsSkipped))
	}

	// Contas que sumiram da listagem foram desabilitadas ou desvinculadas
	// na conta gerente. Desativar evita que a verificação de spikes siga
	// avaliando séries paradas no tempo. Só a sincronização recente mexe no
	// estado corrente; o preenchimento histórico não.
	if runType == domain.SyncRunTypeRecent && len(children) > 0 {
		s.deactivateMissingAccounts(children)
	}

	status := summary.Status()
	s.completeRun(run.ID, status, summary)
	monitoring.SyncRunsTotal.WithLabelValues(string(runType), string(status)).Inc()

	logrus.WithFields(logrus.Fields{
		"manager_customer_id": managerID,
		"type":                string(runType),
		"status":              string(status),
		"accounts_total":      summary.AccountsTotal,
		"accounts_failed":     summary.AccountsFailed,
		"rows_written":        summary.RowsWritten,
		"rows_skipped":        summary.RowsSkipped,
	}).Info("sync: run finished")

	return summary, nil
}

// ensureManagerAccount garante a linha da conta gerente no banco, gravando
// as credenciais do chamador quando vierem preenchidas.
func (s *Service) ensureManagerAccount(managerID, refreshToken, userID string) (*domain.Account, error) {
	var tokenPtr, userPtr *string
	if refreshToken != "" {
		tokenPtr = &refreshToken
	}
	if userID != "" {
		userPtr = &userID
	}

	manager, err := s.accountRepository.EnsureManagerAccount(managerID, fmt.Sprintf("Manager %s", managerID), tokenPtr, userPtr)
	if err != nil {
		return nil, NewSyncError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao garantir a conta gerente no banco de dados")
	}

	return manager, nil
}

// planWindow decide a janela da execução. Janela nula significa que não há
// nada a sincronizar nesta rodada.
func (s *Service) planWindow(runType domain.SyncRunType, chunkDays int) (*SyncWindow, error) {
	today := utils.Today()

	if runType == domain.SyncRunTypeBackfill {
		earliest, err := s.dailyMetricRepository.GetEarliestMetricDate()
		if err != nil {
			return nil, NewSyncError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao consultar a data mais antiga sincronizada")
		}

		if chunkDays <= 0 {
			chunkDays = s.cfg.BackfillSync.ChunkDays
		}

		window, complete := PlanBackfillWindow(today, earliest, chunkDays, s.cfg.BackfillSync.HorizonDays)
		if complete {
			logrus.Info("sync: backfill already reached the configured horizon")
		}

		return window, nil
	}

	latest, err := s.dailyMetricRepository.GetLatestMetricDate()
	if err != nil {
		return nil, NewSyncError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, "Falha ao consultar a data mais recente sincronizada")
	}

	window := PlanRecentWindow(today, latest, s.cfg.RecentSync.MaxCatchupDays, s.cfg.RecentSync.CatchupWindowDays)
	return &window, nil
}

type fetchResult struct {
	child     *gadsdomain.ChildAccount
	campaigns []*gadsdomain.CampaignRecord
	rows      []*gadsdomain.MetricRow
	err       error
}

// fetchAll consulta a API para todas as contas em paralelo, limitado pelo
// semáforo. Só a leitura é paralela: a escrita no banco acontece depois,
// conta a conta.
func (s *Service) fetchAll(ctx context.Context, children []*gadsdomain.ChildAccount, window *SyncWindow) []*fetchResult {
	maxConcurrent := s.cfg.Sync.MaxConcurrentJobs
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	semaphore := make(chan struct{}, maxConcurrent)
	results := make([]*fetchResult, len(children))

	var wg sync.WaitGroup
	for i, child := range children {
		wg.Add(1)
		go func(i int, child *gadsdomain.ChildAccount) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[i] = s.fetchAccount(ctx, child, window)
		}(i, child)
	}
	wg.Wait()

	return results
}

func (s *Service) fetchAccount(ctx context.Context, child *gadsdomain.ChildAccount, window *SyncWindow) *fetchResult {
	campaigns, err := s.googleAdsService.ListCampaigns(ctx, child.CustomerID)
	if err != nil {
		return &fetchResult{child: child, err: err}
	}

	rows, err := s.googleAdsService.FetchDailyMetrics(ctx, child.CustomerID, window.Start, window.End)
	if err != nil {
		return &fetchResult{child: child, err: err}
	}

	return &fetchResult{child: child, campaigns: campaigns, rows: rows}
}

// reconcileAccount grava tudo de uma conta em uma única transação: a conta,
// as campanhas, as métricas com derivadas calculadas e o avanço do
// last_sync_at. Ou entra tudo, ou nada entra e a próxima execução refaz a
// janela inteira.
func (s *Service) reconcileAccount(ctx context.Context, result *fetchResult, syncedAt time.Time) *domain.AccountSyncResult {
	child := result.child
	accountResult := &domain.AccountSyncResult{
		CustomerID:  child.CustomerID,
		AccountName: child.Name,
	}

	if result.err != nil {
		accountResult.Error = result.err.Error()
		accountResult.Retryable = gadsdomain.IsRetryable(result.err)
		logrus.WithFields(logrus.Fields{
			"customer_id": child.CustomerID,
			"retryable":   accountResult.Retryable,
			"error":       result.err.Error(),
		}).Error("sync: failed to fetch account data from API")
		return accountResult
	}

	campaignsByExternalID := make(map[string]*domain.Campaign, len(result.campaigns))
	for _, record := range result.campaigns {
		campaignsByExternalID[record.ExternalID] = &domain.Campaign{
			ExternalID:  record.ExternalID,
			Name:        record.Name,
			Status:      record.Status,
			ChannelType: record.ChannelType,
		}
	}

	validRows := make([]*gadsdomain.MetricRow, 0, len(result.rows))
	for _, row := range result.rows {
		// Sem campaign id a métrica não tem onde se ancorar
		if row.CampaignID == "" {
			accountResult.RowsSkipped++
			continue
		}

		// Campanhas removidas saem da listagem mas o histórico delas continua
		// vindo no relatório
		if _, ok := campaignsByExternalID[row.CampaignID]; !ok {
			campaignsByExternalID[row.CampaignID] = &domain.Campaign{
				ExternalID: row.CampaignID,
				Name:       row.CampaignName,
			}
		}

		validRows = append(validRows, row)
	}

	err := s.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		accountID, err := s.accountRepository.UpsertChildAccount(tx, &domain.Account{
			CustomerID: child.CustomerID,
			Name:       child.Name,
			Status:     domain.AccountStatusActive,
		})
		if err != nil {
			return fmt.Errorf("erro ao gravar a conta: %w", err)
		}

		campaigns := make([]*domain.Campaign, 0, len(campaignsByExternalID))
		for _, campaign := range campaignsByExternalID {
			campaigns = append(campaigns, campaign)
		}

		campaignIDs, err := s.campaignRepository.ResolveOrCreate(tx, accountID, campaigns)
		if err != nil {
			return fmt.Errorf("erro ao resolver as campanhas: %w", err)
		}

		metrics := make([]*domain.DailyMetric, 0, len(validRows))
		for _, row := range validRows {
			campaignID, ok := campaignIDs[row.CampaignID]
			if !ok {
				accountResult.RowsSkipped++
				continue
			}

			date, err := utils.ParseDate(row.Date)
			if err != nil {
				accountResult.RowsSkipped++
				continue
			}

			metric := &domain.DailyMetric{
				AccountID:       accountID,
				CampaignID:      campaignID,
				Date:            *date,
				Device:          row.Device,
				Network:         row.Network,
				Impressions:     row.Impressions,
				Clicks:          row.Clicks,
				CostMicros:      row.CostMicros,
				Conversions:     row.Conversions,
				ConversionValue: row.ConversionValue,
			}
			metric.CalculateDerivedMetrics()

			metrics = append(metrics, metric)
		}

		written, err := s.dailyMetricRepository.UpsertMetrics(tx, metrics)
		if err != nil {
			return fmt.Errorf("erro ao gravar as métricas: %w", err)
		}

		if err := s.accountRepository.AdvanceLastSyncAt(tx, accountID, syncedAt); err != nil {
			return fmt.Errorf("erro ao avançar o last_sync_at: %w", err)
		}

		accountResult.RowsWritten = written
		return nil
	})
	if err != nil {
		accountResult.Error = err.Error()
		accountResult.RowsWritten = 0
		logrus.WithFields(logrus.Fields{
			"customer_id": child.CustomerID,
			"error":       err.Error(),
		}).Error("sync: failed to persist account data")
		return accountResult
	}

	accountResult.Success = true

	logrus.WithFields(logrus.Fields{
		"customer_id":  child.CustomerID,
		"rows_written": accountResult.RowsWritten,
		"rows_skipped": accountResult.RowsSkipped,
	}).Debug("sync: account reconciled")

	return accountResult
}

// deactivateMissingAccounts desativa contas ativas que não vieram na
// descoberta desta rodada. Falha aqui não derruba a execução: a próxima
// rodada tenta de novo.
func (s *Service) deactivateMissingAccounts(children []*gadsdomain.ChildAccount) {
	active, err := s.accountRepository.ListActiveAccounts()
	if err != nil {
		logrus.WithError(err).Warn("sync: failed to list active accounts for the deactivation sweep")
		return
	}

	seen := make(map[string]struct{}, len(children))
	for _, child := range children {
		seen[child.CustomerID] = struct{}{}
	}

	inactive := string(domain.AccountStatusInactive)
	for _, account := range active {
		if _, ok := seen[account.CustomerID]; ok {
			continue
		}

		if err := s.accountRepository.UpdateAccount(&domain.UpdateAccountRequest{ID: account.ID, Status: &inactive}); err != nil {
			logrus.WithFields(logrus.Fields{
				"customer_id": account.CustomerID,
				"error":       err.Error(),
			}).Warn("sync: failed to deactivate account missing from discovery")
			continue
		}

		logrus.WithFields(logrus.Fields{
			"customer_id":  account.CustomerID,
			"account_name": account.Name,
		}).Info("sync: account missing from discovery was deactivated")
	}
}

func (s *Service) completeRun(runID string, status domain.SyncRunStatus, summary *domain.SyncSummary) {
	if err := s.syncRunRepository.CompleteRun(runID, status, summary); err != nil {
		logrus.WithError(err).Error("sync: failed to persist the run summary")
	}
}
