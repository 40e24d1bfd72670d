package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/usecases/syncing"
)

// BackfillSyncConfig representa a configuração do agendador do preenchimento histórico
type BackfillSyncConfig struct {
	CronSchedule      string
	ManagerCustomerID string
	RefreshToken      string
	SyncUserID        string
	ChunkDays         int
	HorizonDays       int
	SyncEnabled       bool
}

// BackfillSyncService gerencia o agendamento e execução do preenchimento
// histórico de métricas. Cada rodada carrega um bloco de dias para trás até
// alcançar o horizonte configurado.
type BackfillSyncService struct {
	scheduler           *gocron.Scheduler
	config              BackfillSyncConfig
	appConfig           *config.Config
	syncService         syncing.SyncService
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewBackfillSyncService cria uma nova instância do serviço de preenchimento histórico
func NewBackfillSyncService(
	syncService syncing.SyncService,
	appConfig *config.Config,
) *BackfillSyncService {
	// Criar a configuração com base na config global
	syncConfig := BackfillSyncConfig{
		CronSchedule:      appConfig.BackfillSync.CronSchedule,
		ManagerCustomerID: appConfig.GoogleAds.LoginCustomerID,
		RefreshToken:      appConfig.GoogleAds.RefreshToken,
		SyncUserID:        appConfig.GoogleAds.SyncUserID,
		ChunkDays:         appConfig.BackfillSync.ChunkDays,
		HorizonDays:       appConfig.BackfillSync.HorizonDays,
		SyncEnabled:       appConfig.BackfillSync.Enabled,
	}

	// Criar o agendador
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"manager_customer_id": syncConfig.ManagerCustomerID,
		"chunk_days":          syncConfig.ChunkDays,
		"horizon_days":        syncConfig.HorizonDays,
		"sync_enabled":        syncConfig.SyncEnabled,
	}).Info("Configuração do agendador do preenchimento histórico carregada")

	return &BackfillSyncService{
		scheduler:   scheduler,
		config:      syncConfig,
		appConfig:   appConfig,
		syncService: syncService,
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *BackfillSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Preenchimento histórico desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador do preenchimento histórico")

	// Agendar o preenchimento histórico
	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runBackfill()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar preenchimento histórico: %w", err)
	}

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador do preenchimento histórico")
		s.scheduler.Stop()
	}()

	return nil
}

// runBackfill executa uma rodada do preenchimento histórico
func (s *BackfillSyncService) runBackfill() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Preenchimento histórico já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastSyncStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando rodada de preenchimento histórico de métricas do Google Ads")

	summary, err := s.syncService.BackfillHistory(
		context.Background(),
		s.config.ManagerCustomerID,
		s.config.RefreshToken,
		s.config.SyncUserID,
		s.config.ChunkDays,
	)
	if err != nil {
		if errors.Is(err, syncing.ErrLeaseHeld) {
			logrus.Info("Outra instância segura a tranca de sincronização, pulando esta rodada")
			return
		}
		logrus.WithError(err).Error("Erro ao executar preenchimento histórico de métricas")
		return
	}

	// Sem janela a processar: o histórico já cobre todo o horizonte
	if summary == nil {
		logrus.Info("Preenchimento histórico chegou ao horizonte configurado, nada a processar")
		s.lastSyncCompletedAt = time.Now()
		return
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration":           duration.String(),
		"window_start":       summary.WindowStart.Format(time.DateOnly),
		"window_end":         summary.WindowEnd.Format(time.DateOnly),
		"accounts_total":     summary.AccountsTotal,
		"accounts_succeeded": summary.AccountsSucceeded,
		"accounts_failed":    summary.AccountsFailed,
		"rows_written":       summary.RowsWritten,
		"rows_skipped":       summary.RowsSkipped,
	}).Info("Rodada de preenchimento histórico concluída")

	s.lastSyncCompletedAt = time.Now()
}

// TriggerManualSync inicia manualmente uma rodada de preenchimento histórico.
// Retorna false quando já existe uma execução em andamento.
func (s *BackfillSyncService) TriggerManualSync() bool {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Preenchimento histórico já em andamento, ignorando solicitação manual")
		return false
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando preenchimento histórico manual")
	go s.runBackfill()
	return true
}

// GetStatus retorna o status atual da sincronização
func (s *BackfillSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_running":           s.syncRunning,
		"sync_cron":              s.config.CronSchedule,
		"sync_enabled":           s.config.SyncEnabled,
		"chunk_days":             s.config.ChunkDays,
		"horizon_days":           s.config.HorizonDays,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
