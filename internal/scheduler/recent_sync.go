// Package scheduler contém os serviços de agendamento dos jobs de
// sincronização e de alerta do dashboard.
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

// RecentSyncConfig representa a configuração do agendador da sincronização recente
type RecentSyncConfig struct {
	CronSchedule      string
	ManagerCustomerID string
	RefreshToken      string
	SyncUserID        string
	MaxCatchupDays    int
	CatchupWindowDays int
	SyncEnabled       bool
}

// RecentSyncService gerencia o agendamento e execução da sincronização recente
// de métricas do Google Ads
type RecentSyncService struct {
	scheduler           *gocron.Scheduler
	config              RecentSyncConfig
	appConfig           *config.Config
	syncService         syncing.SyncService
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
}

// NewRecentSyncService cria uma nova instância do serviço de sincronização recente
func NewRecentSyncService(
	syncService syncing.SyncService,
	appConfig *config.Config,
) *RecentSyncService {
	// Criar a configuração com base na config global
	syncConfig := RecentSyncConfig{
		CronSchedule:      appConfig.RecentSync.CronSchedule,
		ManagerCustomerID: appConfig.GoogleAds.LoginCustomerID,
		RefreshToken:      appConfig.GoogleAds.RefreshToken,
		SyncUserID:        appConfig.GoogleAds.SyncUserID,
		MaxCatchupDays:    appConfig.RecentSync.MaxCatchupDays,
		CatchupWindowDays: appConfig.RecentSync.CatchupWindowDays,
		SyncEnabled:       appConfig.RecentSync.Enabled,
	}

	// Criar o agendador
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       syncConfig.CronSchedule,
		"manager_customer_id": syncConfig.ManagerCustomerID,
		"max_catchup_days":    syncConfig.MaxCatchupDays,
		"catchup_window_days": syncConfig.CatchupWindowDays,
		"sync_enabled":        syncConfig.SyncEnabled,
	}).Info("Configuração do agendador da sincronização recente carregada")

	return &RecentSyncService{
		scheduler:   scheduler,
		config:      syncConfig,
		appConfig:   appConfig,
		syncService: syncService,
		syncRunning: false,
	}
}

// Start inicia o agendador
func (s *RecentSyncService) Start(ctx context.Context) error {
	if !s.config.SyncEnabled {
		logrus.Info("Sincronização recente desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador da sincronização recente")

	// Agendar a sincronização recente
	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runRecentSync()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização recente: %w", err)
	}

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador da sincronização recente")
		s.scheduler.Stop()
	}()

	return nil
}

// runRecentSync executa uma rodada completa da sincronização recente
func (s *RecentSyncService) runRecentSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização recente já em andamento, ignorando")
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

	logrus.Info("Iniciando sincronização recente de métricas do Google Ads")

	summary, err := s.syncService.SyncRecent(
		context.Background(),
		s.config.ManagerCustomerID,
		s.config.RefreshToken,
		s.config.SyncUserID,
	)
	if err != nil {
		if errors.Is(err, syncing.ErrLeaseHeld) {
			logrus.Info("Outra instância segura a tranca de sincronização, pulando esta rodada")
			return
		}
		logrus.WithError(err).Error("Erro ao executar sincronização recente de métricas")
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
	}).Info("Sincronização recente de métricas concluída")

	s.lastSyncCompletedAt = time.Now()
}

// TriggerManualSync inicia manualmente uma sincronização recente. Retorna
// false quando já existe uma execução em andamento.
func (s *RecentSyncService) TriggerManualSync() bool {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização recente já em andamento, ignorando solicitação manual")
		return false
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando sincronização recente manual")
	go s.runRecentSync()
	return true
}

// GetStatus retorna o status atual do agendador
func (s *RecentSyncService) GetStatus() map[string]any {
	return map[string]any{
		"sync_enabled":           s.config.SyncEnabled,
		"sync_cron":              s.config.CronSchedule,
		"max_catchup_days":       s.config.MaxCatchupDays,
		"catchup_window_days":    s.config.CatchupWindowDays,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}
}
