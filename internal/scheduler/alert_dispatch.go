package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/usecases/notifying"
)

// AlertDispatchConfig representa a configuração do agendador do despacho de alertas
type AlertDispatchConfig struct {
	CronSchedule    string
	BatchSize       int
	DispatchEnabled bool
}

// AlertDispatchService gerencia o agendamento e execução do despacho de
// alertas pendentes para os canais de notificação
type AlertDispatchService struct {
	scheduler           *gocron.Scheduler
	config              AlertDispatchConfig
	appConfig           *config.Config
	notificationService notifying.NotificationService
	syncRunning         bool
	syncMutex           sync.Mutex
	lastRunStartedAt    time.Time
	lastRunCompletedAt  time.Time
}

// NewAlertDispatchService cria uma nova instância do serviço de despacho de alertas
func NewAlertDispatchService(
	notificationService notifying.NotificationService,
	appConfig *config.Config,
) *AlertDispatchService {
	// Criar a configuração com base na config global
	dispatchConfig := AlertDispatchConfig{
		CronSchedule:    appConfig.AlertDispatch.CronSchedule,
		BatchSize:       appConfig.AlertDispatch.BatchSize,
		DispatchEnabled: appConfig.AlertDispatch.Enabled,
	}

	// Criar o agendador
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":    dispatchConfig.CronSchedule,
		"batch_size":       dispatchConfig.BatchSize,
		"dispatch_enabled": dispatchConfig.DispatchEnabled,
	}).Info("Configuração do agendador do despacho de alertas carregada")

	return &AlertDispatchService{
		scheduler:           scheduler,
		config:              dispatchConfig,
		appConfig:           appConfig,
		notificationService: notificationService,
		syncRunning:         false,
	}
}

// Start inicia o agendador
func (s *AlertDispatchService) Start(ctx context.Context) error {
	if !s.config.DispatchEnabled {
		logrus.Info("Despacho de alertas desabilitado por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador do despacho de alertas")

	// Agendar o despacho de alertas
	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runDispatch()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar despacho de alertas: %w", err)
	}

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador do despacho de alertas")
		s.scheduler.Stop()
	}()

	return nil
}

// runDispatch executa uma rodada de despacho dos alertas pendentes
func (s *AlertDispatchService) runDispatch() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Despacho de alertas já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastRunStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando despacho de alertas pendentes")

	delivered, err := s.notificationService.DispatchPending(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Erro ao despachar alertas pendentes")
		return
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration":  duration.String(),
		"delivered": delivered,
	}).Info("Despacho de alertas concluído")

	s.lastRunCompletedAt = time.Now()
}

// TriggerManualDispatch inicia manualmente um despacho de alertas. Retorna
// false quando já existe uma execução em andamento.
func (s *AlertDispatchService) TriggerManualDispatch() bool {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Despacho de alertas já em andamento, ignorando solicitação manual")
		return false
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando despacho de alertas manual")
	go s.runDispatch()
	return true
}

// GetStatus retorna o status atual do agendador
func (s *AlertDispatchService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"dispatch_running":      s.syncRunning,
		"dispatch_cron":         s.config.CronSchedule,
		"dispatch_enabled":      s.config.DispatchEnabled,
		"batch_size":            s.config.BatchSize,
		"last_run_started_at":   s.lastRunStartedAt,
		"last_run_completed_at": s.lastRunCompletedAt,
	}
}
