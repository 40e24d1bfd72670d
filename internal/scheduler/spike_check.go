package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/usecases/detecting"
)

// SpikeCheckConfig representa a configuração do agendador da verificação de spikes
type SpikeCheckConfig struct {
	CronSchedule  string
	LookbackDays  int
	WindowSize    int
	MinDataPoints int
	CheckEnabled  bool
}

// SpikeCheckService gerencia o agendamento e execução da verificação
// estatística de spikes nas métricas das campanhas
type SpikeCheckService struct {
	scheduler            *gocron.Scheduler
	config               SpikeCheckConfig
	appConfig            *config.Config
	detectionService     detecting.DetectionService
	syncRunning          bool
	syncMutex            sync.Mutex
	lastCheckStartedAt   time.Time
	lastCheckCompletedAt time.Time
}

// NewSpikeCheckService cria uma nova instância do serviço de verificação de spikes
func NewSpikeCheckService(
	detectionService detecting.DetectionService,
	appConfig *config.Config,
) *SpikeCheckService {
	// Criar a configuração com base na config global
	checkConfig := SpikeCheckConfig{
		CronSchedule:  appConfig.SpikeCheck.CronSchedule,
		LookbackDays:  appConfig.SpikeCheck.LookbackDays,
		WindowSize:    appConfig.SpikeCheck.WindowSize,
		MinDataPoints: appConfig.SpikeCheck.MinDataPoints,
		CheckEnabled:  appConfig.SpikeCheck.Enabled,
	}

	// Criar o agendador
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":   checkConfig.CronSchedule,
		"lookback_days":   checkConfig.LookbackDays,
		"window_size":     checkConfig.WindowSize,
		"min_data_points": checkConfig.MinDataPoints,
		"check_enabled":   checkConfig.CheckEnabled,
	}).Info("Configuração do agendador da verificação de spikes carregada")

	return &SpikeCheckService{
		scheduler:        scheduler,
		config:           checkConfig,
		appConfig:        appConfig,
		detectionService: detectionService,
		syncRunning:      false,
	}
}

// Start inicia o agendador
func (s *SpikeCheckService) Start(ctx context.Context) error {
	if !s.config.CheckEnabled {
		logrus.Info("Verificação de spikes desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando agendador da verificação de spikes")

	// Agendar a verificação de spikes
	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.runSpikeCheck()
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar verificação de spikes: %w", err)
	}

	// Executar o agendador em uma goroutine separada
	s.scheduler.StartAsync()

	// Configurar o cancelamento do agendador quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador da verificação de spikes")
		s.scheduler.Stop()
	}()

	return nil
}

// runSpikeCheck executa uma rodada completa da verificação de spikes
func (s *SpikeCheckService) runSpikeCheck() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Verificação de spikes já em andamento, ignorando")
		return
	}
	s.syncRunning = true
	s.syncMutex.Unlock()

	startTime := time.Now()
	s.lastCheckStartedAt = startTime

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando verificação de spikes nas métricas das campanhas")

	alertsDetected, err := s.detectionService.RunSpikeCheck(context.Background())
	if err != nil {
		logrus.WithError(err).Error("Erro ao executar verificação de spikes")
		return
	}

	duration := time.Since(startTime)
	logrus.WithFields(logrus.Fields{
		"duration":        duration.String(),
		"alerts_detected": alertsDetected,
	}).Info("Verificação de spikes concluída")

	s.lastCheckCompletedAt = time.Now()
}

// TriggerManualCheck inicia manualmente uma verificação de spikes. Retorna
// false quando já existe uma execução em andamento.
func (s *SpikeCheckService) TriggerManualCheck() bool {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Verificação de spikes já em andamento, ignorando solicitação manual")
		return false
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando verificação de spikes manual")
	go s.runSpikeCheck()
	return true
}

// GetStatus retorna o status atual do agendador
func (s *SpikeCheckService) GetStatus() map[string]any {
	return map[string]any{
		"check_enabled":           s.config.CheckEnabled,
		"check_cron":              s.config.CronSchedule,
		"lookback_days":           s.config.LookbackDays,
		"window_size":             s.config.WindowSize,
		"min_data_points":         s.config.MinDataPoints,
		"last_check_started_at":   s.lastCheckStartedAt,
		"last_check_completed_at": s.lastCheckCompletedAt,
	}
}
