package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/toastdai/googleadsdashboard/infrastructure/database/postgres"
	"github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads"
	"github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/gadsclient"
	"github.com/toastdai/googleadsdashboard/infrastructure/repository"
	"github.com/toastdai/googleadsdashboard/internal/api"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/scheduler"
	"github.com/toastdai/googleadsdashboard/internal/usecases/detecting"
	"github.com/toastdai/googleadsdashboard/internal/usecases/notifying"
	"github.com/toastdai/googleadsdashboard/internal/usecases/syncing"
	"github.com/toastdai/googleadsdashboard/pkg/cipher"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	// Cifra usada para guardar refresh tokens em repouso
	tokenCipher, err := cipher.New(cfg.SecretKey)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao inicializar a cifra dos refresh tokens")
	}

	accountRepo := repository.NewAccountRepository(pgConn, tokenCipher)
	campaignRepo := repository.NewCampaignRepository(pgConn)
	dailyMetricRepo := repository.NewDailyMetricRepository(pgConn)
	alertRepo := repository.NewAlertRepository(pgConn)
	syncRunRepo := repository.NewSyncRunRepository(pgConn)

	tokenManager := gadsclient.NewTokenManager(cfg)
	googleAdsClient := gadsclient.NewClient(cfg, tokenManager)
	googleAdsIntegrator := googleads.New(cfg, googleAdsClient)

	syncService := syncing.NewService(
		cfg,
		pgConn,
		googleAdsIntegrator,
		accountRepo,
		campaignRepo,
		dailyMetricRepo,
		syncRunRepo,
	)

	detectionService := detecting.NewService(
		cfg,
		accountRepo,
		campaignRepo,
		dailyMetricRepo,
		alertRepo,
	)

	// O canal de log está sempre presente; o webhook entra quando configurado
	notifiers := []notifying.Notifier{notifying.NewLogNotifier()}
	if cfg.AlertDispatch.WebhookURL != "" {
		notifiers = append(notifiers, notifying.NewWebhookNotifier(
			cfg.AlertDispatch.WebhookURL,
			time.Duration(cfg.AlertDispatch.WebhookTimeoutSeconds)*time.Second,
		))
	}
	notificationService := notifying.NewService(cfg, alertRepo, notifiers)

	// Inicializa os agendadores dos jobs
	recentSyncService := scheduler.NewRecentSyncService(syncService, cfg)
	backfillSyncService := scheduler.NewBackfillSyncService(syncService, cfg)
	spikeCheckService := scheduler.NewSpikeCheckService(detectionService, cfg)
	alertDispatchService := scheduler.NewAlertDispatchService(notificationService, cfg)

	// Inicia os agendadores em background
	if err := recentSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador da sincronização recente")
	} else {
		logrus.Info("Agendador da sincronização recente iniciado com sucesso")
	}

	if err := backfillSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador do preenchimento histórico")
	} else {
		logrus.Info("Agendador do preenchimento histórico iniciado com sucesso")
	}

	if err := spikeCheckService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador da verificação de spikes")
	} else {
		logrus.Info("Agendador da verificação de spikes iniciado com sucesso")
	}

	if err := alertDispatchService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador do despacho de alertas")
	} else {
		logrus.Info("Agendador do despacho de alertas iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		recentSyncService,
		backfillSyncService,
		spikeCheckService,
		alertDispatchService,
		syncRunRepo,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
