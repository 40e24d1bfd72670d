package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App           App           `mapstructure:",squash"`
	Server        Server        `mapstructure:",squash"`
	Database      Database      `mapstructure:",squash"`
	GoogleAds     GoogleAds     `mapstructure:",squash"`
	Auth          Auth          `mapstructure:",squash"`
	Sync          Sync          `mapstructure:",squash"`
	RecentSync    RecentSync    `mapstructure:",squash"`
	BackfillSync  BackfillSync  `mapstructure:",squash"`
	SpikeCheck    SpikeCheck    `mapstructure:",squash"`
	AlertDispatch AlertDispatch `mapstructure:",squash"`
	SecretKey     string        `mapstructure:"secret_key"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type GoogleAds struct {
	APIBaseURL            string  `mapstructure:"google_ads_api_base_url"`
	APIVersion            string  `mapstructure:"google_ads_api_version"`
	OAuthTokenURL         string  `mapstructure:"google_ads_oauth_token_url"`
	DeveloperToken        string  `mapstructure:"google_ads_developer_token"`
	ClientID              string  `mapstructure:"google_ads_client_id"`
	ClientSecret          string  `mapstructure:"google_ads_client_secret"`
	RefreshToken          string  `mapstructure:"google_ads_refresh_token"`
	LoginCustomerID       string  `mapstructure:"google_ads_login_customer_id"`
	SyncUserID            string  `mapstructure:"google_ads_sync_user_id"`
	RequestTimeoutSeconds int     `mapstructure:"google_ads_request_timeout_seconds"`
	RequestsPerSecond     float64 `mapstructure:"google_ads_requests_per_second"`
	RequestBurst          int     `mapstructure:"google_ads_request_burst"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

// Sync agrupa o que vale para os dois tipos de sincronização
type Sync struct {
	MaxConcurrentJobs int `mapstructure:"sync_max_concurrent_jobs"`
	LeaseTTLMinutes   int `mapstructure:"sync_lease_ttl_minutes"`
}

type RecentSync struct {
	CronSchedule      string `mapstructure:"recent_sync_cron"`
	MaxCatchupDays    int    `mapstructure:"recent_sync_max_catchup_days"`
	CatchupWindowDays int    `mapstructure:"recent_sync_catchup_window_days"`
	Enabled           bool   `mapstructure:"recent_sync_enabled"`
}

type BackfillSync struct {
	CronSchedule string `mapstructure:"backfill_sync_cron"`
	ChunkDays    int    `mapstructure:"backfill_sync_chunk_days"`
	HorizonDays  int    `mapstructure:"backfill_sync_horizon_days"`
	Enabled      bool   `mapstructure:"backfill_sync_enabled"`
}

type SpikeCheck struct {
	CronSchedule      string  `mapstructure:"spike_check_cron"`
	LookbackDays      int     `mapstructure:"spike_check_lookback_days"`
	WindowSize        int     `mapstructure:"spike_check_window_size"`
	MinDataPoints     int     `mapstructure:"spike_check_min_data_points"`
	WarningZScore     float64 `mapstructure:"spike_check_warning_z_score"`
	CriticalZScore    float64 `mapstructure:"spike_check_critical_z_score"`
	WarningPercent    float64 `mapstructure:"spike_check_warning_percent"`
	CriticalPercent   float64 `mapstructure:"spike_check_critical_percent"`
	VolumeDropPercent float64 `mapstructure:"spike_check_volume_drop_percent"`
	Enabled           bool    `mapstructure:"spike_check_enabled"`
}

type AlertDispatch struct {
	CronSchedule          string `mapstructure:"alert_dispatch_cron"`
	BatchSize             int    `mapstructure:"alert_dispatch_batch_size"`
	WebhookURL            string `mapstructure:"alert_dispatch_webhook_url"`
	WebhookTimeoutSeconds int    `mapstructure:"alert_dispatch_webhook_timeout_seconds"`
	Enabled               bool   `mapstructure:"alert_dispatch_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/googleads")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("GOOGLE_ADS_API_BASE_URL", "https://googleads.googleapis.com")
	viper.SetDefault("GOOGLE_ADS_API_VERSION", "v19")
	viper.SetDefault("GOOGLE_ADS_OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token")
	viper.SetDefault("GOOGLE_ADS_DEVELOPER_TOKEN", "your_developer_token")
	viper.SetDefault("GOOGLE_ADS_CLIENT_ID", "your_client_id")
	viper.SetDefault("GOOGLE_ADS_CLIENT_SECRET", "your_client_secret")
	viper.SetDefault("GOOGLE_ADS_REFRESH_TOKEN", "") // ONLY LOCAL
	viper.SetDefault("GOOGLE_ADS_LOGIN_CUSTOMER_ID", "")
	viper.SetDefault("GOOGLE_ADS_SYNC_USER_ID", "")
	viper.SetDefault("GOOGLE_ADS_REQUEST_TIMEOUT_SECONDS", 30)
	viper.SetDefault("GOOGLE_ADS_REQUESTS_PER_SECOND", 0.5) // Limite conservador da API
	viper.SetDefault("GOOGLE_ADS_REQUEST_BURST", 3)

	viper.SetDefault("SECRET_KEY", "your_secret_key")
	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	// Defaults compartilhados da sincronização
	viper.SetDefault("SYNC_MAX_CONCURRENT_JOBS", 10) // 10 contas em paralelo
	viper.SetDefault("SYNC_LEASE_TTL_MINUTES", 30)   // Tranca expira sozinha em 30 minutos

	// Defaults para a sincronização recente
	viper.SetDefault("RECENT_SYNC_CRON", "0 */12 * * *") // A cada 12 horas
	viper.SetDefault("RECENT_SYNC_MAX_CATCHUP_DAYS", 14) // Acima disso o backfill assume
	viper.SetDefault("RECENT_SYNC_CATCHUP_WINDOW_DAYS", 3)
	viper.SetDefault("RECENT_SYNC_ENABLED", true)

	// Defaults para o preenchimento histórico
	viper.SetDefault("BACKFILL_SYNC_CRON", "0 */6 * * *") // A cada 6 horas
	viper.SetDefault("BACKFILL_SYNC_CHUNK_DAYS", 30)      // Um mês por rodada
	viper.SetDefault("BACKFILL_SYNC_HORIZON_DAYS", 730)   // Dois anos de histórico
	viper.SetDefault("BACKFILL_SYNC_ENABLED", true)

	// Defaults para a detecção de spikes
	viper.SetDefault("SPIKE_CHECK_CRON", "0 * * * *") // Toda hora cheia
	viper.SetDefault("SPIKE_CHECK_LOOKBACK_DAYS", 14)
	viper.SetDefault("SPIKE_CHECK_WINDOW_SIZE", 7)
	viper.SetDefault("SPIKE_CHECK_MIN_DATA_POINTS", 7)
	viper.SetDefault("SPIKE_CHECK_WARNING_Z_SCORE", 2.5)
	viper.SetDefault("SPIKE_CHECK_CRITICAL_Z_SCORE", 3.5)
	viper.SetDefault("SPIKE_CHECK_WARNING_PERCENT", 30.0)
	viper.SetDefault("SPIKE_CHECK_CRITICAL_PERCENT", 50.0)
	viper.SetDefault("SPIKE_CHECK_VOLUME_DROP_PERCENT", 50.0)
	viper.SetDefault("SPIKE_CHECK_ENABLED", true)

	// Defaults para o despacho de alertas
	viper.SetDefault("ALERT_DISPATCH_CRON", "*/15 * * * *") // A cada 15 minutos
	viper.SetDefault("ALERT_DISPATCH_BATCH_SIZE", 100)
	viper.SetDefault("ALERT_DISPATCH_WEBHOOK_URL", "") // Vazio desliga o canal webhook
	viper.SetDefault("ALERT_DISPATCH_WEBHOOK_TIMEOUT_SECONDS", 10)
	viper.SetDefault("ALERT_DISPATCH_ENABLED", true)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	// Obter diretório atual
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../.env"),            // Diretório acima
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		logrus.Info("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
