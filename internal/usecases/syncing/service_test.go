package syncing

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	gadsdomain "github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/domain"
	gadsmocks "github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/mocks"
	"github.com/toastdai/googleadsdashboard/infrastructure/repository/mocks"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/domain"
	"github.com/toastdai/googleadsdashboard/pkg/apiErrors"
	"github.com/toastdai/googleadsdashboard/pkg/utils"
	"go.uber.org/mock/gomock"
)

// fakeConn troca a transação real por uma chamada direta, já que os
// repositórios dos testes são mocks
type fakeConn struct{}

func (fakeConn) Exec(query string, args ...interface{}) (sql.Result, error) { return nil, nil }
func (fakeConn) Query(query string, args ...interface{}) (*sql.Rows, error) { return nil, nil }
func (fakeConn) QueryRow(query string, args ...interface{}) *sql.Row        { return nil }
func (fakeConn) Close() error                                               { return nil }
func (fakeConn) Ping(ctx context.Context) error                             { return nil }
func (fakeConn) RunInTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	return fn(nil)
}

func todayMinusDays(days int) time.Time {
	return utils.Today().AddDate(0, 0, -days)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Sync.MaxConcurrentJobs = 2
	cfg.Sync.LeaseTTLMinutes = 30
	cfg.RecentSync.MaxCatchupDays = 14
	cfg.RecentSync.CatchupWindowDays = 3
	cfg.BackfillSync.ChunkDays = 30
	cfg.BackfillSync.HorizonDays = 730
	return cfg
}

func TestService_SyncRecent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Mocks
	mockAccountRepo := mocks.NewMockAccountRepository(ctrl)
	mockCampaignRepo := mocks.NewMockCampaignRepository(ctrl)
	mockDailyMetricRepo := mocks.NewMockDailyMetricRepository(ctrl)
	mockSyncRunRepo := mocks.NewMockSyncRunRepository(ctrl)
	mockIntegrator := gadsmocks.NewMockGoogleAdsIntegrator(ctrl)

	manager := &domain.Account{
		ID:         "manager-uuid",
		CustomerID: "1234567890",
		Name:       "Manager 1234567890",
		IsManager:  true,
	}

	tests := []struct {
		name         string
		cfg          *config.Config
		managerID    string
		refreshToken string
		setup        func()
		validate     func(t *testing.T, summary *domain.SyncSummary, err error)
	}{
		{
			name:         "Deve pular a rodada quando outra instância segura a tranca",
			cfg:          testConfig(),
			managerID:    "123-456-7890",
			refreshToken: "env-token",
			setup: func() {
				mockSyncRunRepo.EXPECT().
					AcquireLease("1234567890", gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			validate: func(t *testing.T, summary *domain.SyncSummary, err error) {
				assert.Nil(t, summary)
				assert.ErrorIs(t, err, ErrLeaseHeld)

				var syncErr *SyncError
				assert.ErrorAs(t, err, &syncErr)
				assert.Equal(t, apiErrors.ErrSyncLeaseHeld, syncErr.Code)
			},
		},
		{
			name:      "Deve retornar erro quando o id da conta gerente não é informado",
			cfg:       testConfig(),
			managerID: "",
			setup:     func() {},
			validate: func(t *testing.T, summary *domain.SyncSummary, err error) {
				assert.Nil(t, summary)
				assert.ErrorIs(t, err, ErrManagerNotConfigured)
			},
		},
		{
			name:         "Deve falhar a execução quando a descoberta de contas falha",
			cfg:          testConfig(),
			managerID:    "123-456-7890",
			refreshToken: "env-token",
			setup: func() {
				mockSyncRunRepo.EXPECT().
					AcquireLease("1234567890", gomock.Any(), gomock.Any()).
					Return(true, nil)
				mockSyncRunRepo.EXPECT().
					ReleaseLease("1234567890", gomock.Any()).
					Return(nil)

				mockAccountRepo.EXPECT().
					EnsureManagerAccount("1234567890", "Manager 1234567890", gomock.Any(), gomock.Any()).
					Return(manager, nil)

				mockIntegrator.EXPECT().
					UseManagerAccount("1234567890")
				mockIntegrator.EXPECT().
					UseRefreshToken("env-token")

				mockDailyMetricRepo.EXPECT().
					GetLatestMetricDate().
					Return(nil, nil)

				mockSyncRunRepo.EXPECT().
					CreateRun(gomock.Any()).
					Return(nil)

				mockIntegrator.EXPECT().
					ListChildAccounts(gomock.Any()).
					Return(nil, errors.New("api unavailable"))

				mockSyncRunRepo.EXPECT().
					CompleteRun(gomock.Any(), domain.SyncRunStatusFailed, gomock.Any()).
					Return(nil)
			},
			validate: func(t *testing.T, summary *domain.SyncSummary, err error) {
				assert.Nil(t, summary)
				assert.ErrorIs(t, err, ErrDiscoveryFailed)

				var syncErr *SyncError
				assert.ErrorAs(t, err, &syncErr)
				assert.Equal(t, apiErrors.ErrExternalService, syncErr.Code)
			},
		},
		{
			name:         "Deve marcar a execução como parcial quando uma das contas falha",
			cfg:          testConfig(),
			managerID:    "123-456-7890",
			refreshToken: "env-token",
			setup: func() {
				mockSyncRunRepo.EXPECT().
					AcquireLease("1234567890", gomock.Any(), gomock.Any()).
					Return(true, nil)
				mockSyncRunRepo.EXPECT().
					ReleaseLease("1234567890", gomock.Any()).
					Return(nil)

				mockAccountRepo.EXPECT().
					EnsureManagerAccount("1234567890", "Manager 1234567890", gomock.Any(), gomock.Any()).
					Return(manager, nil)

				mockIntegrator.EXPECT().
					UseManagerAccount("1234567890")
				mockIntegrator.EXPECT().
					UseRefreshToken("env-token")

				mockDailyMetricRepo.EXPECT().
					GetLatestMetricDate().
					Return(nil, nil)

				mockSyncRunRepo.EXPECT().
					CreateRun(gomock.Any()).
					Return(nil)

				mockIntegrator.EXPECT().
					ListChildAccounts(gomock.Any()).
					Return([]*gadsdomain.ChildAccount{
						{CustomerID: "1111111111", Name: "Loja A"},
						{CustomerID: "2222222222", Name: "Loja B"},
					}, nil)

				// Loja A sincroniza normalmente
				mockIntegrator.EXPECT().
					ListCampaigns(gomock.Any(), "1111111111").
					Return([]*gadsdomain.CampaignRecord{
						{ExternalID: "900", Name: "Search BR", Status: "ENABLED", ChannelType: "SEARCH"},
					}, nil)
				mockIntegrator.EXPECT().
					FetchDailyMetrics(gomock.Any(), "1111111111", gomock.Any(), gomock.Any()).
					Return([]*gadsdomain.MetricRow{
						{
							Date:        "2024-03-19",
							Device:      "MOBILE",
							Network:     "SEARCH",
							CampaignID:  "900",
							Impressions: 1000,
							Clicks:      50,
							CostMicros:  25000000,
							Conversions: decimal.NewFromInt(5),
						},
					}, nil)

				mockAccountRepo.EXPECT().
					UpsertChildAccount(gomock.Any(), gomock.Any()).
					Return("account-a", nil)
				mockCampaignRepo.EXPECT().
					ResolveOrCreate(gomock.Any(), "account-a", gomock.Any()).
					Return(map[string]string{"900": "campaign-a"}, nil)
				mockDailyMetricRepo.EXPECT().
					UpsertMetrics(gomock.Any(), gomock.Any()).
					Return(1, nil)
				mockAccountRepo.EXPECT().
					AdvanceLastSyncAt(gomock.Any(), "account-a", gomock.Any()).
					Return(nil)

				// Loja B falha já na listagem de campanhas
				mockIntegrator.EXPECT().
					ListCampaigns(gomock.Any(), "2222222222").
					Return(nil, &gadsdomain.APIError{Kind: gadsdomain.ErrorKindTransient, Message: "timeout"})

				// As duas lojas vieram na descoberta, então nenhuma é desativada
				mockAccountRepo.EXPECT().
					ListActiveAccounts().
					Return([]*domain.Account{
						{ID: "account-a", CustomerID: "1111111111", Status: domain.AccountStatusActive},
						{ID: "account-b", CustomerID: "2222222222", Status: domain.AccountStatusActive},
					}, nil)

				mockSyncRunRepo.EXPECT().
					CompleteRun(gomock.Any(), domain.SyncRunStatusPartial, gomock.Any()).
					Return(nil)
			},
			validate: func(t *testing.T, summary *domain.SyncSummary, err error) {
				assert.NoError(t, err)
				assert.NotNil(t, summary)
				assert.Equal(t, 2, summary.AccountsTotal)
				assert.Equal(t, 1, summary.AccountsSucceeded)
				assert.Equal(t, 1, summary.AccountsFailed)
				assert.Equal(t, 1, summary.RowsWritten)
				assert.Equal(t, domain.SyncRunStatusPartial, summary.Status())

				// A conta que falhou fica marcada para nova tentativa
				for _, result := range summary.Results {
					if result.CustomerID == "2222222222" {
						assert.False(t, result.Success)
						assert.True(t, result.Retryable)
					}
				}
			},
		},
		{
			name:         "Deve contabilizar como puladas as linhas sem campanha",
			cfg:          testConfig(),
			managerID:    "123-456-7890",
			refreshToken: "env-token",
			setup: func() {
				mockSyncRunRepo.EXPECT().
					AcquireLease("1234567890", gomock.Any(), gomock.Any()).
					Return(true, nil)
				mockSyncRunRepo.EXPECT().
					ReleaseLease("1234567890", gomock.Any()).
					Return(nil)

				mockAccountRepo.EXPECT().
					EnsureManagerAccount("1234567890", "Manager 1234567890", gomock.Any(), gomock.Any()).
					Return(manager, nil)

				mockIntegrator.EXPECT().
					UseManagerAccount("1234567890")
				mockIntegrator.EXPECT().
					UseRefreshToken("env-token")

				mockDailyMetricRepo.EXPECT().
					GetLatestMetricDate().
					Return(nil, nil)

				mockSyncRunRepo.EXPECT().
					CreateRun(gomock.Any()).
					Return(nil)

				mockIntegrator.EXPECT().
					ListChildAccounts(gomock.Any()).
					Return([]*gadsdomain.ChildAccount{
						{CustomerID: "1111111111", Name: "Loja A"},
					}, nil)

				mockIntegrator.EXPECT().
					ListCampaigns(gomock.Any(), "1111111111").
					Return([]*gadsdomain.CampaignRecord{
						{ExternalID: "900", Name: "Search BR"},
					}, nil)
				mockIntegrator.EXPECT().
					FetchDailyMetrics(gomock.Any(), "1111111111", gomock.Any(), gomock.Any()).
					Return([]*gadsdomain.MetricRow{
						{Date: "2024-03-19", CampaignID: "900", Impressions: 100},
						{Date: "2024-03-19", CampaignID: "", Impressions: 7}, // Linha órfã do relatório
					}, nil)

				mockAccountRepo.EXPECT().
					UpsertChildAccount(gomock.Any(), gomock.Any()).
					Return("account-a", nil)
				mockCampaignRepo.EXPECT().
					ResolveOrCreate(gomock.Any(), "account-a", gomock.Any()).
					Return(map[string]string{"900": "campaign-a"}, nil)
				mockDailyMetricRepo.EXPECT().
					UpsertMetrics(gomock.Any(), gomock.Any()).
					Return(1, nil)
				mockAccountRepo.EXPECT().
					AdvanceLastSyncAt(gomock.Any(), "account-a", gomock.Any()).
					Return(nil)

				mockAccountRepo.EXPECT().
					ListActiveAccounts().
					Return([]*domain.Account{
						{ID: "account-a", CustomerID: "1111111111", Status: domain.AccountStatusActive},
					}, nil)

				mockSyncRunRepo.EXPECT().
					CompleteRun(gomock.Any(), domain.SyncRunStatusSuccess, gomock.Any()).
					Return(nil)
			},
			validate: func(t *testing.T, summary *domain.SyncSummary, err error) {
				assert.NoError(t, err)
				assert.NotNil(t, summary)
				assert.Equal(t, 1, summary.RowsWritten)
				assert.Equal(t, 1, summary.RowsSkipped)
				assert.Equal(t, domain.SyncRunStatusSuccess, summary.Status())
			},
		},
		{
			name:         "Deve desativar contas ativas que sumiram da descoberta",
			cfg:          testConfig(),
			managerID:    "123-456-7890",
			refreshToken: "env-token",
			setup: func() {
				mockSyncRunRepo.EXPECT().
					AcquireLease("1234567890", gomock.Any(), gomock.Any()).
					Return(true, nil)
				mockSyncRunRepo.EXPECT().
					ReleaseLease("1234567890", gomock.Any()).
					Return(nil)

				mockAccountRepo.EXPECT().
					EnsureManagerAccount("1234567890", "Manager 1234567890", gomock.Any(), gomock.Any()).
					Return(manager, nil)

				mockIntegrator.EXPECT().
					UseManagerAccount("1234567890")
				mockIntegrator.EXPECT().
					UseRefreshToken("env-token")

				mockDailyMetricRepo.EXPECT().
					GetLatestMetricDate().
					Return(nil, nil)

				mockSyncRunRepo.EXPECT().
					CreateRun(gomock.Any()).
					Return(nil)

				mockIntegrator.EXPECT().
					ListChildAccounts(gomock.Any()).
					Return([]*gadsdomain.ChildAccount{
						{CustomerID: "1111111111", Name: "Loja A"},
					}, nil)

				mockIntegrator.EXPECT().
					ListCampaigns(gomock.Any(), "1111111111").
					Return([]*gadsdomain.CampaignRecord{}, nil)
				mockIntegrator.EXPECT().
					FetchDailyMetrics(gomock.Any(), "1111111111", gomock.Any(), gomock.Any()).
					Return([]*gadsdomain.MetricRow{}, nil)

				mockAccountRepo.EXPECT().
					UpsertChildAccount(gomock.Any(), gomock.Any()).
					Return("account-a", nil)
				mockCampaignRepo.EXPECT().
					ResolveOrCreate(gomock.Any(), "account-a", gomock.Any()).
					Return(map[string]string{}, nil)
				mockDailyMetricRepo.EXPECT().
					UpsertMetrics(gomock.Any(), gomock.Any()).
					Return(0, nil)
				mockAccountRepo.EXPECT().
					AdvanceLastSyncAt(gomock.Any(), "account-a", gomock.Any()).
					Return(nil)

				// A Loja Antiga continua ativa no banco mas não veio na listagem
				mockAccountRepo.EXPECT().
					ListActiveAccounts().
					Return([]*domain.Account{
						{ID: "account-a", CustomerID: "1111111111", Status: domain.AccountStatusActive},
						{ID: "account-old", CustomerID: "9999999999", Name: "Loja Antiga", Status: domain.AccountStatusActive},
					}, nil)

				inactive := string(domain.AccountStatusInactive)
				mockAccountRepo.EXPECT().
					UpdateAccount(&domain.UpdateAccountRequest{ID: "account-old", Status: &inactive}).
					Return(nil)

				mockSyncRunRepo.EXPECT().
					CompleteRun(gomock.Any(), domain.SyncRunStatusSuccess, gomock.Any()).
					Return(nil)
			},
			validate: func(t *testing.T, summary *domain.SyncSummary, err error) {
				assert.NoError(t, err)
				assert.NotNil(t, summary)
				assert.Equal(t, 1, summary.AccountsTotal)
				assert.Equal(t, domain.SyncRunStatusSuccess, summary.Status())
			},
		},
		{
			name:         "Deve usar o refresh token persistido quando o chamador não envia um",
			cfg:          testConfig(),
			managerID:    "123-456-7890",
			refreshToken: "",
			setup: func() {
				storedToken := "stored-token"
				managerWithToken := &domain.Account{
					ID:           "manager-uuid",
					CustomerID:   "1234567890",
					IsManager:    true,
					RefreshToken: &storedToken,
				}

				mockSyncRunRepo.EXPECT().
					AcquireLease("1234567890", gomock.Any(), gomock.Any()).
					Return(true, nil)
				mockSyncRunRepo.EXPECT().
					ReleaseLease("1234567890", gomock.Any()).
					Return(nil)

				mockAccountRepo.EXPECT().
					EnsureManagerAccount("1234567890", "Manager 1234567890", gomock.Any(), gomock.Any()).
					Return(managerWithToken, nil)

				mockIntegrator.EXPECT().
					UseManagerAccount("1234567890")
				mockIntegrator.EXPECT().
					UseRefreshToken("stored-token")

				mockDailyMetricRepo.EXPECT().
					GetLatestMetricDate().
					Return(nil, nil)

				mockSyncRunRepo.EXPECT().
					CreateRun(gomock.Any()).
					Return(nil)

				mockIntegrator.EXPECT().
					ListChildAccounts(gomock.Any()).
					Return([]*gadsdomain.ChildAccount{}, nil)

				mockSyncRunRepo.EXPECT().
					CompleteRun(gomock.Any(), domain.SyncRunStatusSuccess, gomock.Any()).
					Return(nil)
			},
			validate: func(t *testing.T, summary *domain.SyncSummary, err error) {
				assert.NoError(t, err)
				assert.NotNil(t, summary)
				assert.Equal(t, 0, summary.AccountsTotal)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			service := &Service{
				cfg:                   tt.cfg,
				conn:                  fakeConn{},
				googleAdsService:      mockIntegrator,
				accountRepository:     mockAccountRepo,
				campaignRepository:    mockCampaignRepo,
				dailyMetricRepository: mockDailyMetricRepo,
				syncRunRepository:     mockSyncRunRepo,
			}

			summary, err := service.SyncRecent(context.Background(), tt.managerID, tt.refreshToken, "user-1")

			if tt.validate != nil {
				tt.validate(t, summary, err)
			}
		})
	}
}

func TestService_BackfillHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccountRepo := mocks.NewMockAccountRepository(ctrl)
	mockCampaignRepo := mocks.NewMockCampaignRepository(ctrl)
	mockDailyMetricRepo := mocks.NewMockDailyMetricRepository(ctrl)
	mockSyncRunRepo := mocks.NewMockSyncRunRepository(ctrl)
	mockIntegrator := gadsmocks.NewMockGoogleAdsIntegrator(ctrl)

	manager := &domain.Account{
		ID:         "manager-uuid",
		CustomerID: "1234567890",
		Name:       "Manager 1234567890",
		IsManager:  true,
	}

	expectLeaseAndManager := func() {
		mockSyncRunRepo.EXPECT().
			AcquireLease("1234567890", gomock.Any(), gomock.Any()).
			Return(true, nil)
		mockSyncRunRepo.EXPECT().
			ReleaseLease("1234567890", gomock.Any()).
			Return(nil)
		mockAccountRepo.EXPECT().
			EnsureManagerAccount("1234567890", "Manager 1234567890", gomock.Any(), gomock.Any()).
			Return(manager, nil)
		mockIntegrator.EXPECT().
			UseManagerAccount("1234567890")
		mockIntegrator.EXPECT().
			UseRefreshToken("env-token")
	}

	expectEmptyRun := func() {
		mockSyncRunRepo.EXPECT().
			CreateRun(gomock.Any()).
			Return(nil)
		mockIntegrator.EXPECT().
			ListChildAccounts(gomock.Any()).
			Return([]*gadsdomain.ChildAccount{}, nil)
		mockSyncRunRepo.EXPECT().
			CompleteRun(gomock.Any(), domain.SyncRunStatusSuccess, gomock.Any()).
			Return(nil)
	}

	tests := []struct {
		name      string
		cfg       *config.Config
		chunkDays int
		setup     func()
		validate  func(t *testing.T, summary *domain.SyncSummary, err error)
	}{
		{
			name:      "Banco vazio deve semear o bloco padrão que termina ontem",
			cfg:       testConfig(),
			chunkDays: 0, // cai no padrão de 30 dias da configuração
			setup: func() {
				expectLeaseAndManager()

				mockDailyMetricRepo.EXPECT().
					GetEarliestMetricDate().
					Return(nil, nil)

				expectEmptyRun()
			},
			validate: func(t *testing.T, summary *domain.SyncSummary, err error) {
				assert.NoError(t, err)
				assert.NotNil(t, summary)
				assert.Equal(t, todayMinusDays(30), summary.WindowStart)
				assert.Equal(t, todayMinusDays(1), summary.WindowEnd)
			},
		},
		{
			name: "Deve retornar nada a fazer quando o horizonte já foi alcançado",
			cfg: func() *config.Config {
				cfg := testConfig()
				cfg.BackfillSync.HorizonDays = 30
				return cfg
			}(),
			chunkDays: 0,
			setup: func() {
				expectLeaseAndManager()

				beyondHorizon := todayMinusDays(40)
				mockDailyMetricRepo.EXPECT().
					GetEarliestMetricDate().
					Return(&beyondHorizon, nil)
			},
			validate: func(t *testing.T, summary *domain.SyncSummary, err error) {
				assert.NoError(t, err)
				assert.Nil(t, summary)
			},
		},
		{
			name:      "Bloco informado pelo chamador deve valer sobre o padrão",
			cfg:       testConfig(),
			chunkDays: 7,
			setup: func() {
				expectLeaseAndManager()

				earliest := todayMinusDays(10)
				mockDailyMetricRepo.EXPECT().
					GetEarliestMetricDate().
					Return(&earliest, nil)

				expectEmptyRun()
			},
			validate: func(t *testing.T, summary *domain.SyncSummary, err error) {
				assert.NoError(t, err)
				assert.NotNil(t, summary)
				assert.Equal(t, todayMinusDays(17), summary.WindowStart)
				assert.Equal(t, todayMinusDays(11), summary.WindowEnd)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			service := &Service{
				cfg:                   tt.cfg,
				conn:                  fakeConn{},
				googleAdsService:      mockIntegrator,
				accountRepository:     mockAccountRepo,
				campaignRepository:    mockCampaignRepo,
				dailyMetricRepository: mockDailyMetricRepo,
				syncRunRepository:     mockSyncRunRepo,
			}

			summary, err := service.BackfillHistory(context.Background(), "123-456-7890", "env-token", "user-1", tt.chunkDays)

			if tt.validate != nil {
				tt.validate(t, summary, err)
			}
		})
	}
}
