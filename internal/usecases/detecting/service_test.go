package detecting

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/toastdai/googleadsdashboard/infrastructure/repository/mocks"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/domain"
	"github.com/toastdai/googleadsdashboard/pkg/utils"
	"go.uber.org/mock/gomock"
)

func testSpikeConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SpikeCheck = config.SpikeCheck{
		LookbackDays:      14,
		WindowSize:        7,
		MinDataPoints:     7,
		WarningZScore:     2.5,
		CriticalZScore:    3.5,
		WarningPercent:    30.0,
		CriticalPercent:   50.0,
		VolumeDropPercent: 50.0,
	}
	return cfg
}

func seriesPoint(date time.Time, impressions int64) *domain.DailySeriesPoint {
	return &domain.DailySeriesPoint{
		Date:        date,
		Impressions: impressions,
		Conversions: decimal.Zero,
	}
}

// volumeDropSeries monta oito dias terminando em end: sete dias estáveis de
// mil impressões e uma queda para quatrocentas no último
func volumeDropSeries(end time.Time) []*domain.DailySeriesPoint {
	series := make([]*domain.DailySeriesPoint, 0, 8)
	for i := 7; i >= 1; i-- {
		series = append(series, seriesPoint(end.AddDate(0, 0, -i), 1000))
	}
	series = append(series, seriesPoint(end, 400))
	return series
}

func TestService_RunSpikeCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccountRepo := mocks.NewMockAccountRepository(ctrl)
	mockCampaignRepo := mocks.NewMockCampaignRepository(ctrl)
	mockDailyMetricRepo := mocks.NewMockDailyMetricRepository(ctrl)
	mockAlertRepo := mocks.NewMockAlertRepository(ctrl)

	account := &domain.Account{
		ID:         "acc-1",
		CustomerID: "1111111111",
		Name:       "Loja A",
		Status:     domain.AccountStatusActive,
	}
	campaign := &domain.Campaign{ID: "camp-1", AccountID: "acc-1", Name: "Search BR"}

	yesterday := utils.Today().AddDate(0, 0, -1)

	tests := []struct {
		name     string
		setup    func() *[]*domain.Alert
		validate func(t *testing.T, total int, err error, saved *[]*domain.Alert)
	}{
		{
			name: "Deve retornar erro quando a listagem de contas falha",
			setup: func() *[]*domain.Alert {
				mockAccountRepo.EXPECT().
					ListActiveAccounts().
					Return(nil, assert.AnError)
				return nil
			},
			validate: func(t *testing.T, total int, err error, saved *[]*domain.Alert) {
				assert.Error(t, err)
				assert.Equal(t, 0, total)
			},
		},
		{
			name: "Deve pular campanhas com histórico curto",
			setup: func() *[]*domain.Alert {
				mockAccountRepo.EXPECT().
					ListActiveAccounts().
					Return([]*domain.Account{account}, nil)
				mockCampaignRepo.EXPECT().
					ListCampaignsByAccount("acc-1").
					Return([]*domain.Campaign{campaign}, nil)

				// Cinco dias apenas, abaixo do mínimo de sete
				series := make([]*domain.DailySeriesPoint, 0, 5)
				for i := 4; i >= 0; i-- {
					series = append(series, seriesPoint(yesterday.AddDate(0, 0, -i), 1000))
				}
				mockDailyMetricRepo.EXPECT().
					GetDailySeries("acc-1", "camp-1", gomock.Any(), gomock.Any()).
					Return(series, nil)
				return nil
			},
			validate: func(t *testing.T, total int, err error, saved *[]*domain.Alert) {
				assert.NoError(t, err)
				assert.Equal(t, 0, total)
			},
		},
		{
			name: "Deve pular campanhas sem o dado de ontem",
			setup: func() *[]*domain.Alert {
				mockAccountRepo.EXPECT().
					ListActiveAccounts().
					Return([]*domain.Account{account}, nil)
				mockCampaignRepo.EXPECT().
					ListCampaignsByAccount("acc-1").
					Return([]*domain.Campaign{campaign}, nil)

				// Oito dias, mas a série termina anteontem
				mockDailyMetricRepo.EXPECT().
					GetDailySeries("acc-1", "camp-1", gomock.Any(), gomock.Any()).
					Return(volumeDropSeries(yesterday.AddDate(0, 0, -1)), nil)
				return nil
			},
			validate: func(t *testing.T, total int, err error, saved *[]*domain.Alert) {
				assert.NoError(t, err)
				assert.Equal(t, 0, total)
			},
		},
		{
			name: "Queda de volume deve gerar o spike e a anomalia de volume",
			setup: func() *[]*domain.Alert {
				mockAccountRepo.EXPECT().
					ListActiveAccounts().
					Return([]*domain.Account{account}, nil)
				mockCampaignRepo.EXPECT().
					ListCampaignsByAccount("acc-1").
					Return([]*domain.Campaign{campaign}, nil)
				mockDailyMetricRepo.EXPECT().
					GetDailySeries("acc-1", "camp-1", gomock.Any(), gomock.Any()).
					Return(volumeDropSeries(yesterday), nil)

				saved := &[]*domain.Alert{}
				mockAlertRepo.EXPECT().
					SaveAlerts(gomock.Any()).
					DoAndReturn(func(alerts []*domain.Alert) error {
						*saved = alerts
						return nil
					})
				return saved
			},
			validate: func(t *testing.T, total int, err error, saved *[]*domain.Alert) {
				assert.NoError(t, err)
				assert.Equal(t, 2, total)

				alerts := *saved
				assert.Len(t, alerts, 2)

				spike := alerts[0]
				assert.Equal(t, "acc-1", spike.AccountID)
				assert.Equal(t, "camp-1", *spike.CampaignID)
				assert.Equal(t, "impressions", spike.Metric)
				assert.Equal(t, domain.AlertTypeNegativeSpike, spike.Type)
				assert.Equal(t, domain.AlertSeverityCritical, spike.Severity)
				assert.Contains(t, spike.Message, "Campaign 'Search BR'")
				assert.InDelta(t, -60.0, spike.Context["percent_change"], 0.01)

				volume := alerts[1]
				assert.Equal(t, "impressions", volume.Metric)
				assert.Equal(t, domain.AlertTypeVolumeAnomaly, volume.Type)
				assert.Equal(t, domain.AlertSeverityCritical, volume.Severity)
				assert.Contains(t, volume.Message, "Impression volume dropped 60.0%")
			},
		},
		{
			name: "Erro em uma campanha não deve derrubar as demais",
			setup: func() *[]*domain.Alert {
				broken := &domain.Campaign{ID: "camp-0", AccountID: "acc-1", Name: "Display BR"}

				mockAccountRepo.EXPECT().
					ListActiveAccounts().
					Return([]*domain.Account{account}, nil)
				mockCampaignRepo.EXPECT().
					ListCampaignsByAccount("acc-1").
					Return([]*domain.Campaign{broken, campaign}, nil)

				mockDailyMetricRepo.EXPECT().
					GetDailySeries("acc-1", "camp-0", gomock.Any(), gomock.Any()).
					Return(nil, assert.AnError)
				mockDailyMetricRepo.EXPECT().
					GetDailySeries("acc-1", "camp-1", gomock.Any(), gomock.Any()).
					Return(volumeDropSeries(yesterday), nil)

				mockAlertRepo.EXPECT().
					SaveAlerts(gomock.Any()).
					Return(nil)
				return nil
			},
			validate: func(t *testing.T, total int, err error, saved *[]*domain.Alert) {
				assert.NoError(t, err)
				assert.Equal(t, 2, total)
			},
		},
		{
			name: "Falha ao persistir não deve contar os alertas",
			setup: func() *[]*domain.Alert {
				mockAccountRepo.EXPECT().
					ListActiveAccounts().
					Return([]*domain.Account{account}, nil)
				mockCampaignRepo.EXPECT().
					ListCampaignsByAccount("acc-1").
					Return([]*domain.Campaign{campaign}, nil)
				mockDailyMetricRepo.EXPECT().
					GetDailySeries("acc-1", "camp-1", gomock.Any(), gomock.Any()).
					Return(volumeDropSeries(yesterday), nil)

				mockAlertRepo.EXPECT().
					SaveAlerts(gomock.Any()).
					Return(assert.AnError)
				return nil
			},
			validate: func(t *testing.T, total int, err error, saved *[]*domain.Alert) {
				assert.NoError(t, err)
				assert.Equal(t, 0, total)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := tt.setup()

			cfg := testSpikeConfig()
			service := &Service{
				cfg:                   cfg,
				detector:              NewDetector(cfg.SpikeCheck),
				accountRepository:     mockAccountRepo,
				campaignRepository:    mockCampaignRepo,
				dailyMetricRepository: mockDailyMetricRepo,
				alertRepository:       mockAlertRepo,
			}

			total, err := service.RunSpikeCheck(context.Background())

			if tt.validate != nil {
				tt.validate(t, total, err, saved)
			}
		})
	}
}
