package notifying

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/toastdai/googleadsdashboard/infrastructure/repository/mocks"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/domain"
	notifiermocks "github.com/toastdai/googleadsdashboard/internal/usecases/notifying/mocks"
	"go.uber.org/mock/gomock"
)

func testDispatchConfig() *config.Config {
	cfg := &config.Config{}
	cfg.AlertDispatch.BatchSize = 100
	return cfg
}

func pendingAlert(id string) *domain.Alert {
	return &domain.Alert{
		ID:         id,
		AccountID:  "acc-1",
		Metric:     "impressions",
		Type:       domain.AlertTypeVolumeAnomaly,
		Severity:   domain.AlertSeverityCritical,
		Message:    "Impression volume dropped 60.0% (400 vs avg 1000)",
		DetectedAt: time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC),
	}
}

func TestService_DispatchPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAlertRepo := mocks.NewMockAlertRepository(ctrl)
	mockNotifier := notifiermocks.NewMockNotifier(ctrl)

	tests := []struct {
		name      string
		notifiers func() []Notifier
		setup     func()
		validate  func(t *testing.T, delivered int, err error)
	}{
		{
			name:      "Sem alertas pendentes não deve fazer nada",
			notifiers: func() []Notifier { return []Notifier{mockNotifier} },
			setup: func() {
				mockAlertRepo.EXPECT().
					ListUnnotifiedAlerts(uint64(100)).
					Return([]*domain.Alert{}, nil)
			},
			validate: func(t *testing.T, delivered int, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 0, delivered)
			},
		},
		{
			name:      "Deve propagar o erro da listagem",
			notifiers: func() []Notifier { return []Notifier{mockNotifier} },
			setup: func() {
				mockAlertRepo.EXPECT().
					ListUnnotifiedAlerts(uint64(100)).
					Return(nil, assert.AnError)
			},
			validate: func(t *testing.T, delivered int, err error) {
				assert.Error(t, err)
				assert.Equal(t, 0, delivered)
			},
		},
		{
			name:      "Deve entregar e marcar como notificado",
			notifiers: func() []Notifier { return []Notifier{mockNotifier} },
			setup: func() {
				first := pendingAlert("alert-1")
				second := pendingAlert("alert-2")

				mockAlertRepo.EXPECT().
					ListUnnotifiedAlerts(uint64(100)).
					Return([]*domain.Alert{first, second}, nil)

				mockNotifier.EXPECT().Notify(gomock.Any(), first).Return(nil)
				mockNotifier.EXPECT().Notify(gomock.Any(), second).Return(nil)

				mockAlertRepo.EXPECT().MarkAsNotified("alert-1").Return(nil)
				mockAlertRepo.EXPECT().MarkAsNotified("alert-2").Return(nil)
			},
			validate: func(t *testing.T, delivered int, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 2, delivered)
			},
		},
		{
			name:      "Falha na entrega deve deixar o alerta para a próxima rodada",
			notifiers: func() []Notifier { return []Notifier{mockNotifier} },
			setup: func() {
				first := pendingAlert("alert-1")
				second := pendingAlert("alert-2")

				mockAlertRepo.EXPECT().
					ListUnnotifiedAlerts(uint64(100)).
					Return([]*domain.Alert{first, second}, nil)

				// O primeiro alerta falha no canal e não pode ser marcado
				mockNotifier.EXPECT().Notify(gomock.Any(), first).Return(assert.AnError)
				mockNotifier.EXPECT().Name().Return("webhook")

				mockNotifier.EXPECT().Notify(gomock.Any(), second).Return(nil)
				mockAlertRepo.EXPECT().MarkAsNotified("alert-2").Return(nil)
			},
			validate: func(t *testing.T, delivered int, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 1, delivered)
			},
		},
		{
			name:      "Falha ao marcar não deve contar a entrega",
			notifiers: func() []Notifier { return []Notifier{mockNotifier} },
			setup: func() {
				alert := pendingAlert("alert-1")

				mockAlertRepo.EXPECT().
					ListUnnotifiedAlerts(uint64(100)).
					Return([]*domain.Alert{alert}, nil)

				mockNotifier.EXPECT().Notify(gomock.Any(), alert).Return(nil)
				mockAlertRepo.EXPECT().MarkAsNotified("alert-1").Return(assert.AnError)
			},
			validate: func(t *testing.T, delivered int, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 0, delivered)
			},
		},
		{
			name: "Todos os canais precisam aceitar antes de marcar",
			notifiers: func() []Notifier {
				return []Notifier{NewLogNotifier(), mockNotifier}
			},
			setup: func() {
				alert := pendingAlert("alert-1")

				mockAlertRepo.EXPECT().
					ListUnnotifiedAlerts(uint64(100)).
					Return([]*domain.Alert{alert}, nil)

				// O canal de log aceita mas o segundo canal recusa
				mockNotifier.EXPECT().Notify(gomock.Any(), alert).Return(assert.AnError)
				mockNotifier.EXPECT().Name().Return("webhook")
			},
			validate: func(t *testing.T, delivered int, err error) {
				assert.NoError(t, err)
				assert.Equal(t, 0, delivered)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			service := &Service{
				cfg:             testDispatchConfig(),
				alertRepository: mockAlertRepo,
				notifiers:       tt.notifiers(),
			}

			delivered, err := service.DispatchPending(context.Background())

			if tt.validate != nil {
				tt.validate(t, delivered, err)
			}
		})
	}
}

func TestService_DispatchPendingCancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAlertRepo := mocks.NewMockAlertRepository(ctrl)

	mockAlertRepo.EXPECT().
		ListUnnotifiedAlerts(uint64(100)).
		Return([]*domain.Alert{pendingAlert("alert-1")}, nil)

	service := &Service{
		cfg:             testDispatchConfig(),
		alertRepository: mockAlertRepo,
		notifiers:       []Notifier{NewLogNotifier()},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	delivered, err := service.DispatchPending(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, delivered)
}
