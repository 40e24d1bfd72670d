package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/toastdai/googleadsdashboard/internal/domain"
	"github.com/toastdai/googleadsdashboard/internal/usecases/syncing"
	syncmocks "github.com/toastdai/googleadsdashboard/internal/usecases/syncing/mocks"
	"github.com/toastdai/googleadsdashboard/pkg/apiErrors"
	"go.uber.org/mock/gomock"
)

func TestBackfillSyncService_runBackfill(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSyncService := syncmocks.NewMockSyncService(ctrl)

	tests := []struct {
		name     string
		setup    func()
		validate func(t *testing.T, service *BackfillSyncService)
	}{
		{
			name: "Rodada com janela deve registrar a conclusão",
			setup: func() {
				mockSyncService.EXPECT().
					BackfillHistory(gomock.Any(), "123-456-7890", "env-token", "user-1", 30).
					Return(&domain.SyncSummary{
						ManagerCustomerID: "1234567890",
						WindowStart:       time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
						WindowEnd:         time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
						AccountsTotal:     2,
						AccountsSucceeded: 2,
						RowsWritten:       400,
					}, nil)
			},
			validate: func(t *testing.T, service *BackfillSyncService) {
				assert.False(t, service.lastSyncStartedAt.IsZero())
				assert.False(t, service.lastSyncCompletedAt.IsZero())
			},
		},
		{
			name: "Horizonte alcançado ainda conta como rodada concluída",
			setup: func() {
				// Histórico completo: o sync devolve nil sem erro
				mockSyncService.EXPECT().
					BackfillHistory(gomock.Any(), "123-456-7890", "env-token", "user-1", 30).
					Return(nil, nil)
			},
			validate: func(t *testing.T, service *BackfillSyncService) {
				assert.False(t, service.lastSyncStartedAt.IsZero())
				assert.False(t, service.lastSyncCompletedAt.IsZero())
				assert.False(t, service.syncRunning)
			},
		},
		{
			name: "Tranca em outra instância deve ser pulada em silêncio",
			setup: func() {
				mockSyncService.EXPECT().
					BackfillHistory(gomock.Any(), "123-456-7890", "env-token", "user-1", 30).
					Return(nil, syncing.NewSyncError(syncing.ErrLeaseHeld, apiErrors.ErrSyncLeaseHeld, "Outra instância já está sincronizando esta conta gerente"))
			},
			validate: func(t *testing.T, service *BackfillSyncService) {
				assert.True(t, service.lastSyncCompletedAt.IsZero())
				assert.False(t, service.syncRunning)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()

			service := &BackfillSyncService{
				config: BackfillSyncConfig{
					CronSchedule:      "0 */6 * * *",
					ManagerCustomerID: "123-456-7890",
					RefreshToken:      "env-token",
					SyncUserID:        "user-1",
					ChunkDays:         30,
					HorizonDays:       730,
					SyncEnabled:       true,
				},
				syncService: mockSyncService,
			}

			service.runBackfill()

			if tt.validate != nil {
				tt.validate(t, service)
			}
		})
	}
}

func TestBackfillSyncService_GetStatus(t *testing.T) {
	service := &BackfillSyncService{
		config: BackfillSyncConfig{
			CronSchedule: "0 */6 * * *",
			ChunkDays:    30,
			HorizonDays:  730,
			SyncEnabled:  true,
		},
	}

	status := service.GetStatus()

	assert.Equal(t, false, status["sync_running"])
	assert.Equal(t, "0 */6 * * *", status["sync_cron"])
	assert.Equal(t, true, status["sync_enabled"])
	assert.Equal(t, 30, status["chunk_days"])
	assert.Equal(t, 730, status["horizon_days"])
}
