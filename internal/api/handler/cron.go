package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/gadsclient"
	"github.com/toastdai/googleadsdashboard/infrastructure/repository"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/domain"
	"github.com/toastdai/googleadsdashboard/internal/scheduler"
	"github.com/toastdai/googleadsdashboard/pkg/apiErrors"
	"github.com/toastdai/googleadsdashboard/pkg/middleware"
)

// CronJobType define o tipo de cron job que será executada
const (
	CronJobTypeRecentSync    = "recent-sync"
	CronJobTypeBackfill      = "backfill"
	CronJobTypeSpikeCheck    = "spike-check"
	CronJobTypeAlertDispatch = "alert-dispatch"
	CronJobTypeAll           = "all"
)

// CronJobServices contém os serviços de cron necessários para executar manualmente
type CronJobServices struct {
	Config               *config.Config
	RecentSyncService    *scheduler.RecentSyncService
	BackfillSyncService  *scheduler.BackfillSyncService
	SpikeCheckService    *scheduler.SpikeCheckService
	AlertDispatchService *scheduler.AlertDispatchService
	SyncRunRepository    repository.SyncRunRepository
}

// RunCronJob executa manualmente uma cron job específica. O disparo respeita a
// chave de configuração do job: um job desligado não roda nem por solicitação
// manual.
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - RunCronJob")

		// Registrar qual serviço autenticado solicitou a execução
		if claims, ok := r.Context().Value(middleware.ContextKeyServiceClaims).(*middleware.ServiceClaims); ok && claims.Service != "" {
			logrus.WithField("service", claims.Service).Info("Cron job solicitada via API")
		}

		// Obter o tipo de cron job da URL
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		// Validar o tipo de cron job
		switch cronType {
		case CronJobTypeRecentSync:
			// Executar sincronização recente
			if services.RecentSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de sincronização recente não disponível", nil)
				return
			}
			if !services.Config.RecentSync.Enabled {
				apiErrors.WriteError(w, apiErrors.ErrJobDisabled, "Sincronização recente desabilitada por configuração", nil)
				return
			}
			if !services.RecentSyncService.TriggerManualSync() {
				apiErrors.WriteError(w, apiErrors.ErrJobAlreadyRunning, "Sincronização recente já em andamento", nil)
				return
			}

		case CronJobTypeBackfill:
			// Executar preenchimento histórico
			if services.BackfillSyncService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de preenchimento histórico não disponível", nil)
				return
			}
			if !services.Config.BackfillSync.Enabled {
				apiErrors.WriteError(w, apiErrors.ErrJobDisabled, "Preenchimento histórico desabilitado por configuração", nil)
				return
			}
			if !services.BackfillSyncService.TriggerManualSync() {
				apiErrors.WriteError(w, apiErrors.ErrJobAlreadyRunning, "Preenchimento histórico já em andamento", nil)
				return
			}

		case CronJobTypeSpikeCheck:
			// Executar verificação de spikes
			if services.SpikeCheckService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de verificação de spikes não disponível", nil)
				return
			}
			if !services.Config.SpikeCheck.Enabled {
				apiErrors.WriteError(w, apiErrors.ErrJobDisabled, "Verificação de spikes desabilitada por configuração", nil)
				return
			}
			if !services.SpikeCheckService.TriggerManualCheck() {
				apiErrors.WriteError(w, apiErrors.ErrJobAlreadyRunning, "Verificação de spikes já em andamento", nil)
				return
			}

		case CronJobTypeAlertDispatch:
			// Executar despacho de alertas
			if services.AlertDispatchService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de despacho de alertas não disponível", nil)
				return
			}
			if !services.Config.AlertDispatch.Enabled {
				apiErrors.WriteError(w, apiErrors.ErrJobDisabled, "Despacho de alertas desabilitado por configuração", nil)
				return
			}
			if !services.AlertDispatchService.TriggerManualDispatch() {
				apiErrors.WriteError(w, apiErrors.ErrJobAlreadyRunning, "Despacho de alertas já em andamento", nil)
				return
			}

		case CronJobTypeAll:
			// Executar todos os jobs habilitados
			if services.RecentSyncService != nil && services.Config.RecentSync.Enabled {
				services.RecentSyncService.TriggerManualSync()
			}
			if services.BackfillSyncService != nil && services.Config.BackfillSync.Enabled {
				services.BackfillSyncService.TriggerManualSync()
			}
			if services.SpikeCheckService != nil && services.Config.SpikeCheck.Enabled {
				services.SpikeCheckService.TriggerManualCheck()
			}
			if services.AlertDispatchService != nil && services.Config.AlertDispatch.Enabled {
				services.AlertDispatchService.TriggerManualDispatch()
			}
		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job inválido. Valores aceitos: recent-sync, backfill, spike-check, alert-dispatch, all", nil)
			return
		}

		// Responder com sucesso
		response := map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    cronType,
		}
		json.NewEncoder(w).Encode(response)
	}
}

// GetCronStatus retorna o status das cron jobs e as últimas execuções de
// sincronização persistidas
func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		status := map[string]any{
			"recent-sync":    services.RecentSyncService.GetStatus(),
			"backfill":       services.BackfillSyncService.GetStatus(),
			"spike-check":    services.SpikeCheckService.GetStatus(),
			"alert-dispatch": services.AlertDispatchService.GetStatus(),
		}

		// Os timestamps dos agendadores vivem em memória e zeram a cada
		// restart. As execuções persistidas contam a história completa.
		if services.SyncRunRepository != nil {
			managerID := gadsclient.NormalizeCustomerID(services.Config.GoogleAds.LoginCustomerID)
			lastRuns := map[string]any{}

			if run, err := services.SyncRunRepository.GetLatestRun(managerID, domain.SyncRunTypeRecent); err != nil {
				logrus.WithError(err).Warn("Erro ao consultar a última sincronização recente persistida")
			} else if run != nil {
				lastRuns[CronJobTypeRecentSync] = run
			}

			if run, err := services.SyncRunRepository.GetLatestRun(managerID, domain.SyncRunTypeBackfill); err != nil {
				logrus.WithError(err).Warn("Erro ao consultar o último preenchimento histórico persistido")
			} else if run != nil {
				lastRuns[CronJobTypeBackfill] = run
			}

			status["last-runs"] = lastRuns
		}

		json.NewEncoder(w).Encode(status)
	}
}
