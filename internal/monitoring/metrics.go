package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Contadores expostos em /metrics. Todos acumulam desde o início do
// processo; taxas e janelas ficam por conta de quem coleta.
var (
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "googleads_dashboard",
		Name:      "sync_runs_total",
		Help:      "Execuções de sincronização por tipo e status final",
	}, []string{"type", "status"})

	SyncAccountsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "googleads_dashboard",
		Name:      "sync_accounts_total",
		Help:      "Contas processadas pela sincronização por resultado",
	}, []string{"result"})

	SyncRowsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "googleads_dashboard",
		Name:      "sync_rows_written_total",
		Help:      "Linhas de métrica diária gravadas no banco",
	})

	SyncRowsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "googleads_dashboard",
		Name:      "sync_rows_skipped_total",
		Help:      "Linhas do relatório descartadas durante a sincronização",
	})

	AlertsDetectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "googleads_dashboard",
		Name:      "alerts_detected_total",
		Help:      "Alertas de spike persistidos por severidade e tipo",
	}, []string{"severity", "type"})

	AlertsDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "googleads_dashboard",
		Name:      "alerts_dispatched_total",
		Help:      "Tentativas de entrega de alertas por resultado",
	}, []string{"result"})

	GoogleAdsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "googleads_dashboard",
		Name:      "googleads_requests_total",
		Help:      "Requisições à API do Google Ads por resultado",
	}, []string{"result"})
)

// Handler expõe o registro padrão do Prometheus
func Handler() http.Handler {
	return promhttp.Handler()
}
