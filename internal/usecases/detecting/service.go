package detecting

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/toastdai/googleadsdashboard/infrastructure/repository"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/domain"
	"github.com/toastdai/googleadsdashboard/internal/monitoring"
	"github.com/toastdai/googleadsdashboard/pkg/utils"
)

type DetectionService interface {
	// RunSpikeCheck varre as campanhas de todas as contas ativas atrás de
	// anomalias no dia de ontem e persiste os alertas encontrados. Retorna
	// quantos alertas foram criados.
	RunSpikeCheck(ctx context.Context) (int, error)
}

type Service struct {
	cfg                   *config.Config
	detector              *Detector
	accountRepository     repository.AccountRepository
	campaignRepository    repository.CampaignRepository
	dailyMetricRepository repository.DailyMetricRepository
	alertRepository       repository.AlertRepository
}

func NewService(
	cfg *config.Config,
	accountRepository repository.AccountRepository,
	campaignRepository repository.CampaignRepository,
	dailyMetricRepository repository.DailyMetricRepository,
	alertRepository repository.AlertRepository,
) DetectionService {
	return &Service{
		cfg:                   cfg,
		detector:              NewDetector(cfg.SpikeCheck),
		accountRepository:     accountRepository,
		campaignRepository:    campaignRepository,
		dailyMetricRepository: dailyMetricRepository,
		alertRepository:       alertRepository,
	}
}

func (s *Service) RunSpikeCheck(ctx context.Context) (int, error) {
	accounts, err := s.accountRepository.ListActiveAccounts()
	if err != nil {
		logrus.WithError(err).Error("alerts: failed to list active accounts")
		return 0, err
	}

	// A avaliação olha o dia de ontem: o relatório de hoje ainda está
	// parcial e dispararia falsos positivos de queda
	today := utils.Today()
	end := today.AddDate(0, 0, -1)
	start := today.AddDate(0, 0, -s.cfg.SpikeCheck.LookbackDays)

	detectedAt := time.Now().UTC()
	totalAlerts := 0
	campaignsChecked := 0

	for _, account := range accounts {
		if ctx.Err() != nil {
			return totalAlerts, ctx.Err()
		}

		campaigns, err := s.campaignRepository.ListCampaignsByAccount(account.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": account.ID,
				"error":      err.Error(),
			}).Error("alerts: failed to list campaigns for account")
			continue
		}

		for _, campaign := range campaigns {
			alerts, err := s.checkCampaign(account, campaign, start, end, detectedAt)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"account_id":  account.ID,
					"campaign_id": campaign.ID,
					"error":       err.Error(),
				}).Error("alerts: failed to check campaign")
				continue
			}

			campaignsChecked++

			if len(alerts) == 0 {
				continue
			}

			if err := s.alertRepository.SaveAlerts(alerts); err != nil {
				logrus.WithFields(logrus.Fields{
					"account_id":  account.ID,
					"campaign_id": campaign.ID,
					"error":       err.Error(),
				}).Error("alerts: failed to persist alerts")
				continue
			}

			for _, alert := range alerts {
				monitoring.AlertsDetectedTotal.WithLabelValues(string(alert.Severity), string(alert.Type)).Inc()
			}
			totalAlerts += len(alerts)
		}
	}

	logrus.WithFields(logrus.Fields{
		"accounts":  len(accounts),
		"campaigns": campaignsChecked,
		"alerts":    totalAlerts,
	}).Info("alerts: spike check finished")

	return totalAlerts, nil
}

// checkCampaign monta a série diária agregada da campanha e avalia o último
// dia contra o restante da janela
func (s *Service) checkCampaign(account *domain.Account, campaign *domain.Campaign, start, end, detectedAt time.Time) ([]*domain.Alert, error) {
	series, err := s.dailyMetricRepository.GetDailySeries(account.ID, campaign.ID, start, end)
	if err != nil {
		return nil, err
	}

	if len(series) < s.cfg.SpikeCheck.MinDataPoints {
		return nil, nil
	}

	// Sem dado de ontem não há ponto corrente para avaliar
	last := series[len(series)-1]
	if !utils.Midnight(last.Date).Equal(end) {
		return nil, nil
	}

	current, history := buildMetricSeries(series)

	spikes := s.detector.EvaluateBatch(current, history, &campaign.ID, &campaign.Name, detectedAt)
	if len(spikes) == 0 {
		return nil, nil
	}

	alerts := make([]*domain.Alert, 0, len(spikes))
	for _, spike := range spikes {
		alerts = append(alerts, &domain.Alert{
			AccountID:  account.ID,
			CampaignID: &campaign.ID,
			Metric:     spike.Metric,
			Type:       spike.Type,
			Severity:   spike.Severity,
			Message:    spike.Message,
			Context:    spike.Context(),
			DetectedAt: spike.DetectedAt,
		})
	}

	return alerts, nil
}

// buildMetricSeries separa o último ponto (o dia avaliado) do histórico e
// deriva as métricas compostas por dia. Atenção à escala: aqui o ctr sai em
// percentual, diferente da fração persistida em daily_metrics.
func buildMetricSeries(series []*domain.DailySeriesPoint) (map[string]float64, map[string][]float64) {
	history := make(map[string][]float64, 7)
	var current map[string]float64

	for i, point := range series {
		values := pointMetrics(point)

		if i == len(series)-1 {
			current = values
			continue
		}

		for metric, value := range values {
			history[metric] = append(history[metric], value)
		}
	}

	return current, history
}

func pointMetrics(point *domain.DailySeriesPoint) map[string]float64 {
	impressions := float64(point.Impressions)
	clicks := float64(point.Clicks)
	cost := float64(point.CostMicros) / 1_000_000
	conversions, _ := point.Conversions.Float64()

	metrics := map[string]float64{
		"impressions": impressions,
		"clicks":      clicks,
		"cost":        cost,
		"conversions": conversions,
		"ctr":         0,
		"cpc":         0,
		"cpa":         0,
	}

	if impressions > 0 {
		metrics["ctr"] = clicks / impressions * 100
	}
	if clicks > 0 {
		metrics["cpc"] = cost / clicks
	}
	if conversions > 0 {
		metrics["cpa"] = cost / conversions
	}

	return metrics
}
