package notifying

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/toastdai/googleadsdashboard/infrastructure/repository"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/domain"
	"github.com/toastdai/googleadsdashboard/internal/monitoring"
)

type NotificationService interface {
	// DispatchPending entrega os alertas ainda não notificados, mais novos
	// primeiro, e marca como notificado somente o que todos os canais
	// aceitaram. Retorna quantos alertas foram entregues.
	DispatchPending(ctx context.Context) (int, error)
}

type Service struct {
	cfg             *config.Config
	alertRepository repository.AlertRepository
	notifiers       []Notifier
}

func NewService(cfg *config.Config, alertRepository repository.AlertRepository, notifiers []Notifier) NotificationService {
	return &Service{
		cfg:             cfg,
		alertRepository: alertRepository,
		notifiers:       notifiers,
	}
}

func (s *Service) DispatchPending(ctx context.Context) (int, error) {
	alerts, err := s.alertRepository.ListUnnotifiedAlerts(uint64(s.cfg.AlertDispatch.BatchSize))
	if err != nil {
		logrus.WithError(err).Error("alerts: failed to list pending alerts")
		return 0, err
	}

	if len(alerts) == 0 {
		return 0, nil
	}

	delivered := 0
	for _, alert := range alerts {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}

		if err := s.deliver(ctx, alert); err != nil {
			monitoring.AlertsDispatchedTotal.WithLabelValues("failed").Inc()
			logrus.WithFields(logrus.Fields{
				"alert_id": alert.ID,
				"error":    err.Error(),
			}).Error("alerts: failed to deliver alert")
			continue
		}

		// Marca como notificado só depois da entrega: falha aqui reentrega
		// na próxima rodada, nunca perde o alerta
		if err := s.alertRepository.MarkAsNotified(alert.ID); err != nil {
			logrus.WithFields(logrus.Fields{
				"alert_id": alert.ID,
				"error":    err.Error(),
			}).Error("alerts: failed to mark alert as notified")
			continue
		}

		monitoring.AlertsDispatchedTotal.WithLabelValues("delivered").Inc()
		delivered++
	}

	logrus.WithFields(logrus.Fields{
		"pending":   len(alerts),
		"delivered": delivered,
	}).Info("alerts: dispatch finished")

	return delivered, nil
}

func (s *Service) deliver(ctx context.Context, alert *domain.Alert) error {
	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, alert); err != nil {
			return fmt.Errorf("canal %s: %w", notifier.Name(), err)
		}
	}

	return nil
}
