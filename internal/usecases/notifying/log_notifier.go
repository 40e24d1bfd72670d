package notifying

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/toastdai/googleadsdashboard/internal/domain"
)

// LogNotifier escreve o alerta no log estruturado. É o canal mínimo que
// fica sempre ligado, mesmo sem webhook configurado.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Name() string {
	return "log"
}

func (n *LogNotifier) Notify(_ context.Context, alert *domain.Alert) error {
	entry := logrus.WithFields(logrus.Fields{
		"alert_id":   alert.ID,
		"account_id": alert.AccountID,
		"metric":     alert.Metric,
		"type":       string(alert.Type),
		"severity":   string(alert.Severity),
	})

	if alert.Severity == domain.AlertSeverityCritical {
		entry.Warn(alert.Message)
	} else {
		entry.Info(alert.Message)
	}

	return nil
}
