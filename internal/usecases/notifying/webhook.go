package notifying

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/toastdai/googleadsdashboard/internal/domain"
	"github.com/toastdai/googleadsdashboard/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WebhookNotifier faz um POST JSON com o alerta para a URL configurada.
// Serve para Slack (via incoming webhook com um proxy de formato), n8n ou
// qualquer receptor HTTP.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) Name() string {
	return "webhook"
}

type webhookPayload struct {
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	Severity   domain.AlertSeverity   `json:"severity"`
	Type       domain.AlertType       `json:"alert_type"`
	Context    map[string]interface{} `json:"context,omitempty"`
	DetectedAt string                 `json:"detected_at"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, alert *domain.Alert) error {
	payload := webhookPayload{
		Title:      fmt.Sprintf("[%s] %s", alert.Severity, strings.ToUpper(alert.Metric)),
		Message:    alert.Message,
		Severity:   alert.Severity,
		Type:       alert.Type,
		Context:    alert.Context,
		DetectedAt: alert.DetectedAt.Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao serializar o alerta: %w", err)
	}

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.WithField("alert_id", alert.ID).Debug(utils.PrettyJson(body))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		logrus.WithError(err).Error("Erro ao criar a requisição")
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Error("Erro ao fazer a requisição")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook respondeu com status %d", resp.StatusCode)
	}

	return nil
}
