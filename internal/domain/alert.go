package domain

import (
	"time"
)

type AlertType string

const (
	AlertTypePositiveSpike AlertType = "POSITIVE_SPIKE"
	AlertTypeNegativeSpike AlertType = "NEGATIVE_SPIKE"
	AlertTypeVolumeAnomaly AlertType = "VOLUME_ANOMALY"
)

type AlertSeverity string

const (
	AlertSeverityWarning  AlertSeverity = "WARNING"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

// SpikeAlert é o veredito puro do motor de detecção, antes de virar um
// registro persistido.
type SpikeAlert struct {
	Metric        string        `json:"metric"`
	Type          AlertType     `json:"alert_type"`
	Severity      AlertSeverity `json:"severity"`
	CurrentValue  float64       `json:"current_value"`
	PreviousValue float64       `json:"previous_value"`
	ZScore        float64       `json:"z_score"`
	PercentChange float64       `json:"percent_change"`
	Message       string        `json:"message"`
	CampaignID    *string       `json:"campaign_id,omitempty"`
	CampaignName  *string       `json:"campaign_name,omitempty"`
	DetectedAt    time.Time     `json:"detected_at"`
}

// Context monta o payload gravado na coluna JSONB do alerta
func (s *SpikeAlert) Context() map[string]interface{} {
	ctx := map[string]interface{}{
		"metric":         s.Metric,
		"alert_type":     string(s.Type),
		"severity":       string(s.Severity),
		"current_value":  s.CurrentValue,
		"previous_value": s.PreviousValue,
		"z_score":        s.ZScore,
		"percent_change": s.PercentChange,
		"message":        s.Message,
		"detected_at":    s.DetectedAt.Format(time.RFC3339),
	}

	if s.CampaignID != nil {
		ctx["campaign_id"] = *s.CampaignID
	}

	if s.CampaignName != nil {
		ctx["campaign_name"] = *s.CampaignName
	}

	return ctx
}

type Alert struct {
	ID         string                 `json:"id"`
	AccountID  string                 `json:"account_id"`
	CampaignID *string                `json:"campaign_id,omitempty"`
	Metric     string                 `json:"metric"`
	Type       AlertType              `json:"alert_type"`
	Severity   AlertSeverity          `json:"severity"`
	Message    string                 `json:"message"`
	Context    map[string]interface{} `json:"context,omitempty"`
	IsRead     bool                   `json:"is_read"`
	IsNotified bool                   `json:"is_notified"`
	DetectedAt time.Time              `json:"detected_at"`
	CreatedAt  time.Time              `json:"created_at"`
}
