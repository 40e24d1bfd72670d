package detecting

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/domain"
)

// MetricPolarity indica qual direção de movimento é a boa para uma métrica
type MetricPolarity string

const (
	// PolarityMoreIsGood marca métricas de ganho: subir é melhora
	PolarityMoreIsGood MetricPolarity = "MORE_IS_GOOD"
	// PolarityMoreIsBad marca métricas de custo: subir é piora
	PolarityMoreIsBad MetricPolarity = "MORE_IS_BAD"
)

// metricPolarity enumera a polaridade de cada métrica avaliada. Métrica nova
// entra aqui junto com a decisão de qual direção é a boa; nome fora da
// tabela cai em PolarityMoreIsGood com um aviso no log.
var metricPolarity = map[string]MetricPolarity{
	"impressions":      PolarityMoreIsGood,
	"clicks":           PolarityMoreIsGood,
	"ctr":              PolarityMoreIsGood,
	"conversions":      PolarityMoreIsGood,
	"conversion_value": PolarityMoreIsGood,
	"roas":             PolarityMoreIsGood,
	"cost":             PolarityMoreIsBad,
	"cpc":              PolarityMoreIsBad,
	"cpa":              PolarityMoreIsBad,
}

// Cada métrica desconhecida gera um único aviso por processo
var polarityWarned sync.Map

func polarityOf(metric string) MetricPolarity {
	name := strings.ToLower(metric)
	if polarity, ok := metricPolarity[name]; ok {
		return polarity
	}

	if _, loaded := polarityWarned.LoadOrStore(name, struct{}{}); !loaded {
		logrus.WithField("metric", metric).Warn("detect: metric without a declared polarity, assuming more is good")
	}

	return PolarityMoreIsGood
}

// Detector avalia uma métrica contra seu histórico combinando z-score da
// janela móvel com a variação percentual sobre o último dia. Os dois
// sinais se complementam: o z-score pega desvios fora do padrão da série e
// o percentual pega saltos grandes mesmo em séries de variância alta.
type Detector struct {
	windowSize        int
	minDataPoints     int
	warningZScore     float64
	criticalZScore    float64
	warningPercent    float64
	criticalPercent   float64
	volumeDropPercent float64
}

func NewDetector(cfg config.SpikeCheck) *Detector {
	return &Detector{
		windowSize:        cfg.WindowSize,
		minDataPoints:     cfg.MinDataPoints,
		warningZScore:     cfg.WarningZScore,
		criticalZScore:    cfg.CriticalZScore,
		warningPercent:    cfg.WarningPercent,
		criticalPercent:   cfg.CriticalPercent,
		volumeDropPercent: cfg.VolumeDropPercent,
	}
}

// Evaluate compara o valor corrente de uma métrica com o histórico
// (ascendente, sem o dia corrente). Retorna nil quando não há anomalia ou
// quando o histórico é curto demais para opinar.
func (d *Detector) Evaluate(metric string, current float64, history []float64, campaignID, campaignName *string, detectedAt time.Time) *domain.SpikeAlert {
	if len(history) < d.minDataPoints {
		return nil
	}

	zScore := d.zScore(current, history)
	previous := history[len(history)-1]
	percentChange := percentChange(current, previous)

	severity, spiked := d.severity(zScore, percentChange)
	if !spiked {
		return nil
	}

	direction := "decreased"
	if percentChange > 0 {
		direction = "increased"
	}

	message := fmt.Sprintf("%s %s by %.1f%% (%.2f -> %.2f)",
		strings.ToUpper(metric), direction, math.Abs(percentChange), previous, current)

	return &domain.SpikeAlert{
		Metric:        metric,
		Type:          classifyAlertType(metric, percentChange),
		Severity:      severity,
		CurrentValue:  current,
		PreviousValue: previous,
		ZScore:        zScore,
		PercentChange: percentChange,
		Message:       prefixCampaign(message, campaignName),
		CampaignID:    campaignID,
		CampaignName:  campaignName,
		DetectedAt:    detectedAt,
	}
}

// EvaluateBatch avalia todas as métricas correntes de uma campanha e, quando
// impressions está presente, acrescenta a checagem de queda de volume. A
// checagem de volume é independente e pode conviver com um alerta de spike
// da própria métrica impressions.
func (d *Detector) EvaluateBatch(current map[string]float64, history map[string][]float64, campaignID, campaignName *string, detectedAt time.Time) []*domain.SpikeAlert {
	alerts := make([]*domain.SpikeAlert, 0)

	metrics := make([]string, 0, len(current))
	for metric := range current {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)

	for _, metric := range metrics {
		if alert := d.Evaluate(metric, current[metric], history[metric], campaignID, campaignName, detectedAt); alert != nil {
			alerts = append(alerts, alert)
		}
	}

	if impressions, ok := current["impressions"]; ok {
		if alert := d.detectVolumeAnomaly(impressions, history["impressions"], campaignID, campaignName, detectedAt); alert != nil {
			alerts = append(alerts, alert)
		}
	}

	return alerts
}

// detectVolumeAnomaly compara o volume corrente de impressões com a média da
// janela móvel. Quedas além do limiar viram alerta crítico mesmo que a
// série tenha variância alta demais para o z-score reclamar.
func (d *Detector) detectVolumeAnomaly(impressions float64, history []float64, campaignID, campaignName *string, detectedAt time.Time) *domain.SpikeAlert {
	if len(history) < d.minDataPoints {
		return nil
	}

	average := meanOf(d.trailingWindow(history))
	if average == 0 {
		return nil
	}

	percentChange := (impressions - average) / average * 100
	if percentChange >= -d.volumeDropPercent {
		return nil
	}

	message := fmt.Sprintf("Impression volume dropped %.1f%% (%d vs avg %d)",
		math.Abs(percentChange), int64(impressions), int64(average))

	return &domain.SpikeAlert{
		Metric:        "impressions",
		Type:          domain.AlertTypeVolumeAnomaly,
		Severity:      domain.AlertSeverityCritical,
		CurrentValue:  impressions,
		PreviousValue: average,
		ZScore:        d.zScore(impressions, history),
		PercentChange: percentChange,
		Message:       prefixCampaign(message, campaignName),
		CampaignID:    campaignID,
		CampaignName:  campaignName,
		DetectedAt:    detectedAt,
	}
}

func (d *Detector) severity(zScore, percentChange float64) (domain.AlertSeverity, bool) {
	absZ := math.Abs(zScore)
	absPercent := math.Abs(percentChange)

	switch {
	case absZ >= d.criticalZScore || absPercent >= d.criticalPercent:
		return domain.AlertSeverityCritical, true
	case absZ >= d.warningZScore || absPercent >= d.warningPercent:
		return domain.AlertSeverityWarning, true
	}

	return "", false
}

// zScore mede o desvio do valor corrente contra a janela móvel do
// histórico. Série constante (desvio zero) não permite conclusão e rende
// z-score zero, deixando a decisão para a variação percentual.
func (d *Detector) zScore(current float64, history []float64) float64 {
	if len(history) == 0 {
		return 0
	}

	window := d.trailingWindow(history)

	mean := meanOf(window)
	stdDev := populationStdDev(window, mean)
	if stdDev == 0 {
		return 0
	}

	return (current - mean) / stdDev
}

func (d *Detector) trailingWindow(history []float64) []float64 {
	if len(history) > d.windowSize {
		return history[len(history)-d.windowSize:]
	}
	return history
}

// percentChange calcula a variação sobre o último dia. Partindo de zero,
// qualquer valor positivo conta como +100% e zero continua em 0%.
func percentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}

	return (current - previous) / previous * 100
}

// classifyAlertType cruza a direção do movimento com a polaridade da
// métrica: melhora vira spike positivo, piora vira spike negativo.
func classifyAlertType(metric string, percentChange float64) domain.AlertType {
	increased := percentChange > 0

	improved := increased
	if polarityOf(metric) == PolarityMoreIsBad {
		improved = !increased
	}

	if improved {
		return domain.AlertTypePositiveSpike
	}
	return domain.AlertTypeNegativeSpike
}

func prefixCampaign(message string, campaignName *string) string {
	if campaignName == nil || *campaignName == "" {
		return message
	}
	return fmt.Sprintf("Campaign '%s': %s", *campaignName, message)
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, value := range values {
		sum += value
	}
	return sum / float64(len(values))
}

// Desvio padrão populacional (divide por N, não N-1)
func populationStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, value := range values {
		diff := value - mean
		sum += diff * diff
	}

	return math.Sqrt(sum / float64(len(values)))
}
