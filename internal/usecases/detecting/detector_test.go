package detecting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/domain"
)

func testDetector() *Detector {
	return NewDetector(config.SpikeCheck{
		WindowSize:        7,
		MinDataPoints:     7,
		WarningZScore:     2.5,
		CriticalZScore:    3.5,
		WarningPercent:    30.0,
		CriticalPercent:   50.0,
		VolumeDropPercent: 50.0,
	})
}

func constantSeries(value float64, length int) []float64 {
	series := make([]float64, length)
	for i := range series {
		series[i] = value
	}
	return series
}

func TestDetector_Evaluate(t *testing.T) {
	detector := testDetector()
	detectedAt := time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		metric   string
		current  float64
		history  []float64
		validate func(t *testing.T, alert *domain.SpikeAlert)
	}{
		{
			name:    "Histórico curto demais não deve opinar",
			metric:  "clicks",
			current: 500,
			history: constantSeries(100, 6),
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.Nil(t, alert)
			},
		},
		{
			name:    "Variação pequena não deve gerar alerta",
			metric:  "clicks",
			current: 110,
			history: constantSeries(100, 7),
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.Nil(t, alert)
			},
		},
		{
			name:    "Série constante deve decidir pela variação percentual",
			metric:  "clicks",
			current: 140,
			history: constantSeries(100, 7),
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.NotNil(t, alert)
				assert.Equal(t, domain.AlertSeverityWarning, alert.Severity)
				assert.Equal(t, domain.AlertTypePositiveSpike, alert.Type)
				assert.Equal(t, 0.0, alert.ZScore) // Desvio zero não permite z-score
				assert.Equal(t, 40.0, alert.PercentChange)
				assert.Equal(t, "CLICKS increased by 40.0% (100.00 -> 140.00)", alert.Message)
			},
		},
		{
			name:    "Variação no limiar crítico deve escalar a severidade",
			metric:  "clicks",
			current: 150,
			history: constantSeries(100, 7),
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.NotNil(t, alert)
				assert.Equal(t, domain.AlertSeverityCritical, alert.Severity)
				assert.Equal(t, 50.0, alert.PercentChange)
			},
		},
		{
			name:    "Aumento de custo deve ser spike negativo",
			metric:  "cost",
			current: 200,
			history: constantSeries(100, 7),
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.NotNil(t, alert)
				assert.Equal(t, domain.AlertTypeNegativeSpike, alert.Type)
				assert.Equal(t, domain.AlertSeverityCritical, alert.Severity)
				assert.Equal(t, "COST increased by 100.0% (100.00 -> 200.00)", alert.Message)
			},
		},
		{
			name:    "Aumento de conversões deve ser spike positivo",
			metric:  "conversions",
			current: 10,
			history: constantSeries(5, 7),
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.NotNil(t, alert)
				assert.Equal(t, domain.AlertTypePositiveSpike, alert.Type)
			},
		},
		{
			name:    "Queda de métrica boa deve ser spike negativo",
			metric:  "clicks",
			current: 50,
			history: constantSeries(100, 7),
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.NotNil(t, alert)
				assert.Equal(t, domain.AlertTypeNegativeSpike, alert.Type)
				assert.Equal(t, "CLICKS decreased by 50.0% (100.00 -> 50.00)", alert.Message)
			},
		},
		{
			name:    "Queda de custo por conversão deve ser spike positivo",
			metric:  "cpa",
			current: 40,
			history: constantSeries(100, 7),
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.NotNil(t, alert)
				assert.Equal(t, domain.AlertTypePositiveSpike, alert.Type)
			},
		},
		{
			name:    "Partindo de zero qualquer valor deve contar como cem por cento",
			metric:  "conversions",
			current: 5,
			history: constantSeries(0, 7),
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.NotNil(t, alert)
				assert.Equal(t, 100.0, alert.PercentChange)
				assert.Equal(t, domain.AlertSeverityCritical, alert.Severity)
				assert.Equal(t, "CONVERSIONS increased by 100.0% (0.00 -> 5.00)", alert.Message)
			},
		},
		{
			name:    "Zero para zero não deve disparar",
			metric:  "conversions",
			current: 0,
			history: constantSeries(0, 7),
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.Nil(t, alert)
			},
		},
		{
			name:    "Z-score fora do padrão deve alertar mesmo com percentual baixo",
			metric:  "clicks",
			current: 104,
			history: []float64{100, 102, 98, 101, 99, 100, 100},
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.NotNil(t, alert)
				assert.Equal(t, domain.AlertSeverityWarning, alert.Severity)
				assert.InDelta(t, 3.35, alert.ZScore, 0.01)
				assert.Equal(t, 4.0, alert.PercentChange)
			},
		},
		{
			name:    "Apenas a janela móvel deve entrar no z-score",
			metric:  "clicks",
			current: 103,
			// Os três primeiros pontos ficam fora da janela de 7 dias
			history: []float64{1000, 1000, 1000, 100, 101, 99, 100, 101, 99, 100},
			validate: func(t *testing.T, alert *domain.SpikeAlert) {
				assert.NotNil(t, alert)
				assert.Equal(t, domain.AlertSeverityCritical, alert.Severity)
				assert.InDelta(t, 3.97, alert.ZScore, 0.01)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alert := detector.Evaluate(tt.metric, tt.current, tt.history, nil, nil, detectedAt)

			if tt.validate != nil {
				tt.validate(t, alert)
			}
		})
	}
}

func TestDetector_EvaluateCampaignPrefix(t *testing.T) {
	detector := testDetector()
	detectedAt := time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC)

	campaignID := "campaign-1"
	campaignName := "Search BR"

	alert := detector.Evaluate("clicks", 200, constantSeries(100, 7), &campaignID, &campaignName, detectedAt)

	assert.NotNil(t, alert)
	assert.Equal(t, "Campaign 'Search BR': CLICKS increased by 100.0% (100.00 -> 200.00)", alert.Message)
	assert.Equal(t, &campaignID, alert.CampaignID)
	assert.Equal(t, detectedAt, alert.DetectedAt)
}

func TestClassifyAlertType(t *testing.T) {
	tests := []struct {
		name          string
		metric        string
		percentChange float64
		expected      domain.AlertType
	}{
		{
			name:          "Métrica de ganho subindo é spike positivo",
			metric:        "conversions",
			percentChange: 60,
			expected:      domain.AlertTypePositiveSpike,
		},
		{
			name:          "Métrica de ganho caindo é spike negativo",
			metric:        "conversions",
			percentChange: -60,
			expected:      domain.AlertTypeNegativeSpike,
		},
		{
			name:          "Métrica de custo subindo é spike negativo",
			metric:        "cost",
			percentChange: 60,
			expected:      domain.AlertTypeNegativeSpike,
		},
		{
			name:          "Métrica de custo caindo é spike positivo",
			metric:        "cpc",
			percentChange: -60,
			expected:      domain.AlertTypePositiveSpike,
		},
		{
			name:          "Nome fora da tabela assume que subir é bom",
			metric:        "view_through_conversions",
			percentChange: 60,
			expected:      domain.AlertTypePositiveSpike,
		},
		{
			name:          "Maiúsculas não mudam a polaridade",
			metric:        "CPA",
			percentChange: 60,
			expected:      domain.AlertTypeNegativeSpike,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyAlertType(tt.metric, tt.percentChange))
		})
	}
}

func TestMetricPolarityTable(t *testing.T) {
	// Toda métrica que o avaliador conhece precisa de uma decisão
	// explícita de polaridade na tabela, incluindo as derivadas
	known := []string{
		"impressions", "clicks", "ctr", "cost", "cpc",
		"conversions", "conversion_value", "cpa", "roas",
	}

	for _, metric := range known {
		_, declared := metricPolarity[metric]
		assert.True(t, declared, "métrica %q sem polaridade declarada", metric)
	}
}

func TestDetector_EvaluateBatch(t *testing.T) {
	detector := testDetector()
	detectedAt := time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		current  map[string]float64
		history  map[string][]float64
		validate func(t *testing.T, alerts []*domain.SpikeAlert)
	}{
		{
			name:    "Queda de volume deve conviver com o spike de impressões",
			current: map[string]float64{"impressions": 400},
			history: map[string][]float64{"impressions": constantSeries(1000, 7)},
			validate: func(t *testing.T, alerts []*domain.SpikeAlert) {
				assert.Len(t, alerts, 2)

				// O spike da métrica vem primeiro, a checagem de volume fecha a lista
				assert.Equal(t, domain.AlertTypeNegativeSpike, alerts[0].Type)
				assert.Equal(t, domain.AlertTypeVolumeAnomaly, alerts[1].Type)
				assert.Equal(t, domain.AlertSeverityCritical, alerts[1].Severity)
				assert.Equal(t, "Impression volume dropped 60.0% (400 vs avg 1000)", alerts[1].Message)
			},
		},
		{
			name:    "Queda abaixo do limiar não deve gerar alerta de volume",
			current: map[string]float64{"impressions": 900},
			history: map[string][]float64{"impressions": constantSeries(1000, 7)},
			validate: func(t *testing.T, alerts []*domain.SpikeAlert) {
				assert.Empty(t, alerts)
			},
		},
		{
			name:    "Média zero não permite checagem de volume",
			current: map[string]float64{"impressions": 0},
			history: map[string][]float64{"impressions": constantSeries(0, 7)},
			validate: func(t *testing.T, alerts []*domain.SpikeAlert) {
				assert.Empty(t, alerts)
			},
		},
		{
			name: "Alertas devem sair em ordem determinística de métrica",
			current: map[string]float64{
				"cost":        200,
				"clicks":      200,
				"impressions": 1000,
			},
			history: map[string][]float64{
				"cost":        constantSeries(100, 7),
				"clicks":      constantSeries(100, 7),
				"impressions": constantSeries(1000, 7),
			},
			validate: func(t *testing.T, alerts []*domain.SpikeAlert) {
				assert.Len(t, alerts, 2)
				assert.Equal(t, "clicks", alerts[0].Metric)
				assert.Equal(t, domain.AlertTypePositiveSpike, alerts[0].Type)
				assert.Equal(t, "cost", alerts[1].Metric)
				assert.Equal(t, domain.AlertTypeNegativeSpike, alerts[1].Type)
			},
		},
		{
			name:    "Histórico curto de volume não deve opinar",
			current: map[string]float64{"impressions": 100},
			history: map[string][]float64{"impressions": constantSeries(1000, 5)},
			validate: func(t *testing.T, alerts []*domain.SpikeAlert) {
				assert.Empty(t, alerts)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerts := detector.EvaluateBatch(tt.current, tt.history, nil, nil, detectedAt)

			if tt.validate != nil {
				tt.validate(t, alerts)
			}
		})
	}
}
