package syncing

import (
	"fmt"
	"time"

	"github.com/toastdai/googleadsdashboard/pkg/utils"
)

// SyncWindow é um intervalo de datas fechado nas duas pontas
type SyncWindow struct {
	Start time.Time
	End   time.Time
}

func (w SyncWindow) String() string {
	return fmt.Sprintf("%s..%s", utils.FormatDate(w.Start), utils.FormatDate(w.End))
}

// Days retorna o tamanho da janela em dias
func (w SyncWindow) Days() int {
	return utils.DaysBetween(w.Start, w.End) + 1
}

// PlanRecentWindow decide a janela da sincronização recente a partir da data
// mais nova já armazenada.
//
// Sem dado anterior o plano cobre anteontem e ontem, porque o relatório de
// hoje ainda está incompleto. Com atraso de até maxCatchupDays a janela
// retoma do dia seguinte ao último sincronizado. Atrasos maiores que isso
// não valem um catch-up contínuo (o backfill alcança o resto) e a janela
// renova apenas os últimos catchupWindowDays dias. Métricas com data de
// hoje ou do futuro forçam o refresh de ontem e hoje.
func PlanRecentWindow(today time.Time, latest *time.Time, maxCatchupDays, catchupWindowDays int) SyncWindow {
	today = utils.Midnight(today)
	yesterday := today.AddDate(0, 0, -1)

	if latest == nil {
		return SyncWindow{Start: yesterday.AddDate(0, 0, -1), End: yesterday}
	}

	next := utils.Midnight(*latest).AddDate(0, 0, 1)
	gap := utils.DaysBetween(next, today)

	switch {
	case gap < 0:
		return SyncWindow{Start: yesterday, End: today}
	case gap <= maxCatchupDays:
		return SyncWindow{Start: next, End: today}
	default:
		return SyncWindow{Start: today.AddDate(0, 0, -catchupWindowDays), End: today}
	}
}

// PlanBackfillWindow decide o próximo bloco do preenchimento histórico,
// andando para trás a partir da data mais antiga armazenada em blocos de
// chunkDays até alcançar horizonDays.
//
// Sem métrica nenhuma a data mais antiga vale hoje, então o primeiro bloco
// cobre os chunkDays que terminam ontem. Quando o início do bloco
// ultrapassaria o horizonte o preenchimento terminou: retorna (nil, true)
// sem propor busca parcial, para a última janela gravada continuar com o
// tamanho cheio do bloco.
func PlanBackfillWindow(today time.Time, earliest *time.Time, chunkDays, horizonDays int) (*SyncWindow, bool) {
	if chunkDays < 1 {
		chunkDays = 1
	}

	today = utils.Midnight(today)

	seed := today
	if earliest != nil {
		seed = utils.Midnight(*earliest)
	}

	start := seed.AddDate(0, 0, -chunkDays)
	end := seed.AddDate(0, 0, -1)

	horizonStart := today.AddDate(0, 0, -horizonDays)
	if start.Before(horizonStart) {
		return nil, true
	}

	return &SyncWindow{Start: start, End: end}, false
}
