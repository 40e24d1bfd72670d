package utils

import "time"

const DateLayout = "2006-01-02"

func ParseDate(dateStr string) (*time.Time, error) {
	var date time.Time

	if dateStr != "" {
		incomingDate, err := time.Parse(DateLayout, dateStr)
		if err != nil {
			return nil, err
		}

		date = incomingDate
	}

	return &date, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight normaliza o instante para meia-noite UTC, descartando hora e fuso.
// Todas as contas de janela do sincronizador operam sobre datas normalizadas.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func Today() time.Time {
	return Midnight(time.Now().UTC())
}

// DaysBetween retorna a diferença inteira em dias entre duas datas (b - a)
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}
