package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

const (
	// A cota da API de relatórios do Google Ads é baixa para developer
	// tokens de acesso básico, então o padrão é meia requisição por
	// segundo com uma pequena rajada.
	DefaultRequestsPerSecond = 0.5
	DefaultBurst             = 3
)

// Limiter espaça o início das chamadas à API externa. Compartilhado entre
// as goroutines de busca do sincronizador.
type Limiter struct {
	limiter *rate.Limiter
}

func New(requestsPerSecond float64, burst int) *Limiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}

	if burst <= 0 {
		burst = DefaultBurst
	}

	return &Limiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

// Wait bloqueia até a próxima chamada poder começar ou o contexto expirar
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
