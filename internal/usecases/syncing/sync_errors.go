package syncing

import (
	"errors"
	"fmt"
)

// Erros específicos para o contexto de sincronização
var (
	// Erros de configuração
	ErrManagerNotConfigured = errors.New("manager customer id is not configured")

	// Erros de concorrência
	ErrLeaseHeld = errors.New("sync lease held by another worker")

	// Erros de serviços externos
	ErrDiscoveryFailed = errors.New("error discovering child accounts")

	// Erros de banco de dados
	ErrDatabaseOperation = errors.New("database operation error")

	// Erros internos
	ErrGenerateID = errors.New("error generating lease owner id")
)

// SyncError é um erro com contexto adicional para a sincronização
type SyncError struct {
	Err        error  // Erro base
	Code       string // Código de erro para API
	CustomerID string // Conta envolvida (quando aplicável)
	Details    string // Detalhes adicionais
}

// Error implementa a interface error
func (e *SyncError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

// Unwrap retorna o erro subjacente
func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewSyncError cria um novo SyncError
func NewSyncError(err error, code string, details string) *SyncError {
	return &SyncError{
		Err:     err,
		Code:    code,
		Details: details,
	}
}
