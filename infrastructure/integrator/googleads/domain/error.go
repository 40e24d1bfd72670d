package gadsdomain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifica falhas da API para orientar o tratamento no sync:
// erros transientes e de quota podem ser repetidos, erros de autenticação
// pedem renovação de token e os demais são permanentes.
type ErrorKind string

const (
	ErrorKindAuth      ErrorKind = "auth"
	ErrorKindQuota     ErrorKind = "quota"
	ErrorKindTransient ErrorKind = "transient"
	ErrorKindPermanent ErrorKind = "permanent"
)

// ErrorResponse representa a estrutura de erro da API do Google Ads
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails contém os detalhes de erro da API do Google Ads
type ErrorDetails struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// IsTokenExpired verifica se o erro é de credencial recusada
func (e *ErrorResponse) IsTokenExpired() bool {
	return e.Error.Code == http.StatusUnauthorized || e.Error.Status == "UNAUTHENTICATED"
}

type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Status     string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("google ads api error (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("google ads api error (%s, status %d %s): %s", e.Kind, e.StatusCode, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable indica se vale a pena repetir a conta em uma próxima execução
func (e *APIError) Retryable() bool {
	return e.Kind == ErrorKindTransient || e.Kind == ErrorKindQuota
}

// NewTransportError embrulha falhas de rede, que são sempre transientes
func NewTransportError(err error) *APIError {
	return &APIError{
		Kind:    ErrorKindTransient,
		Message: "falha de comunicação com a API",
		Err:     err,
	}
}

// ParseErrorResponse interpreta o corpo de uma resposta não-OK e a classifica
func ParseErrorResponse(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Kind:       classifyStatus(statusCode, ""),
		StatusCode: statusCode,
		Message:    string(body),
	}

	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
		apiErr.Status = errorResp.Error.Status
		apiErr.Message = errorResp.Error.Message
		apiErr.Kind = classifyStatus(statusCode, errorResp.Error.Status)
	}

	return apiErr
}

func classifyStatus(statusCode int, status string) ErrorKind {
	switch status {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return ErrorKindAuth
	case "RESOURCE_EXHAUSTED":
		return ErrorKindQuota
	case "UNAVAILABLE", "INTERNAL", "DEADLINE_EXCEEDED", "ABORTED":
		return ErrorKindTransient
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorKindAuth
	case statusCode == http.StatusTooManyRequests:
		return ErrorKindQuota
	case statusCode >= http.StatusInternalServerError:
		return ErrorKindTransient
	}

	return ErrorKindPermanent
}

// IsAuthError reporta se o erro (ou sua causa) é uma recusa de credencial
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == ErrorKindAuth
}

// IsRetryable reporta se o erro (ou sua causa) merece nova tentativa
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable()
}
