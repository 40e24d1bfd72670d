package domain

import (
	"time"
)

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
)

// Account representa uma conta de anúncios do Google Ads conhecida pelo sistema.
// O CustomerID é o identificador externo, sempre sem hífens.
type Account struct {
	ID           string        `json:"id"`
	CustomerID   string        `json:"customer_id"`
	Name         string        `json:"name"`
	Status       AccountStatus `json:"status"`
	IsManager    bool          `json:"is_manager"`
	RefreshToken *string       `json:"-"`
	UserID       *string       `json:"user_id,omitempty"`
	CurrencyCode *string       `json:"currency_code,omitempty"`
	LastSyncAt   *time.Time    `json:"last_sync_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type UpdateAccountRequest struct {
	ID           string  `json:"id"`
	Name         *string `json:"name,omitempty"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	Status       *string `json:"status,omitempty"`
}
