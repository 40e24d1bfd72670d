package domain

import (
	"time"
)

// Campaign é criada de forma preguiçosa: a primeira linha de métrica que
// referencia uma campanha desconhecida provoca a criação do registro.
type Campaign struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	ExternalID  string    `json:"external_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	ChannelType string    `json:"channel_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
