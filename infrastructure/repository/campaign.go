package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/toastdai/googleadsdashboard/infrastructure/database/postgres"
	"github.com/toastdai/googleadsdashboard/internal/domain"
)

const campaignsTable = "campaigns c"

type CampaignRepository interface {
	ResolveOrCreate(q postgres.Queryer, accountID string, campaigns []*domain.Campaign) (map[string]string, error)
	ListCampaignsByAccount(accountID string) ([]*domain.Campaign, error)
}

type campaignRepository struct {
	conn *postgres.Connection
}

func NewCampaignRepository(conn *postgres.Connection) CampaignRepository {
	return &campaignRepository{
		conn: conn,
	}
}

// ResolveOrCreate resolve os ids internos de todas as campanhas vistas nas
// linhas de uma janela em uma única ida ao banco. Campanhas desconhecidas
// são criadas; nas conhecidas o nome vindo da API sobrescreve o guardado.
// A lista não pode conter external_id repetido. Retorna external_id -> id.
func (c *campaignRepository) ResolveOrCreate(q postgres.Queryer, accountID string, campaigns []*domain.Campaign) (map[string]string, error) {
	campaignIDs := make(map[string]string, len(campaigns))

	if len(campaigns) == 0 {
		return campaignIDs, nil
	}

	query := squirrel.StatementBuilder.
		Insert("campaigns").
		Columns("id", "account_id", "external_id", "name", "status", "channel_type").
		PlaceholderFormat(squirrel.Dollar)

	for _, campaign := range campaigns {
		query = query.Values(
			uuid.New().String(),
			accountID,
			campaign.ExternalID,
			campaign.Name,
			campaign.Status,
			campaign.ChannelType,
		)
	}

	// Campanhas que só aparecem no relatório de métricas (removidas da
	// listagem) chegam sem status, e o vazio não pode apagar o status
	// conhecido
	query = query.Suffix(`
		ON CONFLICT (account_id, external_id) DO UPDATE SET
			name = EXCLUDED.name,
			status = COALESCE(NULLIF(EXCLUDED.status, ''), campaigns.status),
			channel_type = COALESCE(NULLIF(EXCLUDED.channel_type, ''), campaigns.channel_type),
			updated_at = NOW()
		RETURNING external_id, id
	`)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := q.Query(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var externalID, id string
		if err := rows.Scan(&externalID, &id); err != nil {
			return nil, fmt.Errorf("erro ao deserializar a campanha: %w", err)
		}

		campaignIDs[externalID] = id
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return campaignIDs, nil
}

func (c *campaignRepository) ListCampaignsByAccount(accountID string) ([]*domain.Campaign, error) {
	campaignsSQL, campaignsArgs, err := squirrel.
		Select("c.id, c.account_id, c.external_id, c.name, c.status, c.channel_type, c.created_at, c.updated_at").
		From(campaignsTable).
		Where(squirrel.Eq{"c.account_id": accountID}).
		OrderBy("c.name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := c.conn.Query(campaignsSQL, campaignsArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	campaigns := make([]*domain.Campaign, 0)

	for rows.Next() {
		campaign := &domain.Campaign{}

		if err := rows.Scan(
			&campaign.ID,
			&campaign.AccountID,
			&campaign.ExternalID,
			&campaign.Name,
			&campaign.Status,
			&campaign.ChannelType,
			&campaign.CreatedAt,
			&campaign.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao deserializar a campanha: %w", err)
		}

		campaigns = append(campaigns, campaign)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return campaigns, nil
}
