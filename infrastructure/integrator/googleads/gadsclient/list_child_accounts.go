package gadsclient

import (
	"context"
	"fmt"

	gadsdomain "github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/domain"
)

// Lista apenas o primeiro nível de contas vinculadas à conta gerente.
// Hierarquias mais profundas de MCC ficam de fora.
const childAccountsQuery = `
	SELECT
		customer_client.client_customer,
		customer_client.descriptive_name,
		customer_client.id,
		customer_client.manager
	FROM customer_client
	WHERE customer_client.level <= 1
		AND customer_client.status = 'ENABLED'`

func (c *GoogleAdsClient) ListChildAccounts(ctx context.Context) ([]*gadsdomain.ChildAccount, error) {
	managerID := c.ManagerAccount()
	if managerID == "" {
		return nil, fmt.Errorf("conta gerente não configurada")
	}

	rows, err := c.search(ctx, managerID, childAccountsQuery)
	if err != nil {
		return nil, err
	}

	accounts := make([]*gadsdomain.ChildAccount, 0, len(rows))
	for _, row := range rows {
		client := row.CustomerClient
		if client == nil || client.ID == "" {
			continue
		}

		// A própria conta gerente aparece na listagem (level 0) e contas
		// gerentes intermediárias não acumulam métricas
		if client.Manager {
			continue
		}

		name := client.DescriptiveName
		if name == "" {
			name = fmt.Sprintf("Account %s", client.ID)
		}

		accounts = append(accounts, &gadsdomain.ChildAccount{
			CustomerID: client.ID,
			Name:       name,
		})
	}

	return accounts, nil
}
