package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/toastdai/googleadsdashboard/infrastructure/database/postgres"
	"github.com/toastdai/googleadsdashboard/internal/domain"
	"github.com/toastdai/googleadsdashboard/pkg/cipher"
)

const accountsTable = "accounts a"

type AccountRepository interface {
	ListActiveAccounts() ([]*domain.Account, error)
	EnsureManagerAccount(customerID, name string, refreshToken *string, userID *string) (*domain.Account, error)
	UpsertChildAccount(q postgres.Queryer, account *domain.Account) (string, error)
	UpdateAccount(account *domain.UpdateAccountRequest) error
	AdvanceLastSyncAt(q postgres.Queryer, accountID string, syncedAt time.Time) error
}

type accountRepository struct {
	conn   *postgres.Connection
	cipher *cipher.Cipher
}

func NewAccountRepository(conn *postgres.Connection, cipher *cipher.Cipher) AccountRepository {
	return &accountRepository{
		conn:   conn,
		cipher: cipher,
	}
}

func (a *accountRepository) deserializeAccount(row *sql.Row) (*domain.Account, error) {
	acc := &domain.Account{}

	var encryptedToken sql.NullString

	if err := row.Scan(
		&acc.ID,
		&acc.CustomerID,
		&acc.Name,
		&acc.Status,
		&acc.IsManager,
		&encryptedToken,
		&acc.UserID,
		&acc.CurrencyCode,
		&acc.LastSyncAt,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	// O refresh token vive criptografado no banco e só sai daqui em claro
	if encryptedToken.Valid && encryptedToken.String != "" {
		token, err := a.cipher.Decrypt(encryptedToken.String)
		if err != nil {
			return nil, fmt.Errorf("erro ao descriptografar o refresh token: %w", err)
		}
		acc.RefreshToken = &token
	}

	return acc, nil
}

// ListActiveAccounts retorna as contas filhas ativas, sem os refresh tokens
func (a *accountRepository) ListActiveAccounts() ([]*domain.Account, error) {
	accountsSQL, accountsArgs, err := squirrel.
		Select("a.id, a.customer_id, a.name, a.status, a.is_manager, a.currency_code, a.last_sync_at").
		From(accountsTable).
		Where(squirrel.Eq{"a.status": domain.AccountStatusActive, "a.is_manager": false}).
		OrderBy("a.name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := a.conn.Query(accountsSQL, accountsArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0)

	for rows.Next() {
		acc := &domain.Account{}

		if err := rows.Scan(
			&acc.ID,
			&acc.CustomerID,
			&acc.Name,
			&acc.Status,
			&acc.IsManager,
			&acc.CurrencyCode,
			&acc.LastSyncAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao deserializar a conta: %w", err)
		}

		accounts = append(accounts, acc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar sobre os resultados: %w", err)
	}

	return accounts, nil
}

// EnsureManagerAccount garante que a conta gerenciadora exista, guardando o
// refresh token criptografado. Rodar de novo atualiza o token se um novo
// for informado.
func (r *accountRepository) EnsureManagerAccount(customerID, name string, refreshToken *string, userID *string) (*domain.Account, error) {
	var encryptedToken *string

	if refreshToken != nil && *refreshToken != "" {
		encrypted, err := r.cipher.Encrypt(*refreshToken)
		if err != nil {
			return nil, fmt.Errorf("erro ao criptografar o refresh token: %w", err)
		}
		encryptedToken = &encrypted
	}

	query := squirrel.StatementBuilder.
		Insert("accounts").
		Columns("id", "customer_id", "name", "status", "is_manager", "refresh_token", "user_id").
		Values(uuid.New().String(), customerID, name, domain.AccountStatusActive, true, encryptedToken, userID).
		Suffix(`
			ON CONFLICT (customer_id) DO UPDATE SET
				is_manager = TRUE,
				refresh_token = COALESCE(EXCLUDED.refresh_token, accounts.refresh_token),
				user_id = COALESCE(EXCLUDED.user_id, accounts.user_id),
				updated_at = NOW()
			RETURNING id, customer_id, name, status, is_manager, refresh_token, user_id, currency_code, last_sync_at, created_at, updated_at
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	row := r.conn.QueryRow(sqlQuery, args...)

	acc, err := r.deserializeAccount(row)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return nil, fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	return acc, nil
}

// UpsertChildAccount insere ou atualiza uma conta filha dentro da transação
// de reconciliação. O nome vem da API e é atualizado a cada sync; o status
// existente é preservado para não reativar contas desativadas manualmente.
func (r *accountRepository) UpsertChildAccount(q postgres.Queryer, account *domain.Account) (string, error) {
	query := squirrel.StatementBuilder.
		Insert("accounts").
		Columns("id", "customer_id", "name", "status", "is_manager", "currency_code").
		Values(uuid.New().String(), account.CustomerID, account.Name, domain.AccountStatusActive, account.IsManager, account.CurrencyCode).
		Suffix(`
			ON CONFLICT (customer_id) DO UPDATE SET
				name = EXCLUDED.name,
				updated_at = NOW()
			RETURNING id
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build query: %w", err)
	}

	var id string
	if err := q.QueryRow(sqlQuery, args...).Scan(&id); err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return "", fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return "", fmt.Errorf("failed to execute query: %w", err)
	}

	return id, nil
}

func (a *accountRepository) UpdateAccount(account *domain.UpdateAccountRequest) error {
	if account.ID == "" {
		return errors.New("ID is required")
	}

	// Constrói a query de atualização
	queryBuilder := squirrel.
		Update("accounts").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": account.ID}).
		PlaceholderFormat(squirrel.Dollar)

	// Adiciona os campos que foram fornecidos para atualização
	if account.Name != nil {
		queryBuilder = queryBuilder.Set("name", *account.Name)
	}

	if account.Status != nil {
		queryBuilder = queryBuilder.Set("status", *account.Status)
	}

	if account.RefreshToken != nil {
		encrypted, err := a.cipher.Encrypt(*account.RefreshToken)
		if err != nil {
			return fmt.Errorf("erro ao criptografar o refresh token: %w", err)
		}

		queryBuilder = queryBuilder.Set("refresh_token", encrypted)
	}

	sqlQuery, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := a.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("failed to execute query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.New("account not found")
	}

	return nil
}

// AdvanceLastSyncAt avança o marcador de sincronização da conta. Roda na
// mesma transação que gravou as linhas da janela.
func (a *accountRepository) AdvanceLastSyncAt(q postgres.Queryer, accountID string, syncedAt time.Time) error {
	sqlQuery, args, err := squirrel.
		Update("accounts").
		Set("last_sync_at", syncedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := q.Exec(sqlQuery, args...); err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}
