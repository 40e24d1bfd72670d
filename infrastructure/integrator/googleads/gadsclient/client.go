package gadsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	gadsdomain "github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/domain"
	"github.com/toastdai/googleadsdashboard/internal/config"
	"github.com/toastdai/googleadsdashboard/internal/monitoring"
	"github.com/toastdai/googleadsdashboard/pkg/ratelimit"

	"github.com/sirupsen/logrus"
)

type Client interface {
	ListChildAccounts(ctx context.Context) ([]*gadsdomain.ChildAccount, error)
	ListCampaignsByCustomerID(ctx context.Context, customerID string) ([]*gadsdomain.CampaignRecord, error)
	GetDailyMetricsByCustomerID(ctx context.Context, customerID string, startDate, endDate time.Time) ([]*gadsdomain.MetricRow, error)
	UseRefreshToken(token string)
	UseManagerAccount(customerID string)
}

type GoogleAdsClient struct {
	Cfg          *config.Config
	TokenManager *TokenManager
	httpClient   *http.Client
	limiter      *ratelimit.Limiter

	managerMutex    sync.RWMutex
	loginCustomerID string
}

func NewClient(cfg *config.Config, tokenManager *TokenManager) Client {
	client := &GoogleAdsClient{
		Cfg:             cfg,
		TokenManager:    tokenManager,
		httpClient:      &http.Client{Timeout: time.Duration(cfg.GoogleAds.RequestTimeoutSeconds) * time.Second},
		limiter:         ratelimit.New(cfg.GoogleAds.RequestsPerSecond, cfg.GoogleAds.RequestBurst),
		loginCustomerID: NormalizeCustomerID(cfg.GoogleAds.LoginCustomerID),
	}
	return client
}

// UseRefreshToken troca o refresh token em uso pelo gerenciador de tokens
func (c *GoogleAdsClient) UseRefreshToken(token string) {
	c.TokenManager.UseRefreshToken(token)
}

// UseManagerAccount troca a conta gerente que autoriza as próximas consultas.
// O id vai no header login-customer-id e delimita quais contas filhas a API
// enxerga. Vazio mantém a conta configurada por ambiente.
func (c *GoogleAdsClient) UseManagerAccount(customerID string) {
	normalized := NormalizeCustomerID(customerID)
	if normalized == "" {
		return
	}

	c.managerMutex.Lock()
	defer c.managerMutex.Unlock()

	if normalized != c.loginCustomerID {
		c.loginCustomerID = normalized
		logrus.WithField("manager_customer_id", normalized).Info("Conta gerente das consultas trocada")
	}
}

// ManagerAccount devolve a conta gerente em uso nas consultas
func (c *GoogleAdsClient) ManagerAccount() string {
	c.managerMutex.RLock()
	defer c.managerMutex.RUnlock()

	return c.loginCustomerID
}

// NormalizeCustomerID remove os hífens do formato 123-456-7890 usado no
// painel do Google Ads. A API só aceita o id numérico puro.
func NormalizeCustomerID(customerID string) string {
	return strings.ReplaceAll(strings.TrimSpace(customerID), "-", "")
}

// search executa uma consulta GAQL paginada via googleAds:search e acumula
// todas as páginas
func (c *GoogleAdsClient) search(ctx context.Context, customerID, query string) ([]gadsdomain.SearchRow, error) {
	rows := make([]gadsdomain.SearchRow, 0)

	pageToken := ""
	for {
		page, err := c.searchPage(ctx, customerID, query, pageToken)
		if err != nil {
			return nil, err
		}

		rows = append(rows, page.Results...)

		if page.NextPageToken == "" {
			return rows, nil
		}
		pageToken = page.NextPageToken
	}
}

// searchPage busca uma página. Quando a API recusa a credencial, renova o
// access token e tenta mais uma vez antes de desistir.
func (c *GoogleAdsClient) searchPage(ctx context.Context, customerID, query, pageToken string) (*gadsdomain.SearchResponse, error) {
	page, err := c.doSearchRequest(ctx, customerID, query, pageToken)
	if err != nil {
		if gadsdomain.IsAuthError(err) {
			logrus.WithField("customer_id", customerID).Warn("Token recusado pela API. Renovando e tentando novamente")
			c.TokenManager.Invalidate()
			return c.doSearchRequest(ctx, customerID, query, pageToken)
		}
		return nil, err
	}

	return page, nil
}

func (c *GoogleAdsClient) doSearchRequest(ctx context.Context, customerID, query, pageToken string) (*gadsdomain.SearchResponse, error) {
	// Respeita o limite de requisições por segundo antes de pedir o token,
	// assim o token não envelhece esperando na fila
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	accessToken, err := c.TokenManager.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao obter access token: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/customers/%s/googleAds:search",
		c.Cfg.GoogleAds.APIBaseURL,
		c.Cfg.GoogleAds.APIVersion,
		customerID,
	)

	payload, err := json.Marshal(gadsdomain.SearchRequest{Query: query, PageToken: pageToken})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		logrus.WithError(err).Error("Erro ao criar a requisição")
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("developer-token", c.Cfg.GoogleAds.DeveloperToken)
	if loginCustomerID := c.ManagerAccount(); loginCustomerID != "" {
		req.Header.Set("login-customer-id", loginCustomerID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Error("Erro ao fazer a requisição")
		monitoring.GoogleAdsRequestsTotal.WithLabelValues("transport_error").Inc()
		return nil, gadsdomain.NewTransportError(err)
	}
	defer resp.Body.Close()

	body, err := c.HandleResponse(resp)
	if err != nil {
		return nil, err
	}

	var response gadsdomain.SearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		logrus.WithError(err).Error("Erro ao decodificar JSON")
		return nil, err
	}

	return &response, nil
}

// HandleResponse lê o corpo da resposta e classifica erros da API
func (c *GoogleAdsClient) HandleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		monitoring.GoogleAdsRequestsTotal.WithLabelValues("success").Inc()
		return body, nil
	}

	apiErr := gadsdomain.ParseErrorResponse(resp.StatusCode, body)
	monitoring.GoogleAdsRequestsTotal.WithLabelValues(string(apiErr.Kind)).Inc()

	logrus.WithFields(logrus.Fields{
		"status_code": apiErr.StatusCode,
		"status":      apiErr.Status,
		"kind":        string(apiErr.Kind),
	}).Warn("Erro na resposta da API do Google Ads")

	return nil, apiErr
}
