package gadsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gadsdomain "github.com/toastdai/googleadsdashboard/infrastructure/integrator/googleads/domain"
	"github.com/toastdai/googleadsdashboard/internal/config"

	"github.com/sirupsen/logrus"
)

// Renova o access token um pouco antes da expiração para nunca enviar
// uma requisição com token vencido
const tokenExpiryMargin = 5 * time.Minute

// TokenManager gerencia tokens de acesso da API do Google Ads. O refresh
// token de longa duração vem da configuração (ou do banco, quando a conta
// gerente já foi persistida) e é trocado por access tokens de curta duração
// no endpoint OAuth do Google.
type TokenManager struct {
	cfg               *config.Config
	httpClient        *http.Client
	TokenRefreshMutex sync.Mutex

	refreshToken string
	accessToken  string
	expiresAt    time.Time
}

// NewTokenManager cria uma nova instância do gerenciador de tokens
func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: time.Duration(cfg.GoogleAds.RequestTimeoutSeconds) * time.Second},
		refreshToken: cfg.GoogleAds.RefreshToken,
	}
}

// UseRefreshToken troca o refresh token em uso. Chamado quando o token
// persistido no banco deve valer no lugar do configurado por ambiente.
func (tm *TokenManager) UseRefreshToken(token string) {
	tm.TokenRefreshMutex.Lock()
	defer tm.TokenRefreshMutex.Unlock()

	if token == "" || token == tm.refreshToken {
		return
	}

	tm.refreshToken = token
	tm.accessToken = ""
	tm.expiresAt = time.Time{}

	logrus.Info("Refresh token carregado do armazenamento. Access token será renovado na próxima requisição")
}

// Invalidate descarta o access token em cache. Usado quando a API recusa a
// credencial apesar da expiração ainda não ter chegado.
func (tm *TokenManager) Invalidate() {
	tm.TokenRefreshMutex.Lock()
	defer tm.TokenRefreshMutex.Unlock()

	tm.accessToken = ""
	tm.expiresAt = time.Time{}
}

// AccessToken devolve um access token válido, renovando se necessário
func (tm *TokenManager) AccessToken(ctx context.Context) (string, error) {
	tm.TokenRefreshMutex.Lock()
	defer tm.TokenRefreshMutex.Unlock()

	if tm.accessToken != "" && time.Until(tm.expiresAt) > tokenExpiryMargin {
		return tm.accessToken, nil
	}

	if err := tm.exchangeLocked(ctx); err != nil {
		return "", err
	}

	return tm.accessToken, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

type tokenErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// exchangeLocked troca o refresh token por um novo access token. O chamador
// precisa estar segurando o TokenRefreshMutex.
func (tm *TokenManager) exchangeLocked(ctx context.Context) error {
	if tm.refreshToken == "" {
		return &gadsdomain.APIError{
			Kind:    gadsdomain.ErrorKindAuth,
			Message: "refresh token não configurado",
		}
	}

	form := url.Values{}
	form.Add("client_id", tm.cfg.GoogleAds.ClientID)
	form.Add("client_secret", tm.cfg.GoogleAds.ClientSecret)
	form.Add("refresh_token", tm.refreshToken)
	form.Add("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tm.cfg.GoogleAds.OAuthTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		logrus.WithError(err).Error("Erro ao criar a requisição")
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tm.httpClient.Do(req)
	if err != nil {
		logrus.WithError(err).Error("Erro ao fazer a requisição")
		return gadsdomain.NewTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("erro ao ler resposta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return tm.handleExchangeError(resp.StatusCode, body)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		logrus.WithError(err).Error("Erro ao decodificar JSON")
		return err
	}

	if token.AccessToken == "" {
		return fmt.Errorf("resposta do OAuth sem access token")
	}

	tm.accessToken = token.AccessToken
	tm.expiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)

	logrus.WithField("expires_at", tm.expiresAt.Format(time.RFC3339)).Debug("Access token renovado com sucesso")

	return nil
}

func (tm *TokenManager) handleExchangeError(statusCode int, body []byte) error {
	var oauthErr tokenErrorResponse
	if err := json.Unmarshal(body, &oauthErr); err == nil && oauthErr.Error != "" {
		if oauthErr.Error == "invalid_grant" {
			logrus.Error("O refresh token foi revogado ou expirou e não pode ser renovado automaticamente. É necessário reautorizar o acesso à conta Google Ads")
		}

		return &gadsdomain.APIError{
			Kind:       classifyOAuthError(statusCode),
			StatusCode: statusCode,
			Status:     oauthErr.Error,
			Message:    oauthErr.ErrorDescription,
		}
	}

	return &gadsdomain.APIError{
		Kind:       gadsdomain.ErrorKindAuth,
		StatusCode: statusCode,
		Message:    string(body),
	}
}

func classifyOAuthError(statusCode int) gadsdomain.ErrorKind {
	if statusCode >= http.StatusInternalServerError {
		return gadsdomain.ErrorKindTransient
	}

	return gadsdomain.ErrorKindAuth
}
