package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/config"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// Vault supplies credential material for accounts
type Vault interface {
	Fetch(ctx context.Context, credentialRef string) (Material, error)
}

// HTTPVault talks to the credential vault service
type HTTPVault struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *logger.Logger
}

// NewHTTPVault creates a vault client
func NewHTTPVault(cfg config.VaultConfig, log *logger.Logger) *HTTPVault {
	return &HTTPVault{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log.WithComponent("vault"),
	}
}

// Fetch retrieves credential material by its vault reference
func (v *HTTPVault) Fetch(ctx context.Context, credentialRef string) (Material, error) {
	endpoint := fmt.Sprintf("%s/v1/credentials/%s", v.baseURL, url.PathEscape(credentialRef))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Material{}, fmt.Errorf("failed to build vault request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.token)

	resp, err := v.client.Do(req)
	if err != nil {
		return Material{}, fmt.Errorf("vault request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Material{}, fmt.Errorf("vault returned status %d: %s", resp.StatusCode, string(body))
	}

	var m Material
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return Material{}, fmt.Errorf("failed to decode vault response: %w", err)
	}

	v.logger.Debug().Str("credential_ref", credentialRef).Msg("fetched credential material")
	return m, nil
}
