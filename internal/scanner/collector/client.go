package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/config"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/domain/models"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/internal/scanner/credentials"
	"github.com/CyberWithAtharva/sec-comply-demo-sub001/pkg/logger"
)

// Client issues read-only queries against the cloud provider's service
// APIs. Every request carries both a connect timeout and a request timeout
// so one unresponsive remote call cannot hang a scan past its budget.
type Client struct {
	baseURL  string
	tokenURL string
	client   *http.Client
	creds    *credentials.Resolved
	logger   *logger.Logger
}

// NewClient creates a provider API client
func NewClient(cfg config.ProviderConfig, log *logger.Logger) *Client {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		tokenURL: cfg.TokenURL,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: cfg.ConnectTimeout,
				MaxIdleConnsPerHost: 4,
			},
		},
		logger: log.WithComponent("provider-client"),
	}
}

// WithCredentials returns a copy of the client bound to resolved
// credentials for one scan.
func (c *Client) WithCredentials(creds *credentials.Resolved) *Client {
	clone := *c
	clone.creds = creds
	return &clone
}

// Exchange implements credentials.TokenExchanger via the provider's
// token-exchange endpoint.
func (c *Client) Exchange(ctx context.Context, roleRef, externalID string) (*credentials.Session, error) {
	payload, err := json.Marshal(map[string]string{
		"role_ref":    roleRef,
		"external_id": externalID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token exchange request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("failed to build token exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token exchange returned status %d: %s", resp.StatusCode, string(body))
	}

	var sess credentials.Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return nil, fmt.Errorf("failed to decode token exchange response: %w", err)
	}
	return &sess, nil
}

// get issues an authenticated GET against one service path and decodes
// the JSON response into dest.
func (c *Client) get(ctx context.Context, path, region string, dest any) error {
	endpoint := c.baseURL + path
	if region != "" {
		endpoint += "?region=" + url.QueryEscape(region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.creds == nil {
		return
	}
	req.Header.Set("X-Access-Key-Id", c.creds.AccessKeyID)
	req.Header.Set("X-Secret-Key", c.creds.SecretKey)
	if c.creds.Kind == credentials.KindSession {
		req.Header.Set("X-Session-Token", c.creds.SessionToken)
	}
}

// Identity queries identity/access signal (account-level, no region)
func (c *Client) Identity(ctx context.Context, _ []string) (models.IdentitySignal, error) {
	var sig models.IdentitySignal
	if err := c.get(ctx, "/identity", "", &sig); err != nil {
		return models.IdentitySignal{}, err
	}
	return sig, nil
}

// Compute queries compute instances across the given regions
func (c *Client) Compute(ctx context.Context, regions []string) (models.ComputeSignal, error) {
	var sig models.ComputeSignal
	for _, region := range regions {
		var page models.ComputeSignal
		if err := c.get(ctx, "/compute/instances", region, &page); err != nil {
			return models.ComputeSignal{}, err
		}
		sig.Instances = append(sig.Instances, page.Instances...)
	}
	return sig, nil
}

// Network queries security rules and default networks across regions
func (c *Client) Network(ctx context.Context, regions []string) (models.NetworkSignal, error) {
	var sig models.NetworkSignal
	for _, region := range regions {
		var page models.NetworkSignal
		if err := c.get(ctx, "/network/security-rules", region, &page); err != nil {
			return models.NetworkSignal{}, err
		}
		sig.SecurityRules = append(sig.SecurityRules, page.SecurityRules...)
		sig.DefaultNetworks = append(sig.DefaultNetworks, page.DefaultNetworks...)
	}
	return sig, nil
}

// Storage queries object storage signal (bucket listing is account-level)
func (c *Client) Storage(ctx context.Context, _ []string) (models.StorageSignal, error) {
	var sig models.StorageSignal
	if err := c.get(ctx, "/storage/buckets", "", &sig); err != nil {
		return models.StorageSignal{}, err
	}
	return sig, nil
}

// AuditTrail queries audit-trail configuration across regions
func (c *Client) AuditTrail(ctx context.Context, regions []string) (models.AuditTrailSignal, error) {
	sig := models.AuditTrailSignal{Collected: true}
	for _, region := range regions {
		var page models.AuditTrailSignal
		if err := c.get(ctx, "/audit/trails", region, &page); err != nil {
			return models.AuditTrailSignal{}, err
		}
		sig.Trails = append(sig.Trails, page.Trails...)
	}
	return sig, nil
}

// SecurityFeed queries the managed security-findings feed, best effort
func (c *Client) SecurityFeed(ctx context.Context, regions []string) (models.SecurityFeedSignal, error) {
	var sig models.SecurityFeedSignal
	for _, region := range regions {
		var page models.SecurityFeedSignal
		if err := c.get(ctx, "/security-feed/findings", region, &page); err != nil {
			return models.SecurityFeedSignal{}, err
		}
		if page.Enabled {
			sig.Enabled = true
		}
		sig.Findings = append(sig.Findings, page.Findings...)
	}
	return sig, nil
}
