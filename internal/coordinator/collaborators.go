package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/authtoken"
	"github.com/TradingApplication/catalyst-trading-system/internal/config"
)

// CollaboratorClient is a thin HTTP client for one external collaborator
// (pattern, technical, trading, market-data) or sibling core service (news,
// scanner). These collaborators are out of scope per spec §1 — this client
// only needs to speak their contract, not implement them, grounded on the
// teacher's BinanceClient request/decode shape.
type CollaboratorClient struct {
	name       string
	cfg        config.ServiceConfig
	httpClient *http.Client
	issuer     *authtoken.Issuer
	logger     *zap.Logger
}

// NewCollaboratorClient builds a client for the named collaborator. issuer
// may be nil (tests), in which case outbound calls carry only the static
// X-Service-Key header.
func NewCollaboratorClient(name string, cfg config.ServiceConfig, issuer *authtoken.Issuer, logger *zap.Logger) *CollaboratorClient {
	return &CollaboratorClient{
		name:       name,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		issuer:     issuer,
		logger:     logger,
	}
}

// PostJSON POSTs body (marshaled to JSON) to path and decodes the JSON
// response into out.
func (c *CollaboratorClient) PostJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.ServiceKey != "" {
		req.Header.Set("X-Service-Key", c.cfg.ServiceKey)
	}
	if c.issuer != nil {
		token, err := c.issuer.Issue("coordinator", "")
		if err != nil {
			return fmt.Errorf("issue service token for %s: %w", c.name, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s returned status %d: %s", c.name, resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.name, err)
	}
	return nil
}

// HealthCheck probes the collaborator's /health endpoint with a 5s
// timeout (spec §4.1 serviceHealth()).
func (c *CollaboratorClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health check for %s: %w", c.name, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s health check failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s health check returned status %d", c.name, resp.StatusCode)
	}
	return nil
}

// collaboratorRegistry is the named collaborator set a cycle calls out to,
// grounded on original_source/coordination_service.py's SERVICES map with
// its required/optional distinction (SPEC_FULL.md supplemented feature #4).
type collaboratorRegistry struct {
	News       *CollaboratorClient
	Scanner    *CollaboratorClient
	Pattern    *CollaboratorClient
	Technical  *CollaboratorClient
	Trading    *CollaboratorClient
	MarketData *CollaboratorClient
}

// required mirrors the Python service registry's required flag: pattern,
// technical and trading gate the pipeline; market-data degrades gracefully
// (the scanner already treats it as a soft dependency).
func (r *collaboratorRegistry) required() map[string]*CollaboratorClient {
	return map[string]*CollaboratorClient{
		"news":      r.News,
		"scanner":   r.Scanner,
		"pattern":   r.Pattern,
		"technical": r.Technical,
		"trading":   r.Trading,
	}
}

func (r *collaboratorRegistry) optional() map[string]*CollaboratorClient {
	return map[string]*CollaboratorClient{
		"market_data": r.MarketData,
	}
}

func newCollaboratorRegistry(cfg config.CollaboratorsConfig, issuer *authtoken.Issuer, logger *zap.Logger) *collaboratorRegistry {
	return &collaboratorRegistry{
		News:       NewCollaboratorClient("news", cfg.News, issuer, logger),
		Scanner:    NewCollaboratorClient("scanner", cfg.Scanner, issuer, logger),
		Pattern:    NewCollaboratorClient("pattern", cfg.Pattern, issuer, logger),
		Technical:  NewCollaboratorClient("technical", cfg.Technical, issuer, logger),
		Trading:    NewCollaboratorClient("trading", cfg.Trading, issuer, logger),
		MarketData: NewCollaboratorClient("market_data", cfg.MarketData, issuer, logger),
	}
}
