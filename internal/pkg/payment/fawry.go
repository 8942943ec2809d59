package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
	"github.com/ManuelReschke/LearnFox/internal/pkg/env"
)

const (
	defaultFawryBaseURL = "https://atfawry.fawrystaging.com"
	fawryChargePath     = "/fawrypay-api/api/payments/init"
	defaultChargeTTL    = 24 * time.Hour
)

var ErrGatewayUnavailable = apperr.Upstream("gateway_unavailable", "payment gateway request failed")

// FawryConfig holds the merchant credentials for the Fawry gateway.
type FawryConfig struct {
	BaseURL      string
	MerchantCode string
	SecureKey    string
	ReturnURL    string
	Language     string
	ChargeTTL    time.Duration
}

// LoadFawryConfig reads the gateway configuration. A missing merchant code or
// secure key is a startup error.
func LoadFawryConfig() (*FawryConfig, error) {
	cfg := &FawryConfig{
		BaseURL:      strings.TrimRight(strings.TrimSpace(env.GetEnv("FAWRY_BASE_URL", defaultFawryBaseURL)), "/"),
		MerchantCode: strings.TrimSpace(env.GetEnv("FAWRY_MERCHANT_CODE", "")),
		SecureKey:    strings.TrimSpace(env.GetEnv("FAWRY_SECURE_KEY", "")),
		ReturnURL:    strings.TrimSpace(env.GetEnv("FAWRY_RETURN_URL", "")),
		Language:     env.GetEnv("FAWRY_LANGUAGE", "en-gb"),
		ChargeTTL:    defaultChargeTTL,
	}
	if raw := strings.TrimSpace(env.GetEnv("FAWRY_CHARGE_TTL", "")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("invalid FAWRY_CHARGE_TTL %q", raw)
		}
		cfg.ChargeTTL = ttl
	}

	if cfg.MerchantCode == "" {
		return nil, errors.New("FAWRY_MERCHANT_CODE is not configured")
	}
	if cfg.SecureKey == "" {
		return nil, errors.New("FAWRY_SECURE_KEY is not configured")
	}
	return cfg, nil
}

// Gateway starts payment sessions.
type Gateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (string, error)
}

// FawryClient talks to the Fawry express checkout API.
type FawryClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewFawryClient(cfg *FawryConfig) *FawryClient {
	return &FawryClient{
		BaseURL: cfg.BaseURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCharge posts a signed charge request and returns the URL the student
// has to be redirected to. It does not retry.
func (c *FawryClient) CreateCharge(ctx context.Context, charge ChargeRequest) (string, error) {
	body, err := json.Marshal(charge)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+fawryChargePath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", apperr.Wrap(ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperr.Wrap(ErrGatewayUnavailable, fmt.Errorf("fawry charge failed: status=%d body=%s", resp.StatusCode, string(respBody)))
	}

	redirectURL, err := parseChargeResponse(respBody)
	if err != nil {
		return "", apperr.Wrap(ErrGatewayUnavailable, err)
	}
	return redirectURL, nil
}

// parseChargeResponse accepts a bare URL, a JSON string or an object carrying
// the URL.
func parseChargeResponse(body []byte) (string, error) {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return "", errors.New("fawry returned an empty charge response")
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return "", err
		}
		raw = strings.TrimSpace(s)
	case '{':
		var obj struct {
			RedirectURL string `json:"redirectUrl"`
			NextAction  struct {
				RedirectURL string `json:"redirectUrl"`
			} `json:"nextAction"`
			StatusCode        int    `json:"statusCode"`
			StatusDescription string `json:"statusDescription"`
		}
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return "", err
		}
		raw = obj.RedirectURL
		if raw == "" {
			raw = obj.NextAction.RedirectURL
		}
		if raw == "" {
			return "", fmt.Errorf("fawry charge rejected: code=%d description=%s", obj.StatusCode, obj.StatusDescription)
		}
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "", fmt.Errorf("fawry returned an unexpected charge response: %.200s", raw)
	}
	return raw, nil
}
