package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Gateway is the provider-facing client the payment service talks through.
// To swap providers, implement this interface.
type Gateway interface {
	// InitiateSTKPush asks the provider to push a payment prompt to the payer's
	// phone and returns the gateway-issued request identifiers.
	InitiateSTKPush(ctx context.Context, phone string, amount int64, accountRef, description string) (*InitiateResult, error)
	// QuerySTKStatus asks the provider for the current outcome of a push.
	// A nil result with a nil error means the push is still unresolved.
	QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*QueryOutcome, error)
}

// QueryOutcome is the provider's answer to a status query once it has one.
type QueryOutcome struct {
	ResultCode string
	ResultDesc string
}

// Success reports whether the provider considers the push paid.
func (q *QueryOutcome) Success() bool { return q.ResultCode == "0" }

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	tokenPath    = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath  = "/mpesa/stkpush/v1/processrequest"
	stkQueryPath = "/mpesa/stkpushquery/v1/query"

	// Daraja reports "still processing" through this error code on the query endpoint.
	stillProcessingCode = "500.001.1001"

	gatewayTimeout = 15 * time.Second
)

// Config holds Daraja API credentials and addressing. Values come from the
// environment; see cmd/api/main.go.
type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	PassKey        string
	CallbackURL    string
	Environment    string // "sandbox" | "production"
	BaseURL        string // optional override, used by tests
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Environment == "production" {
		return productionBaseURL
	}
	return sandboxBaseURL
}

// DarajaClient speaks the M-Pesa Daraja wire protocol: OAuth token acquisition,
// STK push initiation and STK push status query. One instance is constructed in
// main and shared by every caller; the bearer token is cached across calls and
// refreshed transparently on expiry.
type DarajaClient struct {
	cfg     Config
	baseURL string
	http    *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewDarajaClient builds a client with the standard 15-second request timeout.
func NewDarajaClient(cfg Config) *DarajaClient {
	return &DarajaClient{
		cfg:     cfg,
		baseURL: cfg.baseURL(),
		http:    &http.Client{Timeout: gatewayTimeout},
	}
}

// accessToken returns a valid bearer token, fetching a fresh one when the
// cached token is missing or within a minute of expiry.
func (c *DarajaClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Add(time.Minute).Before(c.tokenExpiry) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tokenPath, nil)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Err: fmt.Errorf("token endpoint returned %d", resp.StatusCode)}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", &AuthError{Err: fmt.Errorf("decode token response: %w", err)}
	}
	if tok.AccessToken == "" {
		return "", &AuthError{Err: fmt.Errorf("token endpoint returned no access_token")}
	}

	ttl := 3600
	if n, err := strconv.Atoi(tok.ExpiresIn); err == nil && n > 0 {
		ttl = n
	}
	c.token = tok.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(ttl) * time.Second)
	return c.token, nil
}

// password derives the request signature Daraja expects:
// base64(shortcode + passkey + timestamp), timestamp formatted YYYYMMDDHHmmss.
func (c *DarajaClient) password(now time.Time) (password, timestamp string) {
	timestamp = now.Format("20060102150405")
	password = base64.StdEncoding.EncodeToString([]byte(c.cfg.ShortCode + c.cfg.PassKey + timestamp))
	return password, timestamp
}

func (c *DarajaClient) InitiateSTKPush(ctx context.Context, phone string, amount int64, accountRef, description string) (*InitiateResult, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	password, timestamp := c.password(time.Now())
	body := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount,
		PartyA:            phone,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   description,
	}

	var out stkPushResponse
	if err := c.postJSON(ctx, stkPushPath, token, body, &out); err != nil {
		return nil, err
	}

	if out.ResponseCode != "0" {
		code := out.ResponseCode
		desc := out.ResponseDescription
		if code == "" {
			code = out.ErrorCode
			desc = out.ErrorMessage
		}
		return nil, &Rejection{Code: code, Description: desc}
	}

	return &InitiateResult{
		CheckoutRequestID: out.CheckoutRequestID,
		MerchantRequestID: out.MerchantRequestID,
		CustomerMessage:   out.CustomerMessage,
	}, nil
}

func (c *DarajaClient) QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*QueryOutcome, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	password, timestamp := c.password(time.Now())
	body := stkQueryRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	var out stkQueryResponse
	if err := c.postJSON(ctx, stkQueryPath, token, body, &out); err != nil {
		return nil, err
	}

	if out.ErrorCode == stillProcessingCode {
		return nil, nil
	}
	if out.ErrorCode != "" {
		return nil, &Rejection{Code: out.ErrorCode, Description: out.ErrorMessage}
	}
	if out.ResultCode == "" {
		// The provider answered but has no verdict yet.
		return nil, nil
	}
	return &QueryOutcome{ResultCode: out.ResultCode, ResultDesc: out.ResultDesc}, nil
}

// postJSON issues a bearer-authenticated POST and decodes the JSON response.
// Daraja signals request-level errors with non-2xx statuses and an
// errorCode/errorMessage body, which is decoded into out for the caller to map.
func (c *DarajaClient) postJSON(ctx context.Context, path, token string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Token expired or revoked between acquisition and use; drop the cache
		// so the next call fetches a fresh one.
		c.mu.Lock()
		c.token = ""
		c.mu.Unlock()
		return &AuthError{Err: fmt.Errorf("provider returned %d: %s", resp.StatusCode, raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
	}
	return nil
}
