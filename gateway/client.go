// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/luxfi/log"
)

const (
	UserDecryptPath   = "/v1/user-decrypt"
	PublicDecryptPath = "/v1/public-decrypt"

	defaultTimeout = 30 * time.Second
	maxBodySize    = 1 << 20
)

var _ Decrypter = (*Client)(nil)

// DecryptResponse is the gateway reply to both request kinds.
type DecryptResponse struct {
	// decimal encoding of the plaintext
	Value string `json:"value"`
	// optional BLS signature over ResultDigest
	Signature hexutil.Bytes `json:"signature,omitempty"`
}

// ErrorResponse is returned by the gateway with a non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Client is an HTTP gateway client
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        log.Logger
	signerKey  *bls.PublicKey
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithLogger sets the client logger
func WithLogger(l log.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// WithSignerKey makes the client reject responses that are not signed by pk.
func WithSignerKey(pk *bls.PublicKey) Option {
	return func(cl *Client) { cl.signerKey = pk }
}

// NewClient creates a gateway client for baseURL. An empty baseURL yields a
// client whose calls fail with ErrNotConfigured.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        log.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserDecrypt forwards a signed decryption request
func (c *Client) UserDecrypt(ctx context.Context, req *UserDecryptRequest) (*big.Int, error) {
	if len(req.Signature) == 0 {
		return nil, fmt.Errorf("%w: missing user signature", ErrNotAllowed)
	}
	return c.decrypt(ctx, UserDecryptPath, req, req.Handle)
}

// PublicDecrypt forwards an unsigned decryption request
func (c *Client) PublicDecrypt(ctx context.Context, req *PublicDecryptRequest) (*big.Int, error) {
	return c.decrypt(ctx, PublicDecryptPath, req, req.Handle)
}

func (c *Client) decrypt(ctx context.Context, path string, body any, handle common.Hash) (*big.Int, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	reqBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn("gateway request failed",
			log.String("path", path),
			log.Err(err),
		)
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if json.Unmarshal(respBytes, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	var decResp DecryptResponse
	if err := json.Unmarshal(respBytes, &decResp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	value, ok := new(big.Int).SetString(decResp.Value, 10)
	if !ok || value.Sign() < 0 || value.BitLen() > 256 {
		return nil, fmt.Errorf("%w: value %q", ErrInvalidResponse, decResp.Value)
	}

	if c.signerKey != nil {
		if err := c.verify(handle, value, decResp.Signature); err != nil {
			return nil, err
		}
	}

	c.log.Debug("gateway decryption succeeded",
		log.String("path", path),
		log.String("handle", handle.Hex()),
	)
	return value, nil
}

func (c *Client) verify(handle common.Hash, value *big.Int, sigBytes []byte) error {
	if len(sigBytes) == 0 {
		return fmt.Errorf("%w: missing gateway signature", ErrInvalidResponse)
	}
	sig, err := bls.SignatureFromBytes(sigBytes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if !bls.Verify(c.signerKey, sig, ResultDigest(handle, value)) {
		return fmt.Errorf("%w: gateway signature verification failed", ErrInvalidResponse)
	}
	return nil
}
