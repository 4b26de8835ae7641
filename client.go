// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package fhevm is a client for confidential smart contracts. It encrypts
// typed plaintexts into handles and input proofs through an FHE runtime,
// and asks a decryption gateway to reveal handles, either on behalf of a
// signing user or publicly.
package fhevm

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"golang.org/x/sync/singleflight"

	"github.com/luxfi/fhevm/crypto/fhe"
	"github.com/luxfi/fhevm/gateway"
	"github.com/luxfi/fhevm/keys"
	"github.com/luxfi/fhevm/wallet"
)

// State is the lifecycle state of a Client's runtime instance
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

const initKey = "init"

var (
	_ wallet.Listener = (*Client)(nil)

	errResetDuringInit = errors.New("client reset while initializing")
)

// Client owns a single runtime instance. The instance is created by the
// first Init call with the configuration given to NewClient and reused
// until Clear.
type Client struct {
	config   Config
	factory  fhe.Factory
	gateway  gateway.Decrypter
	log      log.Logger
	metrics  *Metrics
	initOnce singleflight.Group

	lock       sync.RWMutex
	state      State
	instance   fhe.Runtime
	lastErr    error
	generation uint64
}

type Option func(*Client)

func WithLogger(l log.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithGateway sets the decryption gateway. Without one, decryption fails
// with ErrGatewayNotImplemented.
func WithGateway(g gateway.Decrypter) Option {
	return func(c *Client) { c.gateway = g }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient returns an uninitialized client for cfg.
func NewClient(cfg Config, factory fhe.Factory, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, validationError("runtime factory is required")
	}
	c := &Client{
		config:  cfg,
		factory: factory,
		log:     log.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Init bootstraps the runtime. Concurrent callers share a single bootstrap
// and observe the same result; once Ready, Init returns immediately. A
// failed bootstrap leaves the client in StateError and may be retried.
//
// The shared bootstrap is not cancelled by any single caller. A caller whose
// ctx ends first returns ctx.Err() while the bootstrap continues for the rest.
func (c *Client) Init(ctx context.Context) error {
	if c.IsReady() {
		return nil
	}
	bootCtx := context.WithoutCancel(ctx)
	result := c.initOnce.DoChan(initKey, func() (any, error) {
		return nil, c.bootstrap(bootCtx)
	})
	select {
	case res := <-result:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) bootstrap(ctx context.Context) error {
	c.lock.Lock()
	if c.state == StateReady {
		c.lock.Unlock()
		return nil
	}
	c.state = StateInitializing
	c.lastErr = nil
	generation := c.generation
	c.lock.Unlock()

	c.log.Info("initializing FHEVM runtime",
		log.Stringer("network", c.config),
	)
	start := time.Now()
	instance, err := c.factory(ctx, c.config.params())
	if c.metrics != nil {
		c.metrics.initCount.
			WithLabelValues(strconv.FormatUint(c.config.ChainID, 10), outcome(err)).
			Inc()
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if generation != c.generation {
		return newError(CodeNotInitialized, errResetDuringInit, "FHEVM initialization aborted")
	}
	if err != nil {
		c.state = StateError
		c.lastErr = err
		c.log.Error("failed to initialize FHEVM runtime",
			log.Err(err),
		)
		return newError(CodeNetworkOrSignature, err, "failed to initialize FHEVM")
	}

	c.instance = instance
	c.state = StateReady
	c.log.Info("FHEVM runtime ready",
		log.Stringer("duration", time.Since(start)),
	)
	return nil
}

// Instance returns the runtime, or ErrNotInitialized before Init succeeds.
func (c *Client) Instance() (fhe.Runtime, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.state != StateReady {
		return nil, ErrNotInitialized
	}
	return c.instance, nil
}

func (c *Client) IsReady() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.state == StateReady
}

func (c *Client) State() State {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.state
}

// Err returns the error of the last failed bootstrap, if any
func (c *Client) Err() error {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.lastErr
}

func (c *Client) Config() Config {
	return c.config
}

// PublicKey returns the network public key of the runtime.
func (c *Client) PublicKey() (string, error) {
	instance, err := c.Instance()
	if err != nil {
		return "", err
	}
	if !instance.HasKeypair() {
		return "", newError(CodeNotInitialized, nil, "FHEVM runtime has no key material")
	}
	return instance.PublicKey(), nil
}

// Clear discards the runtime and returns to StateUninitialized. A bootstrap
// in flight when Clear is called is discarded on completion.
func (c *Client) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.generation++
	c.instance = nil
	c.state = StateUninitialized
	c.lastErr = nil
	c.initOnce.Forget(initKey)
	c.log.Debug("FHEVM client cleared")
}

// Reset is Clear. It is called for every wallet notification.
func (c *Client) Reset() {
	c.Clear()
}

// AccountsChanged resets the client. The next Init bootstraps again.
func (c *Client) AccountsChanged(accounts []common.Address) {
	c.log.Info("wallet accounts changed, resetting FHEVM client",
		log.Int("numAccounts", len(accounts)),
	)
	c.Reset()
}

// ChainChanged resets the client.
func (c *Client) ChainChanged(chainID uint64) {
	c.log.Info("wallet chain changed, resetting FHEVM client",
		log.Uint64("chainID", chainID),
	)
	c.Reset()
}

// Subscribe registers the client for wallet notifications.
func (c *Client) Subscribe(events wallet.Events) (unsubscribe func()) {
	return events.Subscribe(c)
}

// CachePublicKey stores the runtime public key in cache.
func (c *Client) CachePublicKey(cache *keys.Cache, purpose keys.Purpose) error {
	key, err := c.PublicKey()
	if err != nil {
		return err
	}
	cache.Put(key, keys.NewKeyMetadata(purpose, c.config.ChainID, time.Now(), 0))
	return nil
}

// CachedPublicKey returns the cached key if it is usable on the client's
// chain.
func (c *Client) CachedPublicKey(cache *keys.Cache) (keys.CachedKey, bool) {
	entry, ok := cache.Get()
	if !ok {
		return keys.CachedKey{}, false
	}
	if !keys.AreKeysCompatible(entry.Key, entry.Metadata.ChainID, c.config.ChainID) {
		return keys.CachedKey{}, false
	}
	if entry.Metadata.Expired(time.Now()) {
		return keys.CachedKey{}, false
	}
	return entry, true
}
