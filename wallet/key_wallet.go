// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"sync"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/ethclient"
	"github.com/luxfi/geth/signer/core/apitypes"
	"github.com/luxfi/log"

	"github.com/luxfi/fhevm/eip712"
)

var (
	_ Provider      = (*KeyWallet)(nil)
	_ Events        = (*KeyWallet)(nil)
	_ eip712.Signer = (*KeyWallet)(nil)
)

// KeyWallet is a Provider backed by a local secp256k1 key. It is used by the
// CLI, the HTTP API and tests in place of a browser wallet.
type KeyWallet struct {
	log log.Logger

	lock      sync.RWMutex
	key       *ecdsa.PrivateKey
	chainID   uint64
	listeners map[uint64]Listener
	nextID    uint64
}

// NewKeyWallet creates a wallet for key connected to chainID. A nil key
// creates a disconnected wallet.
func NewKeyWallet(key *ecdsa.PrivateKey, chainID uint64, logger log.Logger) *KeyWallet {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &KeyWallet{
		log:       logger,
		key:       key,
		chainID:   chainID,
		listeners: make(map[uint64]Listener),
	}
}

// FromHex creates a wallet from a hex encoded private key
func FromHex(hexKey string, chainID uint64, logger log.Logger) (*KeyWallet, error) {
	key, err := crypto.HexToECDSA(trim0x(hexKey))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return NewKeyWallet(key, chainID, logger), nil
}

// Dial creates a wallet for key on the chain served by rpcURL.
func Dial(ctx context.Context, rpcURL string, key *ecdsa.PrivateKey, logger log.Logger) (*KeyWallet, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	return NewKeyWallet(key, chainID.Uint64(), logger), nil
}

func (w *KeyWallet) Accounts(context.Context) ([]common.Address, error) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.key == nil {
		return nil, nil
	}
	return []common.Address{common.PubkeyToAddress(w.key.PublicKey)}, nil
}

// Address returns the connected account
func (w *KeyWallet) Address(context.Context) (common.Address, error) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	if w.key == nil {
		return common.Address{}, ErrDisconnected
	}
	return common.PubkeyToAddress(w.key.PublicKey), nil
}

func (w *KeyWallet) ChainID(context.Context) (uint64, error) {
	w.lock.RLock()
	defer w.lock.RUnlock()

	return w.chainID, nil
}

func (w *KeyWallet) SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.lock.RLock()
	key := w.key
	w.lock.RUnlock()
	if key == nil {
		return nil, ErrDisconnected
	}

	digest, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return eip712.SignHash(digest, key)
}

func (w *KeyWallet) Subscribe(l Listener) func() {
	w.lock.Lock()
	id := w.nextID
	w.nextID++
	w.listeners[id] = l
	w.lock.Unlock()

	return func() {
		w.lock.Lock()
		delete(w.listeners, id)
		w.lock.Unlock()
	}
}

// SwitchAccount replaces the connected key and notifies listeners. A nil key
// disconnects the wallet.
func (w *KeyWallet) SwitchAccount(key *ecdsa.PrivateKey) {
	w.lock.Lock()
	w.key = key
	listeners := w.snapshot()
	w.lock.Unlock()

	var accounts []common.Address
	if key != nil {
		accounts = []common.Address{common.PubkeyToAddress(key.PublicKey)}
	}
	w.log.Debug("wallet accounts changed",
		log.Int("numAccounts", len(accounts)),
	)
	for _, l := range listeners {
		l.AccountsChanged(accounts)
	}
}

// Disconnect drops the key and notifies listeners with an empty account list.
func (w *KeyWallet) Disconnect() {
	w.SwitchAccount(nil)
}

// SwitchChain changes the active chain and notifies listeners.
func (w *KeyWallet) SwitchChain(chainID uint64) {
	w.lock.Lock()
	changed := w.chainID != chainID
	w.chainID = chainID
	listeners := w.snapshot()
	w.lock.Unlock()

	if !changed {
		return
	}
	w.log.Debug("wallet chain changed",
		log.Uint64("chainID", chainID),
	)
	for _, l := range listeners {
		l.ChainChanged(chainID)
	}
}

// snapshot must be called with the lock held.
func (w *KeyWallet) snapshot() []Listener {
	listeners := make([]Listener, 0, len(w.listeners))
	for _, l := range w.listeners {
		listeners = append(listeners, l)
	}
	return listeners
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
