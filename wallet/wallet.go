// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package wallet is the boundary to the user's account provider. A provider
// exposes the active account and chain, signs typed data and notifies
// listeners when the user switches either.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/signer/core/apitypes"
)

var (
	// ErrDisconnected is returned when no account is connected
	ErrDisconnected = errors.New("wallet not connected")

	// ErrWrongChain is returned when the provider is on an unexpected chain
	ErrWrongChain = errors.New("wallet connected to wrong chain")
)

// Provider is a connected wallet
type Provider interface {
	Accounts(ctx context.Context) ([]common.Address, error)
	ChainID(ctx context.Context) (uint64, error)
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
}

// Listener is notified of provider changes. An empty account list means the
// wallet disconnected.
type Listener interface {
	AccountsChanged(accounts []common.Address)
	ChainChanged(chainID uint64)
}

// Events delivers provider notifications. Subscribe returns a function that
// removes the listener.
type Events interface {
	Subscribe(l Listener) (unsubscribe func())
}

// RequireChain returns ErrWrongChain unless p is connected to chainID.
func RequireChain(ctx context.Context, p Provider, chainID uint64) error {
	got, err := p.ChainID(ctx)
	if err != nil {
		return err
	}
	if got != chainID {
		return fmt.Errorf("%w: expected %d, got %d", ErrWrongChain, chainID, got)
	}
	return nil
}
