// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package fhevm

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/fhevm/eip712"
	"github.com/luxfi/fhevm/gateway"
)

const (
	modeUser   = "user"
	modePublic = "public"
)

// DecryptionRequest asks to reveal a handle to the signer's account.
type DecryptionRequest struct {
	ContractAddress common.Address
	Handle          common.Hash
	Signer          eip712.Signer
}

// PublicDecryptionRequest asks to reveal a publicly decryptable handle.
type PublicDecryptionRequest struct {
	ContractAddress common.Address
	Handle          common.Hash
}

// UserDecrypt signs a decryption permission with req.Signer and forwards it
// to the gateway.
func (c *Client) UserDecrypt(ctx context.Context, req DecryptionRequest) (value *big.Int, err error) {
	defer c.observeDecrypt(modeUser, &err)

	if req.Signer == nil {
		return nil, validationError("signer is required for user decryption")
	}
	if c.gateway == nil {
		return nil, newError(CodeGatewayNotImplemented, gateway.ErrNotConfigured, "user decryption unavailable")
	}

	sig, err := eip712.Sign(ctx, req.Signer, req.ContractAddress, req.Handle)
	if err != nil {
		return nil, newError(CodeNetworkOrSignature, err, "failed to sign decryption request")
	}

	value, err = c.gateway.UserDecrypt(ctx, &gateway.UserDecryptRequest{
		ContractAddress: req.ContractAddress,
		Handle:          req.Handle,
		UserAddress:     sig.Permission.UserAddress,
		ChainID:         sig.Permission.ChainID,
		Signature:       sig.Signature,
		PublicKey:       sig.PublicKey,
	})
	if err != nil {
		return nil, c.gatewayError(req.Handle, err)
	}
	return value, nil
}

// PublicDecrypt asks the gateway for a handle that needs no signature.
func (c *Client) PublicDecrypt(ctx context.Context, req PublicDecryptionRequest) (value *big.Int, err error) {
	defer c.observeDecrypt(modePublic, &err)

	if c.gateway == nil {
		return nil, newError(CodeGatewayNotImplemented, gateway.ErrNotConfigured, "public decryption unavailable")
	}

	value, err = c.gateway.PublicDecrypt(ctx, &gateway.PublicDecryptRequest{
		ContractAddress: req.ContractAddress,
		Handle:          req.Handle,
	})
	if err != nil {
		return nil, c.gatewayError(req.Handle, err)
	}
	return value, nil
}

// BatchUserDecrypt decrypts requests one after another. The first failure
// aborts the batch and no partial results are returned.
func (c *Client) BatchUserDecrypt(ctx context.Context, reqs []DecryptionRequest) ([]*big.Int, error) {
	values := make([]*big.Int, 0, len(reqs))
	for i, req := range reqs {
		v, err := c.UserDecrypt(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("batch decryption failed at request %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// BatchPublicDecrypt is BatchUserDecrypt for public requests.
func (c *Client) BatchPublicDecrypt(ctx context.Context, reqs []PublicDecryptionRequest) ([]*big.Int, error) {
	values := make([]*big.Int, 0, len(reqs))
	for i, req := range reqs {
		v, err := c.PublicDecrypt(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("batch decryption failed at request %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// DecryptBool user-decrypts a handle holding a boolean.
func (c *Client) DecryptBool(ctx context.Context, req DecryptionRequest) (bool, error) {
	v, err := c.UserDecrypt(ctx, req)
	if err != nil {
		return false, err
	}
	return v.Sign() != 0, nil
}

// DecryptUint64 user-decrypts a handle holding an integer of at most 64 bits.
func (c *Client) DecryptUint64(ctx context.Context, req DecryptionRequest) (uint64, error) {
	v, err := c.UserDecrypt(ctx, req)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, newError(CodeDecryptionFailed, nil, "decrypted value %s exceeds 64 bits", v)
	}
	return v.Uint64(), nil
}

func (c *Client) gatewayError(handle common.Hash, err error) error {
	if errors.Is(err, gateway.ErrNotConfigured) {
		return newError(CodeGatewayNotImplemented, err, "decryption unavailable")
	}
	c.log.Warn("decryption failed",
		log.String("handle", handle.Hex()),
		log.Err(err),
	)
	return newError(CodeDecryptionFailed, err, "decryption failed")
}

func (c *Client) observeDecrypt(mode string, err *error) {
	if c.metrics != nil {
		c.metrics.decryptCount.WithLabelValues(mode, outcome(*err)).Inc()
	}
}
