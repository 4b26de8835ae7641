// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package gateway talks to the decryption gateway. User decryption requests
// carry an EIP-712 signature of the requesting user, public decryption
// requests do not.
package gateway

import (
	"context"
	"errors"
	"math/big"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
)

var (
	// ErrNotConfigured is returned by every call of a client without a gateway URL
	ErrNotConfigured = errors.New("gateway decryption not yet implemented - requires gateway URL configuration")

	// ErrNotAllowed is returned when the requester may not decrypt a handle
	ErrNotAllowed = errors.New("decryption not allowed")

	// ErrInvalidResponse is returned for malformed or unverifiable responses
	ErrInvalidResponse = errors.New("invalid gateway response")
)

// UserDecryptRequest asks the gateway to decrypt a handle for a user.
type UserDecryptRequest struct {
	ContractAddress common.Address `json:"contractAddress"`
	Handle          common.Hash    `json:"handle"`
	UserAddress     common.Address `json:"userAddress"`
	ChainID         uint64         `json:"chainId"`
	Signature       hexutil.Bytes  `json:"signature"`
	PublicKey       string         `json:"publicKey"`
}

// PublicDecryptRequest asks the gateway to decrypt a publicly decryptable handle.
type PublicDecryptRequest struct {
	ContractAddress common.Address `json:"contractAddress"`
	Handle          common.Hash    `json:"handle"`
}

// Decrypter is implemented by gateway clients
type Decrypter interface {
	UserDecrypt(ctx context.Context, req *UserDecryptRequest) (*big.Int, error)
	PublicDecrypt(ctx context.Context, req *PublicDecryptRequest) (*big.Int, error)
}

// ResultDigest is the message a gateway signs for a decrypted value:
// keccak256(handle || uint256(value)).
func ResultDigest(handle common.Hash, value *big.Int) []byte {
	return crypto.Keccak256(handle[:], common.BigToHash(value).Bytes())
}
