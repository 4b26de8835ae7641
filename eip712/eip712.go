// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package eip712 builds and verifies the typed-data signature that
// authorizes a user to decrypt a handle held by a contract.
package eip712

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/luxfi/geth/common/math"
	"github.com/luxfi/geth/signer/core/apitypes"
)

const (
	DomainName    = "FHEVM"
	DomainVersion = "1"
	PrimaryType   = "DecryptionPermission"

	// SignatureLen is the length of a [R || S || V] secp256k1 signature
	SignatureLen = crypto.SignatureLength
)

var ErrInvalidSignature = errors.New("invalid EIP-712 signature")

// Signer is the wallet capability needed to authorize decryption
type Signer interface {
	Address(ctx context.Context) (common.Address, error)
	ChainID(ctx context.Context) (uint64, error)
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
}

// Permission is the message signed for a user decryption.
type Permission struct {
	Handle          common.Hash
	ContractAddress common.Address
	UserAddress     common.Address
	ChainID         uint64
}

// TypedData returns the EIP-712 document for p. The domain is bound to the
// chain and uses the contract as verifying contract.
func (p Permission) TypedData() apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			PrimaryType: {
				{Name: "handle", Type: "bytes32"},
				{Name: "contractAddress", Type: "address"},
				{Name: "userAddress", Type: "address"},
			},
		},
		PrimaryType: PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              DomainName,
			Version:           DomainVersion,
			ChainId:           math.NewHexOrDecimal256(int64(p.ChainID)),
			VerifyingContract: p.ContractAddress.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"handle":          p.Handle.Hex(),
			"contractAddress": p.ContractAddress.Hex(),
			"userAddress":     p.UserAddress.Hex(),
		},
	}
}

// Hash returns the EIP-712 digest of p
func (p Permission) Hash() (common.Hash, error) {
	digest, _, err := apitypes.TypedDataAndHash(p.TypedData())
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(digest), nil
}

// Signature is a signed Permission
type Signature struct {
	Permission Permission
	Signature  []byte
	// PublicKey is the uncompressed secp256k1 key recovered from Signature
	PublicKey string
}

// Sign asks signer to authorize decryption of handle held by contractAddress.
func Sign(ctx context.Context, signer Signer, contractAddress common.Address, handle common.Hash) (*Signature, error) {
	userAddress, err := signer.Address(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get signer address: %w", err)
	}
	chainID, err := signer.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	p := Permission{
		Handle:          handle,
		ContractAddress: contractAddress,
		UserAddress:     userAddress,
		ChainID:         chainID,
	}
	sig, err := signer.SignTypedData(ctx, p.TypedData())
	if err != nil {
		return nil, fmt.Errorf("failed to create EIP-712 signature: %w", err)
	}

	pub, err := Recover(p, sig)
	if err != nil {
		return nil, fmt.Errorf("failed to create EIP-712 signature: %w", err)
	}
	if common.PubkeyToAddress(*pub) != userAddress {
		return nil, fmt.Errorf("%w: signed by a different account", ErrInvalidSignature)
	}

	return &Signature{
		Permission: p,
		Signature:  sig,
		PublicKey:  hexutil.Encode(crypto.FromECDSAPub(pub)),
	}, nil
}

// SignBatch signs one permission per handle, in order.
func SignBatch(ctx context.Context, signer Signer, contractAddress common.Address, handles []common.Hash) ([]*Signature, error) {
	sigs := make([]*Signature, 0, len(handles))
	for i, h := range handles {
		sig, err := Sign(ctx, signer, contractAddress, h)
		if err != nil {
			return nil, fmt.Errorf("handle %d: %w", i, err)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// Verify reports whether sig was produced by p.UserAddress over p.
func Verify(p Permission, sig []byte) bool {
	pub, err := Recover(p, sig)
	if err != nil {
		return false
	}
	return common.PubkeyToAddress(*pub) == p.UserAddress
}
