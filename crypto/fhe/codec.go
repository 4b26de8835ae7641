// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package fhe

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/luxfi/crypto"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/rlp"
)

// ProofVersion is the leading field of every encoded input proof
const ProofVersion = 0

var ErrInvalidProof = errors.New("invalid input proof")

// InputProof binds a batch of handles to the ciphertext blob, the contract
// and the user they were created for.
type InputProof struct {
	Version         uint8
	ChainID         uint64
	ContractAddress common.Address
	UserAddress     common.Address
	CiphertextHash  common.Hash
	Handles         []common.Hash
}

// Bytes returns the RLP encoding of the proof
func (p *InputProof) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(p)
}

// ParseInputProof decodes a proof produced by InputProof.Bytes
func ParseInputProof(b []byte) (*InputProof, error) {
	p := &InputProof{}
	if err := rlp.DecodeBytes(b, p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProof, err)
	}
	if p.Version != ProofVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrInvalidProof, p.Version)
	}
	return p, nil
}

// VerifyInputProof checks that proof covers exactly handles, in order, for
// the given contract.
func VerifyInputProof(proof []byte, handles []common.Hash, contractAddress common.Address) error {
	p, err := ParseInputProof(proof)
	if err != nil {
		return err
	}
	if p.ContractAddress != contractAddress {
		return fmt.Errorf("%w: proof bound to contract %s", ErrInvalidProof, p.ContractAddress)
	}
	if len(p.Handles) != len(handles) {
		return fmt.Errorf("%w: proof covers %d handles, got %d", ErrInvalidProof, len(p.Handles), len(handles))
	}
	for i, h := range handles {
		if p.Handles[i] != h {
			return fmt.Errorf("%w: handle %d mismatch", ErrInvalidProof, i)
		}
		expected := deriveHandle(p.CiphertextHash, uint8(i), HandleType(h), p.ChainID)
		if !bytes.Equal(expected[:], h[:]) {
			return fmt.Errorf("%w: handle %d not derived from ciphertext", ErrInvalidProof, i)
		}
	}
	return nil
}

// deriveHandle lays out a handle as
// keccak(blob hash, index)[0:21] | index | chainID (8 bytes) | type | version.
func deriveHandle(ciphertextHash common.Hash, index uint8, fheType uint8, chainID uint64) common.Hash {
	digest := crypto.Keccak256(ciphertextHash[:], []byte{index})

	var h common.Hash
	copy(h[:21], digest[:21])
	h[21] = index
	for i := 0; i < 8; i++ {
		h[22+i] = byte(chainID >> (8 * (7 - i)))
	}
	h[30] = fheType
	h[31] = HandleVersion
	return h
}

// HandleChainID returns the chain ID embedded in a handle
func HandleChainID(h common.Hash) uint64 {
	var id uint64
	for i := 0; i < 8; i++ {
		id = id<<8 | uint64(h[22+i])
	}
	return id
}
