// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package fhe defines the boundary to the external FHE runtime that turns
// plaintexts into ciphertext handles, and a local runtime for development
// networks and tests.
package fhe

import (
	"context"
	"errors"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
)

// Input limits enforced by the encrypted input builder.
const (
	MaxInputValues = 256
	MaxInputBits   = 2048
)

var (
	// ErrTooManyInputs is returned when an input exceeds MaxInputValues
	ErrTooManyInputs = errors.New("too many values in encrypted input")

	// ErrInputTooLarge is returned when an input exceeds MaxInputBits
	ErrInputTooLarge = errors.New("encrypted input exceeds bit budget")

	// ErrEmptyInput is returned when Encrypt is called without values
	ErrEmptyInput = errors.New("encrypted input has no values")

	// ErrInvalidCiphertext is returned when a handle is unknown or malformed
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// Params configures a runtime instance. Values are fixed once the runtime
// is created.
type Params struct {
	ChainID     uint64
	NetworkName string
	RPCURL      string
	GatewayURL  string
	ACLAddress  common.Address
}

// Factory bootstraps a runtime for the given parameters.
type Factory func(ctx context.Context, params Params) (Runtime, error)

// Runtime is a ready FHE client instance
type Runtime interface {
	// CreateEncryptedInput starts a batch bound to a contract and user
	CreateEncryptedInput(contractAddress, userAddress common.Address) InputBuilder

	// PublicKey returns the hex encoded network public key
	PublicKey() string

	// HasKeypair reports whether key material has been loaded
	HasKeypair() bool
}

// InputBuilder accumulates plaintexts in order. A single Encrypt call
// produces one handle per value and one proof covering all of them.
type InputBuilder interface {
	AddBool(v bool)
	AddUint8(v uint8)
	AddUint16(v uint16)
	AddUint32(v uint32)
	AddUint64(v uint64)
	AddAddress(v common.Address)

	Encrypt(ctx context.Context) (*EncryptedInput, error)
}

// EncryptedInput is the result of encrypting a batch of values
type EncryptedInput struct {
	Handles    []common.Hash
	InputProof []byte
}

// HandleStrings returns the handles as 0x-prefixed hex strings
func (e *EncryptedInput) HandleStrings() []string {
	out := make([]string, len(e.Handles))
	for i, h := range e.Handles {
		out[i] = h.Hex()
	}
	return out
}

// ProofHex returns the proof as a 0x-prefixed hex string
func (e *EncryptedInput) ProofHex() string {
	return hexutil.Encode(e.InputProof)
}

// Type tags stored in byte 30 of a handle.
const (
	TypeBool    uint8 = 0
	TypeUint8   uint8 = 2
	TypeUint16  uint8 = 3
	TypeUint32  uint8 = 4
	TypeUint64  uint8 = 5
	TypeAddress uint8 = 7
)

// HandleVersion is stored in the last byte of every handle
const HandleVersion uint8 = 0

// typeBits is the plaintext width of each type tag.
var typeBits = map[uint8]int{
	TypeBool:    2,
	TypeUint8:   8,
	TypeUint16:  16,
	TypeUint32:  32,
	TypeUint64:  64,
	TypeAddress: 160,
}

// HandleType returns the type tag embedded in a handle
func HandleType(h common.Hash) uint8 {
	return h[30]
}

// HandleIndex returns the position of the handle in its input batch
func HandleIndex(h common.Hash) uint8 {
	return h[21]
}
