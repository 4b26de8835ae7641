// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package fhe

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/luxfi/geth/rlp"
	"github.com/luxfi/math/set"

	"github.com/luxfi/fhevm/eip712"
	"github.com/luxfi/fhevm/gateway"
)

// PublicKeyLen is the length in bytes of a local runtime public key
const PublicKeyLen = 128

var (
	_ Runtime           = (*LocalRuntime)(nil)
	_ gateway.Decrypter = (*LocalRuntime)(nil)

	errNoChainID = errors.New("chain ID is required")
)

type plaintext struct {
	fheType         uint8
	value           uint256.Int
	contractAddress common.Address
	userAddress     common.Address
}

// LocalRuntime keeps plaintexts in memory and derives handles the way a
// coprocessor does. It serves development networks and tests, and also
// answers gateway requests for the handles it created.
type LocalRuntime struct {
	params    Params
	publicKey string

	mu         sync.RWMutex
	plaintexts map[common.Hash]plaintext
	public     set.Set[common.Hash]
}

// LocalFactory is a Factory producing LocalRuntime instances
func LocalFactory(_ context.Context, params Params) (Runtime, error) {
	return NewLocalRuntime(params)
}

// NewLocalRuntime creates a runtime with a fresh random public key
func NewLocalRuntime(params Params) (*LocalRuntime, error) {
	if params.ChainID == 0 {
		return nil, errNoChainID
	}
	key := make([]byte, PublicKeyLen)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate public key: %w", err)
	}
	return &LocalRuntime{
		params:     params,
		publicKey:  hexutil.Encode(key),
		plaintexts: make(map[common.Hash]plaintext),
		public:     set.NewSet[common.Hash](0),
	}, nil
}

func (r *LocalRuntime) PublicKey() string { return r.publicKey }

func (r *LocalRuntime) HasKeypair() bool { return r.publicKey != "" }

func (r *LocalRuntime) Params() Params { return r.params }

func (r *LocalRuntime) CreateEncryptedInput(contractAddress, userAddress common.Address) InputBuilder {
	return &localInput{
		runtime:         r,
		contractAddress: contractAddress,
		userAddress:     userAddress,
	}
}

// AllowPublicDecryption marks handle as decryptable without a signature.
func (r *LocalRuntime) AllowPublicDecryption(handle common.Hash) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plaintexts[handle]; !ok {
		return fmt.Errorf("%w: unknown handle %s", ErrInvalidCiphertext, handle)
	}
	r.public.Add(handle)
	return nil
}

// UserDecrypt reveals a handle to the user it was encrypted for, after
// checking the EIP-712 permission.
func (r *LocalRuntime) UserDecrypt(ctx context.Context, req *gateway.UserDecryptRequest) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.ChainID != r.params.ChainID {
		return nil, fmt.Errorf("%w: chain %d, runtime serves %d", gateway.ErrNotAllowed, req.ChainID, r.params.ChainID)
	}
	p := eip712.Permission{
		Handle:          req.Handle,
		ContractAddress: req.ContractAddress,
		UserAddress:     req.UserAddress,
		ChainID:         req.ChainID,
	}
	if !eip712.Verify(p, req.Signature) {
		return nil, fmt.Errorf("%w: %w", gateway.ErrNotAllowed, eip712.ErrInvalidSignature)
	}

	r.mu.RLock()
	pt, ok := r.plaintexts[req.Handle]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown handle %s", ErrInvalidCiphertext, req.Handle)
	}
	if pt.contractAddress != req.ContractAddress || pt.userAddress != req.UserAddress {
		return nil, fmt.Errorf("%w: %s may not decrypt %s", gateway.ErrNotAllowed, req.UserAddress, req.Handle)
	}
	return pt.value.ToBig(), nil
}

// PublicDecrypt reveals a handle previously passed to AllowPublicDecryption.
func (r *LocalRuntime) PublicDecrypt(ctx context.Context, req *gateway.PublicDecryptRequest) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	pt, ok := r.plaintexts[req.Handle]
	if !ok {
		return nil, fmt.Errorf("%w: unknown handle %s", ErrInvalidCiphertext, req.Handle)
	}
	if pt.contractAddress != req.ContractAddress || !r.public.Contains(req.Handle) {
		return nil, fmt.Errorf("%w: %s is not publicly decryptable", gateway.ErrNotAllowed, req.Handle)
	}
	return pt.value.ToBig(), nil
}

type localValue struct {
	FheType uint8
	Value   []byte
}

type localInput struct {
	runtime         *LocalRuntime
	contractAddress common.Address
	userAddress     common.Address
	values          []localValue
	bits            int
}

func (in *localInput) add(fheType uint8, v *uint256.Int) {
	b := v.Bytes32()
	in.values = append(in.values, localValue{FheType: fheType, Value: b[:]})
	in.bits += typeBits[fheType]
}

func (in *localInput) AddBool(v bool) {
	var n uint256.Int
	if v {
		n.SetOne()
	}
	in.add(TypeBool, &n)
}

func (in *localInput) AddUint8(v uint8) { in.add(TypeUint8, uint256.NewInt(uint64(v))) }

func (in *localInput) AddUint16(v uint16) { in.add(TypeUint16, uint256.NewInt(uint64(v))) }

func (in *localInput) AddUint32(v uint32) { in.add(TypeUint32, uint256.NewInt(uint64(v))) }

func (in *localInput) AddUint64(v uint64) { in.add(TypeUint64, uint256.NewInt(v)) }

func (in *localInput) AddAddress(v common.Address) {
	in.add(TypeAddress, new(uint256.Int).SetBytes20(v.Bytes()))
}

func (in *localInput) Encrypt(ctx context.Context) (*EncryptedInput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case len(in.values) == 0:
		return nil, ErrEmptyInput
	case len(in.values) > MaxInputValues:
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyInputs, len(in.values), MaxInputValues)
	case in.bits > MaxInputBits:
		return nil, fmt.Errorf("%w: %d > %d bits", ErrInputTooLarge, in.bits, MaxInputBits)
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	blob, err := rlp.EncodeToBytes([]any{nonce, in.contractAddress, in.userAddress, in.values})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ciphertext: %w", err)
	}
	blobHash := common.Keccak256Hash(blob)

	r := in.runtime
	handles := make([]common.Hash, len(in.values))
	r.mu.Lock()
	for i, v := range in.values {
		h := deriveHandle(blobHash, uint8(i), v.FheType, r.params.ChainID)
		pt := plaintext{
			fheType:         v.FheType,
			contractAddress: in.contractAddress,
			userAddress:     in.userAddress,
		}
		pt.value.SetBytes(v.Value)
		r.plaintexts[h] = pt
		handles[i] = h
	}
	r.mu.Unlock()

	proof := &InputProof{
		Version:         ProofVersion,
		ChainID:         r.params.ChainID,
		ContractAddress: in.contractAddress,
		UserAddress:     in.userAddress,
		CiphertextHash:  blobHash,
		Handles:         handles,
	}
	proofBytes, err := proof.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode input proof: %w", err)
	}

	return &EncryptedInput{
		Handles:    handles,
		InputProof: proofBytes,
	}, nil
}
