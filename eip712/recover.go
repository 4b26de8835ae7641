// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package eip712

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/luxfi/crypto"
)

// Recover returns the public key that produced sig over p. Wallets return V
// as 27/28; both that and the raw 0/1 form are accepted.
func Recover(p Permission, sig []byte) (*ecdsa.PublicKey, error) {
	if len(sig) != SignatureLen {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}
	hash, err := p.Hash()
	if err != nil {
		return nil, err
	}

	normalized := make([]byte, SignatureLen)
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(hash[:], normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return pub, nil
}

// SignHash signs digest with key and returns the signature in wallet form
// (V = 27/28).
func SignHash(digest []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
