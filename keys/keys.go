// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package keys

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
)

// Purpose describes what a key is used for
type Purpose string

const (
	PurposeEncryption Purpose = "encryption"
	PurposeDecryption Purpose = "decryption"
	PurposeBoth       Purpose = "both"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeEncryption, PurposeDecryption, PurposeBoth:
		return true
	default:
		return false
	}
}

var (
	ErrInvalidPublicKey = errors.New("invalid public key format")
	ErrInvalidConfig    = errors.New("invalid key configuration")

	publicKeyPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{128,}$`)
)

// Metadata describes a public key. Times are unix milliseconds.
type Metadata struct {
	CreatedAt int64   `json:"createdAt"`
	ExpiresAt *int64  `json:"expiresAt,omitempty"`
	Purpose   Purpose `json:"purpose"`
	ChainID   uint64  `json:"chainId"`
}

// NewKeyMetadata creates metadata stamped with now. A zero expiresIn means
// the key never expires.
func NewKeyMetadata(purpose Purpose, chainID uint64, now time.Time, expiresIn time.Duration) Metadata {
	m := Metadata{
		CreatedAt: now.UnixMilli(),
		Purpose:   purpose,
		ChainID:   chainID,
	}
	if expiresIn > 0 {
		expiresAt := now.Add(expiresIn).UnixMilli()
		m.ExpiresAt = &expiresAt
	}
	return m
}

// Expired reports whether the metadata has an expiry that lies before now
func (m Metadata) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && now.UnixMilli() > *m.ExpiresAt
}

// IsValidPublicKey reports whether key is 0x followed by at least 128 hex characters.
func IsValidPublicKey(key string) bool {
	return publicKeyPattern.MatchString(key)
}

// AreKeysCompatible reports whether key is usable on targetChainID.
func AreKeysCompatible(key string, keyChainID, targetChainID uint64) bool {
	return keyChainID == targetChainID && IsValidPublicKey(key)
}

// FormatForDisplay shortens key to its first prefixLen and last suffixLen
// characters.
func FormatForDisplay(key string, prefixLen, suffixLen int) string {
	if len(key) <= prefixLen+suffixLen {
		return key
	}
	return key[:prefixLen] + "..." + key[len(key)-suffixLen:]
}

// DeriveContractContext binds a public key to a contract. The identifier is
// keccak256(contract || key).
func DeriveContractContext(contractAddress common.Address, key string) (ids.ID, error) {
	if !IsValidPublicKey(key) {
		return ids.Empty, ErrInvalidPublicKey
	}
	return ids.ID(common.Keccak256Hash(contractAddress.Bytes(), []byte(key))), nil
}

// Config is the portable form of a key
type Config struct {
	PublicKey string   `json:"publicKey"`
	ChainID   uint64   `json:"chainId"`
	Metadata  Metadata `json:"metadata"`
}

// ExportConfig returns the JSON encoding of a key configuration.
func ExportConfig(key string, chainID uint64, metadata Metadata) ([]byte, error) {
	return json.MarshalIndent(Config{
		PublicKey: key,
		ChainID:   chainID,
		Metadata:  metadata,
	}, "", "  ")
}

// ImportConfig parses and validates a configuration written by ExportConfig.
func ImportConfig(b []byte) (*Config, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for _, field := range []string{"publicKey", "chainId", "metadata"} {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidConfig, field)
		}
	}

	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !IsValidPublicKey(cfg.PublicKey) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInvalidPublicKey)
	}
	return &cfg, nil
}
