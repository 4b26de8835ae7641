// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package fhevm

import (
	"regexp"
	"strings"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
)

const (
	// AddressLen is the length of a 0x-prefixed hex encoded address
	AddressLen = 2 + 2*common.AddressLength
)

var (
	addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	handlePattern  = regexp.MustCompile(`^0x[a-fA-F0-9]+$`)
)

// IsValidAddress reports whether s is 0x followed by exactly 40 hex characters.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// IsValidHandle reports whether s is a non-empty 0x-prefixed hex string.
func IsValidHandle(s string) bool {
	return handlePattern.MatchString(s)
}

// ParseAddress validates s and converts it to an address.
func ParseAddress(s string) (common.Address, error) {
	if !strings.HasPrefix(s, "0x") || len(s) != AddressLen {
		return common.Address{}, validationError("invalid Ethereum address format: %q", s)
	}
	if !IsValidAddress(s) {
		return common.Address{}, validationError("invalid Ethereum address format: %q", s)
	}
	return common.HexToAddress(s), nil
}

// ParseHandle validates s and converts it to a 32 byte handle.
func ParseHandle(s string) (common.Hash, error) {
	if !IsValidHandle(s) {
		return common.Hash{}, validationError("invalid encrypted handle: %q", s)
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, newError(CodeValidation, err, "invalid encrypted handle: %q", s)
	}
	if len(b) > common.HashLength {
		return common.Hash{}, validationError("encrypted handle longer than %d bytes", common.HashLength)
	}
	return common.BytesToHash(b), nil
}

// ValidateEncryptionParams checks the addresses an encrypted input is bound to.
func ValidateEncryptionParams(contractAddress, userAddress string, numInputs int) error {
	if !IsValidAddress(contractAddress) {
		return validationError("invalid contract address")
	}
	if !IsValidAddress(userAddress) {
		return validationError("invalid user address")
	}
	if numInputs == 0 {
		return validationError("no inputs provided for encryption")
	}
	return nil
}

// ValidateDecryptionParams checks a contract address and handle pair.
func ValidateDecryptionParams(contractAddress, handle string) error {
	if !IsValidAddress(contractAddress) {
		return validationError("invalid contract address")
	}
	if !IsValidHandle(handle) {
		return validationError("invalid encrypted handle")
	}
	return nil
}
