// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package fhevm

import (
	"context"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/fhevm/crypto/fhe"
)

const (
	modeUntyped = "untyped"
	modeTyped   = "typed"
	modeSingle  = "single"
)

// EncryptedInput holds one handle per encrypted value and a single proof.
type EncryptedInput = fhe.EncryptedInput

// EncryptInput classifies each field by its Go value and encrypts all of
// them into one input. Handles are returned in field order.
func (c *Client) EncryptInput(ctx context.Context, contractAddress, userAddress common.Address, inputs Inputs) (*EncryptedInput, error) {
	values := make([]Value, len(inputs))
	for i, field := range inputs {
		v, err := Classify(field.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Name, err)
		}
		values[i] = v
	}
	return c.encrypt(ctx, modeUntyped, contractAddress, userAddress, values)
}

// BatchEncrypt encrypts values with their declared types.
func (c *Client) BatchEncrypt(ctx context.Context, contractAddress, userAddress common.Address, values []TypedValue) (*EncryptedInput, error) {
	converted := make([]Value, len(values))
	for i, tv := range values {
		v, err := tv.ToValue()
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		converted[i] = v
	}
	return c.encrypt(ctx, modeTyped, contractAddress, userAddress, converted)
}

// EncryptValues encrypts already tagged values.
func (c *Client) EncryptValues(ctx context.Context, contractAddress, userAddress common.Address, values ...Value) (*EncryptedInput, error) {
	return c.encrypt(ctx, modeTyped, contractAddress, userAddress, values)
}

func (c *Client) EncryptBool(ctx context.Context, contractAddress, userAddress common.Address, v bool) (*EncryptedInput, error) {
	return c.encrypt(ctx, modeSingle, contractAddress, userAddress, []Value{Bool(v)})
}

func (c *Client) EncryptUint8(ctx context.Context, contractAddress, userAddress common.Address, v uint8) (*EncryptedInput, error) {
	return c.encrypt(ctx, modeSingle, contractAddress, userAddress, []Value{Uint8(v)})
}

func (c *Client) EncryptUint16(ctx context.Context, contractAddress, userAddress common.Address, v uint16) (*EncryptedInput, error) {
	return c.encrypt(ctx, modeSingle, contractAddress, userAddress, []Value{Uint16(v)})
}

func (c *Client) EncryptUint32(ctx context.Context, contractAddress, userAddress common.Address, v uint32) (*EncryptedInput, error) {
	return c.encrypt(ctx, modeSingle, contractAddress, userAddress, []Value{Uint32(v)})
}

func (c *Client) EncryptUint64(ctx context.Context, contractAddress, userAddress common.Address, v uint64) (*EncryptedInput, error) {
	return c.encrypt(ctx, modeSingle, contractAddress, userAddress, []Value{Uint64(v)})
}

// EncryptAddress encrypts a hex encoded address.
func (c *Client) EncryptAddress(ctx context.Context, contractAddress, userAddress common.Address, v string) (*EncryptedInput, error) {
	addr, err := ParseAddress(v)
	if err != nil {
		return nil, err
	}
	return c.encrypt(ctx, modeSingle, contractAddress, userAddress, []Value{Address(addr)})
}

// encrypt adds values to a single builder in order. All validation has
// happened before the runtime is touched.
func (c *Client) encrypt(ctx context.Context, mode string, contractAddress, userAddress common.Address, values []Value) (res *EncryptedInput, err error) {
	if c.metrics != nil {
		defer func() {
			c.metrics.encryptCount.WithLabelValues(mode, outcome(err)).Inc()
		}()
	}

	instance, err := c.Instance()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, validationError("no inputs provided for encryption")
	}
	if len(values) > fhe.MaxInputValues {
		return nil, validationError("too many inputs: %d > %d", len(values), fhe.MaxInputValues)
	}
	for i, v := range values {
		if !v.Type().Supported() {
			return nil, newError(CodeUnsupportedType, nil, "value %d: unsupported encryption type: %s", i, v.Type())
		}
	}

	builder := instance.CreateEncryptedInput(contractAddress, userAddress)
	for _, v := range values {
		addValue(builder, v)
	}

	res, err = builder.Encrypt(ctx)
	if err != nil {
		c.log.Warn("encryption failed",
			log.String("contract", contractAddress.Hex()),
			log.Int("numValues", len(values)),
			log.Err(err),
		)
		return nil, newError(CodeNetworkOrSignature, err, "encryption failed")
	}

	if c.metrics != nil {
		for _, v := range values {
			c.metrics.encryptedValuesCount.WithLabelValues(string(v.Type())).Inc()
		}
	}
	c.log.Debug("encrypted input",
		log.String("contract", contractAddress.Hex()),
		log.String("user", userAddress.Hex()),
		log.Int("numHandles", len(res.Handles)),
	)
	return res, nil
}

func addValue(builder fhe.InputBuilder, v Value) {
	switch v.Type() {
	case TypeBool:
		builder.AddBool(v.BoolValue())
	case TypeUint8:
		builder.AddUint8(uint8(v.Uint().Uint64()))
	case TypeUint16:
		builder.AddUint16(uint16(v.Uint().Uint64()))
	case TypeUint32:
		builder.AddUint32(uint32(v.Uint().Uint64()))
	case TypeUint64:
		builder.AddUint64(v.Uint().Uint64())
	case TypeAddress:
		builder.AddAddress(v.AddressValue())
	}
}
