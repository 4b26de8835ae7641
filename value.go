// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package fhevm

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// EncryptionType is the declared width of an encrypted value
type EncryptionType string

const (
	TypeBool    EncryptionType = "bool"
	TypeUint8   EncryptionType = "uint8"
	TypeUint16  EncryptionType = "uint16"
	TypeUint32  EncryptionType = "uint32"
	TypeUint64  EncryptionType = "uint64"
	TypeUint128 EncryptionType = "uint128"
	TypeUint256 EncryptionType = "uint256"
	TypeAddress EncryptionType = "address"
)

// Bits returns the plaintext width of t, or 0 for unknown types.
func (t EncryptionType) Bits() int {
	switch t {
	case TypeBool:
		return 1
	case TypeUint8:
		return 8
	case TypeUint16:
		return 16
	case TypeUint32:
		return 32
	case TypeUint64:
		return 64
	case TypeUint128:
		return 128
	case TypeUint256:
		return 256
	case TypeAddress:
		return 160
	default:
		return 0
	}
}

// Supported reports whether values of t can be added to an encrypted input.
// uint128 and uint256 are declared but have no encoder path.
func (t EncryptionType) Supported() bool {
	switch t {
	case TypeBool, TypeUint8, TypeUint16, TypeUint32, TypeUint64, TypeAddress:
		return true
	default:
		return false
	}
}

var (
	maxUint8  = big.NewInt(math.MaxUint8)
	maxUint16 = big.NewInt(math.MaxUint16)
	maxUint32 = big.NewInt(math.MaxUint32)
)

// Value is a plaintext tagged with the width it will be encrypted at.
type Value struct {
	typ     EncryptionType
	b       bool
	u       uint256.Int
	address common.Address
}

func Bool(v bool) Value { return Value{typ: TypeBool, b: v} }

func Uint8(v uint8) Value { return uintValue(TypeUint8, uint64(v)) }

func Uint16(v uint16) Value { return uintValue(TypeUint16, uint64(v)) }

func Uint32(v uint32) Value { return uintValue(TypeUint32, uint64(v)) }

func Uint64(v uint64) Value { return uintValue(TypeUint64, v) }

func Address(a common.Address) Value { return Value{typ: TypeAddress, address: a} }

func uintValue(t EncryptionType, v uint64) Value {
	val := Value{typ: t}
	val.u.SetUint64(v)
	return val
}

func (v Value) Type() EncryptionType { return v.typ }

func (v Value) BoolValue() bool { return v.b }

// Uint returns a copy of the numeric plaintext.
func (v Value) Uint() *uint256.Int { return new(uint256.Int).Set(&v.u) }

func (v Value) AddressValue() common.Address { return v.address }

func (v Value) String() string {
	switch v.typ {
	case TypeBool:
		if v.b {
			return "bool(true)"
		}
		return "bool(false)"
	case TypeAddress:
		return "address(" + v.address.Hex() + ")"
	default:
		return string(v.typ) + "(" + v.u.Dec() + ")"
	}
}

// Classify maps an untyped input to a Value. Booleans become bool, integers
// are sized by magnitude and 0x-prefixed strings are parsed as addresses.
// Any other kind fails with ErrUnsupportedType.
func Classify(in any) (Value, error) {
	switch x := in.(type) {
	case bool:
		return Bool(x), nil
	case common.Address:
		return Address(x), nil
	case string:
		if !strings.HasPrefix(x, "0x") {
			return Value{}, newError(CodeUnsupportedType, nil, "cannot infer encryption type for string %q", x)
		}
		addr, err := ParseAddress(x)
		if err != nil {
			return Value{}, err
		}
		return Address(addr), nil
	}

	n, ok, err := toBigInt(in)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		return Value{}, newError(CodeUnsupportedType, nil, "cannot infer encryption type for %T", in)
	}
	if n.Sign() < 0 {
		return Value{}, validationError("negative value %s cannot be encrypted", n)
	}
	switch {
	case n.Cmp(maxUint8) <= 0:
		return Uint8(uint8(n.Uint64())), nil
	case n.Cmp(maxUint16) <= 0:
		return Uint16(uint16(n.Uint64())), nil
	case n.Cmp(maxUint32) <= 0:
		return Uint32(uint32(n.Uint64())), nil
	case n.IsUint64():
		return Uint64(n.Uint64()), nil
	default:
		return Value{}, validationError("value %s exceeds the 64-bit unsigned range", n)
	}
}

// TypedValue is a value with an explicitly declared encryption type.
type TypedValue struct {
	Type  EncryptionType `json:"type"`
	Value any            `json:"value"`
}

// ToValue checks the pair against its declared type and returns the tagged value.
func (tv TypedValue) ToValue() (Value, error) {
	switch tv.Type {
	case TypeBool:
		b, ok := tv.Value.(bool)
		if !ok {
			return Value{}, validationError("value for bool must be a boolean, got %T", tv.Value)
		}
		return Bool(b), nil
	case TypeUint8:
		n, err := boundedUint(tv, maxUint8)
		if err != nil {
			return Value{}, err
		}
		return Uint8(uint8(n)), nil
	case TypeUint16:
		n, err := boundedUint(tv, maxUint16)
		if err != nil {
			return Value{}, err
		}
		return Uint16(uint16(n)), nil
	case TypeUint32:
		n, err := representableUint(tv)
		if err != nil {
			return Value{}, err
		}
		if n > math.MaxUint32 {
			return Value{}, validationError("value %d cannot be represented as uint32", n)
		}
		return Uint32(uint32(n)), nil
	case TypeUint64:
		n, err := representableUint(tv)
		if err != nil {
			return Value{}, err
		}
		return Uint64(n), nil
	case TypeAddress:
		switch a := tv.Value.(type) {
		case common.Address:
			return Address(a), nil
		case string:
			addr, err := ParseAddress(a)
			if err != nil {
				return Value{}, err
			}
			return Address(addr), nil
		default:
			return Value{}, validationError("value for address must be a hex string, got %T", tv.Value)
		}
	default:
		return Value{}, newError(CodeUnsupportedType, nil, "unsupported encryption type: %s", tv.Type)
	}
}

func boundedUint(tv TypedValue, limit *big.Int) (uint64, error) {
	n, ok, err := toBigInt(tv.Value)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, validationError("value for %s must be numeric, got %T", tv.Type, tv.Value)
	}
	if n.Sign() < 0 || n.Cmp(limit) > 0 {
		return 0, validationError("value must be between 0 and %s for %s", limit, tv.Type)
	}
	return n.Uint64(), nil
}

func representableUint(tv TypedValue) (uint64, error) {
	n, ok, err := toBigInt(tv.Value)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, validationError("value for %s must be numeric, got %T", tv.Type, tv.Value)
	}
	if n.Sign() < 0 || !n.IsUint64() {
		return 0, validationError("value %s cannot be represented as %s", n, tv.Type)
	}
	return n.Uint64(), nil
}

// toBigInt converts the numeric kinds accepted by the dispatcher. ok is false
// when in is not numeric at all.
func toBigInt(in any) (n *big.Int, ok bool, err error) {
	switch x := in.(type) {
	case int:
		return big.NewInt(int64(x)), true, nil
	case int8:
		return big.NewInt(int64(x)), true, nil
	case int16:
		return big.NewInt(int64(x)), true, nil
	case int32:
		return big.NewInt(int64(x)), true, nil
	case int64:
		return big.NewInt(x), true, nil
	case uint:
		return new(big.Int).SetUint64(uint64(x)), true, nil
	case uint8:
		return new(big.Int).SetUint64(uint64(x)), true, nil
	case uint16:
		return new(big.Int).SetUint64(uint64(x)), true, nil
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), true, nil
	case uint64:
		return new(big.Int).SetUint64(x), true, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return nil, true, validationError("value %v is not an integer", x)
		}
		n, _ := new(big.Float).SetFloat64(x).Int(nil)
		return n, true, nil
	case *big.Int:
		if x == nil {
			return nil, false, nil
		}
		return new(big.Int).Set(x), true, nil
	case *uint256.Int:
		if x == nil {
			return nil, false, nil
		}
		return x.ToBig(), true, nil
	case json.Number:
		n, ok := new(big.Int).SetString(x.String(), 10)
		if !ok {
			return nil, true, validationError("value %s is not an integer", x)
		}
		return n, true, nil
	default:
		return nil, false, nil
	}
}

// Field is a named untyped input.
type Field struct {
	Name  string
	Value any
}

// Inputs is an ordered list of named untyped values. Handles returned for it
// are positionally aligned with the fields.
type Inputs []Field

// InputsFromMap orders m by key so the resulting handle sequence is stable.
func InputsFromMap(m map[string]any) Inputs {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	inputs := make(Inputs, 0, len(m))
	for _, name := range names {
		inputs = append(inputs, Field{Name: name, Value: m[name]})
	}
	return inputs
}

// UnmarshalJSON decodes a JSON object into fields, keeping the key order of
// the document. Numbers are decoded as json.Number.
func (in *Inputs) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return validationError("inputs must be a JSON object")
	}

	fields := Inputs{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return validationError("invalid input name %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		fields = append(fields, Field{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*in = fields
	return nil
}
