// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract encodes and decodes calls to confidential contracts and
// wraps the legal consultation contract used by the example applications.
package contract

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/luxfi/geth/core/types"
)

var ErrUnknownFunction = errors.New("function not found in ABI")

// Signatures lists the canonical function and event signatures of an ABI.
type Signatures struct {
	Functions []string `json:"functions"`
	Events    []string `json:"events"`
}

// LoadABI parses a JSON ABI document.
func LoadABI(jsonABI string) (abi.ABI, error) {
	return abi.JSON(strings.NewReader(jsonABI))
}

// ParseABI returns the sorted signatures declared in a JSON ABI.
func ParseABI(jsonABI string) (*Signatures, error) {
	parsed, err := LoadABI(jsonABI)
	if err != nil {
		return nil, err
	}
	sigs := &Signatures{
		Functions: make([]string, 0, len(parsed.Methods)),
		Events:    make([]string, 0, len(parsed.Events)),
	}
	for _, m := range parsed.Methods {
		sigs.Functions = append(sigs.Functions, m.Sig)
	}
	for _, e := range parsed.Events {
		sigs.Events = append(sigs.Events, e.Sig)
	}
	sort.Strings(sigs.Functions)
	sort.Strings(sigs.Events)
	return sigs, nil
}

// FunctionSelector returns the 4-byte selector of name as 0x-prefixed hex.
func FunctionSelector(parsed abi.ABI, name string) (string, error) {
	m, ok := parsed.Methods[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return hexutil.Encode(m.ID), nil
}

// EncodeFunctionData packs a call to name with args.
func EncodeFunctionData(parsed abi.ABI, name string, args ...any) ([]byte, error) {
	if _, ok := parsed.Methods[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return parsed.Pack(name, args...)
}

// DecodeFunctionResult unpacks the return data of a call to name.
func DecodeFunctionResult(parsed abi.ABI, name string, data []byte) ([]any, error) {
	if _, ok := parsed.Methods[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	return parsed.Unpack(name, data)
}

// EventLog is a decoded log entry
type EventLog struct {
	EventName string
	Args      map[string]any
}

// ParseEventLogs decodes logs emitted by events of parsed. Logs that do not
// belong to the ABI are skipped.
func ParseEventLogs(parsed abi.ABI, logs []types.Log) []EventLog {
	decoded := make([]EventLog, 0, len(logs))
	for _, l := range logs {
		if len(l.Topics) == 0 {
			continue
		}
		event, err := parsed.EventByID(l.Topics[0])
		if err != nil {
			continue
		}
		args := make(map[string]any)
		if len(l.Data) > 0 {
			if err := parsed.UnpackIntoMap(args, event.Name, l.Data); err != nil {
				continue
			}
		}
		var indexed abi.Arguments
		for _, arg := range event.Inputs {
			if arg.Indexed {
				indexed = append(indexed, arg)
			}
		}
		if err := abi.ParseTopicsIntoMap(args, indexed, l.Topics[1:]); err != nil {
			continue
		}
		decoded = append(decoded, EventLog{
			EventName: event.Name,
			Args:      args,
		})
	}
	return decoded
}
