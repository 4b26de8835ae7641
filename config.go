// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package fhevm

import (
	"fmt"
	"sort"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/fhevm/crypto/fhe"
)

// Config fixes the network a Client bootstraps against.
type Config struct {
	ChainID     uint64         `json:"chainId"`
	NetworkName string         `json:"networkName"`
	RPCURL      string         `json:"rpcUrl"`
	GatewayURL  string         `json:"gatewayUrl,omitempty"`
	ACLAddress  common.Address `json:"aclAddress,omitempty"`
}

// Validate checks the fields every runtime needs
func (c Config) Validate() error {
	if c.ChainID == 0 {
		return validationError("chain ID is required")
	}
	if c.RPCURL == "" {
		return validationError("RPC URL is required")
	}
	return nil
}

func (c Config) params() fhe.Params {
	return fhe.Params{
		ChainID:     c.ChainID,
		NetworkName: c.NetworkName,
		RPCURL:      c.RPCURL,
		GatewayURL:  c.GatewayURL,
		ACLAddress:  c.ACLAddress,
	}
}

// Network presets
var Networks = map[string]Config{
	"zama": {
		ChainID:     9000,
		NetworkName: "Zama Devnet",
		RPCURL:      "https://devnet.zama.ai",
	},
	"sepolia": {
		ChainID:     11155111,
		NetworkName: "Sepolia Testnet",
		RPCURL:      "https://rpc.sepolia.org",
	},
	"localhost": {
		ChainID:     31337,
		NetworkName: "Localhost",
		RPCURL:      "http://127.0.0.1:8545",
	},
}

// DefaultNetwork is used when no network is named
const DefaultNetwork = "zama"

// NetworkConfig returns a copy of the preset called name.
func NetworkConfig(name string) (Config, error) {
	cfg, ok := Networks[name]
	if !ok {
		return Config{}, validationError("unknown network %q, expected one of %v", name, NetworkNames())
	}
	return cfg, nil
}

// NetworkNames returns the preset names in lexical order
func NetworkNames() []string {
	names := make([]string, 0, len(Networks))
	for name := range Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c Config) String() string {
	return fmt.Sprintf("%s (chain %d)", c.NetworkName, c.ChainID)
}
