// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"

	"github.com/luxfi/fhevm"
	"github.com/luxfi/fhevm/contract"
)

const (
	defaultAPIPort     = uint16(3000)
	defaultMetricsPort = uint16(9090)
	defaultNetwork     = fhevm.DefaultNetwork
)

var (
	errSamePorts = errors.New("api port and metrics port must differ")
)

// Config is the configuration of the fhevm CLI and API server.
type Config struct {
	APIPort     uint16 `mapstructure:"api-port" json:"api-port"`
	MetricsPort uint16 `mapstructure:"metrics-port" json:"metrics-port"`

	// Network selects a preset; the fields below override it.
	Network     string `mapstructure:"network" json:"network"`
	ChainID     uint64 `mapstructure:"chain-id" json:"chain-id"`
	NetworkName string `mapstructure:"network-name" json:"network-name"`
	RPCURL      string `mapstructure:"rpc-url" json:"rpc-url"`
	GatewayURL  string `mapstructure:"gateway-url" json:"gateway-url"`
	// hex encoded compressed BLS public key of the gateway
	GatewaySignerKey string `mapstructure:"gateway-signer-key" json:"gateway-signer-key"`
	ACLAddress       string `mapstructure:"acl-address" json:"acl-address"`

	ContractAddress string `mapstructure:"contract-address" json:"contract-address"`
	KeyCacheDir     string `mapstructure:"key-cache-dir" json:"key-cache-dir"`
	PrivateKey      string `mapstructure:"private-key" json:"-"`
}

func (c *Config) Validate() error {
	if c.APIPort == c.MetricsPort {
		return errSamePorts
	}
	if _, err := c.FHEVMConfig(); err != nil {
		return err
	}
	if _, err := fhevm.ParseAddress(c.ContractAddress); err != nil {
		return fmt.Errorf("invalid %s: %w", ContractAddressKey, err)
	}
	if _, err := c.GatewaySignerPublicKey(); err != nil {
		return err
	}
	return nil
}

// FHEVMConfig resolves the network preset and applies overrides.
func (c *Config) FHEVMConfig() (fhevm.Config, error) {
	cfg := fhevm.Config{}
	if c.Network != "" {
		preset, err := fhevm.NetworkConfig(c.Network)
		if err != nil {
			return fhevm.Config{}, err
		}
		cfg = preset
	}
	if c.ChainID != 0 {
		cfg.ChainID = c.ChainID
	}
	if c.NetworkName != "" {
		cfg.NetworkName = c.NetworkName
	}
	if c.RPCURL != "" {
		cfg.RPCURL = c.RPCURL
	}
	if c.GatewayURL != "" {
		cfg.GatewayURL = c.GatewayURL
	}
	if c.ACLAddress != "" {
		addr, err := fhevm.ParseAddress(c.ACLAddress)
		if err != nil {
			return fhevm.Config{}, fmt.Errorf("invalid %s: %w", ACLAddressKey, err)
		}
		cfg.ACLAddress = addr
	}
	if err := cfg.Validate(); err != nil {
		return fhevm.Config{}, err
	}
	return cfg, nil
}

// GatewaySignerPublicKey returns the configured gateway key, or nil when
// gateway responses are not verified.
func (c *Config) GatewaySignerPublicKey() (*bls.PublicKey, error) {
	if c.GatewaySignerKey == "" {
		return nil, nil
	}
	b, err := hexutil.Decode(c.GatewaySignerKey)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", GatewaySignerKeyKey, err)
	}
	pk, err := bls.PublicKeyFromCompressedBytes(b)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", GatewaySignerKeyKey, err)
	}
	return pk, nil
}

func (c *Config) ContractAddressValue() common.Address {
	return common.HexToAddress(c.ContractAddress)
}

func defaultContractAddress() string {
	return contract.ConsultationAddress
}
