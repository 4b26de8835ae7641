// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"
	VersionKey    = "version"
	HelpKey       = "help"

	// Environment variable keys
	ConfigFileEnvKey = "CONFIG_FILE"

	// Top-level configuration keys
	APIPortKey          = "api-port"
	MetricsPortKey      = "metrics-port"
	NetworkKey          = "network"
	ChainIDKey          = "chain-id"
	NetworkNameKey      = "network-name"
	RPCURLKey           = "rpc-url"
	GatewayURLKey       = "gateway-url"
	GatewaySignerKeyKey = "gateway-signer-key"
	ACLAddressKey       = "acl-address"
	ContractAddressKey  = "contract-address"
	KeyCacheDirKey      = "key-cache-dir"
	PrivateKeyKey       = "private-key"
)
