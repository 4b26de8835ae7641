// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// AddFlags registers the configuration flags on fs. Flags without an
// explicit value leave viper defaults in place.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFileKey, "", "Specifies the JSON config file")
	fs.Uint16(APIPortKey, defaultAPIPort, "Port of the HTTP API")
	fs.Uint16(MetricsPortKey, defaultMetricsPort, "Port of the Prometheus metrics endpoint")
	fs.String(NetworkKey, defaultNetwork, "Network preset (zama, sepolia, localhost)")
	fs.Uint64(ChainIDKey, 0, "Chain ID, overrides the network preset")
	fs.String(NetworkNameKey, "", "Network name, overrides the network preset")
	fs.String(RPCURLKey, "", "RPC URL, overrides the network preset")
	fs.String(GatewayURLKey, "", "Decryption gateway URL")
	fs.String(GatewaySignerKeyKey, "", "Hex encoded BLS public key of the gateway")
	fs.String(ACLAddressKey, "", "ACL contract address")
	fs.String(ContractAddressKey, defaultContractAddress(), "Confidential contract address")
	fs.String(KeyCacheDirKey, "", "Directory of the public key cache")
	fs.String(PrivateKeyKey, "", "Hex encoded secp256k1 key used to sign decryption requests")
}

// BuildFlagSet returns the flag set of the standalone server.
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("fhevm", pflag.ContinueOnError)
	fs.Bool(VersionKey, false, "Display version and exit")
	fs.Bool(HelpKey, false, "Display usage and exit")
	AddFlags(fs)
	return fs
}

// DisplayUsageText prints the usage of the standalone server.
func DisplayUsageText() {
	usageText := `
Usage: fhevm [OPTIONS]

All options may also be given in the config file or as environment variables
(upper case, hyphens replaced with underscores).
`
	fmt.Fprint(os.Stderr, usageText)
	fs := BuildFlagSet()
	fs.SetOutput(os.Stderr)
	fs.PrintDefaults()
}
