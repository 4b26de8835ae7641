// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/fhevm"
	"github.com/luxfi/fhevm/contract"
)

func buildConfig(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := BuildFlagSet()
	require.NoError(t, fs.Parse(args))
	v, err := BuildViper(fs)
	require.NoError(t, err)
	return NewConfig(v)
}

func TestDefaults(t *testing.T) {
	require := require.New(t)

	cfg, err := buildConfig(t)
	require.NoError(err)
	require.Equal(defaultAPIPort, cfg.APIPort)
	require.Equal(defaultMetricsPort, cfg.MetricsPort)
	require.Equal(fhevm.DefaultNetwork, cfg.Network)
	require.Equal(common.HexToAddress(contract.ConsultationAddress), cfg.ContractAddressValue())

	fcfg, err := cfg.FHEVMConfig()
	require.NoError(err)
	require.Equal(fhevm.Networks[fhevm.DefaultNetwork], fcfg)
}

func TestOverrides(t *testing.T) {
	require := require.New(t)

	acl := "0x" + "ac" + "00000000000000000000000000000000000000"
	cfg, err := buildConfig(t,
		"--network", "localhost",
		"--chain-id", "1337",
		"--rpc-url", "http://node:8545",
		"--gateway-url", "http://gateway",
		"--acl-address", acl,
	)
	require.NoError(err)

	fcfg, err := cfg.FHEVMConfig()
	require.NoError(err)
	require.Equal(fhevm.Config{
		ChainID:     1337,
		NetworkName: "Localhost",
		RPCURL:      "http://node:8545",
		GatewayURL:  "http://gateway",
		ACLAddress:  common.HexToAddress(acl),
	}, fcfg)
}

func TestConfigFile(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(os.WriteFile(path, []byte(`{
		"api-port": 8080,
		"network": "sepolia",
		"key-cache-dir": "${FHEVM_TEST_HOME}/keys"
	}`), 0o600))
	t.Setenv("FHEVM_TEST_HOME", dir)

	cfg, err := buildConfig(t, "--config-file", path, "--metrics-port", "9191")
	require.NoError(err)
	require.Equal(uint16(8080), cfg.APIPort)
	require.Equal(uint16(9191), cfg.MetricsPort)
	require.Equal("sepolia", cfg.Network)
	require.Equal(filepath.Join(dir, "keys"), cfg.KeyCacheDir)

	fcfg, err := cfg.FHEVMConfig()
	require.NoError(err)
	require.Equal(uint64(11155111), fcfg.ChainID)
}

func TestConfigFileFromEnv(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(os.WriteFile(path, []byte(`{"network": "localhost"}`), 0o600))
	t.Setenv(ConfigFileEnvKey, path)

	cfg, err := buildConfig(t)
	require.NoError(err)
	require.Equal("localhost", cfg.Network)
}

func TestMissingConfigFile(t *testing.T) {
	fs := BuildFlagSet()
	require.NoError(t, fs.Parse([]string{"--config-file", filepath.Join(t.TempDir(), "missing.json")}))
	_, err := BuildViper(fs)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	sk, err := bls.NewSecretKey()
	require.NoError(t, err)
	signerKey := hexutil.Encode(bls.PublicKeyToCompressedBytes(bls.PublicFromSecretKey(sk)))

	valid := func() Config {
		return Config{
			APIPort:         3000,
			MetricsPort:     9090,
			Network:         "zama",
			ContractAddress: contract.ConsultationAddress,
		}
	}
	tests := []struct {
		name        string
		modify      func(*Config)
		expectedErr error
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "signer key", modify: func(c *Config) { c.GatewaySignerKey = signerKey }},
		{name: "same ports", modify: func(c *Config) { c.MetricsPort = c.APIPort }, expectedErr: errSamePorts},
		{name: "unknown network", modify: func(c *Config) { c.Network = "mainnet" }, expectedErr: fhevm.ErrValidation},
		{
			name:        "no network and no chain",
			modify:      func(c *Config) { c.Network = ""; c.RPCURL = "http://node" },
			expectedErr: fhevm.ErrValidation,
		},
		{name: "bad acl", modify: func(c *Config) { c.ACLAddress = "0x12" }, expectedErr: fhevm.ErrValidation},
		{name: "bad contract", modify: func(c *Config) { c.ContractAddress = "nope" }, expectedErr: fhevm.ErrValidation},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := valid()
			test.modify(&cfg)
			require.ErrorIs(t, cfg.Validate(), test.expectedErr)
		})
	}
}

func TestGatewaySignerPublicKey(t *testing.T) {
	require := require.New(t)

	cfg := Config{}
	pk, err := cfg.GatewaySignerPublicKey()
	require.NoError(err)
	require.Nil(pk)

	cfg.GatewaySignerKey = "0x1234"
	_, err = cfg.GatewaySignerPublicKey()
	require.ErrorContains(err, GatewaySignerKeyKey)

	cfg.GatewaySignerKey = "zz"
	_, err = cfg.GatewaySignerPublicKey()
	require.Error(err)
}
