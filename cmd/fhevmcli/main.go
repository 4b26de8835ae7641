// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/luxfi/log"
	"github.com/spf13/cobra"

	"github.com/luxfi/fhevm"
	"github.com/luxfi/fhevm/config"
	"github.com/luxfi/fhevm/crypto/fhe"
	"github.com/luxfi/fhevm/gateway"
	"github.com/luxfi/fhevm/keys"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fhevm",
	Short: "FHEVM client - encrypt inputs and decrypt handles of confidential contracts",
	Long: `fhevm encrypts typed values into handles and input proofs for confidential
smart contracts, requests decryption of handles from the gateway and serves the
same operations over HTTP.

Every option may be given as a flag, in a JSON config file or as an
environment variable.`,
	Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	config.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(contractCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig builds the config from the command's flags, the environment
// and the optional config file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return config.Config{}, fmt.Errorf("couldn't configure flags: %w", err)
	}
	return config.NewConfig(v)
}

// app holds the components shared by the subcommands.
type app struct {
	cfg    config.Config
	log    log.Logger
	client *fhevm.Client
	cache  *keys.Cache
}

// newApp wires a client to a local runtime. Decryption goes to the gateway
// when one is configured and to the local runtime otherwise.
func newApp(cmd *cobra.Command, opts ...fhevm.Option) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := log.Root()

	clientCfg, err := cfg.FHEVMConfig()
	if err != nil {
		return nil, err
	}
	var (
		local     = &localDecrypter{}
		decrypter gateway.Decrypter = local
	)
	if clientCfg.GatewayURL != "" {
		signerKey, err := cfg.GatewaySignerPublicKey()
		if err != nil {
			return nil, err
		}
		gwOpts := []gateway.Option{gateway.WithLogger(logger)}
		if signerKey != nil {
			gwOpts = append(gwOpts, gateway.WithSignerKey(signerKey))
		}
		decrypter = gateway.NewClient(clientCfg.GatewayURL, gwOpts...)
	}

	opts = append([]fhevm.Option{
		fhevm.WithLogger(logger),
		fhevm.WithGateway(decrypter),
	}, opts...)
	client, err := fhevm.NewClient(clientCfg, fhe.LocalFactory, opts...)
	if err != nil {
		return nil, err
	}
	local.client = client

	store, err := newStore(cfg.KeyCacheDir)
	if err != nil {
		logger.Warn("public key cache unavailable", log.Err(err))
		store = keys.NopStore{}
	}

	return &app{
		cfg:    cfg,
		log:    logger,
		client: client,
		cache:  keys.NewCache(store, keys.WithLogger(logger)),
	}, nil
}

// localDecrypter serves decryption from the client's current local runtime,
// following it across re-initialization.
type localDecrypter struct {
	client *fhevm.Client
}

func (d *localDecrypter) runtime() (gateway.Decrypter, error) {
	instance, err := d.client.Instance()
	if err != nil {
		return nil, err
	}
	dec, ok := instance.(gateway.Decrypter)
	if !ok {
		return nil, gateway.ErrNotConfigured
	}
	return dec, nil
}

func (d *localDecrypter) UserDecrypt(ctx context.Context, req *gateway.UserDecryptRequest) (*big.Int, error) {
	dec, err := d.runtime()
	if err != nil {
		return nil, err
	}
	return dec.UserDecrypt(ctx, req)
}

func (d *localDecrypter) PublicDecrypt(ctx context.Context, req *gateway.PublicDecryptRequest) (*big.Int, error) {
	dec, err := d.runtime()
	if err != nil {
		return nil, err
	}
	return dec.PublicDecrypt(ctx, req)
}

func newStore(dir string) (keys.Store, error) {
	if dir == "" {
		return keys.NewMemoryStore(), nil
	}
	return keys.NewFileStore(dir)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
