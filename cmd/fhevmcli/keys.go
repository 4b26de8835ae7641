// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/luxfi/geth/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/luxfi/fhevm/keys"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Inspect, export and import the network public key",
}

var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the public key, from the cache when possible",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		full, _ := cmd.Flags().GetBool("full")

		key := ""
		if entry, ok := a.client.CachedPublicKey(a.cache); ok {
			key = entry.Key
		} else {
			if err := a.client.Init(cmd.Context()); err != nil {
				return err
			}
			if err := a.client.CachePublicKey(a.cache, keys.PurposeEncryption); err != nil {
				return err
			}
			key, err = a.client.PublicKey()
			if err != nil {
				return err
			}
		}

		if !full {
			key = keys.FormatForDisplay(key, 10, 8)
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var keysExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the public key configuration as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.client.Init(cmd.Context()); err != nil {
			return err
		}
		key, err := a.client.PublicKey()
		if err != nil {
			return err
		}
		chainID := a.client.Config().ChainID
		b, err := keys.ExportConfig(key, chainID, keys.NewKeyMetadata(keys.PurposeEncryption, chainID, time.Now(), keys.TTL))
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		}
		return os.WriteFile(out, b, 0o600)
	},
}

var keysImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a public key configuration into the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		imported, err := keys.ImportConfig(b)
		if err != nil {
			return err
		}
		chainID := a.client.Config().ChainID
		if !keys.AreKeysCompatible(imported.PublicKey, imported.ChainID, chainID) {
			return fmt.Errorf("key for chain %d is not compatible with chain %d", imported.ChainID, chainID)
		}
		if imported.Metadata.Expired(time.Now()) {
			return fmt.Errorf("imported key expired")
		}
		a.cache.Put(imported.PublicKey, imported.Metadata)
		fmt.Fprintln(cmd.OutOrStdout(), keys.FormatForDisplay(imported.PublicKey, 10, 8))
		return nil
	},
}

var keysClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the cached public key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		a.cache.Clear()
		return nil
	},
}

var keysContextCmd = &cobra.Command{
	Use:   "context",
	Short: "Derive the context identifier binding the public key to the contract",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.client.Init(cmd.Context()); err != nil {
			return err
		}
		key, err := a.client.PublicKey()
		if err != nil {
			return err
		}
		id, err := keys.DeriveContractContext(a.cfg.ContractAddressValue(), key)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hexutil.Encode(id[:]))
		return nil
	},
}

func init() {
	keysShowCmd.Flags().Bool("full", false, "Print the full key")
	keysExportCmd.Flags().String("out", "", "Write to file instead of stdout")

	keysCmd.AddCommand(keysShowCmd)
	keysCmd.AddCommand(keysExportCmd)
	keysCmd.AddCommand(keysImportCmd)
	keysCmd.AddCommand(keysClearCmd)
	keysCmd.AddCommand(keysContextCmd)
}
