// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"math/big"

	"github.com/luxfi/geth/common"
	"github.com/spf13/cobra"

	"github.com/luxfi/fhevm"
	"github.com/luxfi/fhevm/api"
	"github.com/luxfi/fhevm/wallet"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt handles through the gateway",
	Long: `Decrypt one or more handles held by the configured contract.

User decryption signs an EIP-712 permission with --private-key. With --public
the handles must be publicly decryptable and no key is needed. Handles are
decrypted in order and the first failure aborts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		public, _ := cmd.Flags().GetBool("public")

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if a.client.Config().GatewayURL == "" {
			return fhevm.ErrGatewayNotImplemented
		}

		handles := make([]common.Hash, len(args))
		for i, arg := range args {
			h, err := fhevm.ParseHandle(arg)
			if err != nil {
				return err
			}
			handles[i] = h
		}
		contractAddress := a.cfg.ContractAddressValue()
		ctx := cmd.Context()

		var values []*big.Int
		if public {
			reqs := make([]fhevm.PublicDecryptionRequest, len(handles))
			for i, h := range handles {
				reqs[i] = fhevm.PublicDecryptionRequest{ContractAddress: contractAddress, Handle: h}
			}
			values, err = a.client.BatchPublicDecrypt(ctx, reqs)
		} else {
			if a.cfg.PrivateKey == "" {
				return errors.New("user decryption requires --private-key")
			}
			var signer *wallet.KeyWallet
			signer, err = wallet.FromHex(a.cfg.PrivateKey, a.client.Config().ChainID, a.log)
			if err != nil {
				return err
			}
			reqs := make([]fhevm.DecryptionRequest, len(handles))
			for i, h := range handles {
				reqs[i] = fhevm.DecryptionRequest{ContractAddress: contractAddress, Handle: h, Signer: signer}
			}
			values, err = a.client.BatchUserDecrypt(ctx, reqs)
		}
		if err != nil {
			return err
		}

		out := make([]api.DecryptResponse, len(values))
		for i, v := range values {
			out[i] = api.DecryptResponse{Success: true, Value: v.String()}
		}
		return printJSON(cmd, out)
	},
}

func init() {
	decryptCmd.Flags().Bool("public", false, "Request public decryption")
}
