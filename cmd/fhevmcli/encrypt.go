// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/fhevm"
	"github.com/luxfi/fhevm/api"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt values for a contract",
	Long: `Encrypt values into handles and a single input proof.

Untyped values are given as a JSON object and sized by magnitude:
  fhevm encrypt --user 0x... --values '{"amount":1000,"isActive":true}'

Typed values are given as a JSON array:
  fhevm encrypt --user 0x... --typed '[{"type":"uint8","value":42}]'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		userHex, _ := cmd.Flags().GetString("user")
		valuesJSON, _ := cmd.Flags().GetString("values")
		typedJSON, _ := cmd.Flags().GetString("typed")
		if (valuesJSON == "") == (typedJSON == "") {
			return errors.New("exactly one of --values and --typed is required")
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		userAddress, err := fhevm.ParseAddress(userHex)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := a.client.Init(ctx); err != nil {
			return err
		}

		var encrypted *fhevm.EncryptedInput
		if typedJSON != "" {
			var typed []fhevm.TypedValue
			dec := json.NewDecoder(bytes.NewReader([]byte(typedJSON)))
			dec.UseNumber()
			if err := dec.Decode(&typed); err != nil {
				return fmt.Errorf("invalid --typed: %w", err)
			}
			encrypted, err = a.client.BatchEncrypt(ctx, a.cfg.ContractAddressValue(), userAddress, typed)
		} else {
			var inputs fhevm.Inputs
			if err := json.Unmarshal([]byte(valuesJSON), &inputs); err != nil {
				return fmt.Errorf("invalid --values: %w", err)
			}
			encrypted, err = a.client.EncryptInput(ctx, a.cfg.ContractAddressValue(), userAddress, inputs)
		}
		if err != nil {
			return err
		}

		return printJSON(cmd, api.EncryptedData{
			Handles:    encrypted.HandleStrings(),
			InputProof: encrypted.ProofHex(),
		})
	},
}

func init() {
	encryptCmd.Flags().String("user", "", "Address of the user the input is bound to")
	encryptCmd.Flags().String("values", "", "JSON object of untyped values")
	encryptCmd.Flags().String("typed", "", "JSON array of {type, value} pairs")
	_ = encryptCmd.MarkFlagRequired("user")
}
