// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/ethclient"
	"github.com/spf13/cobra"

	"github.com/luxfi/fhevm/contract"
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Inspect the legal consultation contract",
}

var contractFunctionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List function and event signatures",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sigs, err := contract.ParseABI(contract.ConsultationABI)
		if err != nil {
			return err
		}
		return printJSON(cmd, sigs)
	},
}

var contractSelectorCmd = &cobra.Command{
	Use:   "selector FUNCTION",
	Short: "Print the 4-byte selector of a function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parsed, err := contract.LoadABI(contract.ConsultationABI)
		if err != nil {
			return err
		}
		selector, err := contract.FunctionSelector(parsed, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), selector)
		return nil
	},
}

var contractCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List legal categories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return printJSON(cmd, contract.LegalCategories)
	},
}

var contractStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Read system statistics from the contract",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		clientCfg, err := cfg.FHEVMConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		rpc, err := ethclient.DialContext(ctx, clientCfg.RPCURL)
		if err != nil {
			return err
		}
		defer rpc.Close()

		chainID, err := rpc.ChainID(ctx)
		if err != nil {
			return err
		}
		if chainID.Uint64() != clientCfg.ChainID {
			return fmt.Errorf("RPC serves chain %s, expected %d", chainID, clientCfg.ChainID)
		}

		consultation, err := contract.NewConsultation(cfg.ContractAddressValue(), rpc)
		if err != nil {
			return err
		}
		stats, err := consultation.SystemStats(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd, stats)
	},
}

var contractConsultationCmd = &cobra.Command{
	Use:   "consultation ID",
	Short: "Read the details of a consultation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := new(big.Int).SetString(args[0], 10)
		if !ok {
			return fmt.Errorf("invalid consultation ID %q", args[0])
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		clientCfg, err := cfg.FHEVMConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		rpc, err := ethclient.DialContext(ctx, clientCfg.RPCURL)
		if err != nil {
			return err
		}
		defer rpc.Close()

		consultation, err := contract.NewConsultation(cfg.ContractAddressValue(), rpc)
		if err != nil {
			return err
		}
		details, err := consultation.ConsultationDetails(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(cmd, details)
	},
}

func init() {
	contractCmd.AddCommand(contractFunctionsCmd)
	contractCmd.AddCommand(contractSelectorCmd)
	contractCmd.AddCommand(contractCategoriesCmd)
	contractCmd.AddCommand(contractStatsCmd)
	contractCmd.AddCommand(contractConsultationCmd)
}
