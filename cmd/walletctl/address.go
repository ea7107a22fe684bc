package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
)

func newAddressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Parent command for address helpers",
	}

	var (
		creator string
		salt    string
		nonce   uint64
	)
	derive := &cobra.Command{
		Use:   "derive",
		Short: "Print the address a factory assigns for a nonce",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := address.Parse(creator)
			if err != nil {
				return fmt.Errorf("parse --creator: %w", err)
			}
			rawSalt, err := hex.DecodeString(strings.TrimPrefix(salt, address.Prefix))
			if err != nil {
				return fmt.Errorf("parse --salt: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), address.DeriveSalted(addr, rawSalt, nonce))
			return nil
		},
	}
	derive.Flags().StringVar(&creator, "creator", "", "factory address")
	derive.Flags().StringVar(&salt, "salt", "", "hex salt reported by GET /factories/{address}")
	derive.Flags().Uint64Var(&nonce, "nonce", 1, "creation nonce, starting at 1")
	_ = derive.MarkFlagRequired("creator")

	seed := &cobra.Command{
		Use:   "seed <text>",
		Short: "Hash arbitrary text into an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), address.FromSeed([]byte(args[0])))
			return nil
		},
	}

	cmd.AddCommand(derive, seed)
	return cmd
}
