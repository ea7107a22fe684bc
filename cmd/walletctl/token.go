package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/auth"
)

const secretEnvVar = "JWT_SECRET"

var tokenEnvs = map[string]string{
	"secret": secretEnvVar,
	"ttl":    "TOKEN_TTL",
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Parent command for caller tokens",
	}

	v := viper.New()
	var caller string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Mint a bearer token acting as an address",
		Long: `
Mint a bearer token acting as an address. Flags fall back to the
JWT_SECRET and TOKEN_TTL environment variables the API server reads.

Example
	walletctl token issue --address 0x00000000000000000000000000000000000000a1 --ttl 1h
	`,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindEnvs(v, cmd, tokenEnvs)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := v.GetString("secret")
			if secret == "" {
				return errors.New("a signing secret is required: pass --secret or set " + secretEnvVar)
			}
			addr, err := address.Parse(caller)
			if err != nil {
				return fmt.Errorf("parse --address: %w", err)
			}
			tok, err := auth.NewService(secret, v.GetDuration("ttl")).Issue(addr)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			return nil
		},
	}
	issue.Flags().StringVar(&caller, "address", "", "caller address the token acts as")
	issue.Flags().String("secret", "", flagInfo("HS256 signing secret", tokenEnvs["secret"]))
	issue.Flags().Duration("ttl", time.Hour, flagInfo("token lifetime", tokenEnvs["ttl"]))
	_ = issue.MarkFlagRequired("address")

	cmd.AddCommand(issue)
	return cmd
}

// bindEnvs lets every flag in envMap fall back to its environment variable.
// Flags set on the command line win.
func bindEnvs(v *viper.Viper, cmd *cobra.Command, envMap map[string]string) error {
	for flagKey, envName := range envMap {
		if err := v.BindEnv(flagKey, envName); err != nil {
			return err
		}
		if err := v.BindPFlag(flagKey, cmd.Flags().Lookup(flagKey)); err != nil {
			return err
		}
	}
	return nil
}

func flagInfo(info, envName string) string {
	return info + ", " + envName
}
