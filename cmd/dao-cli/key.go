package main

import (
	"crypto/rand"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"xdao.co/datadao/keys"
)

func newKeyCmd(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage wallet keys in the local key store",
	}

	var (
		seedHex   string
		scheme    string
		overwrite bool
		role      string
	)

	open := func() (*keys.KeyStore, error) { return keys.OpenKeyStore(root.KeysDir) }

	initCmd := &cobra.Command{
		Use:   "init <account>",
		Short: "Create an account from --seed or a random seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := open()
			if err != nil {
				return err
			}
			s, err := keys.ParseScheme(scheme)
			if err != nil {
				return err
			}
			var seed []byte
			if seedHex != "" {
				if seed, err = keys.ParseSeedHex(seedHex); err != nil {
					return err
				}
			} else {
				seed = make([]byte, keys.SeedSize)
				if _, err := rand.Read(seed); err != nil {
					return err
				}
			}
			acct, err := ks.InitAccount(args[0], s, seed, overwrite)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), acct)
		},
	}
	initCmd.Flags().StringVar(&seedHex, "seed", "", "32-byte hex seed (default: random)")
	initCmd.Flags().StringVar(&scheme, "scheme", "ed25519", "ed25519|dilithium3")
	initCmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing key")

	derive := &cobra.Command{
		Use:   "derive <account> <role>",
		Short: "Derive a role key from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := open()
			if err != nil {
				return err
			}
			acct, err := ks.DeriveAccount(args[0], args[1], overwrite)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), acct)
		},
	}
	derive.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing role key")

	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts and their roles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ks, err := open()
			if err != nil {
				return err
			}
			entries, err := ks.List()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tSCHEME\tROLES")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%v\n", e.Name, e.Scheme, e.Roles)
			}
			return w.Flush()
		},
	}

	export := &cobra.Command{
		Use:   "export <account>",
		Short: "Print the public key and address of an account or role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := open()
			if err != nil {
				return err
			}
			acct, err := ks.Export(args[0], role)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), acct)
		},
	}
	export.Flags().StringVar(&role, "role", "", "export this role key instead of the root key")

	cmd.AddCommand(initCmd, derive, list, export)
	return cmd
}
