package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"xdao.co/datadao/names"
)

func newNameCmd(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "name",
		Short: "Resolve human-readable account names",
	}

	var (
		rpcURL  string
		reverse bool
	)
	resolve := &cobra.Command{
		Use:   "resolve <name|address>",
		Short: "Print the address of a name, or the name of an address with --reverse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := root.Config.RPCURL
			if rpcURL != "" {
				url = rpcURL
			}
			r := names.New(url)
			r.TTL = root.Config.NameCacheTTL
			r.Logger = root.Log

			var (
				out string
				err error
			)
			if reverse {
				out, err = r.Reverse(cmd.Context(), args[0])
			} else {
				out, err = r.Resolve(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	resolve.Flags().StringVar(&rpcURL, "rpc", "", "fullnode JSON-RPC URL (overrides config)")
	resolve.Flags().BoolVar(&reverse, "reverse", false, "resolve an address to its name")

	cmd.AddCommand(resolve)
	return cmd
}
