package main

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"xdao.co/datadao/config"
	"xdao.co/datadao/internal/logger"

	_ "xdao.co/datadao/storage/grpcstore"
	_ "xdao.co/datadao/storage/localfs"
	_ "xdao.co/datadao/storage/memory"
)

// RootOptions are shared by every subcommand. They are populated by the
// persistent pre-run hook.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	KeysDir    string

	Config config.Config
	Log    zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	o := &RootOptions{}
	root := &cobra.Command{
		Use:           "dao-cli",
		Short:         "Data DAO client: blobs, proposals, transactions and keys",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			o.Log = logger.Configure(o.LogLevel)
			cfg, err := config.Load(o.ConfigPath)
			if err != nil {
				return err
			}
			o.Config = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&o.ConfigPath, "config", "", "config file (YAML or JSON); DATADAO_* variables override it")
	root.PersistentFlags().StringVar(&o.LogLevel, "log-level", "", "trace|debug|info|warn|error (default $LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&o.KeysDir, "keys-dir", "", "key store directory (default ~/.datadao/keys)")

	root.AddCommand(
		newBlobCmd(o),
		newProposalCmd(o),
		newTxCmd(o),
		newKeyCmd(o),
		newNameCmd(o),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
