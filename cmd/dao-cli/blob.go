package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"xdao.co/datadao/storage/blobstore"
	"xdao.co/datadao/storage/bundle"
)

type BlobOptions struct {
	Publishers  []string
	Aggregators []string
	Epochs      int
	Timeout     time.Duration
	RequireJSON bool
	Out         string
}

func newBlobCmd(root *RootOptions) *cobra.Command {
	o := &BlobOptions{}
	cmd := &cobra.Command{
		Use:   "blob",
		Short: "Store and fetch blobs with publisher/aggregator fallback",
	}
	cmd.PersistentFlags().StringSliceVar(&o.Publishers, "publisher", nil, "publisher URL, repeatable; replaces configured publishers")
	cmd.PersistentFlags().StringSliceVar(&o.Aggregators, "aggregator", nil, "aggregator URL, repeatable; replaces configured aggregators")
	cmd.PersistentFlags().IntVar(&o.Epochs, "epochs", 0, "storage epochs to pay for")
	cmd.PersistentFlags().DurationVar(&o.Timeout, "timeout", 0, "per-endpoint request timeout")
	cmd.PersistentFlags().BoolVar(&o.RequireJSON, "require-json", false, "reject aggregator bodies that are not JSON; overrides require_json from the config")

	put := &cobra.Command{
		Use:   "put <file|->",
		Short: "Upload a file and print its blob id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlobPut(cmd, root, o, args[0])
		},
	}
	get := &cobra.Command{
		Use:   "get <blob-id>",
		Short: "Fetch a blob to stdout or --out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlobGet(cmd, root, o, args[0])
		},
	}
	get.Flags().StringVar(&o.Out, "out", "", "write the blob to this file")

	var bundlePath string
	export := &cobra.Command{
		Use:   "export <blob-id>...",
		Short: "Write blobs from the local store into a bundle file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, closeFn, err := root.Config.OpenLocalStore()
			if err != nil {
				return err
			}
			defer closeFn()
			f, err := os.Create(bundlePath)
			if err != nil {
				return err
			}
			if err := bundle.Export(cmd.Context(), f, local, args); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	export.Flags().StringVar(&bundlePath, "out", "blobs.tar", "bundle file to write")

	importCmd := &cobra.Command{
		Use:   "import <bundle>",
		Short: "Load a bundle into the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, closeFn, err := root.Config.OpenLocalStore()
			if err != nil {
				return err
			}
			defer closeFn()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			ids, err := bundle.Import(cmd.Context(), f, local, bundle.ImportOptions{TTL: root.Config.BackupTTL})
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.AddCommand(put, get, export, importCmd)
	return cmd
}

func (o *BlobOptions) client(cmd *cobra.Command, root *RootOptions) (*blobstore.Client, func() error, error) {
	cfg := root.Config
	if len(o.Publishers) > 0 {
		cfg.Publishers = o.Publishers
	}
	if len(o.Aggregators) > 0 {
		cfg.Aggregators = o.Aggregators
	}
	if o.Epochs > 0 {
		cfg.Epochs = o.Epochs
	}
	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if cmd.Flags().Changed("require-json") {
		cfg.RequireJSON = o.RequireJSON
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	local, closeFn, err := cfg.OpenLocalStore()
	if err != nil {
		return nil, nil, err
	}
	opts := cfg.ClientOptions(local)
	opts.Logger = root.Log
	return blobstore.New(opts), closeFn, nil
}

func runBlobPut(cmd *cobra.Command, root *RootOptions, o *BlobOptions, path string) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	c, closeFn, err := o.client(cmd, root)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := c.Store(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("store blob: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func runBlobGet(cmd *cobra.Command, root *RootOptions, o *BlobOptions, id string) error {
	c, closeFn, err := o.client(cmd, root)
	if err != nil {
		return err
	}
	defer closeFn()

	data, err := c.Retrieve(cmd.Context(), id)
	if err != nil {
		return err
	}
	if o.Out != "" {
		return os.WriteFile(o.Out, data, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
