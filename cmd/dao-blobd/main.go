// Command dao-blobd serves the blob publisher/aggregator HTTP protocol from a
// local store, and optionally exposes that store over gRPC so several
// clients can share one fallback store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"xdao.co/datadao/config"
	"xdao.co/datadao/internal/logger"
	"xdao.co/datadao/storage"
	"xdao.co/datadao/storage/grpcstore"
	"xdao.co/datadao/storage/storeregistry"
	"xdao.co/datadao/storage/walrus"

	_ "xdao.co/datadao/storage/localfs"
	_ "xdao.co/datadao/storage/memory"
)

type ServeOptions struct {
	Listen       string
	GRPCListen   string
	Backend      string
	BackendOpts  map[string]string
	MaxBlobBytes int64
	ListBackends bool
	LogLevel     string
}

func NewServeOptions() *ServeOptions {
	return &ServeOptions{
		Listen:       "127.0.0.1:31415",
		Backend:      "localfs",
		MaxBlobBytes: walrus.DefaultMaxBlobBytes,
	}
}

func NewCmd() *cobra.Command {
	o := NewServeOptions()
	cmd := &cobra.Command{
		Use:          "dao-blobd",
		Short:        "Serve the blob store protocol from a local store",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.ListBackends {
				for _, b := range storeregistry.List(storeregistry.UsageDaemon) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.Name, b.Description)
				}
				return nil
			}
			return o.Run(cmd.Context(), logger.Configure(o.LogLevel))
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&o.Listen, "listen", o.Listen, "HTTP listen address")
	fs.StringVar(&o.GRPCListen, "grpc-listen", "", "also serve the store over gRPC on this address")
	fs.StringVar(&o.Backend, "backend", o.Backend, "store backend name (see --list-backends)")
	fs.StringToStringVar(&o.BackendOpts, "opt", nil, "backend option key=value (localfs-dir defaults to ~/.datadao/blobd)")
	fs.Int64Var(&o.MaxBlobBytes, "max-blob-bytes", o.MaxBlobBytes, "largest accepted upload")
	fs.BoolVar(&o.ListBackends, "list-backends", false, "list supported backends and exit")
	fs.StringVar(&o.LogLevel, "log-level", "", "trace|debug|info|warn|error")
	return cmd
}

// Run serves until ctx is cancelled or a listener fails.
func (o *ServeOptions) Run(ctx context.Context, log zerolog.Logger) error {
	store, closeFn, err := storeregistry.Open(o.Backend, storeregistry.UsageDaemon, o.backendOptions())
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", o.Listen)
	if err != nil {
		return err
	}
	h := &walrus.Handler{
		Store:        store,
		MaxBlobBytes: o.MaxBlobBytes,
		Epoch:        epochClock(time.Now()),
		Logger:       log,
	}
	httpSrv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 2)
	go func() { errc <- httpSrv.Serve(lis) }()
	log.Info().Str("addr", lis.Addr().String()).Str("backend", o.Backend).Msg("dao-blobd serving HTTP")

	var grpcSrv *grpc.Server
	if o.GRPCListen != "" {
		grpcSrv, err = serveGRPC(o.GRPCListen, store, errc)
		if err != nil {
			_ = httpSrv.Close()
			return err
		}
		log.Info().Str("addr", o.GRPCListen).Msg("dao-blobd serving gRPC store")
	}

	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// backendOptions returns BackendOpts with the localfs directory filled in
// when none was given.
func (o *ServeOptions) backendOptions() map[string]string {
	opts := make(map[string]string, len(o.BackendOpts)+1)
	for k, v := range o.BackendOpts {
		opts[k] = v
	}
	if o.Backend == "localfs" && opts["localfs-dir"] == "" {
		opts["localfs-dir"] = config.DataDirectory("blobd")
	}
	return opts
}

func serveGRPC(addr string, store storage.Store, errc chan<- error) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := grpc.NewServer()
	grpcstore.RegisterStoreServer(s, &grpcstore.Server{Store: store})
	go func() { errc <- s.Serve(lis) }()
	return s, nil
}

// epochClock reports one epoch per day since start.
func epochClock(start time.Time) func() uint64 {
	return func() uint64 { return uint64(time.Since(start) / (24 * time.Hour)) }
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
