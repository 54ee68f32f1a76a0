package grpcstore

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"xdao.co/datadao/storage"
	"xdao.co/datadao/storage/storeregistry"
)

func init() {
	storeregistry.MustRegister(storeregistry.Backend{
		Name:        "grpc",
		Description: "gRPC store client (talks to dao-blobd --grpc-listen)",
		Usage:       storeregistry.UsageCLI,
		Open: func(opts map[string]string) (storage.Store, func() error, error) {
			target := strings.TrimSpace(opts["grpc-target"])
			if target == "" {
				return nil, nil, fmt.Errorf("missing grpc-target")
			}
			var dopts DialOptions
			if raw := opts["grpc-max-msg-bytes"]; raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil {
					return nil, nil, fmt.Errorf("grpc-max-msg-bytes: %w", err)
				}
				dopts.MaxMsgBytes = n
			}
			client, err := Dial(target, dopts)
			if err != nil {
				return nil, nil, err
			}
			if raw := opts["grpc-timeout"]; raw != "" {
				d, err := time.ParseDuration(raw)
				if err != nil {
					_ = client.Close()
					return nil, nil, fmt.Errorf("grpc-timeout: %w", err)
				}
				client.Timeout = d
			}
			return client, client.Close, nil
		},
	})
}
