package memory

import (
	"fmt"
	"time"

	"xdao.co/datadao/storage"
	"xdao.co/datadao/storage/storeregistry"
)

func init() {
	storeregistry.MustRegister(storeregistry.Backend{
		Name:        "memory",
		Description: "in-process store; contents are lost on exit",
		Usage:       storeregistry.UsageCLI | storeregistry.UsageDaemon,
		Open: func(opts map[string]string) (storage.Store, func() error, error) {
			var cleanup time.Duration
			if raw := opts["memory-cleanup"]; raw != "" {
				d, err := time.ParseDuration(raw)
				if err != nil {
					return nil, nil, fmt.Errorf("memory-cleanup: %w", err)
				}
				cleanup = d
			}
			return New(cleanup), nil, nil
		},
	})
}
