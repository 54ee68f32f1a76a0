package localfs

import (
	"fmt"
	"strings"

	"xdao.co/datadao/storage"
	"xdao.co/datadao/storage/storeregistry"
)

func init() {
	storeregistry.MustRegister(storeregistry.Backend{
		Name:        "localfs",
		Description: "filesystem store with CID-verified entries",
		Usage:       storeregistry.UsageCLI | storeregistry.UsageDaemon,
		Open: func(opts map[string]string) (storage.Store, func() error, error) {
			dir := strings.TrimSpace(opts["localfs-dir"])
			if dir == "" {
				return nil, nil, fmt.Errorf("missing localfs-dir")
			}
			s, err := New(dir)
			if err != nil {
				return nil, nil, err
			}
			return s, nil, nil
		},
	})
}
