package memory

import (
	"testing"

	"xdao.co/datadao/storage"
	"xdao.co/datadao/storage/testkit"
)

func TestMemory_Conformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		t.Helper()
		return New(0)
	})
}
