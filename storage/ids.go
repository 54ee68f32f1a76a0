package storage

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// LocalIDPrefix marks ids minted locally when no publisher accepted a blob.
	// Publisher-assigned ids never carry it.
	LocalIDPrefix = "local_"

	// KeyPrefix namespaces blob entries inside a Store.
	KeyPrefix = "walrus_blob_"

	localSuffixLen = 9
)

// NewLocalID mints a fallback id: prefix, unix millis, random suffix.
func NewLocalID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:localSuffixLen]
	return LocalIDPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}

// IsLocalID reports whether id was minted by NewLocalID.
func IsLocalID(id string) bool { return strings.HasPrefix(id, LocalIDPrefix) }

// StoreKey is the Store key holding the bytes of blob id.
func StoreKey(id string) string { return KeyPrefix + id }
