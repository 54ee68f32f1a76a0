// Package bundle moves blobs between local stores as a deterministic TAR.
//
// A bundle carries index.json first, then one blobs/<id> entry per blob.
// The index records the CID of every blob; import checks each payload
// against it, so a bundle can travel over untrusted media. Typical use is
// carrying blobs kept under local ids from an offline machine to one that
// can reach a publisher.
package bundle

import (
	"archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"xdao.co/datadao/cidutil"
	"xdao.co/datadao/storage"
)

// FormatVersion is the current bundle index schema version.
const FormatVersion = 1

const (
	indexName  = "index.json"
	blobPrefix = "blobs/"
)

var (
	ErrMissingIndex = errors.New("bundle: index.json must be the first entry")
	ErrNotIndexed   = errors.New("bundle: blob entry not listed in index")
)

var epoch0 = time.Unix(0, 0).UTC()

type index struct {
	Version int          `json:"version"`
	Blobs   []indexEntry `json:"blobs"`
}

type indexEntry struct {
	ID   string `json:"id"`
	CID  string `json:"cid"`
	Size int    `json:"size"`
}

// Export writes the blobs with the given ids from store to w. Output bytes
// depend only on the set of ids and their contents.
func Export(ctx context.Context, w io.Writer, store storage.Store, ids []string) error {
	if store == nil {
		return errors.New("bundle: nil store")
	}
	uniq := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !validID(id) {
			return fmt.Errorf("%w: %q", storage.ErrInvalidID, id)
		}
		uniq[id] = struct{}{}
	}
	sorted := make([]string, 0, len(uniq))
	for id := range uniq {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	// Read everything first: the index precedes the payloads.
	idx := index{Version: FormatVersion, Blobs: make([]indexEntry, 0, len(sorted))}
	payloads := make([][]byte, 0, len(sorted))
	for _, id := range sorted {
		b, err := store.Get(ctx, storage.StoreKey(id))
		if err != nil {
			return fmt.Errorf("bundle: %s: %w", id, err)
		}
		idx.Blobs = append(idx.Blobs, indexEntry{ID: id, CID: cidutil.BlobCIDString(b), Size: len(b)})
		payloads = append(payloads, b)
	}

	tw := tar.NewWriter(w)
	ib, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	if err := writeFile(tw, indexName, append(ib, '\n')); err != nil {
		_ = tw.Close()
		return err
	}
	for i, id := range sorted {
		if err := writeFile(tw, blobPrefix+id, payloads[i]); err != nil {
			_ = tw.Close()
			return err
		}
	}
	return tw.Close()
}

// ImportOptions controls bundle import behavior.
type ImportOptions struct {
	// IgnoreUnknown skips entries outside blobs/ instead of failing.
	IgnoreUnknown bool
	// TTL is applied to every imported entry; 0 keeps them.
	TTL time.Duration
}

// Import reads a bundle from r into store and returns the imported ids in
// bundle order. Nothing after the first invalid entry is imported.
func Import(ctx context.Context, r io.Reader, store storage.Store, opts ImportOptions) ([]string, error) {
	if store == nil {
		return nil, errors.New("bundle: nil store")
	}
	tr := tar.NewReader(r)

	var (
		idx      map[string]indexEntry
		imported []string
	)
	seen := map[string]struct{}{}
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return imported, fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}
		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return imported, fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}

		if idx == nil {
			if name != indexName {
				return imported, ErrMissingIndex
			}
			if idx, err = readIndex(tr); err != nil {
				return imported, err
			}
			continue
		}

		if !strings.HasPrefix(name, blobPrefix) {
			if opts.IgnoreUnknown {
				_, _ = io.Copy(io.Discard, tr)
				continue
			}
			return imported, fmt.Errorf("bundle: unknown entry: %s", name)
		}
		id := strings.TrimPrefix(name, blobPrefix)
		entry, ok := idx[id]
		if !ok {
			return imported, fmt.Errorf("%w: %s", ErrNotIndexed, id)
		}
		if _, dup := seen[id]; dup {
			return imported, fmt.Errorf("bundle: duplicate blob entry: %s", id)
		}
		seen[id] = struct{}{}

		payload, err := io.ReadAll(tr)
		if err != nil {
			return imported, err
		}
		if err := cidutil.Verify(entry.CID, payload); err != nil {
			return imported, fmt.Errorf("%w: %s: %v", storage.ErrIntegrity, id, err)
		}
		if err := store.Set(ctx, storage.StoreKey(id), payload, opts.TTL); err != nil {
			return imported, err
		}
		imported = append(imported, id)
	}
	if idx == nil {
		return nil, ErrMissingIndex
	}
	return imported, nil
}

func readIndex(r io.Reader) (map[string]indexEntry, error) {
	var idx index
	if err := json.NewDecoder(r).Decode(&idx); err != nil {
		return nil, fmt.Errorf("bundle: index.json: %w", err)
	}
	if idx.Version != FormatVersion {
		return nil, fmt.Errorf("bundle: unsupported index version %d", idx.Version)
	}
	out := make(map[string]indexEntry, len(idx.Blobs))
	for _, e := range idx.Blobs {
		if !validID(e.ID) {
			return nil, fmt.Errorf("%w: %q", storage.ErrInvalidID, e.ID)
		}
		out[e.ID] = e
	}
	return out, nil
}

// validID keeps ids usable as a single tar path element.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, "/\\\x00")
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return name
}
