package walrus

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"xdao.co/datadao/cidutil"
	"xdao.co/datadao/storage"
)

// DefaultMaxBlobBytes caps uploads accepted by Handler.
const DefaultMaxBlobBytes = 10 << 20

// Handler serves both halves of the protocol from a single storage.Store,
// acting as publisher and aggregator for development and tests.
//
// Blob ids are the CIDv1 (raw, sha2-256) of the bytes, so storing the same
// bytes twice answers "already certified" with the original id.
type Handler struct {
	Store        storage.Store
	MaxBlobBytes int64
	// Epoch reports the current storage epoch; 0 when nil.
	Epoch  func() uint64
	Logger zerolog.Logger

	once   sync.Once
	routes *mux.Router
}

// Router returns the mux with the publisher and aggregator routes mounted.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(blobsPath, h.put).Methods(http.MethodPut)
	r.HandleFunc(blobsPath+"/{id}", h.get).Methods(http.MethodGet)
	return r
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router().ServeHTTP(w, r)
}

func (h *Handler) router() *mux.Router {
	h.once.Do(func() { h.routes = h.Router() })
	return h.routes
}

func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	epochs := uint64(DefaultEpochs)
	if raw := r.URL.Query().Get("epochs"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			http.Error(w, "epochs must be a positive integer", http.StatusBadRequest)
			return
		}
		epochs = n
	}

	limit := h.MaxBlobBytes
	if limit <= 0 {
		limit = DefaultMaxBlobBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "blob too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	id := cidutil.BlobCIDString(body)
	epoch := h.epoch()
	if h.Store.Has(ctx, storage.StoreKey(id)) {
		h.Logger.Debug().Str("blobId", id).Msg("blob already certified")
		writeJSON(w, http.StatusOK, StoreResponse{AlreadyCertified: &AlreadyCertified{
			BlobID:   id,
			EndEpoch: epoch + epochs,
		}})
		return
	}
	if err := h.Store.Set(ctx, storage.StoreKey(id), body, 0); err != nil {
		h.Logger.Error().Err(err).Str("blobId", id).Msg("store blob")
		http.Error(w, "store failed", http.StatusInternalServerError)
		return
	}
	h.Logger.Info().Str("blobId", id).Int("size", len(body)).Uint64("epochs", epochs).Msg("blob stored")
	writeJSON(w, http.StatusOK, StoreResponse{NewlyCreated: &NewlyCreated{
		BlobObject: BlobObject{
			BlobID:          id,
			RegisteredEpoch: epoch,
			CertifiedEpoch:  epoch,
			Size:            uint64(len(body)),
			EncodingType:    "RedStuff",
		},
	}})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	b, err := h.Store.Get(r.Context(), storage.StoreKey(id))
	switch {
	case storage.IsNotFound(err):
		http.Error(w, "blob not found", http.StatusNotFound)
		return
	case err != nil:
		h.Logger.Error().Err(err).Str("blobId", id).Msg("read blob")
		http.Error(w, "read failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *Handler) epoch() uint64 {
	if h.Epoch == nil {
		return 0
	}
	return h.Epoch()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
