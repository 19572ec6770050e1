package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OPGLOL/opgl-matchboard-service/internal/imageref"
)

// ErrBlobNotFound is returned for unknown, expired or released handles
var ErrBlobNotFound = errors.New("blob not found")

const blobKeyPrefix = "blob:"

// Blob is the stored content behind a blob handle
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// BlobStore keeps the bytes of resolved blob references until they are
// released or expire
type BlobStore struct {
	store Store
	ttl   time.Duration
}

// NewBlobStore creates a BlobStore on top of store
func NewBlobStore(store Store, ttl time.Duration) *BlobStore {
	return &BlobStore{store: store, ttl: ttl}
}

// Put stores the bytes of a blob reference under its handle
func (blobStore *BlobStore) Put(ctx context.Context, ref imageref.ResourceRef) error {
	if ref.Kind != imageref.RefBlob || ref.Handle == "" {
		return fmt.Errorf("cannot store %q reference as blob", ref.Kind)
	}

	blob := Blob{MIMEType: ref.MIMEType, Data: ref.Data}
	return SetJSON(ctx, blobStore.store, blobKeyPrefix+ref.Handle, blob, blobStore.ttl)
}

// Get returns the blob stored under handle
func (blobStore *BlobStore) Get(ctx context.Context, handle string) (*Blob, error) {
	var blob Blob
	err := GetJSON(ctx, blobStore.store, blobKeyPrefix+handle, &blob)
	if errors.Is(err, ErrCacheMiss) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &blob, nil
}

// Release frees the bytes behind handle
func (blobStore *BlobStore) Release(ctx context.Context, handle string) error {
	return blobStore.store.Delete(ctx, blobKeyPrefix+handle)
}
