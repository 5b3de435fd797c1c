package core

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"broodcore/internal/blob"
	"broodcore/pkg/domain"
)

// PhotoStore persists photo payloads and mints the references embedded in
// lifecycle events. Refs are minted before the event is appended; events are
// immutable afterwards.
type PhotoStore interface {
	StorePhoto(ctx context.Context, ownerID, filename string, r io.Reader) (PhotoRef, error)
	RemovePhoto(ctx context.Context, ref PhotoRef) error
}

// BlobPhotoStore stores photos in a blob backend under per-owner keys.
type BlobPhotoStore struct {
	blobs blob.Store
	clock Clock
}

// NewBlobPhotoStore wraps a blob store. A nil clock defaults to UTC wall time.
func NewBlobPhotoStore(blobs blob.Store, clock Clock) *BlobPhotoStore {
	if clock == nil {
		clock = ClockFunc(func() time.Time { return time.Now().UTC() })
	}
	return &BlobPhotoStore{blobs: blobs, clock: clock}
}

// StorePhoto writes the payload and returns the ref to embed in an event.
func (s *BlobPhotoStore) StorePhoto(ctx context.Context, ownerID, filename string, r io.Reader) (PhotoRef, error) {
	if ownerID == "" {
		return PhotoRef{}, domain.ValidationError{Field: "owner_id", Message: "required"}
	}
	id := uuid.NewString()
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("photos/%s/%s%s", ownerID, id, ext)
	info, err := s.blobs.Put(ctx, key, r, blob.PutOptions{ContentType: contentTypeForExt(ext)})
	if err != nil {
		return PhotoRef{}, domain.TransientError{Op: "store_photo", Err: err}
	}
	return PhotoRef{
		ID:   id,
		URL:  info.URL,
		Date: s.clock.Now().Format(domain.DateLayout),
	}, nil
}

// RemovePhoto deletes the payload backing a ref. Used when event creation
// fails after the photo was uploaded.
func (s *BlobPhotoStore) RemovePhoto(ctx context.Context, ref PhotoRef) error {
	key := keyFromURL(ref.URL)
	if key == "" {
		return nil
	}
	_, err := s.blobs.Delete(ctx, key)
	return err
}

func keyFromURL(url string) string {
	idx := strings.Index(url, "photos/")
	if idx < 0 {
		return ""
	}
	return url[idx:]
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// StorePhoto mints a photo ref through the configured photo store. Returns a
// validation error when no photo store is wired.
func (s *Service) StorePhoto(ctx context.Context, ownerID, filename string, r io.Reader) (PhotoRef, error) {
	if s.opts.photos == nil {
		return PhotoRef{}, domain.ValidationError{Field: "photo_store", Message: "not configured"}
	}
	return s.opts.photos.StorePhoto(ctx, ownerID, filename, r)
}
