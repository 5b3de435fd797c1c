package core

import (
	"context"
	"strings"
	"testing"

	"broodcore/internal/blob"
	"broodcore/pkg/domain"
)

func TestBlobPhotoStoreRoundTrip(t *testing.T) {
	blobs := blob.NewMemory()
	photos := NewBlobPhotoStore(blobs, testClock())
	ctx := context.Background()

	ref, err := photos.StorePhoto(ctx, testOwner, "molt.jpg", strings.NewReader("jpegdata"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if ref.ID == "" || ref.URL == "" {
		t.Fatalf("incomplete ref: %+v", ref)
	}
	if ref.Date != "2024-06-01" {
		t.Fatalf("expected clock date, got %s", ref.Date)
	}

	infos, err := blobs.List(ctx, "photos/"+testOwner+"/")
	if err != nil || len(infos) != 1 {
		t.Fatalf("list: err=%v len=%d", err, len(infos))
	}
	if infos[0].ContentType != "image/jpeg" {
		t.Fatalf("expected jpeg content type, got %s", infos[0].ContentType)
	}

	if err := photos.RemovePhoto(ctx, ref); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if infos, _ := blobs.List(ctx, ""); len(infos) != 0 {
		t.Fatalf("expected empty store after remove, got %d", len(infos))
	}
}

func TestBlobPhotoStoreRequiresOwner(t *testing.T) {
	photos := NewBlobPhotoStore(blob.NewMemory(), nil)
	if _, err := photos.StorePhoto(context.Background(), "", "x.png", strings.NewReader("p")); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceStorePhoto(t *testing.T) {
	svcWithout := newTestService(t)
	if _, err := svcWithout.StorePhoto(context.Background(), testOwner, "x.png", strings.NewReader("p")); !domain.IsValidation(err) {
		t.Fatalf("expected unconfigured photo store error, got %v", err)
	}

	photos := NewBlobPhotoStore(blob.NewMemory(), testClock())
	svc := newTestService(t, WithPhotoStore(photos))
	ref, err := svc.StorePhoto(context.Background(), testOwner, "x.png", strings.NewReader("p"))
	if err != nil || ref.ID == "" {
		t.Fatalf("store via service: err=%v ref=%+v", err, ref)
	}
}

func TestContentTypeForExt(t *testing.T) {
	cases := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
		".gif":  "application/octet-stream",
	}
	for ext, want := range cases {
		if got := contentTypeForExt(ext); got != want {
			t.Fatalf("%s: got %s want %s", ext, got, want)
		}
	}
}

func TestKeyFromURL(t *testing.T) {
	cases := map[string]string{
		"memory://photos/owner-1/a.jpg":                               "photos/owner-1/a.jpg",
		"https://bkt.s3.us-east-1.amazonaws.com/photos/owner-1/a.jpg": "photos/owner-1/a.jpg",
		"https://blob.test.local/brood-photos/photos/owner-1/a.png":   "photos/owner-1/a.png",
		"": "",
		"https://blob.test.local/brood-photos/other/owner-1/a.png": "",
	}
	for url, want := range cases {
		if got := keyFromURL(url); got != want {
			t.Fatalf("%s: got %q want %q", url, got, want)
		}
	}
}
