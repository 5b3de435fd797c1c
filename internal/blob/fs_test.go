package blob

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestFilesystemStoreRoundTrip(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	info, err := store.Put(ctx, "photos/o/a.jpg", bytes.NewReader([]byte("payload")), PutOptions{ContentType: "image/jpeg"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ETag == "" {
		t.Fatalf("unexpected info: %+v", info)
	}

	if _, err := store.Put(ctx, "photos/o/a.jpg", bytes.NewReader([]byte("x")), PutOptions{}); err == nil {
		t.Fatalf("expected create-only violation")
	}

	got, rc, err := store.Get(ctx, "photos/o/a.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "payload" || got.ContentType != "image/jpeg" {
		t.Fatalf("round trip mismatch: %q %+v", body, got)
	}

	head, err := store.Head(ctx, "photos/o/a.jpg")
	if err != nil || head.ETag != info.ETag {
		t.Fatalf("head mismatch: err=%v head=%+v", err, head)
	}

	url, err := store.PresignURL(ctx, "photos/o/a.jpg", SignedURLOptions{})
	if err != nil || url == "" {
		t.Fatalf("presign: %v %q", err, url)
	}

	ok, err := store.Delete(ctx, "photos/o/a.jpg")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if ok, _ := store.Delete(ctx, "photos/o/a.jpg"); ok {
		t.Fatalf("expected absent after delete")
	}
}

func TestFilesystemStoreRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "../escape", "/abs", "a/../../b"} {
		if _, err := store.Put(ctx, key, bytes.NewReader(nil), PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestFilesystemStoreListByPrefix(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"photos/o1/a.png", "photos/o2/b.png"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "photos/o1/")
	if err != nil || len(infos) != 1 || infos[0].Key != "photos/o1/a.png" {
		t.Fatalf("unexpected listing: err=%v infos=%+v", err, infos)
	}
}
