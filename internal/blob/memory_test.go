package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	if store.Driver() != DriverMemory {
		t.Fatalf("unexpected driver %s", store.Driver())
	}

	info, err := store.Put(ctx, "photos/o/a.jpg", bytes.NewReader([]byte("data")), PutOptions{
		ContentType: "image/jpeg",
		Metadata:    map[string]string{"specimen": "sp-1"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 4 || info.ContentType != "image/jpeg" || info.URL == "" {
		t.Fatalf("unexpected info: %+v", info)
	}

	if _, err := store.Put(ctx, "photos/o/a.jpg", bytes.NewReader([]byte("x")), PutOptions{}); err == nil {
		t.Fatalf("expected duplicate put error")
	}

	got, rc, err := store.Get(ctx, "photos/o/a.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "data" || got.Metadata["specimen"] != "sp-1" {
		t.Fatalf("unexpected content: %q meta=%v", body, got.Metadata)
	}

	if _, err := store.Head(ctx, "missing"); err == nil {
		t.Fatalf("expected head error for missing key")
	}

	if _, err := store.PresignURL(ctx, "photos/o/a.jpg", SignedURLOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	ok, err := store.Delete(ctx, "photos/o/a.jpg")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = store.Delete(ctx, "photos/o/a.jpg")
	if err != nil || ok {
		t.Fatalf("second delete should report absent: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreListPrefix(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	for _, key := range []string{"photos/o1/b.png", "photos/o1/a.png", "photos/o2/c.png"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "photos/o1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "photos/o1/a.png" || infos[1].Key != "photos/o1/b.png" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
}
