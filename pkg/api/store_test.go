package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidateIndexID(t *testing.T) {
	valid := []string{"logs", "web-2026", "trace_data.v2", "Abc"}
	for _, id := range valid {
		if err := ValidateIndexID(id); err != nil {
			t.Errorf("ValidateIndexID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{"", "ab", "1logs", "-logs", "logs index", "logs/2026"}
	for _, id := range invalid {
		if err := ValidateIndexID(id); err == nil {
			t.Errorf("ValidateIndexID(%q) = nil, want error", id)
		}
	}
}

func TestIndexStore(t *testing.T) {
	t.Run("create list get delete", func(t *testing.T) {
		store := NewIndexStore()

		meta, err := store.Create("logs")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if meta.IndexID != "logs" || meta.CreatedAt.IsZero() {
			t.Errorf("unexpected metadata: %+v", meta)
		}

		if _, err := store.Create("logs"); !errors.As(err, &ErrIndexExists{}) {
			t.Errorf("duplicate create error = %v, want ErrIndexExists", err)
		}

		if got := store.List(); len(got) != 1 || got[0].IndexID != "logs" {
			t.Errorf("List = %+v", got)
		}

		if _, err := store.Get("logs"); err != nil {
			t.Errorf("Get: %v", err)
		}
		if _, err := store.Get("missing"); !errors.As(err, &ErrIndexNotFound{}) {
			t.Errorf("Get missing error = %v, want ErrIndexNotFound", err)
		}

		if err := store.Delete("logs"); err != nil {
			t.Errorf("Delete: %v", err)
		}
		if err := store.Delete("logs"); !errors.As(err, &ErrIndexNotFound{}) {
			t.Errorf("second Delete error = %v, want ErrIndexNotFound", err)
		}
	})

	t.Run("rejects invalid IDs on create", func(t *testing.T) {
		store := NewIndexStore()
		if _, err := store.Create("1nope"); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("ingest counts documents and updates metadata", func(t *testing.T) {
		store := NewIndexStore()
		store.Create("logs")

		n, err := store.Ingest("logs", [][]byte{
			[]byte(`{"message":"first"}`),
			[]byte(`{"message":"second"}`),
		})
		if err != nil {
			t.Fatalf("Ingest: %v", err)
		}
		if n != 2 {
			t.Errorf("ingested %d docs, want 2", n)
		}

		meta, _ := store.Get("logs")
		if meta.NumDocs != 2 {
			t.Errorf("NumDocs = %d, want 2", meta.NumDocs)
		}
	})

	t.Run("ingest rejects non-object lines atomically", func(t *testing.T) {
		store := NewIndexStore()
		store.Create("logs")

		_, err := store.Ingest("logs", [][]byte{
			[]byte(`{"ok":true}`),
			[]byte(`not json`),
		})
		if err == nil {
			t.Fatal("expected parse error")
		}

		meta, _ := store.Get("logs")
		if meta.NumDocs != 0 {
			t.Errorf("failed batch must not be partially applied, NumDocs = %d", meta.NumDocs)
		}
	})

	t.Run("search matches substrings case-insensitively", func(t *testing.T) {
		store := NewIndexStore()
		store.Create("logs")
		store.Ingest("logs", [][]byte{
			[]byte(`{"message":"Connection refused"}`),
			[]byte(`{"message":"timeout waiting for upstream"}`),
			[]byte(`{"message":"connection reset"}`),
		})

		resp, err := store.Search("logs", SearchRequest{Query: "connection"})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if resp.NumHits != 2 {
			t.Errorf("NumHits = %d, want 2", resp.NumHits)
		}
	})

	t.Run("search paginates with max_hits and start_offset", func(t *testing.T) {
		store := NewIndexStore()
		store.Create("logs")
		for i := 0; i < 5; i++ {
			store.Ingest("logs", [][]byte{[]byte(fmt.Sprintf(`{"n":%d,"tag":"match"}`, i))})
		}

		resp, err := store.Search("logs", SearchRequest{Query: "match", MaxHits: 2, StartOffset: 1})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if resp.NumHits != 5 {
			t.Errorf("NumHits = %d, want 5", resp.NumHits)
		}
		if len(resp.Hits) != 2 {
			t.Errorf("len(Hits) = %d, want 2", len(resp.Hits))
		}
	})

	t.Run("empty query matches nothing", func(t *testing.T) {
		store := NewIndexStore()
		store.Create("logs")
		store.Ingest("logs", [][]byte{[]byte(`{"a":1}`)})

		resp, _ := store.Search("logs", SearchRequest{})
		if resp.NumHits != 0 {
			t.Errorf("NumHits = %d, want 0", resp.NumHits)
		}
	})
}
