package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSampleLoader(t *testing.T) {
	root, err := NewSampleLoader().Load(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if root.Name != "Concerts" {
		t.Errorf("expected root Concerts, got %s", root.Name)
	}

	events := Flatten(root)
	if len(events) != 17 {
		t.Fatalf("expected 17 events, got %d", len(events))
	}

	first := events[0]
	if first.Name != "Backstreet Boys" || first.City != "Camden" || first.Price != 23 {
		t.Errorf("unexpected first event: %+v", first)
	}
	if first.Venue != "Freedom Mortgage Pavilion" {
		t.Errorf("expected venue to be decoded, got %q", first.Venue)
	}

	newYork := 0
	for _, e := range events {
		if e.City == "New York" {
			newYork++
		}
	}
	if newYork != 3 {
		t.Errorf("expected 3 New York events, got %d", newYork)
	}
}

func TestDecode_IgnoresUnknownFields(t *testing.T) {
	data := []byte(`{
		"id": 1, "name": "root", "color": "blue", "children": [],
		"events": [{"name": "a", "city": "Paris", "price": 10, "distanceFromVenue": 12.5, "url": "/x"}]
	}`)

	root, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(root.Events) != 1 || root.Events[0].City != "Paris" {
		t.Errorf("unexpected events: %+v", root.Events)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `{"name": "root", "events": [`},
		{"wrong type", `{"name": "root", "events": [{"name": "a", "city": "Paris", "price": "cheap"}]}`},
		{"missing city", `{"name": "root", "events": [{"name": "a", "price": 1}]}`},
		{"negative price", `{"name": "root", "events": [{"name": "a", "city": "Paris", "price": -1}]}`},
		{"nameless child", `{"name": "root", "children": [{"events": []}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, ErrMalformedTaxonomy) {
				t.Errorf("expected ErrMalformedTaxonomy, got %v", err)
			}
		})
	}
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.json")
	content := `{"name": "root", "children": [{"name": "child", "events": [{"name": "a", "city": "Oslo", "price": 5}]}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	root, err := NewLoader(path).Load(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Flatten(root); len(got) != 1 || got[0].City != "Oslo" {
		t.Errorf("unexpected events: %+v", got)
	}

	if _, err := NewFileLoader(filepath.Join(t.TempDir(), "missing.json")).Load(t.Context()); err == nil {
		t.Error("expected error for missing file")
	}
}
