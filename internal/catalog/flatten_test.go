package catalog

import (
	"fmt"
	"testing"

	"github.com/vietddude/eventmailer/internal/core/domain"
)

func ev(name string) domain.Event {
	return domain.Event{Name: name, City: "X", Price: 1}
}

func TestFlatten_PreOrder(t *testing.T) {
	root := domain.Category{
		Name:   "root",
		Events: []domain.Event{ev("r1")},
		Children: []domain.Category{
			{
				Name:   "a",
				Events: []domain.Event{ev("a1"), ev("a2")},
				Children: []domain.Category{
					{Name: "a.x", Events: []domain.Event{ev("ax1")}},
				},
			},
			{Name: "b"},
			{
				Name:   "c",
				Events: []domain.Event{ev("c1")},
				Children: []domain.Category{
					{Name: "c.x", Events: []domain.Event{ev("cx1")}},
					{Name: "c.y", Events: []domain.Event{ev("cy1"), ev("cy2")}},
				},
			},
		},
	}

	got := Flatten(root)
	want := []string{"r1", "a1", "a2", "ax1", "c1", "cx1", "cy1", "cy2"}

	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, got[i].Name)
		}
	}
	if Count(root) != len(want) {
		t.Errorf("Count = %d, want %d", Count(root), len(want))
	}
}

func TestFlatten_Empty(t *testing.T) {
	if got := Flatten(domain.Category{Name: "empty"}); len(got) != 0 {
		t.Errorf("expected no events, got %d", len(got))
	}
}

func TestFlatten_Deterministic(t *testing.T) {
	root, err := NewSampleLoader().Load(t.Context())
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}

	first := Flatten(root)
	second := Flatten(root)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("position %d differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestFlatten_DeepTree(t *testing.T) {
	const depth = 100000

	root := domain.Category{Name: "leaf", Events: []domain.Event{ev("deepest")}}
	for i := 0; i < depth; i++ {
		root = domain.Category{
			Name:     fmt.Sprintf("n%d", i),
			Events:   []domain.Event{ev(fmt.Sprintf("e%d", i))},
			Children: []domain.Category{root},
		}
	}

	got := Flatten(root)
	if len(got) != depth+1 {
		t.Fatalf("expected %d events, got %d", depth+1, len(got))
	}
	if got[0].Name != fmt.Sprintf("e%d", depth-1) {
		t.Errorf("expected outermost event first, got %s", got[0].Name)
	}
	if got[len(got)-1].Name != "deepest" {
		t.Errorf("expected deepest event last, got %s", got[len(got)-1].Name)
	}
}
