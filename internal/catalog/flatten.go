package catalog

import "github.com/vietddude/eventmailer/internal/core/domain"

// Flatten returns every event of the tree in pre-order: a node's own events
// first, then each child subtree in declared order.
//
// Traversal uses an explicit stack, so depth is bounded only by memory.
func Flatten(root domain.Category) []domain.Event {
	events := make([]domain.Event, 0, Count(root))

	stack := []*domain.Category{&root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		events = append(events, node.Events...)

		// Push in reverse so the first child is visited next.
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, &node.Children[i])
		}
	}

	return events
}

// Count returns the number of events in the tree.
func Count(root domain.Category) int {
	total := 0
	stack := []*domain.Category{&root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		total += len(node.Events)
		for i := range node.Children {
			stack = append(stack, &node.Children[i])
		}
	}
	return total
}
