package neat

// InnovationGenerator hands out innovation numbers for one genome lineage.
// It is copied, never shared, when its genome is copied or crossed over.
type InnovationGenerator struct {
	next int
}

// Next returns the current number and advances the counter.
func (ig *InnovationGenerator) Next() int {
	n := ig.next
	ig.next++
	return n
}

// Peek returns the number Next would hand out.
func (ig *InnovationGenerator) Peek() int {
	return ig.next
}

// Observe makes sure later numbers are strictly greater than n.
func (ig *InnovationGenerator) Observe(n int) {
	if n >= ig.next {
		ig.next = n + 1
	}
}
