package advice

// Ballot accumulates weighted votes per candidate value. Used for winner
// resolution between disagreeing providers; generic so future multi-provider
// extensions can reuse it for any enum field.
type Ballot[T comparable] struct {
	weights map[T]float64
	order   []T
}

// NewBallot creates an empty ballot.
func NewBallot[T comparable]() *Ballot[T] {
	return &Ballot[T]{weights: make(map[T]float64)}
}

// Add accumulates weight for a candidate. First-seen order is retained for
// deterministic tie-breaking.
func (b *Ballot[T]) Add(candidate T, weight float64) {
	if _, seen := b.weights[candidate]; !seen {
		b.order = append(b.order, candidate)
	}
	b.weights[candidate] += weight
}

// Winner returns the candidate with the highest accumulated weight. Ties go
// to the earliest-added candidate. ok is false for an empty ballot.
func (b *Ballot[T]) Winner() (winner T, weight float64, ok bool) {
	for _, candidate := range b.order {
		w := b.weights[candidate]
		if !ok || w > weight {
			winner, weight, ok = candidate, w, true
		}
	}
	return winner, weight, ok
}
