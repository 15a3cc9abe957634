package analyze

// Builder accumulates a word-frequency dictionary from Text-profile bytes
// as the analyzer walks a stream. It is deliberately simple: training a
// production word-transform table from a large corpus is an external
// concern (spec.md §1 Non-goals); this is the per-stream, in-band counter
// the analyzer feeds while it has the bytes in hand anyway.
type Builder struct {
	counts map[string]int
	word   []byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{counts: make(map[string]int)}
}

// AddByte feeds the next byte of a Text block to the builder. A run of
// letters and digits accumulates as a candidate word; any other byte ends
// the current word (if non-empty) and is itself discarded.
func (b *Builder) AddByte(c byte) {
	if isWordByte(c) {
		b.word = append(b.word, c)
		return
	}
	b.flush()
}

// Flush must be called after the last byte of input to commit a
// still-open trailing word.
func (b *Builder) Flush() {
	b.flush()
}

func (b *Builder) flush() {
	if len(b.word) > 0 {
		b.counts[string(b.word)]++
		b.word = b.word[:0]
	}
}

func isWordByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return false
}

// Counts returns the accumulated word→frequency table.
func (b *Builder) Counts() map[string]int {
	return b.counts
}
