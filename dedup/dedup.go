package dedup

// Deduplicator finds large repeated regions of a byte stream (or of several
// streams sharing a file-index namespace) by hashing a sliding window and
// consulting a sparse fingerprint table.
//
// It is not safe for concurrent use; the ordering guarantee in spec.md §5
// (detector observes a byte before the deduplicator) assumes a single
// caller driving AddByte in stream order.
type Deduplicator struct {
	window [WindowSize]byte
	pos    uint64
	hash   uint64
	table  table
}

// New returns a Deduplicator with a zeroed window and an empty fingerprint
// table.
func New() *Deduplicator {
	return &Deduplicator{table: newTable()}
}

// Reset clears the rolling hash and window position without touching the
// fingerprint table, mirroring the encoder/decoder needing an independent
// dedup pass per logical stream while fingerprints stay shared.
func (d *Deduplicator) Reset() {
	d.pos = 0
	d.hash = 0
	for i := range d.window {
		d.window[i] = 0
	}
}

// Pos returns the number of bytes folded into the rolling hash so far.
func (d *Deduplicator) Pos() uint64 { return d.pos }

// AddByte feeds the next byte of the stream into the rolling hash and
// fingerprint table. If the resulting hash matches a previously recorded
// fingerprint, the match candidate is returned for confirmation by the
// caller (spec.md §4.2: the table itself never confirms a match, only
// proposes one).
func (d *Deduplicator) AddByte(b byte, fileIdx uint32) (Entry, bool) {
	out := d.window[d.pos&windowMask]
	d.hash = d.hash*prime + uint64(b) - uint64(out)*windowPower
	d.window[d.pos&windowMask] = b
	d.pos++

	slot := uint32(d.hash) & tableMask
	extra := uint32(d.hash >> 32)
	entry := &d.table[slot]
	if entry.HashExtra == extra {
		return *entry, true
	}
	if d.pos&windowMask == 0 {
		entry.Offset = d.pos
		entry.FileIdx = fileIdx
		entry.HashExtra = extra
	}
	return Entry{}, false
}
