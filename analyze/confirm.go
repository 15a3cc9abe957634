package analyze

import "github.com/mewkiz/cmix/dedup"

// Confirm verifies a dedup candidate by re-reading both regions and
// reporting the actual matched length (spec.md §4.2: "confirmation
// (delegated)"). history holds every byte the analyzer has consumed so
// far, in order; pos is len(history) at the moment the candidate was
// returned. A length of 0 means the candidate was a false positive.
//
// newPos+length need not equal pos: a Confirm is free to extend the match
// forward into bytes the analyzer hasn't read yet (the analyzer will pull
// and skip them). LongestCommonPrefixConfirm below never does this — its
// match is purely retroactive, so newPos+length always equals pos exactly
// — but the type accommodates a Confirm backed by a real seekable match
// finder that looks both ways, which is the only part of the original
// match-confirmation design this core leaves unspecified (see DESIGN.md).
type Confirm func(entry dedup.Entry, fileIdx uint32, pos uint64, history []byte) (newPos, length uint64)

// LongestCommonPrefixConfirm returns a Confirm that walks backward from pos
// and the candidate's recorded offset, counting matching bytes, and accepts
// the match only if it reaches at least minLength bytes. This needs no
// lookahead: by the time the fingerprint table reports a candidate, both
// copies of the matching region already sit in history, so confirmation is
// pure backward comparison. This is the concrete byte-comparison routine
// spec.md leaves as an external hook.
func LongestCommonPrefixConfirm(minLength uint64) Confirm {
	return func(entry dedup.Entry, fileIdx uint32, pos uint64, history []byte) (uint64, uint64) {
		if entry.FileIdx != fileIdx || entry.Offset == 0 || entry.Offset > pos {
			return pos, 0
		}
		a, b := pos, entry.Offset
		var n uint64
		for a > 0 && b > 0 && history[a-1] == history[b-1] {
			a--
			b--
			n++
		}
		if n < minLength {
			return pos, 0
		}
		return a, n
	}
}
