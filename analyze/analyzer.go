// Package analyze drives the block detector and the deduplicator together
// over a whole input, coalescing adjacent same-profile blocks and rewriting
// confirmed repeats into Skip blocks.
package analyze

import (
	"io"

	"github.com/mewkiz/cmix/block"
	"github.com/mewkiz/cmix/dedup"
	"github.com/mewkiz/cmix/internal/invariant"
	"github.com/mewkiz/pkg/dbg"
)

func init() {
	dbg.Debug = false
}

// minBinaryLength is the threshold below which a lone Binary block wedged
// between two Text blocks is considered a spurious sliver and merged away.
// Block lengths are never zero at emission, so this rule is currently
// unreachable; it is kept because spec.md §4.3 specifies it explicitly and
// a future relaxation of that invariant should not have to rediscover it.
const minBinaryLength = 1

// Analyzer runs a Detector and a Deduplicator together over one logical
// stream and produces a finalized block list plus a word-frequency
// dictionary gathered from Text blocks.
type Analyzer struct {
	detector *block.Detector
	dedupe   *dedup.Deduplicator
	confirm  Confirm
	fileIdx  uint32

	history []byte
	blocks  []block.DetectedBlock
	dict    *Builder
}

// NewAnalyzer returns an Analyzer reading from r. A nil confirm uses
// LongestCommonPrefixConfirm bounded below by the dedup window size, per
// scenario 4's "bounded below by the window size" testable property.
func NewAnalyzer(r io.Reader, fileIdx uint32, confirm Confirm) *Analyzer {
	if confirm == nil {
		confirm = LongestCommonPrefixConfirm(dedup.WindowSize)
	}
	return &Analyzer{
		detector: block.NewDetector(r),
		dedupe:   dedup.New(),
		confirm:  confirm,
		fileIdx:  fileIdx,
		dict:     NewBuilder(),
	}
}

// Dict returns the word-frequency builder fed by Text blocks during Run.
func (a *Analyzer) Dict() *Builder { return a.dict }

// History returns every byte Run consumed from the input, in stream order.
// The returned slice indexes the same positions the returned block list's
// lengths describe, including the bytes a Skip block's length covers (the
// caller needs those bytes to actually code the block payloads; only the
// wire format omits them for Skip, per spec.md §6).
func (a *Analyzer) History() []byte { return a.history }

// Run analyzes the whole stream and returns the finalized block list.
func (a *Analyzer) Run() ([]block.DetectedBlock, error) {
	for {
		blk, err := a.detector.DetectBlock()
		if err != nil {
			return nil, err
		}
		if blk.Profile == block.EOF {
			break
		}
		final, restarted, err := a.consume(blk)
		if err != nil {
			return nil, err
		}
		if restarted {
			continue
		}
		a.append(final)
	}
	a.dict.Flush()
	return a.blocks, nil
}

// consume drains blk's payload byte by byte through the deduplicator. If a
// confirmed match is found partway through, it rewrites the tail of the
// block list into a Skip block and reports restarted=true: the caller must
// not also append blk, since consume already mutated the block list itself.
// The rest of blk's bytes stay in the detector and are classified afresh by
// the next DetectBlock call, except for any bytes a forward-extending
// Confirm pulled in the fast-forward below.
func (a *Analyzer) consume(blk block.DetectedBlock) (final block.DetectedBlock, restarted bool, err error) {
	final = blk
	for i := uint64(0); i < blk.Length; i++ {
		c, ok := a.detector.PopByte()
		if !ok {
			final.Length = i
			return final, false, nil
		}
		a.history = append(a.history, c)
		if blk.Profile == block.Text {
			a.dict.AddByte(c)
		}

		entry, found := a.dedupe.AddByte(c, a.fileIdx)
		if !found {
			continue
		}
		pos := uint64(len(a.history))
		newPos, length := a.confirm(entry, a.fileIdx, pos, a.history)
		if length == 0 {
			continue
		}
		invariant.Check(newPos <= pos, "dedup confirm returned newPos %d > pos %d", newPos, pos)

		rawDelta := pos - newPos
		seenInBlock := i + 1
		var prefixLen uint64
		var delta uint64
		if rawDelta > seenInBlock {
			delta = rawDelta - seenInBlock
		} else {
			// The match starts inside the still-unappended current block
			// (newPos is at or after this block's first byte): nothing needs
			// reclaiming from already-committed blocks, but the bytes this
			// block consumed before the match's start are real, classified
			// bytes that still need a block of their own, or they would be
			// silently dropped from the block list when this call returns
			// restarted=true and discards final.
			prefixLen = seenInBlock - rawDelta
		}
		invariant.Check(delta <= length, "dedup delta %d exceeds matched length %d", delta, length)

		dbg.Println("dedup match confirmed at pos", pos, "- rewriting", delta, "trailing bytes into a Skip block of length", length)
		a.reclaim(delta)
		if prefixLen > 0 {
			a.append(block.DetectedBlock{Profile: blk.Profile, Length: prefixLen})
		}
		a.blocks = append(a.blocks, block.DetectedBlock{Profile: block.Skip, Length: length})

		// A Confirm that only looks backward (our default) always has
		// matchEnd == pos already, so this never pulls anything; it exists
		// for a Confirm that extends the match forward into bytes the
		// analyzer hasn't read yet, which must still be consumed (and fed
		// to the deduplicator) rather than reclassified.
		matchEnd := newPos + length
		for uint64(len(a.history)) < matchEnd {
			fc, fok := a.detector.PopByte()
			invariant.Check(fok, "stream ended while fast-forwarding a confirmed dedup match")
			a.history = append(a.history, fc)
			a.dedupe.AddByte(fc, a.fileIdx)
		}
		return block.DetectedBlock{}, true, nil
	}
	return final, false, nil
}

// reclaim walks backward over the already-emitted block list, shrinking or
// removing trailing blocks until delta bytes have been given back to the
// pending Skip block.
func (a *Analyzer) reclaim(delta uint64) {
	for delta > 0 {
		invariant.Check(len(a.blocks) > 0, "dedup rewrite needs %d more bytes but the block list is empty", delta)
		tail := &a.blocks[len(a.blocks)-1]
		sub := delta
		if tail.Length < sub {
			sub = tail.Length
		}
		if tail.Length-sub > 0 {
			tail.Length -= sub
		} else {
			a.blocks = a.blocks[:len(a.blocks)-1]
		}
		delta -= sub
	}
}

// append adds blk to the block list under the two coalescing rules from
// spec.md §4.3: extend a same-profile tail, or fold a Binary sliver shorter
// than minBinaryLength between two Text blocks into one Text block.
func (a *Analyzer) append(blk block.DetectedBlock) {
	if blk.Length == 0 {
		return
	}
	n := len(a.blocks)
	if n > 0 && a.blocks[n-1].Profile == blk.Profile {
		a.blocks[n-1].Length += blk.Length
		return
	}
	if blk.Profile == block.Text && n >= 2 {
		b1, b2 := a.blocks[n-1], a.blocks[n-2]
		if b1.Profile == block.Binary && b2.Profile == block.Text && b1.Length < minBinaryLength {
			dbg.Println("folding spurious Binary sliver of length", b1.Length, "between two Text blocks")
			a.blocks[n-2].Length += b1.Length + blk.Length
			a.blocks = a.blocks[:n-1]
			return
		}
	}
	a.blocks = append(a.blocks, blk)
}
