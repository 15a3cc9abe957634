// Package cmix implements the context-mixing compressor: a Block Detector
// and Deduplicator classify an input into profile-tagged runs, and a
// per-block context-mixing coder (package cm) drives a binary range coder
// (package rc) over each run's bytes.
package cmix

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/mewkiz/cmix/analyze"
	"github.com/mewkiz/cmix/block"
	"github.com/mewkiz/cmix/cm"
	"github.com/mewkiz/cmix/internal/invariant"
	"github.com/mewkiz/cmix/rc"
)

// forcedBlocks builds the single-block list a ProfileOverride produces: the
// Detector and Deduplicator never run, so the whole input is one block of
// the forced profile with no Skip rewriting.
func forcedBlocks(r io.Reader, override Override) (blocks []block.DetectedBlock, history []byte, err error) {
	history, err = io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	if len(history) == 0 {
		return nil, history, nil
	}
	profile := block.Binary
	if override == ForceText {
		profile = block.Text
	}
	return []block.DetectedBlock{{Profile: profile, Length: uint64(len(history))}}, history, nil
}

// Compress reads the whole of r, classifies it into profile-tagged blocks,
// and writes the container described by spec.md §6 to w: one
// (header, payload) pair per block followed by a trailing EOF header.
// fileIdx names r for the deduplicator's per-file provenance bookkeeping
// (spec.md §4.2); callers compressing a single file may pass 0.
func Compress(w io.Writer, r io.Reader, cfg Config, fileIdx uint32) (err error) {
	defer func() { err = wrapInvariantViolation(err) }()
	defer invariant.Recover(&err)

	var blocks []block.DetectedBlock
	var history []byte
	if cfg.ProfileOverride != Auto {
		blocks, history, err = forcedBlocks(r, cfg.ProfileOverride)
	} else {
		a := analyze.NewAnalyzer(r, fileIdx, nil)
		blocks, err = a.Run()
		history = a.History()
	}
	if err != nil {
		return errors.WithStack(err)
	}

	shared := cm.NewSharedTables()
	pos := uint64(0)
	for _, blk := range blocks {
		if err := blk.WriteHeader(w); err != nil {
			return errors.WithStack(err)
		}
		if blk.Profile == block.Skip {
			pos += blk.Length
			continue
		}
		invariant.Check(pos+blk.Length <= uint64(len(history)), "block at %d needs %d bytes but history only has %d", pos, blk.Length, len(history))
		if err := compressBlock(w, shared, blk, history[pos:pos+blk.Length], cfg); err != nil {
			return errors.WithStack(err)
		}
		pos += blk.Length
	}
	return block.DetectedBlock{Profile: block.EOF}.WriteHeader(w)
}

// compressBlock drives a fresh cm.Coder over payload through its own
// rc.Encoder, terminating with the EOFChar sentinel / raw flag bit protocol
// spec.md §4.4 describes rather than relying on the header's length field,
// so the payload is self-delimiting exactly as the Coder's own contract
// promises.
func compressBlock(w io.Writer, shared *cm.SharedTables, blk block.DetectedBlock, payload []byte, cfg Config) error {
	enc := rc.NewEncoder(w)
	coder := cm.NewCoder(shared, blk.Profile, cfg.MemLevel, cfg.CompressLevel)
	for _, c := range payload {
		if err := coder.EncodeByte(enc, c); err != nil {
			return err
		}
		if c == cm.EOFChar {
			if err := coder.EncodeEOFFlag(enc, true); err != nil {
				return err
			}
		}
	}
	if err := coder.EncodeByte(enc, cm.EOFChar); err != nil {
		return err
	}
	if err := coder.EncodeEOFFlag(enc, false); err != nil {
		return err
	}
	return enc.Flush()
}

// Decompress reads a container written by Compress from r and writes the
// reconstructed bytes to w. Skip blocks cannot be reconstructed (see
// ErrSkipUnsupported); any other profile is decoded through a cm.Coder /
// rc.Decoder pair driven by the same sentinel protocol Compress used.
func Decompress(w io.Writer, r io.Reader, cfg Config) (err error) {
	defer func() { err = wrapInvariantViolation(err) }()
	defer invariant.Recover(&err)

	br := bufio.NewReader(r)
	shared := cm.NewSharedTables()
	for {
		hdr, err := block.ReadHeader(br)
		if err != nil {
			return classifyHeaderError(err)
		}
		if hdr.Profile == block.EOF {
			return nil
		}
		if hdr.Profile == block.Skip {
			return errors.WithStack(ErrSkipUnsupported)
		}
		n, err := decompressBlock(w, br, shared, hdr, cfg)
		if err != nil {
			return errors.WithStack(err)
		}
		invariant.Check(n == hdr.Length, "decoded %d bytes for a block whose header declared %d", n, hdr.Length)
	}
}

// decompressBlock decodes one block's payload and writes the reconstructed
// bytes to w, returning how many bytes it wrote.
func decompressBlock(w io.Writer, br *bufio.Reader, shared *cm.SharedTables, hdr block.DetectedBlock, cfg Config) (uint64, error) {
	dec, err := rc.NewDecoder(br)
	if err != nil {
		return 0, err
	}
	coder := cm.NewCoder(shared, hdr.Profile, cfg.MemLevel, cfg.CompressLevel)
	var n uint64
	for {
		c, err := coder.DecodeByte(dec)
		if err != nil {
			return n, err
		}
		if c == cm.EOFChar {
			real, err := coder.DecodeEOFFlag(dec)
			if err != nil {
				return n, err
			}
			if !real {
				return n, nil
			}
		}
		if _, err := w.Write([]byte{c}); err != nil {
			return n, errors.WithStack(err)
		}
		n++
	}
}

// classifyHeaderError maps a block.ReadHeader failure onto the two sentinel
// errors spec.md §7 names for this failure mode. block.ReadHeader wraps its
// own errors through errutil before they reach here, which does not
// preserve enough structure to distinguish the two cases by type, so the
// one case block.go's own wording names explicitly ("corrupt header") is
// matched by substring; everything else — a short read, an io.EOF where a
// header was expected — is a truncation.
func classifyHeaderError(err error) error {
	if strings.Contains(err.Error(), "corrupt header") {
		return errors.Wrap(ErrCorruptHeader, err.Error())
	}
	return errors.Wrap(ErrTruncatedInput, err.Error())
}
