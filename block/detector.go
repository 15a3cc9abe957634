package block

import (
	"io"

	"github.com/mewkiz/cmix/internal/lookahead"
	"github.com/mewkiz/pkg/dbg"
)

// defaultLookaheadCapacity bounds how far ahead the detector can scan when
// looking for a block boundary (including a full RIFF/WAVE header, which
// may run well past the 128-byte text-run threshold).
const defaultLookaheadCapacity = 1 << 16

// textRunThreshold is the minimum length a run of printable, valid-UTF-8
// bytes must reach before the detector will classify it as Text rather than
// folding it into a surrounding Binary block (spec.md §4.1).
const textRunThreshold = 128

// forbidden holds the byte values that immediately disqualify a run from
// being Text, even though they are not invalid UTF-8 on their own: most of
// the C0 control range, excluding the common text whitespace controls
// (TAB=9, LF=10, CR=13) and byte 18, which the original classifier also
// leaves out of the forbidden set.
var forbidden = func() [256]bool {
	var f [256]bool
	set := func(lo, hi int) {
		for i := lo; i <= hi; i++ {
			f[i] = true
		}
	}
	set(0, 8)
	set(11, 12)
	set(14, 17)
	set(19, 31)
	return f
}()

// Detector classifies a byte stream into DetectedBlock runs. It owns a
// bounded lookahead buffer over the encode-side input and a small amount of
// decode-side bookkeeping used by Put/Get.
type Detector struct {
	la      *lookahead.Buffer
	lastWord uint32 // rolling 4-byte window, big-endian, for RIFF sniffing
	pending  []DetectedBlock

	// Decode-side replay state (see Put/Get).
	curProfile Profile
	curLeft    uint64
}

// NewDetector returns a Detector that classifies bytes pulled from r.
func NewDetector(r io.Reader) *Detector {
	return &Detector{la: lookahead.New(r, defaultLookaheadCapacity)}
}

// DetectBlock classifies the next run of bytes from the underlying reader,
// returning its profile and length. The classified bytes stay in the
// lookahead buffer; the caller drains them with PopByte. It returns an EOF
// block once the reader is exhausted.
//
// The algorithm mirrors Detector::detectBlock: scan forward accumulating a
// candidate Text run; a forbidden byte, invalid UTF-8 byte, or the end of
// buffered input interrupts the run. A run reaching textRunThreshold ends
// the block as Text (if no Binary bytes precede it) or ends the preceding
// Binary block (if some do, so the long Text run can be detected fresh on
// the next call). A rolling 4-byte window additionally watches for a RIFF
// magic word at every position, attempting a WAVE header parse as soon as
// one is seen.
func (d *Detector) DetectBlock() (DetectedBlock, error) {
	if len(d.pending) > 0 {
		blk := d.pending[0]
		d.pending = d.pending[1:]
		return blk, nil
	}

	if err := d.la.Fill(); err != nil && err != io.EOF {
		return DetectedBlock{}, err
	}
	n := d.la.Len()
	if n == 0 {
		return DetectedBlock{Profile: EOF}, nil
	}

	binaryLen := 0
	for binaryLen < n {
		var dec utf8Decoder
		textLen := 0
		for binaryLen+textLen < n {
			pos := binaryLen + textLen
			if d.lastWord == riffMagic {
				if wave, headerEnd, ok := tryParseRIFF(d.la, pos); ok {
					dbg.Println("RIFF/WAVE header matched at offset", pos, "- Wave16 payload length:", wave.Length)
					d.pending = append(d.pending, wave)
					return DetectedBlock{Profile: Binary, Length: uint64(headerEnd)}, nil
				}
			}
			c := d.la.At(pos)
			d.lastWord = d.lastWord<<8 | uint32(c)
			if dec.update(c) || forbidden[c] {
				break
			}
			textLen++
		}
		if textLen >= textRunThreshold {
			if binaryLen == 0 {
				dbg.Println("Text run detected, length:", textLen)
				return DetectedBlock{Profile: Text, Length: uint64(textLen)}, nil
			}
			break
		}
		binaryLen += textLen
		if binaryLen >= n {
			break
		}
		binaryLen++ // the byte that interrupted the run is itself Binary
	}
	dbg.Println("Binary run detected, length:", binaryLen)
	return DetectedBlock{Profile: Binary, Length: uint64(binaryLen)}, nil
}

// consume discards n already-classified bytes from the lookahead buffer.
func (d *Detector) consume(n int) {
	d.la.Discard(n)
}

// PopByte returns the next raw byte of the block currently being classified,
// without reclassifying it. Callers (the analyzer) use this to drain a
// block's payload once DetectBlock has told them its length.
func (d *Detector) PopByte() (byte, bool) {
	return d.la.Pop()
}

// Put hands the detector a block whose header ReadHeader has already
// decoded during decompression, so the detector can track which profile and
// how many bytes remain in the block currently being decoded. Subsequent Get
// calls report that profile until the block's length is exhausted.
//
// This is a thin decode-side companion to DetectBlock's encode-side
// classification: on decode the byte stream has already had its framing
// stripped by ReadHeader, so there is no reclassification to do, only
// bookkeeping (spec.md §4.1).
func (d *Detector) Put(blk DetectedBlock) {
	d.curProfile = blk.Profile
	d.curLeft = blk.Length
}

// Get reports the profile of the block a just-decoded payload byte belongs
// to, and decrements the remaining count for that block. It returns false
// once the current block (set by the most recent Put) is exhausted.
func (d *Detector) Get() (Profile, bool) {
	if d.curLeft == 0 {
		return 0, false
	}
	d.curLeft--
	return d.curProfile, true
}
