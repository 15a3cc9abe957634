package block

import (
	"bytes"
	"fmt"
	"io"

	"github.com/icza/bitio"
	"github.com/mewkiz/pkg/bit"
	"github.com/mewkiz/pkg/errutil"
)

// DetectedBlock is a maximal run of bytes sharing one profile, together
// with the length it occupies on the decoded side (spec.md §3).
//
// Length is stored as a full 64-bit count so a block may reach the
// spec's upper bound of 2^32 bytes (length-1 must still fit in 32 bits on
// the wire, see lengthBytes).
type DetectedBlock struct {
	Profile Profile
	Length  uint64
}

// lengthBytesShift is the bit position of the length-byte-count field
// within a header byte; the low lengthBytesShift bits hold the profile.
const lengthBytesShift = 6

const maxLength = 1 << 32 // spec.md §3: length ∈ [1, 2^32]

// lengthBytes returns the number of little-endian bytes required to store
// n (n is always length-1, so it fits in 32 bits).
func lengthBytes(n uint32) int {
	switch {
	case n&0xFF000000 != 0:
		return 4
	case n&0xFF0000 != 0:
		return 3
	case n&0xFF00 != 0:
		return 2
	default:
		return 1
	}
}

// WriteHeader encodes b's header (profile + length) to w: one header byte
// (profile in the low 6 bits, length-byte-count minus one in the top 2
// bits) followed by 1..4 little-endian bytes encoding length-1.
//
// Bits are composed with a bitio.Writer into a scratch buffer and copied to
// w in one shot, so w is never closed out from under the caller even if it
// happens to implement io.Closer (mirrors enc.go's use of an intermediate
// bytes.Buffer around bitio.Writer for the same reason).
func (b DetectedBlock) WriteHeader(w io.Writer) error {
	if b.Length == 0 && b.Profile != EOF {
		return errutil.Err(fmt.Errorf("block: zero-length non-EOF block"))
	}
	if b.Length > maxLength {
		return errutil.Err(fmt.Errorf("block: length %d exceeds 2^32", b.Length))
	}

	var enc uint32
	nbytes := 1
	if b.Profile != EOF {
		enc = uint32(b.Length - 1)
		nbytes = lengthBytes(enc)
	} else {
		nbytes = 1
	}

	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	hdr := byte(b.Profile) | byte(nbytes-1)<<lengthBytesShift
	if err := bw.WriteByte(hdr); err != nil {
		return errutil.Err(err)
	}
	if b.Profile != EOF {
		for i := 0; i < nbytes; i++ {
			if err := bw.WriteByte(byte(enc >> (8 * uint(i)))); err != nil {
				return errutil.Err(err)
			}
		}
	}
	if err := bw.Close(); err != nil {
		return errutil.Err(err)
	}
	if _, err := io.Copy(w, buf); err != nil {
		return errutil.Err(err)
	}
	return nil
}

// ReadHeader decodes a header from r: the profile/length-byte-count byte
// is split via a bit.Reader field read (mirroring frame.NewHeader's
// ReadFields use for FLAC's bit-packed headers), then the length bytes are
// read as plain little-endian bytes.
func ReadHeader(r io.Reader) (DetectedBlock, error) {
	br := bit.NewReader(r)
	// field 0: length-byte-count minus one (2 bits, high)
	// field 1: profile                    (6 bits, low)
	fields, err := br.ReadFields(2, 6)
	if err != nil {
		return DetectedBlock{}, errutil.Err(err)
	}
	profile := Profile(fields[1])
	if !profile.Valid() {
		return DetectedBlock{}, errutil.Err(fmt.Errorf("block: corrupt header; profile code %d out of range", fields[1]))
	}
	if profile == EOF {
		return DetectedBlock{Profile: EOF, Length: 0}, nil
	}

	nbytes := int(fields[0]) + 1
	lenBuf := make([]byte, nbytes)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return DetectedBlock{}, errutil.Err(err)
	}
	var enc uint32
	for i := nbytes - 1; i >= 0; i-- {
		enc = enc<<8 | uint32(lenBuf[i])
	}
	return DetectedBlock{Profile: profile, Length: uint64(enc) + 1}, nil
}
