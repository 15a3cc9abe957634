// Package rc implements the binary arithmetic coder that drives the final
// entropy stage of a context-mixing block: a 32-bit carry-propagating range
// coder operating on 12-bit probabilities.
package rc

import (
	"io"

	"github.com/mewkiz/pkg/errutil"
)

// ProbBits is the fixed-point width of probabilities passed to EncodeBit and
// DecodeBit: p12 ranges over [0, 1<<ProbBits).
const ProbBits = 12

// HalfProb is p12 = ½, used for the raw end-of-block flag bit.
const HalfProb = 1 << (ProbBits - 1)

const topValue = 1 << 24

// Encoder writes a sequence of probability-weighted bits to an underlying
// byte stream. Low/range state is 32-bit per spec.md §4.5; low is carried in
// a 64-bit register so a carry out of bit 32 is simply inspected before the
// state is truncated back to 32 bits in shiftLow.
type Encoder struct {
	w         io.Writer
	low       uint64
	rng       uint32
	cache     byte
	cacheSize int64
}

// NewEncoder returns an Encoder writing to w. Initial state is low=0,
// range=2³²−1 exactly as spec.md §4.5 specifies.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:         w,
		low:       0,
		rng:       0xFFFFFFFF,
		cache:     0xFF,
		cacheSize: 1,
	}
}

// EncodeBit codes bit (0 or 1) under probability p12 that bit == 0, out of
// 1<<ProbBits.
func (e *Encoder) EncodeBit(bit int, p12 uint16) error {
	bound := (e.rng >> ProbBits) * uint32(p12)
	if bit == 0 {
		e.rng = bound
	} else {
		e.low += uint64(bound)
		e.rng -= bound
	}
	for e.rng < topValue {
		if err := e.shiftLow(); err != nil {
			return err
		}
		e.rng <<= 8
	}
	return nil
}

// EncodeRawBit codes bit at p=½, used for the end-of-block flag.
func (e *Encoder) EncodeRawBit(bit int) error {
	return e.EncodeBit(bit, HalfProb)
}

func (e *Encoder) shiftLow() error {
	if uint32(e.low>>32) != 0 || e.low < 0xFF000000 {
		carry := byte(e.low >> 32)
		if e.cacheSize > 0 {
			if _, err := e.w.Write([]byte{e.cache + carry}); err != nil {
				return errutil.Err(err)
			}
			for ; e.cacheSize > 1; e.cacheSize-- {
				if _, err := e.w.Write([]byte{0xFF + carry}); err != nil {
					return errutil.Err(err)
				}
			}
		}
		e.cache = byte(e.low >> 24)
		e.cacheSize = 0
	}
	e.cacheSize++
	e.low = (e.low << 8) & 0xFFFFFFFF
	return nil
}

// Flush emits enough bytes to uniquely determine the final low value on the
// decoder side. Must be called exactly once, after the last EncodeBit.
func (e *Encoder) Flush() error {
	for i := 0; i < 5; i++ {
		if err := e.shiftLow(); err != nil {
			return err
		}
	}
	return nil
}

// Decoder reads the inverse of Encoder's bitstream. Must be driven with
// EncodeBit/EncodeRawBit calls in exactly the same order as the encoder used
// (spec.md §4.5 invariant).
type Decoder struct {
	r     io.ByteReader
	code  uint32
	rng   uint32
	atEOF bool
}

// NewDecoder returns a Decoder reading from r. It primes its 32-bit code
// register with the first 5 bytes the Encoder flushed (the leading byte is
// always the initial cache value and is discarded, matching Flush's 5-byte
// tail).
func NewDecoder(r io.ByteReader) (*Decoder, error) {
	d := &Decoder{r: r, rng: 0xFFFFFFFF}
	for i := 0; i < 5; i++ {
		b, err := d.readByte()
		if err != nil {
			return nil, err
		}
		d.code = d.code<<8 | uint32(b)
	}
	return d, nil
}

// readByte returns 0 once the underlying reader is exhausted rather than
// erroring: per spec.md §4.7, truncation is detected by the caller noticing
// reads past the end-of-block flag, not by this layer.
func (d *Decoder) readByte() (byte, error) {
	if d.atEOF {
		return 0, nil
	}
	b, err := d.r.ReadByte()
	if err == io.EOF {
		d.atEOF = true
		return 0, nil
	}
	if err != nil {
		return 0, errutil.Err(err)
	}
	return b, nil
}

// DecodeBit decodes one bit under probability p12 that the bit is 0.
func (d *Decoder) DecodeBit(p12 uint16) (int, error) {
	bound := (d.rng >> ProbBits) * uint32(p12)
	var bit int
	if d.code < bound {
		d.rng = bound
		bit = 0
	} else {
		d.code -= bound
		d.rng -= bound
		bit = 1
	}
	for d.rng < topValue {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		d.code = d.code<<8 | uint32(b)
		d.rng <<= 8
	}
	return bit, nil
}

// DecodeRawBit decodes one bit at p=½, the inverse of EncodeRawBit.
func (d *Decoder) DecodeRawBit() (int, error) {
	return d.DecodeBit(HalfProb)
}
