// Package cm implements the context-mixing coder: per-block prediction from
// four context streams (order-1, hashed order-2, hashed order-4, word-hash),
// combined into a 12-bit probability and driven through the arithmetic
// coder in package rc.
package cm

import (
	"github.com/mewkiz/cmix/block"
	"github.com/mewkiz/cmix/internal/invariant"
	"github.com/mewkiz/cmix/rc"
)

// EOFChar is the sentinel byte value marking an end-of-block candidate,
// disambiguated by a following raw arithmetic-coded flag bit (spec.md §4.4).
const EOFChar = 0xE9

const (
	kib = 1 << 10
	mib = 1 << 20
)

// baseMemLevel is the hash table size at MemLevel 0: 2 MiB of single-byte
// state slots, per spec.md §5's "2 MiB × 2^memLevel" sizing rule.
const baseMemLevel = 2 * mib

// Coder holds all per-instance model state for one block's worth of bytes:
// the order-1 table, the shared o2/o4/oW hash table, the word model, and
// (at higher compress levels) a mixer. ss and states are built once and
// shared read-only across Coder instances (spec.md §5); everything else is
// owned exclusively by this Coder.
type Coder struct {
	ss     *ssTable
	states *stateTable

	order1    []uint8
	hashTable []uint8
	hashMask  uint32

	probs [mixerInputs][numStates]stationaryModel

	word    *wordModel
	useWord bool

	owhash    uint32
	byteCount uint64

	mixer    *mixer
	useMixer bool
}

// SharedTables bundles the two read-only tables every Coder in a process can
// share, built once via NewSharedTables.
type SharedTables struct {
	ss     *ssTable
	states *stateTable
}

// NewSharedTables builds the stretch/squash and state-transition tables
// once. Pass the result to every NewCoder call in a process.
func NewSharedTables() *SharedTables {
	return &SharedTables{ss: newSSTable(), states: buildStateTable()}
}

// NewCoder returns a Coder for one block of the given profile. memLevel
// scales the shared hash table per spec.md §5; compressLevel > 6 enables
// the logistic mixer in place of the plain stretch-average (see the
// mixer.go entry in DESIGN.md).
func NewCoder(shared *SharedTables, profile block.Profile, memLevel, compressLevel int) *Coder {
	hashSize := uint32(baseMemLevel) << uint(memLevel)
	hashMask := hashSize - 1

	c := &Coder{
		ss:        shared.ss,
		states:    shared.states,
		order1:    make([]uint8, order1Size),
		hashTable: make([]uint8, hashSize),
		hashMask:  hashMask,
		word:      newWordModel(),
		useWord:   profile == block.Text,
		useMixer:  compressLevel > 6,
	}
	if c.useMixer {
		c.mixer = newMixer()
	}
	for i := range c.probs {
		for s := range c.probs[i] {
			c.probs[i][s] = *initStationaryModel(probMax / 2)
		}
	}
	return c
}

func (c *Coder) learnRate() uint32 {
	lr := uint32(4)
	if c.byteCount > kib {
		lr++
	}
	if c.byteCount > 16*kib {
		lr++
	}
	if c.byteCount > 256*kib {
		lr++
	}
	if c.byteCount > mib {
		lr++
	}
	return lr
}

// slots returns the four context streams' state-byte pointers for the
// current bit position (ctx), matching TurboCM.hpp::processByte's
// s0..s3 computation.
func (c *Coder) slots(addrs contextAddresses, ctx uint32) [mixerInputs]*uint8 {
	return [mixerInputs]*uint8{
		&c.order1[addrs.o1Base+ctx],
		&c.hashTable[(addrs.o2h^ctx)&c.hashMask],
		&c.hashTable[(addrs.o4h^ctx)&c.hashMask],
		&c.hashTable[(addrs.wh^ctx)&c.hashMask],
	}
}

// predict combines the four streams' stationary probabilities into a single
// 12-bit probability, via the mixer at higher compress levels or a plain
// stretch-average otherwise (spec.md §4.4's literal formula).
func (c *Coder) predict(states [mixerInputs]*uint8) int {
	var stretched [mixerInputs]int32
	for i, s := range states {
		stretched[i] = int32(c.ss.Stretch(int(c.probs[i][*s].P())))
	}
	if c.useMixer {
		return c.mixer.Mix(c.ss, stretched)
	}
	sum := stretched[0] + stretched[1] + stretched[2] + stretched[3]
	return c.ss.Squash(int(sum / mixerInputs))
}

func (c *Coder) learn(states [mixerInputs]*uint8, bit int, p int) {
	rate := c.learnRate()
	for i, s := range states {
		c.probs[i][*s].Update(bit, rate)
		*s = c.states.Next(*s, bit)
	}
	if c.useMixer {
		c.mixer.Update(bit, p)
	}
}

// advance folds one more raw byte into the rolling 4-byte owhash and the
// word model, and bumps the learn-rate byte counter. Called once per coded
// byte, sentinel bytes included, right after its 8 bits are processed; the
// flag bit that follows a sentinel does not call it.
func (c *Coder) advance(b byte) {
	c.owhash = c.owhash<<8 | uint32(b)
	if c.useWord {
		c.word.UpdateUTF(b)
	}
	c.byteCount++
}

func (c *Coder) wordHash() uint32 {
	if c.useWord {
		return c.word.Hash()
	}
	return 0
}

// EncodeByte codes one byte through the arithmetic coder, MSB-first, per
// spec.md §4.4's 8-bit tree walk, then updates every model touched.
func (c *Coder) EncodeByte(enc *rc.Encoder, b byte) error {
	addrs := computeAddresses(c.owhash, c.wordHash(), c.useWord, c.hashMask)
	ctx := uint32(1)
	for i := 7; i >= 0; i-- {
		bit := int((b >> uint(i)) & 1)
		states := c.slots(addrs, ctx)
		p := c.predict(states)
		if err := enc.EncodeBit(bit, uint16(p)); err != nil {
			return err
		}
		c.learn(states, bit, p)
		ctx = ctx*2 + uint32(bit)
	}
	invariant.Check(ctx^256 == uint32(b), "coder reconstructed ctx %d, want byte %d", ctx^256, b)
	c.advance(b)
	return nil
}

// DecodeByte decodes one byte the same way EncodeByte encoded it.
func (c *Coder) DecodeByte(dec *rc.Decoder) (byte, error) {
	addrs := computeAddresses(c.owhash, c.wordHash(), c.useWord, c.hashMask)
	ctx := uint32(1)
	for i := 0; i < 8; i++ {
		states := c.slots(addrs, ctx)
		p := c.predict(states)
		bit, err := dec.DecodeBit(uint16(p))
		if err != nil {
			return 0, err
		}
		c.learn(states, bit, p)
		ctx = ctx*2 + uint32(bit)
	}
	b := byte(ctx ^ 256)
	c.advance(b)
	return b, nil
}

// EncodeEOFFlag codes the raw p=½ flag bit following an EOFChar sentinel:
// real==false means "end of block", real==true means "sentinel was real
// data, keep going" (spec.md §4.4).
func (c *Coder) EncodeEOFFlag(enc *rc.Encoder, real bool) error {
	bit := 0
	if !real {
		bit = 1
	}
	return enc.EncodeRawBit(bit)
}

// DecodeEOFFlag is EncodeEOFFlag's inverse.
func (c *Coder) DecodeEOFFlag(dec *rc.Decoder) (real bool, err error) {
	bit, err := dec.DecodeRawBit()
	if err != nil {
		return false, err
	}
	return bit == 0, nil
}
