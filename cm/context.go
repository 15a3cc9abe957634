package cm

// contextAddresses holds the four context-stream base addresses computed
// once per byte, before the 8-bit tree walk XORs in the per-bit tree index
// `ctx` (spec.md §4.4: "Before processing the byte, precompute four context
// addresses"). Grounded on TurboCM.hpp::processByte's p0/o2h/o4h expressions.
type contextAddresses struct {
	o1Base uint32 // order1[o1Base | ctx]: previous byte, direct index
	o2h    uint32 // hashTable[o2h ^ ctx]: hashed (previous 2 bytes)
	o4h    uint32 // hashed previous 4 bytes (owhash)
	wh     uint32 // hashed word-model state
}

// order1Size is order1's total element count: 256 possible previous bytes ×
// 256 possible tree-index values.
const order1Size = 256 * 256

// order4Multiplier is TurboCM.hpp::processByte's o4h multiplicative hash
// constant, carried over unchanged.
const order4Multiplier = 798765431

// order2Multiplier is the analogous constant for the order-2 (previous two
// bytes) hash, matching `((owhash & 0xFFFF) * 256)` in TurboCM.hpp.
const order2Multiplier = 256

// computeAddresses derives the four base addresses from the rolling 4-byte
// owhash and the word model's current hash. useWord selects whether wh
// tracks the live word hash (Text blocks) or a fixed address representing
// "no word in progress" (Binary/Wave16 blocks disable the word-hash
// context per spec.md §4.4's parenthetical).
func computeAddresses(owhash, wordHash uint32, useWord bool, hashMask uint32) contextAddresses {
	p0 := owhash & 0xFF
	a := contextAddresses{
		o1Base: p0 << 8,
		o2h:    ((owhash & 0xFFFF) * order2Multiplier) & hashMask,
		o4h:    (owhash * order4Multiplier) & hashMask,
	}
	if useWord {
		a.wh = wordHash & hashMask
	} else {
		a.wh = 0
	}
	return a
}
