package cm

// ssTable holds the stretch/squash lookup tables shared by every context
// slot in a Coder. Built once and passed by pointer (spec.md §9 DESIGN
// NOTES: "pass them by reference, not as globals"), mirroring
// TurboCM.hpp::ss_table's one-shot table.build(0) at init.
//
// squashBase is the standard 33-point logistic curve sample that the PAQ/
// lpaq family of compressors builds stretch/squash from (ss_table.hpp
// itself was not in the retrieved pack, so this follows that well-known
// public-domain construction rather than inventing a new curve).
var squashBase = [33]int32{
	1, 2, 3, 6, 10, 16, 27, 45, 73, 120, 194, 310, 488, 747, 1101, 1546,
	2047, 2549, 2994, 3348, 3607, 3785, 3901, 3975, 4018, 4042, 4055, 4062,
	4066, 4068, 4069, 4070, 4070,
}

type ssTable struct {
	stretchTab [4096]int16
}

// newSSTable builds the stretch table by inverting squash, exactly the
// construction spec.md §4.4's "the table is built once at init" names.
func newSSTable() *ssTable {
	t := &ssTable{}
	pi := 0
	for x := -2047; x <= 2047; x++ {
		v := squash(x)
		for pi <= v {
			t.stretchTab[pi] = int16(x)
			pi++
		}
	}
	for ; pi < 4096; pi++ {
		t.stretchTab[pi] = 2047
	}
	return t
}

// squash maps a stretched value d ∈ [-2048, 2047] to a probability
// p ∈ [0, 4095], interpolating the 33-point logistic sample.
func squash(d int) int {
	if d > 2047 {
		return 4095
	}
	if d < -2047 {
		return 0
	}
	w := d & 127
	idx := (d >> 7) + 16
	return int((squashBase[idx]*int32(128-w) + squashBase[idx+1]*int32(w) + 64) >> 7)
}

// Squash maps a stretched value to a 12-bit probability. Invariant
// (spec.md §4.4 / §8): sq(st(p)) == p for all p in [0, 4095].
func (t *ssTable) Squash(d int) int {
	return squash(d)
}

// Stretch maps a 12-bit probability p ∈ [0, 4095] to its stretched value.
func (t *ssTable) Stretch(p int) int {
	return int(t.stretchTab[p])
}
