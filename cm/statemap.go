package cm

// bitHistory approximates a (zero-count, one-count) pair for a context
// slot's recent bit history, the "approximation of a (bit0-count,
// bit1-count) history" spec.md §3's Context-Model State entry names.
type bitHistory struct{ n0, n1 uint8 }

// boundTable caps how large the opposite-bit count may grow relative to the
// matching-bit count, the discount rule that keeps a bit-history automaton
// representable in a single byte instead of growing unboundedly. This is
// the standard construction PAQ-family state tables use (TurboCM.hpp's own
// builder, NSStateMap in StateMap.hpp, was not among the retrieved files,
// so this table is rebuilt from the counting scheme TurboCM.hpp describes
// rather than copied).
var boundTable = [41]uint8{
	20, 48, 15, 8, 6, 5, 4, 4, 3, 3,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0,
}

func clampCount(n int) int {
	if n > 40 {
		return 40
	}
	return n
}

func (h bitHistory) next(bit int) bitHistory {
	n0, n1 := int(h.n0), int(h.n1)
	if bit == 0 {
		n0 = clampCount(n0 + 1)
		if lim := int(boundTable[clampCount(n0)]); n1 > lim {
			n1 = lim
		}
	} else {
		n1 = clampCount(n1 + 1)
		if lim := int(boundTable[clampCount(n1)]); n0 > lim {
			n0 = lim
		}
	}
	return bitHistory{uint8(n0), uint8(n1)}
}

// numStates is the width of the shared state-transition table: spec.md §3
// pins context-model state indices to [0, 255].
const numStates = 256

// stateTable is the shared 256×2 state-transition table every context slot
// in a Coder indexes into (spec.md §4.4: "each state byte is replaced by
// state_trans[state][bit]"). Built once via buildStateTable and shared
// read-only across Coder instances, per spec.md §5.
type stateTable [numStates][2]uint8

// buildStateTable breadth-first-enumerates bit histories reachable from the
// empty history (0,0), assigning each a state index in visitation order.
// Histories discovered once the table is full fold onto the state that
// discovered them, approximating saturation rather than growing further —
// grounded on TurboCM.hpp::init's NSStateMap<12> construction, rebuilt here
// since NSStateMap's own source (StateMap.hpp) was not retrieved.
func buildStateTable() *stateTable {
	var t stateTable
	index := map[bitHistory]int{}
	var order []bitHistory

	start := bitHistory{0, 0}
	index[start] = 0
	order = append(order, start)

	for i := 0; i < len(order) && i < numStates; i++ {
		h := order[i]
		for bit := 0; bit < 2; bit++ {
			nh := h.next(bit)
			idx, ok := index[nh]
			if !ok {
				if len(order) < numStates {
					idx = len(order)
					index[nh] = idx
					order = append(order, nh)
				} else {
					idx = i
				}
			}
			t[i][bit] = uint8(idx)
		}
	}
	for i := len(order); i < numStates; i++ {
		t[i][0] = uint8(i)
		t[i][1] = uint8(i)
	}
	return &t
}

// Next returns the successor state after observing bit in state s.
func (t *stateTable) Next(s uint8, bit int) uint8 {
	return t[s][bit]
}

// stationaryModel is a 12-bit probability that adapts toward each observed
// bit at a caller-supplied rate (spec.md §3's Stationary Probability
// Model). Grounded on TurboCM.hpp::fastBitModel: p ∈ [1, 4095],
// p ← p + (((1−bit)<<shift − p) >> rate), since p is the probability of a
// 0 bit (see Update).
type stationaryModel struct {
	p int32
}

const probShift = 12
const probMax = 1 << probShift // 4096

// initStationaryModel returns a model seeded at p (clamped into [1, 4095]).
// TurboCM.hpp seeds its probs table from a corpus-trained initial_probs
// array; that array indexes its own state enumeration, which this package's
// buildStateTable does not reproduce bit-for-bit (the real builder,
// StateMap.hpp, was not retrieved), so seeding at a neutral midpoint instead
// of a mismatched copy of those constants is the honest choice, and lets
// learn_rate-driven adaptation establish the true distribution as the model
// codes bytes.
func initStationaryModel(p int32) *stationaryModel {
	if p < 1 {
		p = 1
	}
	if p > probMax-1 {
		p = probMax - 1
	}
	return &stationaryModel{p: p}
}

// P returns the current 12-bit probability.
func (m *stationaryModel) P() uint16 { return uint16(m.p) }

// Update moves p toward bit's target at the given learn rate. p is always
// the probability that the next bit is 0 (the convention rc.EncodeBit and
// rc.DecodeBit assume), so a bit==0 observation pushes p toward probMax and
// a bit==1 observation pushes it toward 0.
func (m *stationaryModel) Update(bit int, rate uint32) {
	target := int32(probMax)
	if bit != 0 {
		target = 0
	}
	m.p += (target - m.p) >> rate
	if m.p < 1 {
		m.p = 1
	}
	if m.p > probMax-1 {
		m.p = probMax - 1
	}
}
