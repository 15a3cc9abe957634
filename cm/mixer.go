package cm

// mixerInputs is the number of context streams combined per bit: o1, o2, o4,
// oW, matching TurboCM.hpp's `Mixer<int,4,17,1>` instantiation.
const mixerInputs = 4

// mixerShift is the fixed-point width weights are scaled by before the
// stretched-probability dot product is taken.
const mixerShift = 16

// mixerLearnShift scales the gradient-descent update step. Mixer.hpp itself
// was not among the retrieved files (TurboCM.hpp only shows the disabled
// `mixer.p(...)` call site and the template signature), so the update rule
// below follows the standard logistic-mixer gradient (weight += input *
// error, scaled by a fixed shift) that the `Mixer<int,4,17,1>` shape
// implies — documented in DESIGN.md as grounded on nothing beyond that
// type signature.
const mixerLearnShift = 10

// mixer combines the four context streams' stretched probabilities with a
// learned weighted sum instead of a plain average, reachable at
// CompressLevel > 6 (see the mixer.go entry in DESIGN.md).
type mixer struct {
	weights [mixerInputs]int32
	inputs  [mixerInputs]int32
}

func newMixer() *mixer {
	m := &mixer{}
	for i := range m.weights {
		m.weights[i] = 1 << (mixerShift - 2) // starts equivalent to a plain average
	}
	return m
}

// Mix combines stretched inputs into a 12-bit probability and remembers the
// inputs for the matching Update call.
func (m *mixer) Mix(ss *ssTable, stretched [mixerInputs]int32) int {
	var dot int64
	for i, w := range m.weights {
		dot += int64(w) * int64(stretched[i])
	}
	p := int(dot >> mixerShift)
	if p < -2047 {
		p = -2047
	}
	if p > 2047 {
		p = 2047
	}
	m.inputs = stretched
	return ss.Squash(p)
}

// Update nudges each weight toward reducing prediction error for the
// observed bit, using the previous Mix call's inputs. p is the probability
// that the bit is 0 (the convention rc.EncodeBit/DecodeBit and
// stationaryModel.Update share), so a 0 bit's error is probMax-p and a 1
// bit's error is -p.
func (m *mixer) Update(bit int, p int) {
	err := int32(probMax - p)
	if bit != 0 {
		err = int32(-p)
	}
	for i := range m.weights {
		m.weights[i] += (m.inputs[i] * err) >> mixerLearnShift
	}
}
