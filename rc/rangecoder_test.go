package rc

import (
	"bufio"
	"bytes"
	"testing"
)

// TestRoundTripRepresentativeProbabilities checks that a long sequence of
// bits, coded at a handful of representative probabilities, decodes back
// exactly.
func TestRoundTripRepresentativeProbabilities(t *testing.T) {
	probs := []uint16{1, 1, 2048, 4094, 4095, 100, 3000}
	bits := []int{0, 1, 0, 1, 0, 0, 1, 1, 0, 1}

	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	var wantBits, wantProbs []int
	for i := 0; i < 500; i++ {
		p := probs[i%len(probs)]
		b := bits[i%len(bits)]
		if err := enc.EncodeBit(b, p); err != nil {
			t.Fatalf("EncodeBit: %v", err)
		}
		wantBits = append(wantBits, b)
		wantProbs = append(wantProbs, int(p))
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	dec, err := NewDecoder(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	for i, want := range wantBits {
		got, err := dec.DecodeBit(uint16(wantProbs[i]))
		if err != nil {
			t.Fatalf("DecodeBit %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("bit %d = %d, want %d", i, got, want)
		}
	}
}

// TestRawBitRoundTrip exercises the p=½ path used for the end-of-block flag.
func TestRawBitRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	seq := []int{0, 0, 1, 0, 1, 1, 1, 0}
	for _, b := range seq {
		if err := enc.EncodeRawBit(b); err != nil {
			t.Fatalf("EncodeRawBit: %v", err)
		}
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	dec, err := NewDecoder(bufio.NewReader(&buf))
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	for i, want := range seq {
		got, err := dec.DecodeRawBit()
		if err != nil {
			t.Fatalf("DecodeRawBit %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("bit %d = %d, want %d", i, got, want)
		}
	}
}

// TestTruncatedStreamReadsZero confirms spec.md §4.7's failure model: reading
// past the end of the encoded stream yields zero bytes rather than an error,
// so truncation is only detectable by the caller via the EOF-flag protocol.
func TestTruncatedStreamReadsZero(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i := 0; i < 20; i++ {
		if err := enc.EncodeBit(i%2, 2048); err != nil {
			t.Fatalf("EncodeBit: %v", err)
		}
	}
	if err := enc.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	truncated := buf.Bytes()[:1]
	dec, err := NewDecoder(bufio.NewReader(bytes.NewReader(truncated)))
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	for i := 0; i < 40; i++ {
		if _, err := dec.DecodeBit(2048); err != nil {
			t.Fatalf("DecodeBit %d after truncation: %v", i, err)
		}
	}
}
