package block

import (
	"bytes"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		blk  DetectedBlock
		want []byte
	}{
		{
			name: "text, 1 length byte",
			blk:  DetectedBlock{Profile: Text, Length: 1},
			want: []byte{0x00, 0x00},
		},
		{
			name: "binary, 200 bytes",
			blk:  DetectedBlock{Profile: Binary, Length: 200},
			want: []byte{0x01, 199},
		},
		{
			name: "wave16, 0x01020304 bytes",
			blk:  DetectedBlock{Profile: Wave16, Length: 0x01020304},
			want: []byte{0xC2, 0x03, 0x03, 0x02, 0x01},
		},
		{
			name: "eof",
			blk:  DetectedBlock{Profile: EOF},
			want: []byte{0x04},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.blk.WriteHeader(&buf); err != nil {
				t.Fatalf("WriteHeader: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tt.want) {
				t.Fatalf("WriteHeader bytes = % X, want % X", buf.Bytes(), tt.want)
			}
			got, err := ReadHeader(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("ReadHeader: %v", err)
			}
			if got != tt.blk {
				t.Fatalf("ReadHeader = %+v, want %+v", got, tt.blk)
			}
		})
	}
}

func TestWriteHeaderRejectsZeroLength(t *testing.T) {
	blk := DetectedBlock{Profile: Text, Length: 0}
	if err := blk.WriteHeader(new(bytes.Buffer)); err == nil {
		t.Fatalf("expected error for zero-length non-EOF block")
	}
}

func TestReadHeaderRejectsInvalidProfile(t *testing.T) {
	// profile code 5 is out of range (only 0..4 are defined).
	_, err := ReadHeader(bytes.NewReader([]byte{0x05, 0x00}))
	if err == nil {
		t.Fatalf("expected error for out-of-range profile code")
	}
}

func TestDetectBlockText(t *testing.T) {
	text := bytes.Repeat([]byte("a"), textRunThreshold)
	d := NewDetector(bytes.NewReader(text))
	blk, err := d.DetectBlock()
	if err != nil {
		t.Fatalf("DetectBlock: %v", err)
	}
	if blk.Profile != Text || int(blk.Length) != len(text) {
		t.Fatalf("got %+v, want Text block of length %d", blk, len(text))
	}
}

func TestDetectBlockShortRunIsBinary(t *testing.T) {
	text := bytes.Repeat([]byte("a"), textRunThreshold-1)
	d := NewDetector(bytes.NewReader(text))
	blk, err := d.DetectBlock()
	if err != nil {
		t.Fatalf("DetectBlock: %v", err)
	}
	if blk.Profile != Binary || int(blk.Length) != len(text) {
		t.Fatalf("got %+v, want Binary block of length %d", blk, len(text))
	}
}

func TestDetectBlockForbiddenByteBreaksRun(t *testing.T) {
	data := append(bytes.Repeat([]byte("a"), textRunThreshold), 0x01)
	d := NewDetector(bytes.NewReader(data))
	blk, err := d.DetectBlock()
	if err != nil {
		t.Fatalf("DetectBlock: %v", err)
	}
	if blk.Profile != Text || int(blk.Length) != textRunThreshold {
		t.Fatalf("got %+v, want Text block of length %d", blk, textRunThreshold)
	}
}

func TestDetectBlockEOF(t *testing.T) {
	d := NewDetector(bytes.NewReader(nil))
	blk, err := d.DetectBlock()
	if err != nil {
		t.Fatalf("DetectBlock: %v", err)
	}
	if blk.Profile != EOF {
		t.Fatalf("got %+v, want EOF", blk)
	}
}

func TestDetectBlockPopByteDrainsClassifiedRun(t *testing.T) {
	data := bytes.Repeat([]byte("b"), textRunThreshold)
	d := NewDetector(bytes.NewReader(data))
	blk, err := d.DetectBlock()
	if err != nil {
		t.Fatalf("DetectBlock: %v", err)
	}
	var got []byte
	for i := uint64(0); i < blk.Length; i++ {
		c, ok := d.PopByte()
		if !ok {
			t.Fatalf("PopByte: ran dry after %d bytes, want %d", i, blk.Length)
		}
		got = append(got, c)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("drained %q, want %q", got, data)
	}
}

func TestPutGetReplaysBlockBookkeeping(t *testing.T) {
	d := &Detector{}
	d.Put(DetectedBlock{Profile: Wave16, Length: 3})
	for i := 0; i < 3; i++ {
		p, ok := d.Get()
		if !ok || p != Wave16 {
			t.Fatalf("Get() iteration %d = (%v, %v), want (Wave16, true)", i, p, ok)
		}
	}
	if _, ok := d.Get(); ok {
		t.Fatalf("Get() after block exhausted, want false")
	}
}
