package block

import (
	"bytes"
	"os"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// buildWAVFixture encodes a minimal canonical 16-bit stereo PCM WAVE file
// with the real go-audio/wav encoder, so both the detector and a real WAV
// decoder can be pointed at the exact same bytes (mirrors the teacher's own
// use of go-audio/wav + go-audio/audio as the real codec, not a hand-rolled
// byte literal). wav.Encoder needs an io.WriteSeeker to patch the RIFF and
// data chunk sizes on Close, so this writes to a temp file and reads the
// result back.
func buildWAVFixture(t *testing.T, nsamplesPerChannel int) []byte {
	t.Helper()
	const (
		numChannels   = 2
		bitsPerSample = 16
		sampleRate    = 44100
		pcmFormat     = 1
	)

	f, err := os.CreateTemp(t.TempDir(), "wave-fixture-*.wav")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, bitsPerSample, numChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, nsamplesPerChannel*numChannels),
		SourceBitDepth: bitsPerSample,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Encoder.Write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Encoder.Close: %v", err)
	}

	raw, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return raw
}

// TestWAVFixtureIsValid cross-checks the encoder-built fixture against a real
// decoder before trusting it as a detector test input.
func TestWAVFixtureIsValid(t *testing.T) {
	raw := buildWAVFixture(t, 8)
	dec := wav.NewDecoder(bytes.NewReader(raw))
	if !dec.IsValidFile() {
		t.Fatalf("fixture rejected by wav.Decoder.IsValidFile")
	}
	if dec.NumChans != 2 {
		t.Fatalf("NumChans = %d, want 2", dec.NumChans)
	}
	if dec.BitDepth != 16 {
		t.Fatalf("BitDepth = %d, want 16", dec.BitDepth)
	}
	if dec.SampleRate != 44100 {
		t.Fatalf("SampleRate = %d, want 44100", dec.SampleRate)
	}
}

func TestDetectBlockWave16(t *testing.T) {
	raw := buildWAVFixture(t, 8)
	d := NewDetector(bytes.NewReader(raw))

	hdr, err := d.DetectBlock()
	if err != nil {
		t.Fatalf("DetectBlock (header): %v", err)
	}
	const wantHeaderLen = 44 // up to and including the data subchunk's size field
	if hdr.Profile != Binary || int(hdr.Length) != wantHeaderLen {
		t.Fatalf("header block = %+v, want Binary of length %d", hdr, wantHeaderLen)
	}

	pcm, err := d.DetectBlock()
	if err != nil {
		t.Fatalf("DetectBlock (pcm): %v", err)
	}
	const dataSize = 8 * 2 * 2 // matches buildWAVFixture(t, 8)'s data subchunk size field
	if pcm.Profile != Wave16 || int(pcm.Length) != dataSize {
		t.Fatalf("pcm block = %+v, want Wave16 of length %d", pcm, dataSize)
	}
}

func TestDetectBlockTruncatedRIFFFallsThroughToBinary(t *testing.T) {
	raw := buildWAVFixture(t, 8)
	truncated := raw[:20] // cuts off mid fmt-subchunk
	d := NewDetector(bytes.NewReader(truncated))
	blk, err := d.DetectBlock()
	if err != nil {
		t.Fatalf("DetectBlock: %v", err)
	}
	if blk.Profile != Binary || int(blk.Length) != len(truncated) {
		t.Fatalf("got %+v, want Binary of length %d", blk, len(truncated))
	}
}
