package analyze

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/mewkiz/cmix/block"
	"github.com/mewkiz/cmix/dedup"
)

func TestAnalyzerRepeatedPhraseIsOneTextBlock(t *testing.T) {
	phrase := "Hello, world! This is text."
	data := bytes.Repeat([]byte(phrase), (200/len(phrase))+1)[:200]

	a := NewAnalyzer(bytes.NewReader(data), 0, nil)
	blocks, err := a.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Profile != block.Text || blocks[0].Length != 200 {
		t.Fatalf("blocks = %+v, want a single Text block of length 200", blocks)
	}
}

func TestAnalyzerUniformRandomIsOneBinaryBlock(t *testing.T) {
	data := make([]byte, 4096)
	rng := rand.New(rand.NewSource(1))
	rng.Read(data)

	a := NewAnalyzer(bytes.NewReader(data), 0, nil)
	blocks, err := a.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Profile != block.Binary || blocks[0].Length != 4096 {
		t.Fatalf("blocks = %+v, want a single Binary block of length 4096", blocks)
	}
	for _, b := range blocks {
		if b.Profile == block.Text {
			t.Fatalf("unexpected Text block in %+v", blocks)
		}
	}
}

// randomASCII fills buf with deterministic, non-self-periodic printable
// ASCII text: safe to duplicate wholesale in a test without the copy's
// internal repetition confusing the dedup match this test is checking for.
func randomASCII(buf []byte, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range buf {
		buf[i] = byte('a' + rng.Intn(26))
	}
}

func TestAnalyzerRepeatedRegionBecomesSkipBlock(t *testing.T) {
	const copyLen = 70 * 1024
	x := make([]byte, copyLen)
	randomASCII(x, 7)
	data := append(append([]byte{}, x...), x...)

	a := NewAnalyzer(bytes.NewReader(data), 0, nil)
	blocks, err := a.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var skipIdx = -1
	var skipLen uint64
	for i, b := range blocks {
		if b.Profile == block.Skip {
			skipIdx = i
			skipLen = b.Length
			break
		}
	}
	if skipIdx < 0 {
		t.Fatalf("no Skip block found in %+v", blocks)
	}
	if skipLen < dedup.WindowSize {
		t.Fatalf("skip block length = %d, want >= %d", skipLen, dedup.WindowSize)
	}

	var total uint64
	for _, b := range blocks {
		if b.Profile != block.Skip {
			total += b.Length
		}
	}
	if total+skipLen != uint64(len(data)) {
		t.Fatalf("block lengths sum to %d (non-skip %d + skip %d), want %d", total+skipLen, total, skipLen, len(data))
	}
}

func TestAnalyzerWave16Scenario(t *testing.T) {
	// 256 stereo 16-bit samples = 1024 PCM data bytes, matching spec.md
	// §8 scenario 3 exactly (44-byte canonical header, 1024 data bytes).
	raw := buildWAVFixtureForTest(256)
	a := NewAnalyzer(bytes.NewReader(raw), 0, nil)
	blocks, err := a.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("blocks = %+v, want exactly 2", blocks)
	}
	if blocks[0].Profile != block.Binary || blocks[0].Length != 44 {
		t.Fatalf("blocks[0] = %+v, want Binary length 44", blocks[0])
	}
	if blocks[1].Profile != block.Wave16 || blocks[1].Length != 1024 {
		t.Fatalf("blocks[1] = %+v, want Wave16 length 1024", blocks[1])
	}
}

// buildWAVFixtureForTest duplicates block.buildWAVFixture's layout (that
// helper is unexported in another package) so this package's test can
// exercise the same RIFF/WAVE detection path end to end through the
// analyzer.
func buildWAVFixtureForTest(nsamplesPerChannel int) []byte {
	const (
		numChannels   = 2
		bitsPerSample = 16
		sampleRate    = 44100
	)
	dataSize := nsamplesPerChannel * numChannels * (bitsPerSample / 8)
	byteRate := sampleRate * numChannels * (bitsPerSample / 8)
	blockAlign := numChannels * (bitsPerSample / 8)
	chunkSize := 36 + dataSize

	buf := new(bytes.Buffer)
	buf.WriteString("RIFF")
	writeLE32(buf, uint32(chunkSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	writeLE32(buf, 16)
	writeLE16(buf, 1)
	writeLE16(buf, uint16(numChannels))
	writeLE32(buf, uint32(sampleRate))
	writeLE32(buf, uint32(byteRate))
	writeLE16(buf, uint16(blockAlign))
	writeLE16(buf, uint16(bitsPerSample))
	buf.WriteString("data")
	writeLE32(buf, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func writeLE32(buf *bytes.Buffer, v uint32) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
	buf.WriteByte(byte(v >> 16))
	buf.WriteByte(byte(v >> 24))
}

func writeLE16(buf *bytes.Buffer, v uint16) {
	buf.WriteByte(byte(v))
	buf.WriteByte(byte(v >> 8))
}
