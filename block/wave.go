package block

import "github.com/mewkiz/cmix/internal/lookahead"

// RIFF/WAVE magic words, compared as big-endian 32-bit integers so each
// matches the ASCII bytes in stream order (mirrors how the detector folds
// bytes into lastWord below).
const (
	riffMagic = 0x52494646 // "RIFF"
	waveMagic = 0x57415645 // "WAVE"
	fmtMagic  = 0x666D7420 // "fmt "
	dataMagic = 0x64617461 // "data"
)

// maxDataSubchunks bounds how many subchunks tryParseRIFF will skip over
// before giving up looking for "data" (spec.md §4.1: PCM detection scans a
// bounded number of subchunks, not an unbounded chunk walk).
const maxDataSubchunks = 5

// readLE32 reads 4 little-endian bytes at the given offset from la's read
// cursor. ok is false if the offset runs past buffered data.
func readLE32(la *lookahead.Buffer, pos int) (uint32, bool) {
	if pos+4 > la.Len() {
		return 0, false
	}
	var v uint32
	for i := 0; i < 4; i++ {
		v |= uint32(la.At(pos+i)) << (8 * uint(i))
	}
	return v, true
}

// readBE32 reads 4 bytes at the given offset as a big-endian integer, used
// to compare against ASCII magic words.
func readBE32(la *lookahead.Buffer, pos int) (uint32, bool) {
	if pos+4 > la.Len() {
		return 0, false
	}
	var v uint32
	for i := 0; i < 4; i++ {
		v = v<<8 | uint32(la.At(pos+i))
	}
	return v, true
}

// readLE16 reads 2 little-endian bytes at the given offset.
func readLE16(la *lookahead.Buffer, pos int) (uint16, bool) {
	if pos+2 > la.Len() {
		return 0, false
	}
	return uint16(la.At(pos)) | uint16(la.At(pos+1))<<8, true
}

// tryParseRIFF attempts to parse a canonical 16-bit PCM WAVE header starting
// at pos (the byte immediately following the "RIFF" magic that triggered the
// attempt). On success it returns the Wave16 block to enqueue once the
// header bytes have been emitted as Binary, and headerEnd: the offset (from
// the same origin as pos) where the PCM payload begins.
//
// Any short read (header truncated near the end of the buffered lookahead)
// reports ok=false, and the caller falls through to classifying the bytes
// as Binary — this function never returns an error.
func tryParseRIFF(la *lookahead.Buffer, pos int) (wave DetectedBlock, headerEnd int, ok bool) {
	chunkSize, ok := readLE32(la, pos)
	if !ok {
		return DetectedBlock{}, 0, false
	}
	fpos := pos + 4

	word, ok := readBE32(la, fpos)
	if !ok || word != waveMagic {
		return DetectedBlock{}, 0, false
	}
	fpos += 4

	word, ok = readBE32(la, fpos)
	if !ok || word != fmtMagic {
		return DetectedBlock{}, 0, false
	}
	fpos += 4

	subchunkSize, ok := readLE32(la, fpos)
	if !ok || (subchunkSize != 16 && subchunkSize != 18) {
		return DetectedBlock{}, 0, false
	}
	fpos += 4

	audioFormat, ok := readLE16(la, fpos)
	if !ok || audioFormat != 1 {
		return DetectedBlock{}, 0, false
	}
	fpos += 2

	numChannels, ok := readLE16(la, fpos)
	if !ok || numChannels != 2 {
		return DetectedBlock{}, 0, false
	}
	fpos += 2

	// Skip sample_rate/byte_rate/block_align (and any extension bytes for
	// an 18-byte fmt subchunk) to land on bits_per_sample.
	fpos += int(subchunkSize) - 6
	if _, ok := readLE16(la, fpos); !ok {
		return DetectedBlock{}, 0, false
	}
	fpos += 2

	for i := 0; i < maxDataSubchunks; i++ {
		id, ok := readBE32(la, fpos)
		if !ok {
			return DetectedBlock{}, 0, false
		}
		fpos += 4
		size, ok := readLE32(la, fpos)
		if !ok {
			return DetectedBlock{}, 0, false
		}
		fpos += 4
		if id == dataMagic {
			if size == 0 || size >= chunkSize {
				return DetectedBlock{}, 0, false
			}
			// The Wave16 block's length is the PCM payload span (the data
			// subchunk's own size field), not the outer RIFF chunkSize:
			// chunkSize also covers the header bytes already accounted for
			// by the preceding Binary block, and double-counting them would
			// break the invariant that block lengths sum to the input
			// length exactly.
			return DetectedBlock{Profile: Wave16, Length: uint64(size)}, fpos, true
		}
		fpos += int(size)
	}
	return DetectedBlock{}, 0, false
}
