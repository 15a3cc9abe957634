package cmix

// Override forces the Analyzer's block classification instead of letting
// the Block Detector decide, per spec.md §6's external interfaces.
type Override uint8

// Override values. Auto defers entirely to Detector classification.
const (
	Auto Override = iota
	ForceText
	ForceBinary
)

var overrideNames = map[Override]string{
	Auto:        "auto",
	ForceText:   "text",
	ForceBinary: "binary",
}

// String returns a human-readable name, or "unknown" for a value outside
// the three defined constants.
func (o Override) String() string {
	if s, ok := overrideNames[o]; ok {
		return s
	}
	return "unknown"
}

// Config holds the tunables SPEC_FULL.md §6 names as Compress/Decompress's
// external interface: MemLevel scales the per-block model hash table
// (2 MiB << MemLevel, spec.md §5), ProfileOverride forces every block to a
// single profile instead of running the Block Detector, and CompressLevel
// selects the context-mixing coder's combine strategy (plain stretch-average
// at level ≤ 6, the logistic mixer above that — see the mixer.go entry in
// DESIGN.md).
type Config struct {
	MemLevel        int
	ProfileOverride Override
	CompressLevel   int
}

// DefaultConfig matches TurboCM.hpp's template default (level = 6) and a
// conservative single-unit MemLevel.
func DefaultConfig() Config {
	return Config{MemLevel: 0, ProfileOverride: Auto, CompressLevel: 6}
}
