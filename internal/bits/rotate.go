// Package bits provides small bit-manipulation primitives shared by the
// context-mixing coder.
package bits

import "math/bits"

// RotateLeft32 returns x rotated left by k bits (mod 32).
//
// Used by the word model to fold its running hash pair into the
// "previous word hash" carried across a word boundary.
func RotateLeft32(x uint32, k int) uint32 {
	return bits.RotateLeft32(x, k)
}
