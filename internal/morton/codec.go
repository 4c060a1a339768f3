// Package morton implements the Z-order key codec and the radix sort used to
// bring sparse voxel coordinates into spatial order.
package morton

import "math/bits"

// Key is a 30-bit Morton key (10 bits per axis). Bit 31 is reserved as the
// empty tag and never appears in an encoded coordinate.
type Key uint32

const (
	// AxisBits is the number of bits kept per axis.
	AxisBits = 10
	// MaxCoord is the largest coordinate that encodes without corruption.
	MaxCoord = 1<<AxisBits - 1
	// KeyBits is the number of significant bits of a key.
	KeyBits = 3 * AxisBits

	emptyTag  Key = 1 << 31
	axisMask      = MaxCoord
	simpleYOf     = AxisBits
	simpleZOf     = 2 * AxisBits
)

// part1By2 spreads the low 10 bits of v so that two zero bits follow each one.
func part1By2(v uint32) uint32 {
	v &= 0x000003ff
	v = (v | v<<16) & 0x030000ff
	v = (v | v<<8) & 0x0300f00f
	v = (v | v<<4) & 0x030c30c3
	v = (v | v<<2) & 0x09249249
	return v
}

// compact1By2 is the inverse of part1By2.
func compact1By2(v uint32) uint32 {
	v &= 0x09249249
	v = (v ^ (v >> 2)) & 0x030c30c3
	v = (v ^ (v >> 4)) & 0x0300f00f
	v = (v ^ (v >> 8)) & 0xff0000ff
	v = (v ^ (v >> 16)) & 0x000003ff
	return v
}

// Encode interleaves the low 10 bits of each coordinate (x in bit 0, y in bit
// 1, z in bit 2). Coordinates must be in [0, MaxCoord]; larger values are
// silently truncated and the key no longer identifies the cell.
func Encode(x, y, z uint32) Key {
	return Key(part1By2(x) | part1By2(y)<<1 | part1By2(z)<<2)
}

// Decode returns the coordinate encoded by k.
func Decode(k Key) (x, y, z uint32) {
	v := uint32(k)
	return compact1By2(v), compact1By2(v >> 1), compact1By2(v >> 2)
}

// EncodeSimple packs the coordinate at fixed bit offsets (x | y<<10 | z<<20).
// It is used for node bounds, where decoding speed matters more than order.
func EncodeSimple(x, y, z uint32) Key {
	return Key(x&axisMask | (y&axisMask)<<simpleYOf | (z&axisMask)<<simpleZOf)
}

// DecodeSimple is the inverse of EncodeSimple.
func DecodeSimple(k Key) (x, y, z uint32) {
	v := uint32(k)
	return v & axisMask, (v >> simpleYOf) & axisMask, (v >> simpleZOf) & axisMask
}

// TagEmpty marks k as empty. The result is only meaningful to IsEmpty.
func TagEmpty(k Key) Key { return k | emptyTag }

// IsEmpty reports whether k carries the empty tag.
func IsEmpty(k Key) bool { return k&emptyTag != 0 }

// Empty is the canonical empty-tagged value.
const Empty = emptyTag

// Span returns the size of the key range that covers every cell whose
// coordinates do not exceed (x, y, z). Morton order is monotone per axis, so
// Encode(x, y, z) is the largest key in that box.
func Span(x, y, z uint32) uint64 {
	return uint64(Encode(x, y, z)) + 1
}

// CommonPrefix returns the number of leading bits shared by a and b over the
// full 32-bit word.
func CommonPrefix(a, b Key) int {
	return bits.LeadingZeros32(uint32(a ^ b))
}
