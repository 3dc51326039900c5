package noise

import "math"

// hash32 mixes 32-bit input into a well-distributed 32-bit output
// (murmur finalizer style avalanche).
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// hash2 returns a stable hash for a 2D lattice point + seed.
func hash2(seed int32, x, y int32) uint32 {
	h := uint32(seed)
	h ^= uint32(x) * 0x9e3779b1
	h ^= uint32(y) * 0x85ebca6b
	return hash32(h)
}

// unit maps a hash onto [-1, 1].
func unit(h uint32) float64 {
	return float64(h)/float64(math.MaxUint32)*2 - 1
}
