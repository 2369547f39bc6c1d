package constexpr

import "math"

func float32Bits(f float32) uint64 { return uint64(math.Float32bits(f)) }
func float64Bits(f float64) uint64 { return math.Float64bits(f) }

func bitsToFloat32(bits uint32) float32 { return math.Float32frombits(bits) }
func bitsToFloat64(bits uint64) float64 { return math.Float64frombits(bits) }
