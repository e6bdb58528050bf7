package oto

import (
	"encoding/binary"
	"math"
)

// floatBufferToStereoLE appends every mono sample of buff twice, as
// little-endian float32 clamped to [-1, 1], to dst.
func floatBufferToStereoLE(buff []float32, dst []byte) []byte {
	for _, v := range buff {
		bits := math.Float32bits(min(max(v, -1), 1))
		dst = binary.LittleEndian.AppendUint32(dst, bits)
		dst = binary.LittleEndian.AppendUint32(dst, bits)
	}
	return dst
}
