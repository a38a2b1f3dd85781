package ringdataset

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// SampleSeed derives a deterministic per-sample seed from the base seed and
// the sample index. Used when per-sample generators are enabled: samples
// stay individually reproducible without sharing one sequential stream.
func SampleSeed(baseSeed int64, sampleIndex int) int64 {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d_%d", baseSeed, sampleIndex)))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
