package engine

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/opd-ai/go-arena/pkg/steering"
)

// Checksum hashes a pose table in id order. Two runs fed the same inputs
// produce the same checksum on every tick.
func Checksum(poses steering.Poses) uint64 {
	ids := make([]steering.BodyID, 0, len(poses))
	for id := range poses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	digest := xxhash.New()
	var buf [40]byte
	for _, id := range ids {
		pose := poses[id]
		binary.LittleEndian.PutUint64(buf[0:], uint64(id))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(pose.Position.X))
		binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(pose.Position.Y))
		binary.LittleEndian.PutUint64(buf[24:], math.Float64bits(pose.Orientation.Z))
		binary.LittleEndian.PutUint64(buf[32:], math.Float64bits(pose.Orientation.W))
		_, _ = digest.Write(buf[:])
	}
	return digest.Sum64()
}
