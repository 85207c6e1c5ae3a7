package benchmarks

import (
	"fmt"
	"io"
	"math/rand"
	"testing"

	"github.com/agilira/flowtrack"
)

// Table sizes to test.
const (
	smallCapacity  = 1 << 12
	mediumCapacity = 1 << 16
	largeCapacity  = 1 << 20

	// Key spaces for different scenarios.
	smallKeySpace  = 1_000
	mediumKeySpace = 10_000
	largeKeySpace  = 100_000
)

// zipfKeys generates FlowKeys whose source IP follows a Zipf distribution,
// simulating a workload where a small number of hosts dominate traffic.
type zipfKeys struct {
	zipf *rand.Zipf
}

func newZipfKeys(s, v float64, imax uint64) *zipfKeys {
	if imax < 1 {
		imax = 1
	}
	if s <= 1.0 {
		s = 1.01
	}
	if v < 1.0 {
		v = 1.0
	}
	r := rand.New(rand.NewSource(42))
	zipf := rand.NewZipf(r, s, v, imax)
	if zipf == nil {
		panic(fmt.Sprintf("failed to create Zipf generator: s=%f, v=%f, imax=%d", s, v, imax))
	}
	return &zipfKeys{zipf: zipf}
}

func (z *zipfKeys) next() flowtrack.FlowKey {
	src := uint32(z.zipf.Uint64())
	return flowtrack.FlowKey{
		SrcIP:   src,
		DstIP:   0x0a000001,
		Proto:   6,
		SrcPort: uint16(1024 + (src % 4096)),
		DstPort: 443,
	}
}

func newTable(capacity int) *flowtrack.Table {
	return flowtrack.NewTable(flowtrack.Config{Capacity: capacity})
}

// BenchmarkProcessFlow_Insert measures insert-dominated throughput: every
// key is distinct, so every call takes the insert path.
func BenchmarkProcessFlow_Insert(b *testing.B) {
	for _, capacity := range []int{smallCapacity, mediumCapacity, largeCapacity} {
		b.Run(fmt.Sprintf("capacity=%d", capacity), func(b *testing.B) {
			tbl := newTable(capacity)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				key := flowtrack.FlowKey{SrcIP: uint32(i), DstIP: uint32(i + 1), Proto: 6, SrcPort: 1, DstPort: 2}
				_, _ = tbl.ProcessFlow(key, int64(i))
			}
		})
	}
}

// BenchmarkProcessFlow_Zipf measures mixed match/insert throughput under a
// skewed key distribution, the realistic shape of flow traffic.
func BenchmarkProcessFlow_Zipf(b *testing.B) {
	for _, keySpace := range []int{smallKeySpace, mediumKeySpace, largeKeySpace} {
		b.Run(fmt.Sprintf("keyspace=%d", keySpace), func(b *testing.B) {
			tbl := newTable(mediumCapacity)
			keys := newZipfKeys(1.2, 1.0, uint64(keySpace-1))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = tbl.ProcessFlow(keys.next(), int64(i/1000))
			}
		})
	}
}

// BenchmarkWriteUpdate measures update-log throughput on a table seeded with
// the given number of unsent flows. Only the first iteration finds them
// unsent; later iterations write a header and terminator only.
func BenchmarkWriteUpdate(b *testing.B) {
	for _, pending := range []int{100, 1_000, 10_000} {
		b.Run(fmt.Sprintf("pending=%d", pending), func(b *testing.B) {
			tbl := newTable(mediumCapacity)
			for i := 0; i < pending; i++ {
				key := flowtrack.FlowKey{SrcIP: uint32(i), DstIP: 1, Proto: 6, SrcPort: 1, DstPort: 2}
				_, _ = tbl.ProcessFlow(key, 0)
			}
			writer := flowtrack.NewWriter(tbl)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = writer.WriteUpdate(io.Discard)
			}
		})
	}
}

// BenchmarkWriteThresholdedIPs measures heavy-hitter report throughput over a
// table holding 5,000 qualifying flows.
func BenchmarkWriteThresholdedIPs(b *testing.B) {
	tbl := newTable(mediumCapacity)
	cfg := flowtrack.DefaultConfig()
	cfg.Capacity = mediumCapacity
	cfg.FlowThreshold = 2
	tbl = flowtrack.NewTable(cfg)

	for i := 0; i < 5_000; i++ {
		key := flowtrack.FlowKey{SrcIP: uint32(i), DstIP: 1, Proto: 6, SrcPort: 1, DstPort: 2}
		_, _ = tbl.ProcessFlow(key, 0)
		_, _ = tbl.ProcessFlow(key, 1)
	}
	writer := flowtrack.NewWriter(tbl)
	path := b.TempDir() + "/thresholded.log"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = writer.WriteThresholdedIPs(path, 1, int64(i))
	}
}
