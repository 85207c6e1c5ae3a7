// table.go: the fixed-capacity open-addressed flow table
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package flowtrack

// Table is a fixed-capacity, open-addressed hash map of live flows.
//
// Table holds no internal lock. process_flow, write_update,
// write_thresholded_ips and advance_base_timestamp must be externally
// serialized by the caller (spec.md §5) — a single goroutine, or a mutex
// owned outside this package.
type Table struct {
	cfg     Config
	entries []Entry

	baseTimestampSeconds int64
	countLive            int
	countExpired         int64
	countDropped         int64
}

// NewTable allocates a new table with cfg.Capacity entries. Memory is
// pre-allocated once and never resized.
func NewTable(cfg Config) *Table {
	cfg.Validate()
	return &Table{
		cfg:     cfg,
		entries: make([]Entry, cfg.Capacity),
	}
}

// Capacity returns the fixed number of slots.
func (t *Table) Capacity() int { return len(t.entries) }

// CountLive returns the number of slots currently OccupiedUnsent or OccupiedSent.
func (t *Table) CountLive() int { return t.countLive }

// CountExpired returns the cumulative number of lazy expirations since start.
func (t *Table) CountExpired() int64 { return t.countExpired }

// CountDropped returns the cumulative number of insert attempts that could
// not be placed.
func (t *Table) CountDropped() int64 { return t.countDropped }

// BaseTimestamp returns the epoch offset from which every live entry's
// LastUpdateOffset is measured.
func (t *Table) BaseTimestamp() int64 { return t.baseTimestampSeconds }

// slot computes slot(i) = (hash + C1*i + C2*i^2) mod Capacity using 64-bit
// arithmetic so C1, C2, i and hash never overflow before the modulo.
func (t *Table) slot(hash uint32, i int) int {
	c1 := uint64(t.cfg.C1)
	c2 := uint64(t.cfg.C2)
	ii := uint64(i)
	idx := uint64(hash) + c1*ii + c2*ii*ii
	return int(idx % uint64(len(t.entries)))
}

// ProcessFlow locates an existing live entry matching key's 5-tuple and
// refreshes it, or inserts a new entry. It returns the slot index on
// success.
//
// Returns ErrCodeTimestampOutOfRange if the timestamp gate refuses the
// insert (the caller should call AdvanceBaseTimestamp and retry), or
// ErrCodeProbeExhausted if no slot was reusable within MaxProbes probes
// (the caller should drop the packet). Both increment CountDropped.
func (t *Table) ProcessFlow(key FlowKey, nowSeconds int64) (int, error) {
	if t.countLive > 0 {
		offset := nowSeconds - t.baseTimestampSeconds
		if offset < int64(t.cfg.MinOffset) || offset > int64(t.cfg.MaxOffset) {
			t.countDropped++
			t.cfg.MetricsCollector.RecordDropped("timestamp_out_of_range")
			return -1, NewErrTimestampOutOfRange(nowSeconds, t.baseTimestampSeconds, t.cfg.MinOffset, t.cfg.MaxOffset)
		}
	}

	keyBytes := key.keyBytes()
	hash := t.cfg.HashFunc(keyBytes[:])

	reusable := -1
	for i := 0; i < t.cfg.MaxProbes; i++ {
		idx := t.slot(hash, i)
		e := &t.entries[idx]

		// Lazy expiration applies uniformly to both occupied variants,
		// including unsent entries not yet written (spec.md §9).
		if e.Occupancy.live() && t.baseTimestampSeconds+int64(e.lastUpdateOffset)+t.cfg.ExpirationSeconds < nowSeconds {
			e.Occupancy = Deleted
			t.countLive--
			t.countExpired++
			t.cfg.Logger.Debug("flow expired on probe", "slot", idx)
			t.cfg.MetricsCollector.RecordExpired(1)
		}

		if e.Occupancy.live() && e.Key == key {
			e.lastUpdateOffset = int32(nowSeconds - t.baseTimestampSeconds)
			if e.Occupancy == OccupiedUnsent && t.cfg.ThresholdingEnabled {
				e.incrementPacketCount()
			}
			t.cfg.MetricsCollector.RecordProcessFlow(true, false)
			return idx, nil
		}

		if reusable == -1 && !e.Occupancy.live() {
			reusable = idx
		}

		if e.Occupancy == Empty {
			break
		}
	}

	if reusable == -1 {
		t.countDropped++
		t.cfg.Logger.Warn("probe budget exhausted", "max_probes", t.cfg.MaxProbes)
		t.cfg.MetricsCollector.RecordDropped("probe_exhausted")
		return -1, NewErrProbeExhausted(key, t.cfg.MaxProbes)
	}

	if t.countLive == 0 {
		t.baseTimestampSeconds = nowSeconds
	}

	t.entries[reusable] = Entry{
		Key:              key,
		Occupancy:        OccupiedUnsent,
		lastUpdateOffset: int32(nowSeconds - t.baseTimestampSeconds),
		packetCount:      1,
	}
	t.countLive++
	t.cfg.MetricsCollector.RecordProcessFlow(false, true)
	return reusable, nil
}

// AdvanceBaseTimestamp rebases every live entry's offset so it remains
// representable after time has advanced. Entries whose rebased offset would
// fall below MinOffset are deleted and are not counted in CountExpired —
// that counter is reserved for process_flow's lazy expiration (spec.md §9).
func (t *Table) AdvanceBaseTimestamp(newBaseSeconds int64) {
	shift := newBaseSeconds - t.baseTimestampSeconds

	for i := range t.entries {
		e := &t.entries[i]
		if !e.Occupancy.live() {
			continue
		}

		rebased := int64(e.lastUpdateOffset) - shift
		if rebased < int64(t.cfg.MinOffset) {
			e.Occupancy = Deleted
			t.countLive--
			continue
		}
		e.lastUpdateOffset = int32(rebased)
	}

	t.baseTimestampSeconds = newBaseSeconds
}

// forEachSlot visits every slot in index order. fn returning false stops
// the iteration early. Used internally by the update writer and the
// thresholded-flows report.
func (t *Table) forEachSlot(fn func(idx int, e *Entry) bool) {
	for i := range t.entries {
		if !fn(i, &t.entries[i]) {
			return
		}
	}
}
