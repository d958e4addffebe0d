package pipeline

// DefaultHistoryCapacity is the number of cycles recorded per run.
const DefaultHistoryCapacity = 50

// CycleRecord is a snapshot of the pipeline at the end of one cycle.
type CycleRecord struct {
	// Cycle is the 1-based cycle number.
	Cycle uint64
	// Stages holds the instruction word in IF, ID, EX, MEM and WB.
	Stages [NumStages]uint32
	// Hazard is the hazard kind reported this cycle.
	Hazard HazardKind
	// Stall is true if the pipeline stalled this cycle.
	Stall bool
	// Forward is true if an operand was forwarded this cycle.
	Forward bool
}

// History is a fixed-capacity, append-only list of cycle records. Once
// full, further records are dropped; existing records are never replaced.
type History struct {
	records  []CycleRecord
	capacity int
}

// NewHistory creates a history holding at most capacity records.
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{
		records:  make([]CycleRecord, 0, capacity),
		capacity: capacity,
	}
}

// Record appends r if there is room. It returns false when r was dropped.
func (h *History) Record(r CycleRecord) bool {
	if len(h.records) >= h.capacity {
		return false
	}
	h.records = append(h.records, r)
	return true
}

// Len returns the number of records kept.
func (h *History) Len() int { return len(h.records) }

// Cap returns the capacity.
func (h *History) Cap() int { return h.capacity }

// Full reports whether further records will be dropped.
func (h *History) Full() bool { return len(h.records) >= h.capacity }

// Records returns a copy of the recorded cycles, oldest first.
func (h *History) Records() []CycleRecord {
	out := make([]CycleRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Reset drops all records.
func (h *History) Reset() {
	h.records = h.records[:0]
}
