package cache

// ProgramBacking serves a flat instruction image as a BackingStore.
// Addresses outside the image read as zero.
type ProgramBacking struct {
	words []uint32
	base  uint64
}

// NewProgramBacking creates a backing store with words[0] at base.
func NewProgramBacking(words []uint32, base uint64) *ProgramBacking {
	return &ProgramBacking{words: words, base: base}
}

// Read returns size bytes starting at addr, little-endian per word.
func (m *ProgramBacking) Read(addr uint64, size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		data[i] = m.byteAt(addr + uint64(i))
	}
	return data
}

func (m *ProgramBacking) byteAt(addr uint64) byte {
	if addr < m.base {
		return 0
	}
	off := addr - m.base
	idx := off / 4
	if idx >= uint64(len(m.words)) {
		return 0
	}
	return byte(m.words[idx] >> ((off % 4) * 8))
}
