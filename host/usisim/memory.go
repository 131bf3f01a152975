package usisim

import "sync"

// Memory is a 256-byte register file: the first byte written after the
// address selects the register, further writes store and advance, reads
// return and advance.
type Memory struct {
	mu      sync.Mutex
	mem     [256]uint8
	reg     uint8
	haveReg bool
	nack    bool
}

// NewMemory returns a zeroed register file
func NewMemory() *Memory {
	return &Memory{}
}

// SetNACK makes the device refuse its address
func (m *Memory) SetNACK(nack bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nack = nack
}

// Load copies data into the registers starting at reg
func (m *Memory) Load(reg uint8, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range data {
		m.mem[uint8(int(reg)+i)] = b
	}
}

// Peek returns the register contents
func (m *Memory) Peek(reg uint8) uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mem[reg]
}

func (m *Memory) Begin(read bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !read {
		m.haveReg = false
	}
	return !m.nack
}

func (m *Memory) Write(b byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.haveReg {
		m.reg = b
		m.haveReg = true
		return true
	}
	m.mem[m.reg] = b
	m.reg++
	return true
}

func (m *Memory) Read() byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.mem[m.reg]
	m.reg++
	return b
}

func (m *Memory) End() {}
