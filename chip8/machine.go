// Package chip8 provides an implementation of the CHIP-8 virtual machine,
// called Machine, that can be used to execute CHIP-8 programs.
package chip8

import (
	"fmt"
	"math/rand"
	"time"
)

const (
	MemSize      = 0x1000
	ProgramStart = 0x200
	MaxROMSize   = MemSize - ProgramStart

	Width  = 64
	Height = 32

	StackDepth = 16
	NumKeys    = 16
)

// Machine is an implementation of the CHIP-8 virtual machine.
//
// Keys is the only state meant to be written by anything other than Cycle.
// Callers that run Cycle on one goroutine and update Keys from another must
// synchronize the two themselves.
type Machine struct {
	Mem   [MemSize]byte
	V     [16]byte
	I     uint16
	PC    uint16
	Stack Stack
	DT    byte // delay timer
	ST    byte // sound timer

	Display Display
	Keys    [NumKeys]bool

	// Seed seeds the random source used by RND on Reset.
	// If zero, the source is seeded from the clock.
	Seed int64
	// Unknown controls how the program counter moves past an
	// instruction that does not decode.
	Unknown UnknownPolicy

	wait waitState
	rand *rand.Rand
}

type waitState struct {
	active bool
	reg    byte
}

// NewMachine returns a reset Machine with rom loaded at ProgramStart.
func NewMachine(rom []byte) (*Machine, error) {
	m := &Machine{}
	if err := m.Load(rom); err != nil {
		return nil, err
	}
	return m, nil
}

// Reset returns the machine to its power-on state: memory, registers,
// stack, timers, display and keys are zeroed, the font is written to the
// bottom of memory and PC is set to ProgramStart.
// The Seed and Unknown settings are kept.
func (m *Machine) Reset() {
	*m = Machine{
		PC:      ProgramStart,
		Seed:    m.Seed,
		Unknown: m.Unknown,
	}
	copy(m.Mem[:], Font[:])
	seed := m.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m.rand = rand.New(rand.NewSource(seed))
}

// Load resets the machine and copies rom into memory at ProgramStart.
// If rom does not fit, Load returns a *LoadError and the machine is left
// in its reset state.
func (m *Machine) Load(rom []byte) error {
	m.Reset()
	if len(rom) > MaxROMSize {
		return &LoadError{Size: len(rom)}
	}
	copy(m.Mem[ProgramStart:], rom)
	return nil
}

// Waiting reports whether the machine is stalled on an LDK instruction,
// and if so which register will receive the key.
func (m *Machine) Waiting() (reg byte, ok bool) {
	return m.wait.reg, m.wait.active
}

// LoadError is returned by Load when a ROM is too large for memory.
type LoadError struct {
	Size int
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("rom is %d bytes, exceeds maximum of %d bytes", e.Size, MaxROMSize)
}

// UnknownPolicy selects what Cycle does with the program counter after
// fetching an instruction that does not decode.
type UnknownPolicy byte

const (
	// SkipUnknown advances past the instruction.
	SkipUnknown UnknownPolicy = iota
	// StallUnknown leaves PC on the instruction,
	// so it is fetched again on the next cycle.
	StallUnknown
)

func (p UnknownPolicy) String() string {
	switch p {
	case SkipUnknown:
		return "skip"
	case StallUnknown:
		return "stall"
	default:
		return fmt.Sprintf("UnknownPolicy(%d)", byte(p))
	}
}

// Set implements flag.Value.
func (p *UnknownPolicy) Set(s string) error {
	switch s {
	case "skip":
		*p = SkipUnknown
	case "stall":
		*p = StallUnknown
	default:
		return fmt.Errorf("invalid policy %q (want skip or stall)", s)
	}
	return nil
}
