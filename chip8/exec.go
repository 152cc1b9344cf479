package chip8

import (
	"fmt"
	"math/rand"
	"time"
)

// Cycle executes one instruction and then decrements both timers.
//
// If the machine is stalled on LDK, Cycle only checks for a key press
// (completing the instruction if there is one) before the timers tick.
//
// An instruction that does not decode yields an *UnknownOpcodeError; the
// machine remains usable and PC is moved according to m.Unknown.
// An instruction that would address memory or the stack out of range
// yields a *FaultError and leaves the machine as it was before the
// instruction, timers included.
func (m *Machine) Cycle() (err error) {
	var (
		pc = m.PC
		in Instruction
	)
	defer func() {
		if e := recover(); e != nil {
			f, ok := e.(Fault)
			if !ok {
				panic(e)
			}
			err = &FaultError{Fault: f, Instruction: in, Addr: pc}
		}
	}()

	if m.wait.active {
		m.awaitKey()
	} else {
		in = m.fetch()
		if in.Op == Unknown {
			if m.Unknown == SkipUnknown {
				m.PC += 2
			}
			err = &UnknownOpcodeError{Word: in.Word, Addr: pc}
		} else {
			m.exec(in)
		}
	}

	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.ST--
	}
	return err
}

func (m *Machine) fetch() Instruction {
	if int(m.PC)+1 >= MemSize {
		panic(PCOutOfRange)
	}
	return Decode(uint16(m.Mem[m.PC])<<8 | uint16(m.Mem[m.PC+1]))
}

func (m *Machine) exec(in Instruction) {
	var (
		x, y = in.X, in.Y
		v    = &m.V
	)
	switch in.Op {
	case CLS:
		m.Display.Clear()
	case RET:
		m.PC = m.Stack.pop() + 2
		return
	case JP:
		m.PC = in.NNN
		return
	case CALL:
		m.Stack.push(m.PC)
		m.PC = in.NNN
		return
	case SEB:
		m.skipIf(v[x] == in.KK)
	case SNEB:
		m.skipIf(v[x] != in.KK)
	case SE:
		m.skipIf(v[x] == v[y])
	case LDB:
		v[x] = in.KK
	case ADDB:
		v[x] += in.KK
	case LD:
		v[x] = v[y]
	case OR:
		v[x] |= v[y]
	case AND:
		v[x] &= v[y]
	case XOR:
		v[x] ^= v[y]
	case ADD:
		sum := uint16(v[x]) + uint16(v[y])
		v[0xf] = flag(sum > 0xff)
		v[x] = byte(sum)
	case SUB:
		v[0xf] = flag(v[x] >= v[y])
		v[x] = v[x] - v[y]
	case SHR:
		v[0xf] = v[x] & 1
		v[x] >>= 1
	case SUBN:
		v[0xf] = flag(v[y] >= v[x])
		v[x] = v[y] - v[x]
	case SHL:
		v[0xf] = v[x] >> 7
		v[x] <<= 1
	case SNE:
		m.skipIf(v[x] != v[y])
	case LDI:
		m.I = in.NNN
	case JPV0:
		m.PC = in.NNN + uint16(v[0])
		return
	case RND:
		v[x] = m.randByte() & in.KK
	case DRW:
		sprite := m.memAtI(int(in.N))
		v[0xf] = flag(m.Display.Draw(v[x], v[y], sprite))
	case SKP:
		m.skipIf(m.keyDown(v[x]))
	case SKNP:
		m.skipIf(!m.keyDown(v[x]))
	case LDDT:
		v[x] = m.DT
	case LDK:
		m.wait = waitState{active: true, reg: x}
		m.awaitKey()
		return
	case SETDT:
		m.DT = v[x]
	case SETST:
		m.ST = v[x]
	case ADDI:
		v[0xf] = flag(int(m.I)+int(v[x]) > 0xfff)
		m.I += uint16(v[x])
	case LDF:
		m.I = FontAddr(v[x])
	case BCD:
		mem := m.memAtI(3)
		mem[0] = v[x] / 100
		mem[1] = v[x] / 10 % 10
		mem[2] = v[x] % 10
	case STM:
		n := int(x) + 1
		copy(m.memAtI(n), v[:n])
		m.I += uint16(n)
	case LDM:
		n := int(x) + 1
		copy(v[:n], m.memAtI(n))
		m.I += uint16(n)
	default:
		panic(fmt.Errorf("internal error: %v not implemented", in.Op))
	}
	m.PC += 2
}

// skipIf advances PC past the next instruction if cond is true.
// The caller still advances past the current one.
func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC += 2
	}
}

// awaitKey completes a pending LDK if any key is down.
func (m *Machine) awaitKey() {
	for k, down := range m.Keys {
		if down {
			m.V[m.wait.reg] = byte(k)
			m.wait = waitState{}
			m.PC += 2
			return
		}
	}
}

func (m *Machine) keyDown(k byte) bool {
	return int(k) < len(m.Keys) && m.Keys[k]
}

// memAtI returns the n bytes of memory starting at I.
func (m *Machine) memAtI(n int) []byte {
	end := int(m.I) + n
	if end > MemSize {
		panic(MemoryOutOfRange)
	}
	return m.Mem[m.I:end]
}

func (m *Machine) randByte() byte {
	if m.rand == nil {
		m.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return byte(m.rand.Intn(0x100))
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// UnknownOpcodeError is returned by Cycle when the fetched instruction
// word is not a defined operation.
type UnknownOpcodeError struct {
	Word uint16
	Addr uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %.4x at %.3x", e.Word, e.Addr)
}

// FaultError is returned by Cycle if an instruction would access memory
// or the stack out of range.
type FaultError struct {
	Fault
	Instruction Instruction
	Addr        uint16
}

func (e *FaultError) Error() string {
	if e.Fault == PCOutOfRange {
		return fmt.Sprintf("%s at %.4x", e.Fault, e.Addr)
	}
	return fmt.Sprintf("%s executing %s at %.3x", e.Fault, e.Instruction, e.Addr)
}

// Fault signifies the kind of out of range access that stopped an
// instruction.
type Fault byte

const (
	PCOutOfRange     Fault = 0x01
	StackOverflow    Fault = 0x02
	StackUnderflow   Fault = 0x03
	MemoryOutOfRange Fault = 0x04
)

func (f Fault) String() string {
	if s, ok := map[Fault]string{
		PCOutOfRange:     "program counter out of range",
		StackOverflow:    "stack overflow",
		StackUnderflow:   "stack underflow",
		MemoryOutOfRange: "memory access out of range",
	}[f]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(f))
}
