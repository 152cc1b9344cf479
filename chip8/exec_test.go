package chip8

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
)

func TestCycle(t *testing.T) {
	c := newCycleTestCase
	fullStack := make([]uint16, StackDepth)
	for i := range fullStack {
		fullStack[i] = 0x300 + uint16(i)*2
	}
	for i, c := range []*cycleTestCase{
		c(0x00e0).pix(0, 0).pix(63, 31).want().unpix(0, 0).unpix(63, 31).changed(),
		c(0x00ee).stack(0x300).want().stack().pc(0x302),
		c(0x00ee).stack(0x300, 0x400).want().stack(0x300).pc(0x402),

		c(0x1abc).want().pc(0xabc),
		c(0x2abc).want().stack(0x200).pc(0xabc),
		c(0x2abc).stack(0x300).want().stack(0x300, 0x200).pc(0xabc),

		c(0x3a12).v(0xa, 0x12).want().pc(0x204),
		c(0x3a12).v(0xa, 0x13),
		c(0x4a12).v(0xa, 0x12),
		c(0x4a12).v(0xa, 0x13).want().pc(0x204),
		c(0x5ab0).v(0xa, 7).v(0xb, 7).want().pc(0x204),
		c(0x5ab0).v(0xa, 7).v(0xb, 8),
		c(0x9ab0).v(0xa, 7).v(0xb, 7),
		c(0x9ab0).v(0xa, 7).v(0xb, 8).want().pc(0x204),

		c(0x6a42).want().v(0xa, 0x42),
		c(0x7a01).v(0xa, 0x41).want().v(0xa, 0x42),
		c(0x7a01).v(0xa, 0xff).want().v(0xa, 0x00),
		c(0x7f01).v(0xf, 0xff).want().v(0xf, 0x00),

		c(0x8010).v(1, 0x42).want().v(0, 0x42),
		c(0x8011).v(0, 0x36).v(1, 0x63).want().v(0, 0x77),
		c(0x8012).v(0, 0x99).v(1, 0xb8).want().v(0, 0x98),
		c(0x8013).v(0, 0x31).v(1, 0x13).want().v(0, 0x22),

		c(0x8014).v(0, 0xff).v(1, 0x01).want().v(0, 0x00).v(0xf, 1),
		c(0x8014).v(0, 0x10).v(1, 0x20).v(0xf, 1).want().v(0, 0x30).v(0xf, 0),
		c(0x8f14).v(0xf, 0xff).v(1, 0x02).want().v(0xf, 0x01),

		c(0x8015).v(0, 0x01).v(1, 0x02).want().v(0, 0xff).v(0xf, 0),
		c(0x8015).v(0, 0x05).v(1, 0x03).want().v(0, 0x02).v(0xf, 1),
		c(0x8015).v(0, 0x05).v(1, 0x05).want().v(0, 0x00).v(0xf, 1),

		c(0x8016).v(0, 0x05).want().v(0, 0x02).v(0xf, 1),
		c(0x8016).v(0, 0x04).v(0xf, 1).want().v(0, 0x02).v(0xf, 0),

		c(0x8017).v(0, 0x02).v(1, 0x01).want().v(0, 0xff).v(0xf, 0),
		c(0x8017).v(0, 0x03).v(1, 0x05).want().v(0, 0x02).v(0xf, 1),
		c(0x8017).v(0, 0x05).v(1, 0x05).want().v(0, 0x00).v(0xf, 1),

		c(0x801e).v(0, 0x81).want().v(0, 0x02).v(0xf, 1),
		c(0x801e).v(0, 0x41).v(0xf, 1).want().v(0, 0x82).v(0xf, 0),

		c(0xa123).want().i(0x123),
		c(0xb300).v(0, 0x10).want().pc(0x310),
		c(0xc500).v(5, 0x33).want().v(5, 0x00),

		c(0xd011).i(0x300).mem(0x300, 0x80).want().pix(0, 0).changed(),
		c(0xd011).i(0x300).mem(0x300, 0x80).pix(0, 0).want().unpix(0, 0).changed().v(0xf, 1),
		c(0xd011).i(0x300).mem(0x300, 0x80).v(0, 66).v(1, 33).want().pix(2, 1).changed(),
		c(0xd010).v(0xf, 1).want().v(0xf, 0).changed(),

		c(0xe09e).key(3).v(0, 3).want().pc(0x204),
		c(0xe09e).key(3).v(0, 4),
		c(0xe09e).key(0).v(0, 0x10),
		c(0xe0a1).key(3).v(0, 3),
		c(0xe0a1).key(3).v(0, 4).want().pc(0x204),
		c(0xe0a1).key(0).v(0, 0x10).want().pc(0x204),

		c(0xf207).dt(9).want().v(2, 9).dt(8),
		c(0xf215).v(2, 9).want().dt(8),
		c(0xf218).v(2, 9).want().st(8),
		c(0x6000).dt(3).st(1).want().dt(2).st(0),

		c(0xf40a).key(9).key(5).want().v(4, 5),
		c(0xf40a).want().pc(0x200).waiting(4),
		c(0xf40a).waiting(4).want().pc(0x200),
		c(0xf40a).waiting(4).dt(2).want().pc(0x200).dt(1),
		c(0xf40a).waiting(4).key(0xc).want().v(4, 0xc).ready(),

		c(0xf11e).i(0x100).v(1, 0x20).want().i(0x120),
		c(0xf11e).i(0xfff).v(1, 0x01).want().i(0x1000).v(0xf, 1),
		c(0xf11e).i(0x100).v(1, 0x01).v(0xf, 1).want().i(0x101).v(0xf, 0),

		c(0xf229).v(2, 0xa).want().i(50),
		c(0xf229).v(2, 0x0).i(0x300).want().i(0),

		c(0xf333).v(3, 255).i(0x300).want().mem(0x300, 2, 5, 5),
		c(0xf333).v(3, 7).i(0x300).want().mem(0x300, 0, 0, 7),
		c(0xf333).v(3, 128).i(0x300).want().mem(0x300, 1, 2, 8),

		c(0xf355).v(0, 1).v(1, 2).v(2, 3).v(3, 4).v(4, 5).i(0x300).
			want().mem(0x300, 1, 2, 3, 4).i(0x304),
		c(0xf055).v(0, 9).i(0x300).want().mem(0x300, 9).i(0x301),
		c(0xf365).mem(0x300, 1, 2, 3, 4, 5).i(0x300).
			want().v(0, 1).v(1, 2).v(2, 3).v(3, 4).i(0x304),

		c(0x0123).want().error(&UnknownOpcodeError{Word: 0x0123, Addr: 0x200}),
		c(0x5121).want().error(&UnknownOpcodeError{Word: 0x5121, Addr: 0x200}),
		c(0x8018).want().error(&UnknownOpcodeError{Word: 0x8018, Addr: 0x200}),
		c(0xe0ff).want().error(&UnknownOpcodeError{Word: 0xe0ff, Addr: 0x200}),
		c(0xf0ff).dt(2).want().dt(1).error(&UnknownOpcodeError{Word: 0xf0ff, Addr: 0x200}),
		c(0xf0ff).stall().want().pc(0x200).error(&UnknownOpcodeError{Word: 0xf0ff, Addr: 0x200}),

		c(0x00ee).dt(2).want().pc(0x200).dt(2).
			error(&FaultError{Fault: StackUnderflow, Instruction: Decode(0x00ee), Addr: 0x200}),
		c(0x2abc).stack(fullStack...).want().pc(0x200).
			error(&FaultError{Fault: StackOverflow, Instruction: Decode(0x2abc), Addr: 0x200}),
		c(0xd012).i(0xfff).want().pc(0x200).
			error(&FaultError{Fault: MemoryOutOfRange, Instruction: Decode(0xd012), Addr: 0x200}),
		c(0xf333).i(0xffe).v(0, 1).want().pc(0x200).
			error(&FaultError{Fault: MemoryOutOfRange, Instruction: Decode(0xf333), Addr: 0x200}),
		c(0xff55).i(0xff1).want().pc(0x200).
			error(&FaultError{Fault: MemoryOutOfRange, Instruction: Decode(0xff55), Addr: 0x200}),
		c(0xff65).i(0xff0).want().i(0x1000),
	} {
		t.Run(fmt.Sprintf("%s_%d", c.in, i), func(t *testing.T) {
			if err := c.m.Cycle(); !reflect.DeepEqual(err, c.err) {
				t.Fatalf("got error %v, want %v", err, c.err)
			}
			c.check(t)
		})
	}
}

func TestCycleRandom(t *testing.T) {
	// RND must draw from the machine's own seeded source.
	a, b := &Machine{Seed: 42}, &Machine{Seed: 42}
	rom := []byte{0xc0, 0xff, 0xc1, 0xff, 0xc2, 0x0f}
	for _, m := range []*Machine{a, b} {
		if err := m.Load(rom); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 3; i++ {
			if err := m.Cycle(); err != nil {
				t.Fatal(err)
			}
		}
	}
	if a.V != b.V {
		t.Errorf("same seed gave registers %v and %v", a.V, b.V)
	}
	r := rand.New(rand.NewSource(42))
	for i, mask := range []int{0xff, 0xff, 0x0f} {
		if want := byte(r.Intn(0x100) & mask); a.V[i] != want {
			t.Errorf("V%X = %.2x, want %.2x", i, a.V[i], want)
		}
	}
	if a.V[2] > 0x0f {
		t.Errorf("RND with mask 0f gave %.2x", a.V[2])
	}
}

func TestCyclePCOutOfRange(t *testing.T) {
	m := newTestMachine()
	m.PC = 0xfff
	m.DT = 5
	err := m.Cycle()
	want := &FaultError{Fault: PCOutOfRange, Addr: 0xfff}
	if !reflect.DeepEqual(err, want) {
		t.Fatalf("got error %v, want %v", err, want)
	}
	if m.PC != 0xfff || m.DT != 5 {
		t.Errorf("PC, DT = %.3x, %d; want fff, 5", m.PC, m.DT)
	}
	if got, want := err.Error(), "program counter out of range at 0fff"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFaultErrorString(t *testing.T) {
	err := &FaultError{Fault: StackUnderflow, Instruction: Decode(0x00ee), Addr: 0x2a4}
	if got, want := err.Error(), "stack underflow executing RET at 2a4"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

type cycleTestCase struct {
	in   Instruction
	m, w *Machine
	err  error
	set  *Machine
}

func newTestMachine() *Machine {
	m := &Machine{Seed: 1}
	m.Reset()
	return m
}

func newCycleTestCase(word uint16) *cycleTestCase {
	c := &cycleTestCase{
		in: Decode(word),
		m:  newTestMachine(),
		w:  newTestMachine(),
	}
	c.set = c.m
	c.mem(ProgramStart, byte(word>>8), byte(word))
	c.w.PC += 2
	return c
}

// each applies f to the machine being configured, and while configuring
// the input machine also to the wanted machine.
func (c *cycleTestCase) each(f func(m *Machine)) *cycleTestCase {
	f(c.set)
	if c.set == c.m {
		f(c.w)
	}
	return c
}

func (c *cycleTestCase) v(reg, val byte) *cycleTestCase {
	return c.each(func(m *Machine) { m.V[reg] = val })
}

func (c *cycleTestCase) i(addr uint16) *cycleTestCase {
	return c.each(func(m *Machine) { m.I = addr })
}

func (c *cycleTestCase) dt(v byte) *cycleTestCase {
	return c.each(func(m *Machine) { m.DT = v })
}

func (c *cycleTestCase) st(v byte) *cycleTestCase {
	return c.each(func(m *Machine) { m.ST = v })
}

func (c *cycleTestCase) key(k byte) *cycleTestCase {
	return c.each(func(m *Machine) { m.Keys[k] = true })
}

func (c *cycleTestCase) mem(addr uint16, bytes ...byte) *cycleTestCase {
	return c.each(func(m *Machine) { copy(m.Mem[addr:], bytes) })
}

func (c *cycleTestCase) stack(addrs ...uint16) *cycleTestCase {
	return c.each(func(m *Machine) {
		m.Stack = Stack{}
		for _, a := range addrs {
			m.Stack.push(a)
		}
	})
}

func (c *cycleTestCase) pix(x, y int) *cycleTestCase {
	return c.each(func(m *Machine) { m.Display.Pix[y][x] = true })
}

func (c *cycleTestCase) unpix(x, y int) *cycleTestCase {
	return c.each(func(m *Machine) { m.Display.Pix[y][x] = false })
}

func (c *cycleTestCase) changed() *cycleTestCase {
	return c.each(func(m *Machine) { m.Display.Changed = true })
}

func (c *cycleTestCase) waiting(reg byte) *cycleTestCase {
	return c.each(func(m *Machine) { m.wait = waitState{active: true, reg: reg} })
}

func (c *cycleTestCase) ready() *cycleTestCase {
	return c.each(func(m *Machine) { m.wait = waitState{} })
}

func (c *cycleTestCase) stall() *cycleTestCase {
	return c.each(func(m *Machine) { m.Unknown = StallUnknown })
}

func (c *cycleTestCase) pc(addr uint16) *cycleTestCase {
	c.set.PC = addr
	return c
}

func (c *cycleTestCase) want() *cycleTestCase {
	c.set = c.w
	return c
}

func (c *cycleTestCase) error(err error) *cycleTestCase {
	c.err = err
	return c
}

func (c *cycleTestCase) check(t *testing.T) {
	t.Helper()
	g, w := c.m, c.w
	for i := range g.V {
		if g.V[i] != w.V[i] {
			t.Errorf("V%X = %.2x, want %.2x", i, g.V[i], w.V[i])
		}
	}
	if g.I != w.I {
		t.Errorf("I = %.3x, want %.3x", g.I, w.I)
	}
	if g.PC != w.PC {
		t.Errorf("PC = %.3x, want %.3x", g.PC, w.PC)
	}
	if g.Stack != w.Stack {
		t.Errorf("stack is %v, want %v", g.Stack, w.Stack)
	}
	if g.DT != w.DT || g.ST != w.ST {
		t.Errorf("DT, ST = %d, %d; want %d, %d", g.DT, g.ST, w.DT, w.ST)
	}
	if g.Mem != w.Mem {
		for i := range g.Mem {
			if g.Mem[i] != w.Mem[i] {
				t.Errorf("memory[%.3x] = %.2x, want %.2x", i, g.Mem[i], w.Mem[i])
			}
		}
	}
	if g.Display != w.Display {
		t.Errorf("display is\n%vchanged=%v\nwant\n%vchanged=%v",
			&g.Display, g.Display.Changed, &w.Display, w.Display.Changed)
	}
	if g.wait != w.wait {
		t.Errorf("wait state is %+v, want %+v", g.wait, w.wait)
	}
}
