// Package vip hosts a CHIP-8 machine: it paces execution against the
// 60 Hz frame clock, feeds it key state and hands its display to a
// frontend.
package vip

import (
	"errors"
	"log"
	"time"

	"github.com/sameersaeed/chip8-emulator/chip8"
)

// DefaultHz is the number of cycles executed per second when Config.Hz
// is not set.
const DefaultHz = 500

// FrameRate is the number of frames per second, which is also the rate at
// which a frontend may take the display.
const FrameRate = 60

// Config controls how a VIP runs its machine.
type Config struct {
	Hz      int                 // cycles per second
	Unknown chip8.UnknownPolicy // handling of undefined instructions
	Dev     bool                // permit Runner.Swap; log faults instead of exiting
}

func (c Config) cyclesPerFrame() int {
	hz := c.Hz
	if hz <= 0 {
		hz = DefaultHz
	}
	if n := hz / FrameRate; n > 0 {
		return n
	}
	return 1
}

// VIP runs a single chip8.Machine.
type VIP struct {
	m       *chip8.Machine
	cycles  int
	unknown map[uint16]bool // addresses of unknown opcodes already logged

	halt chan bool
}

// New returns a VIP with rom loaded into a fresh machine.
func New(rom []byte, cfg Config) (*VIP, error) {
	m := &chip8.Machine{Unknown: cfg.Unknown}
	if err := m.Load(rom); err != nil {
		return nil, err
	}
	// Present the blank screen, so a frontend drops whatever it showed
	// for a previous program.
	m.Display.Changed = true
	return &VIP{
		m:       m,
		cycles:  cfg.cyclesPerFrame(),
		unknown: make(map[uint16]bool),
		halt:    make(chan bool),
	}, nil
}

// Halt stops a running Exec. It must be called at most once.
func (v *VIP) Halt() {
	close(v.halt)
}

// Exec runs the machine until Halt is called or an instruction faults,
// in which case it returns the *chip8.FaultError. Exec is the only code
// that touches the machine while it runs; io is how everything else
// reaches it.
func (v *VIP) Exec(io *IO) error {
	t := time.NewTicker(time.Second / FrameRate)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := v.frame(io); err != nil {
				return err
			}
		case io.update <- &v.m.Display:
			<-io.updateDone
		case <-v.halt:
			return nil
		}
	}
}

// frame executes one frame's worth of cycles, applying key events that
// arrived before each one.
func (v *VIP) frame(io *IO) error {
	for i := 0; i < v.cycles; i++ {
		v.applyKeys(io)
		err := v.m.Cycle()
		if err == nil {
			continue
		}
		var ue *chip8.UnknownOpcodeError
		if errors.As(err, &ue) {
			if !v.unknown[ue.Addr] {
				v.unknown[ue.Addr] = true
				log.Print(err)
			}
			continue
		}
		return err
	}
	return nil
}

func (v *VIP) applyKeys(io *IO) {
	for {
		select {
		case e := <-io.keys:
			v.m.Keys[e.key] = e.down
		default:
			return
		}
	}
}
