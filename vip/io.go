package vip

import "github.com/sameersaeed/chip8-emulator/chip8"

// IO connects a running VIP to a frontend.
// Its methods never block on the machine.
type IO struct {
	keys       chan keyEvent
	update     chan *chip8.Display
	updateDone chan bool
}

type keyEvent struct {
	key  byte
	down bool
}

// keyBacklog is the number of key events that may be queued between
// cycles before further events are dropped.
const keyBacklog = 64

// newIO returns an IO with an empty key queue and no frame on offer.
func newIO() *IO {
	return &IO{
		keys:       make(chan keyEvent, keyBacklog),
		update:     make(chan *chip8.Display),
		updateDone: make(chan bool),
	}
}

// SetKey records that hex key k was pressed or released.
// The machine sees the change before its next cycle.
func (io *IO) SetKey(k byte, down bool) {
	if int(k) >= chip8.NumKeys {
		return
	}
	select {
	case io.keys <- keyEvent{k, down}:
	default:
	}
}

// Frame calls f with the machine's display if the machine is between
// frames, and reports whether it did. The machine waits for f to return.
// f should clear d.Changed once it has consumed the frame.
func (io *IO) Frame(f func(d *chip8.Display)) bool {
	select {
	case d := <-io.update:
		f(d)
		io.updateDone <- true
		return true
	default:
		return false
	}
}
