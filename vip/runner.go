package vip

import (
	"errors"
	"log"
)

// Frontend presents a running machine to the user.
// Run should return when exit is closed or the user quits.
type Frontend interface {
	Run(io *IO, exit <-chan bool) error
}

// FrontendFunc adapts an ordinary function to the Frontend interface.
type FrontendFunc func(io *IO, exit <-chan bool) error

func (f FrontendFunc) Run(io *IO, exit <-chan bool) error { return f(io, exit) }

// Headless is a Frontend with no display or input.
type Headless struct{}

func (Headless) Run(io *IO, exit <-chan bool) error {
	<-exit
	return nil
}

// ErrStopped is returned by Swap once the runner has stopped.
var ErrStopped = errors.New("runner stopped")

// Runner executes a program with a frontend, and in dev mode lets the
// program be replaced while the frontend keeps running.
type Runner struct {
	cfg Config

	reset     chan *VIP
	resetDone chan bool
	stopped   chan bool
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:       cfg,
		reset:     make(chan *VIP),
		resetDone: make(chan bool),
		stopped:   make(chan bool),
	}
}

// Swap halts the running program and starts rom in its place.
// If rom cannot be loaded the running program is left alone.
func (r *Runner) Swap(rom []byte) error {
	if !r.cfg.Dev {
		panic("Swap called while not running in dev mode")
	}
	v, err := New(rom, r.cfg)
	if err != nil {
		return err
	}
	select {
	case r.reset <- v:
		<-r.resetDone
		return nil
	case <-r.stopped:
		return ErrStopped
	}
}

// Run executes rom until the frontend returns or, outside dev mode, the
// program faults. It returns the frontend's error if any, otherwise the
// fault that ended the program. A Runner runs once.
func (r *Runner) Run(rom []byte, f Frontend) error {
	v, err := New(rom, r.cfg)
	if err != nil {
		return err
	}
	var (
		io     = newIO()
		exit   = make(chan bool)
		done   = make(chan bool)
		result = make(chan error, 1)
	)
	go func() {
		defer close(r.stopped)
		var (
			execErr = make(chan error)
			running = true
		)
		go func() { execErr <- v.Exec(io) }()
		for {
			select {
			case newV := <-r.reset:
				if running {
					v.Halt()
					<-execErr
				}
				v = newV
				running = true
				go func() { execErr <- v.Exec(io) }()
				r.resetDone <- true
			case err := <-execErr:
				running = false
				if r.cfg.Dev {
					log.Printf("exec: %v", err)
					break
				}
				result <- err
				close(exit)
				return
			case <-done:
				if running {
					v.Halt()
					<-execErr
				}
				result <- nil
				return
			}
		}
	}()
	ferr := f.Run(io, exit)
	close(done)
	err = <-result
	if ferr != nil {
		return ferr
	}
	return err
}
