package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/sameersaeed/chip8-emulator/vip"
)

// reloadDelay is how long romFile must go unmodified before it is
// reloaded, so that a ROM is not read while it is still being written.
const reloadDelay = 100 * time.Millisecond

// watchROM swaps romFile into r each time the file changes,
// until stop is called.
func watchROM(romFile string, r *vip.Runner) (stop func(), err error) {
	romFile = filepath.Clean(romFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan bool)
	go func() {
		var reload <-chan time.Time
		for {
			select {
			case <-reload:
				reload = nil
				rom, err := os.ReadFile(romFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				log.Printf("dev: reload %s", filepath.Base(romFile))
				if err := r.Swap(rom); err != nil {
					log.Printf("dev: %v", err)
				}
			case ev, ok := <-watcher.Event:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) == romFile && !ev.IsAttrib() {
					reload = time.After(reloadDelay)
				}
			case err, ok := <-watcher.Error:
				if !ok {
					return
				}
				log.Printf("dev: watcher: %v", err)
			case <-done:
				return
			}
		}
	}()
	return func() {
		close(done)
		watcher.Close()
	}, nil
}
