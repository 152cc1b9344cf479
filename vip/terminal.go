package vip

import (
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/sameersaeed/chip8-emulator/chip8"
)

// KeyHold is how long the terminal frontend holds a key down after the
// last press of it. Terminals report presses (and repeats) but never
// releases.
const KeyHold = 250 * time.Millisecond

// Terminal is a Frontend that draws the display with half-block
// characters, two CHIP-8 rows per terminal row, above a pane showing
// log output.
type Terminal struct {
	title string

	mu    sync.Mutex
	pix   [chip8.Height][chip8.Width]bool
	held  [chip8.NumKeys]time.Time // zero if up
	clock func() time.Time

	screen tcell.Screen // if nil, the terminal
}

func NewTerminal(title string) *Terminal {
	return &Terminal{title: title, clock: time.Now}
}

func (t *Terminal) Run(io *IO, exit <-chan bool) error {
	var (
		app  = tview.NewApplication()
		logs = tview.NewTextView().SetMaxLines(1000)
		box  = tview.NewBox()
		rows = tview.NewFlex().SetDirection(tview.FlexRow)
	)
	if t.screen != nil {
		app.SetScreen(t.screen)
	}
	logs.SetChangedFunc(func() { app.Draw() })
	box.SetBorder(true).SetTitle(" " + t.title + " ")
	box.SetDrawFunc(func(s tcell.Screen, x, y, width, height int) (int, int, int, int) {
		t.draw(s, x+1, y+1, width-2, height-2)
		return x, y, width, height
	})
	rows.
		AddItem(box, chip8.Height/2+2, 0, false).
		AddItem(logs, 0, 1, false)
	app.SetRoot(rows, true)

	app.SetInputCapture(func(e *tcell.EventKey) *tcell.EventKey {
		switch e.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if k, ok := KeyForRune(e.Rune()); ok {
				t.press(io, k)
				return nil
			}
		}
		return e
	})

	prev := log.Writer()
	log.SetOutput(logs)
	defer log.SetOutput(prev)

	// Stop is a no-op until Run has taken the screen, so nothing may
	// stop the app before its first queued update has run.
	started := make(chan bool)
	go app.QueueUpdate(func() { close(started) })

	stop := make(chan bool)
	defer close(stop)
	go func() {
		select {
		case <-started:
		case <-stop:
			return
		}
		tick := time.NewTicker(time.Second / FrameRate)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				t.releaseExpired(io)
				if t.update(io) {
					app.QueueUpdateDraw(func() {})
				}
			case <-exit:
				app.Stop()
				return
			case <-stop:
				return
			}
		}
	}()
	return app.Run()
}

// update copies a changed display, reporting whether it did.
func (t *Terminal) update(io *IO) (changed bool) {
	io.Frame(func(d *chip8.Display) {
		if !d.Changed {
			return
		}
		t.mu.Lock()
		t.pix = d.Pix
		t.mu.Unlock()
		d.Changed = false
		changed = true
	})
	return changed
}

func (t *Terminal) press(io *IO, k byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.held[k].IsZero() {
		io.SetKey(k, true)
	}
	t.held[k] = t.clock().Add(KeyHold)
}

func (t *Terminal) releaseExpired(io *IO) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	for k, until := range t.held {
		if !until.IsZero() && !now.Before(until) {
			t.held[k] = time.Time{}
			io.SetKey(byte(k), false)
		}
	}
}

func (t *Terminal) draw(s tcell.Screen, x0, y0, width, height int) {
	var (
		bg = tcell.NewRGBColor(int32(Background.R), int32(Background.G), int32(Background.B))
		fg = tcell.NewRGBColor(int32(Foreground.R), int32(Foreground.G), int32(Foreground.B))
	)
	colorAt := func(on bool) tcell.Color {
		if on {
			return fg
		}
		return bg
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for row := 0; row < chip8.Height/2 && row < height; row++ {
		for x := 0; x < chip8.Width && x < width; x++ {
			style := tcell.StyleDefault.
				Foreground(colorAt(t.pix[2*row][x])).
				Background(colorAt(t.pix[2*row+1][x]))
			s.SetContent(x0+x, y0+row, '▀', nil, style)
		}
	}
}
