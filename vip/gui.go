package vip

import (
	"image"
	"image/color"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/sameersaeed/chip8-emulator/chip8"
)

var (
	Background = color.RGBA{0x1a, 0x23, 0x7e, 0xff}
	Foreground = color.RGBA{0x9f, 0xa8, 0xda, 0xff}
)

// GUI is a Frontend that shows the display in a window, each CHIP-8 pixel
// drawn as a square of scale by scale screen pixels.
type GUI struct {
	title string
	scale int

	frame *image.RGBA // one pixel per CHIP-8 pixel
}

func NewGUI(title string, scale int) *GUI {
	if scale < 1 {
		scale = 1
	}
	return &GUI{
		title: title,
		scale: scale,
		frame: image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height)),
	}
}

func (g *GUI) Run(io *IO, exit <-chan bool) (err error) {
	driver.Main(func(s screen.Screen) {
		sz := image.Point{chip8.Width * g.scale, chip8.Height * g.scale}
		w, werr := s.NewWindow(&screen.NewWindowOptions{
			Title:  g.title,
			Width:  sz.X,
			Height: sz.Y,
		})
		if werr != nil {
			err = werr
			return
		}
		defer w.Release()

		buf, berr := s.NewBuffer(sz)
		if berr != nil {
			err = berr
			return
		}
		defer buf.Release()
		tex, terr := s.NewTexture(sz)
		if terr != nil {
			err = terr
			return
		}
		defer tex.Release()

		stop := make(chan bool)
		defer close(stop)
		go sendUpdates(w, exit, stop)

		var (
			ws    size.Event
			dirty = true
		)
		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case size.Event:
				ws = e
				if ws.WidthPx+ws.HeightPx == 0 {
					return
				}
				dirty = true

			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case paint.Event:
				dirty = true

			case key.Event:
				if e.Code == key.CodeEscape {
					return
				}
				if e.Direction == key.DirNone {
					// Auto-repeat.
					break
				}
				if k, ok := KeyForRune(e.Rune); ok {
					io.SetKey(k, e.Direction == key.DirPress)
				}

			case update:
				io.Frame(func(d *chip8.Display) {
					if !d.Changed {
						return
					}
					g.render(d)
					draw.NearestNeighbor.Scale(buf.RGBA(), buf.Bounds(), g.frame, g.frame.Bounds(), draw.Src, nil)
					d.Changed = false
					dirty = true
				})
				if dirty && ws.WidthPx > 0 {
					tex.Upload(image.Point{}, buf, buf.Bounds())
					w.Scale(ws.Bounds(), tex, tex.Bounds(), draw.Src, nil)
					w.Publish()
					dirty = false
				}

			case error:
				log.Print(e)
			}
		}
	})
	return err
}

type update struct{}

// sendUpdates sends an update event to w every frame until exit is closed,
// and once more after that so an event loop blocked on w sees exit.
// It returns without sending when stop is closed.
func sendUpdates(w interface{ Send(event interface{}) }, exit, stop <-chan bool) {
	t := time.NewTicker(time.Second / FrameRate)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			w.Send(update{})
		case <-exit:
			w.Send(update{})
			return
		case <-stop:
			return
		}
	}
}

func (g *GUI) render(d *chip8.Display) {
	for y := 0; y < chip8.Height; y++ {
		for x := 0; x < chip8.Width; x++ {
			c := Background
			if d.On(x, y) {
				c = Foreground
			}
			g.frame.SetRGBA(x, y, c)
		}
	}
}
