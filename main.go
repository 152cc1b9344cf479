// Command chip8-emulator executes CHIP-8 programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/sameersaeed/chip8-emulator/vip"
)

func main() {
	log.SetPrefix("chip8: ")
	log.SetFlags(0)

	var (
		cfg vip.Config

		cliFlag      = flag.Bool("cli", false, "run in the terminal instead of a window")
		headlessFlag = flag.Bool("headless", false, "run with no display or input")
		devFlag      = flag.Bool("dev", false, "enable developer mode (reload the program when its file changes)")
		scaleFlag    = flag.Int("scale", 10, "draw each pixel as a `square` of this many window pixels")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)
	flag.IntVar(&cfg.Hz, "hz", vip.DefaultHz, "execute this many instructions per `second`")
	flag.Var(&cfg.Unknown, "unknown", "on an unknown opcode, skip it or stall on it (`skip|stall`)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-cli | -headless] [-dev] <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	if *scaleFlag < 1 {
		fmt.Fprintf(os.Stderr, "invalid -scale %d: must be at least 1\n", *scaleFlag)
		flag.Usage()
	}
	cfg.Dev = *devFlag

	romFile := flag.Arg(0)
	front := newFrontend(filepath.Base(romFile), *cliFlag, *headlessFlag, *scaleFlag)

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err := run(romFile, cfg, front)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func newFrontend(title string, cli, headless bool, scale int) vip.Frontend {
	switch {
	case headless:
		return vip.Headless{}
	case cli:
		return vip.NewTerminal(title)
	default:
		return vip.NewGUI(title, scale)
	}
}

func run(romFile string, cfg vip.Config, f vip.Frontend) error {
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return err
	}
	r := vip.NewRunner(cfg)
	if cfg.Dev {
		stop, err := watchROM(romFile, r)
		if err != nil {
			return err
		}
		defer stop()
	}
	if err := r.Run(rom, f); err != nil {
		return fmt.Errorf("%s: %v", filepath.Base(romFile), err)
	}
	return nil
}
