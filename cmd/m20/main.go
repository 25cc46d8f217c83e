// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/ezrec/m20/arith"
	"github.com/ezrec/m20/emulator"
	"github.com/ezrec/m20/translate"
)

func main() {
	var config string
	var program string
	var strategy string
	var cards string
	var printer string
	var punch string
	var dump string
	var lang string
	var stats bool
	var state bool
	var verbose bool

	flag.StringVar(&config, "c", "", "Machine configuration script (starlark)")
	flag.StringVar(&program, "p", "", "Program text file to load")
	flag.StringVar(&strategy, "a", "", "Arithmetic strategy: shura-bura or legacy")
	flag.StringVar(&cards, "cards", "", "Card reader deck")
	flag.StringVar(&printer, "printer", "-", "Line printer output")
	flag.StringVar(&punch, "punch", "", "Card punch output")
	flag.StringVar(&dump, "dump", "", "Dump memory to a program text file after the run")
	flag.StringVar(&lang, "lang", "", "Message language, instead of the system locale")
	flag.BoolVar(&stats, "s", false, "Print the instruction time profile")
	flag.BoolVar(&state, "state", false, "Print the machine state after the run")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		translate.SetLanguage(lang)
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose

	if len(strategy) != 0 {
		s, err := arith.ParseStrategy(strategy)
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}
		emu.Cpu.Alu.Strategy = s
	}

	devices := []struct {
		path string
		set  func(string) error
	}{
		{printer, emu.SetPrinter},
		{punch, emu.SetPunch},
		{cards, emu.SetCards},
	}
	for _, device := range devices {
		if len(device.path) == 0 {
			continue
		}
		err := device.set(device.path)
		if err != nil {
			log.Fatalf("%v: %v", device.path, err)
		}
	}

	if len(config) != 0 {
		err := emu.ConfigureFile(config)
		if err != nil {
			log.Fatalf("%v: %v", config, err)
		}
	}

	if len(program) != 0 {
		err := emu.LoadFile(program)
		if err != nil {
			log.Fatalf("%v: %v", program, err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := emu.Run(ctx)
	cancel()

	status := 0
	if !emulator.Halted(err) {
		status = 1
	}
	fmt.Fprintln(os.Stderr, err)

	if stats {
		err = emu.Cpu.Profile.Report(os.Stdout)
		if err != nil {
			log.Printf("profile: %v", err)
		}
	}

	if state {
		printState(emu)
	}

	if len(dump) != 0 {
		err = dumpMemory(emu, dump, program)
		if err != nil {
			log.Printf("%v: %v", dump, err)
			status = 1
		}
	}

	err = emu.Close()
	if err != nil {
		log.Printf("%v: %v", os.Args[0], err)
		status = 1
	}

	os.Exit(status)
}

// dumpMemory writes memory in the program text format.
func dumpMemory(emu *emulator.Emulator, path string, name string) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}

	err = emu.Cpu.Dump(ouf, name)
	err = errors.Join(err, ouf.Close())
	return
}
