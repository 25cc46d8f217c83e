package emulator

import (
	"fmt"
	"log"
	"os"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/m20/arith"
	"github.com/ezrec/m20/cpu"
	"github.com/ezrec/m20/io"
	"github.com/ezrec/m20/word"
)

type builtin func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

// toWord converts an integer, a real, or a word in the program text syntax.
func toWord(value starlark.Value) (w word.Word, err error) {
	switch value := value.(type) {
	case starlark.Int:
		u, ok := value.Uint64()
		if !ok || (word.Word(u)&^word.WORD45) != 0 {
			err = fmt.Errorf("%w: %v", ErrWordRange, value)
			return
		}
		w = word.Word(u)
	case starlark.Float:
		w = word.FromFloat(float64(value))
	case starlark.String:
		w, _, err = word.Parse(string(value), word.SYNTAX_PROGRAM)
	default:
		err = fmt.Errorf("%w: %v", ErrWordType, value.Type())
	}
	return
}

func fromWord(w word.Word) starlark.Value {
	return starlark.MakeUint64(uint64(w))
}

// unitCall is the form of the builtins taking a unit and a string.
func unitCall(call func(unit int, text string) error) builtin {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var unit int
		var text string
		err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &unit, &text)
		if err != nil {
			return nil, err
		}
		return starlark.None, call(unit, text)
	}
}

// mapCall is the form of the builtins taking two integers.
func mapCall(call func(a, b int) error) builtin {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var a, b int
		err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &a, &b)
		if err != nil {
			return nil, err
		}
		return starlark.None, call(a, b)
	}
}

// enableCall is the form of the builtins taking an optional flag.
func enableCall(flag *bool) builtin {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		on := true
		err := starlark.UnpackArgs(fn.Name(), args, kwargs, "on?", &on)
		if err != nil {
			return nil, err
		}
		*flag = on
		return starlark.None, nil
	}
}

// pathCall is the form of the builtins taking a single path.
func pathCall(call func(path string) error) builtin {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var path string
		err := starlark.UnpackArgs(fn.Name(), args, kwargs, "path", &path)
		if err != nil {
			return nil, err
		}
		return starlark.None, call(path)
	}
}

func accessCall(depot *io.Depot) func(unit int, mode string) error {
	return func(unit int, mode string) (err error) {
		access, err := io.ParseAccess(mode)
		if err != nil {
			return
		}
		err = depot.SetAccess(unit, access)
		return
	}
}

// builtins returns the configuration functions of the emulator.
func (emu *Emulator) builtins() map[string]builtin {
	mem := &emu.Cpu.Memory
	drums := &emu.Cpu.Io.Drums.Depot
	tapes := &emu.Cpu.Io.Tapes.Depot

	return map[string]builtin{
		"attach_drum": unitCall(drums.Attach),
		"attach_tape": unitCall(tapes.Attach),
		"detach_drum": func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var unit int
			err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &unit)
			if err != nil {
				return nil, err
			}
			return starlark.None, drums.Detach(unit)
		},
		"detach_tape": func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var unit int
			err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &unit)
			if err != nil {
				return nil, err
			}
			return starlark.None, tapes.Detach(unit)
		},
		"map_drum":     mapCall(drums.SetMap),
		"map_tape":     mapCall(tapes.SetMap),
		"drum_mode":    unitCall(accessCall(drums)),
		"tape_mode":    unitCall(accessCall(tapes)),
		"map_check":    enableCall(&drums.MapCheck),
		"load":         pathCall(emu.LoadFile),
		"cards":        pathCall(emu.SetCards),
		"printer":      pathCall(emu.SetPrinter),
		"punch":        pathCall(emu.SetPunch),
		"punch_addr":   enableCall(&emu.Punch.Address),
		"mode2":        enableCall(&mem.ModeII),
		"check_memory": enableCall(&emu.Cpu.CheckMemory),
		"boot_cards":   enableCall(&emu.Cpu.BootCards),
		"verbose":      enableCall(&emu.Verbose),
		"start": func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var addr int
			err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr)
			if err != nil {
				return nil, err
			}
			if addr < 0 || addr >= cpu.MEMORY_SIZE {
				return nil, fmt.Errorf("%w: %04o", cpu.ErrProgramAddress, addr)
			}
			emu.Cpu.KRA = addr
			return starlark.None, nil
		},
		"breakpoint": func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var addr int
			err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr)
			if err != nil {
				return nil, err
			}
			if addr < 0 || addr >= cpu.MEMORY_SIZE {
				return nil, fmt.Errorf("%w: %04o", cpu.ErrProgramAddress, addr)
			}
			emu.Cpu.Break[addr] = true
			return starlark.None, nil
		},
		"strategy": func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var name string
			err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &name)
			if err != nil {
				return nil, err
			}
			strategy, err := arith.ParseStrategy(name)
			if err != nil {
				return nil, err
			}
			emu.Cpu.Alu.Strategy = strategy
			return starlark.None, nil
		},
		"panel": func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var n int
			var value starlark.Value
			err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &n, &value)
			if err != nil {
				return nil, err
			}
			if n < 1 || n > len(mem.Panel) {
				return nil, fmt.Errorf("%w: %d", ErrPanelInvalid, n)
			}
			w, err := toWord(value)
			if err != nil {
				return nil, err
			}
			mem.Panel[n-1] = w
			return starlark.None, nil
		},
		"printer_width": func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var width int
			err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &width)
			if err != nil {
				return nil, err
			}
			if width < 1 {
				return nil, fmt.Errorf("%w: %d", ErrWidthInvalid, width)
			}
			emu.Printer.Width = width
			return starlark.None, nil
		},
		"deposit": func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var addr int
			var value starlark.Value
			err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &addr, &value)
			if err != nil {
				return nil, err
			}
			w, err := toWord(value)
			if err != nil {
				return nil, err
			}
			return starlark.None, mem.Deposit(addr, w)
		},
		"examine": func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var addr int
			err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr)
			if err != nil {
				return nil, err
			}
			w, err := mem.Examine(addr)
			if err != nil {
				return nil, err
			}
			return fromWord(w), nil
		},
		"assemble": func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var text string
			err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &text)
			if err != nil {
				return nil, err
			}
			w, err := cpu.Assemble(text)
			if err != nil {
				return nil, err
			}
			return fromWord(w), nil
		},
		"parse": func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var value starlark.Value
			err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &value)
			if err != nil {
				return nil, err
			}
			w, err := toWord(value)
			if err != nil {
				return nil, err
			}
			return fromWord(w), nil
		},
	}
}

// Configure runs a machine configuration script.
//
// The script sees the defines as integer constants, and these functions:
//
//	attach_drum(unit, path)      attach_tape(unit, path)
//	detach_drum(unit)            detach_tape(unit)
//	map_drum(logical, physical)  map_tape(logical, physical)
//	drum_mode(unit, "rw")        tape_mode(unit, "rwf")
//	map_check(on=True)
//	load(path)                   program text file
//	cards(path)                  card reader deck
//	printer(path)                punch(path)         "-" is stdout
//	punch_addr(on=True)          printer_width(n)
//	mode2(on=True)               check_memory(on=True)
//	boot_cards(on=True)          verbose(on=True)
//	start(addr)                  breakpoint(addr)
//	strategy("shura-bura")       panel(n, value)
//	deposit(addr, value)         examine(addr)
//	assemble(text)               parse(value)
//
// Values are integers, reals, or strings in the program text syntax.
func (emu *Emulator) Configure(script string, src string) (err error) {
	thread := &starlark.Thread{
		Name: script,
		Print: func(thread *starlark.Thread, msg string) {
			log.Printf("%v: %v", thread.Name, msg)
		},
	}

	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, value := range emu.Defines() {
		pred[key] = starlark.MakeInt(value)
	}
	for name, fn := range emu.builtins() {
		pred[name] = starlark.NewBuiltin(name, fn)
	}

	if emu.Verbose {
		log.Printf("emulator: configure %v", script)
	}

	_, err = starlark.ExecFileOptions(&opts, thread, script, src, pred)
	if err != nil {
		err = &ErrConfig{Script: script, Err: err}
		return
	}

	return
}

// ConfigureFile runs a machine configuration script file.
func (emu *Emulator) ConfigureFile(path string) (err error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return
	}

	err = emu.Configure(path, string(src))
	return
}
