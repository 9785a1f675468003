// Command apb-host drives the GPIO and Timer command set, either over the
// serial link to the firmware or directly through /dev/mem.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-tty"

	"apbio/config"
	"apbio/core"
	"apbio/host/mcu"
	"apbio/host/serial"
	"apbio/protocol"
)

var (
	configPath = flag.String("config", "", "JSON configuration file")
	backend    = flag.String("backend", "", "Backend: serial or devmem (overrides config)")
	device     = flag.String("device", "", "Serial device path (overrides config)")
	baud       = flag.Int("baud", 0, "Baud rate, ignored for USB CDC (overrides config)")
	trace      = flag.Bool("trace", false, "Record register writes")
	debug      = flag.Bool("debug", false, "Print debug messages to stderr")
	serve      = flag.Bool("serve", false, "Serve the devmem registers to a host on -device")
	oneShot    = flag.String("c", "", "Run one command and exit")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Debug {
		core.SetDebugEnabled(true)
		core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
	}

	if *serve {
		if err := runServe(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	m, err := mcu.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open %s backend: %v\n", cfg.Backend, err)
		os.Exit(1)
	}
	defer m.Close()

	if cfg.Trace {
		if _, err := m.Call("trace_enable", 1); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: trace_enable: %v\n", err)
		}
	}

	if *oneShot != "" {
		if !execute(m, *oneShot, os.Stdout) {
			os.Exit(1)
		}
		return
	}
	interactive(m)
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, err
		}
		if cfg, err = config.Load(data); err != nil {
			return nil, fmt.Errorf("%s: %w", *configPath, err)
		}
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *baud != 0 {
		cfg.Baud = *baud
	}
	cfg.Trace = cfg.Trace || *trace
	cfg.Debug = cfg.Debug || *debug
	return cfg, cfg.Validate()
}

// runServe maps the registers locally and answers protocol frames arriving
// on the serial device until interrupted.
func runServe(cfg *config.Config) error {
	l, err := mcu.OpenLocal(uintptr(cfg.GPIOBase), uintptr(cfg.TimerBase))
	if err != nil {
		return err
	}
	defer l.Close()
	core.SetTraceEnabled(cfg.Trace)

	sc := serial.FromConfig(cfg)
	sc.ReadTimeout = 0
	port, err := serial.Open(sc)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		port.Close()
	}()

	fmt.Printf("Serving GPIO@%#x Timer@%#x on %s\n", uintptr(cfg.GPIOBase), uintptr(cfg.TimerBase), cfg.Device)
	err = mcu.Serve(ctx, port, l.Registry())
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func interactive(m *mcu.MCU) {
	fmt.Println("APB host - GPIO and Timer register commands")
	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")

	t, err := tty.Open()
	if err != nil {
		// Not a terminal; read commands from stdin.
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() || !handleLine(m, scanner.Text(), os.Stdout) {
				return
			}
		}
	}
	defer t.Close()

	out := t.Output()
	for {
		fmt.Fprint(out, "> ")
		line, err := t.ReadString()
		if err != nil || !handleLine(m, line, out) {
			return
		}
	}
}

// handleLine runs one line and reports whether the loop should continue.
func handleLine(m *mcu.MCU, line string, w io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	switch strings.Fields(line)[0] {
	case "quit", "exit", "q":
		fmt.Fprintln(w, "Goodbye!")
		return false
	case "help", "?":
		printHelp(w)
	case "list":
		printMessages(w)
	case "trace":
		printTrace(m, w)
	default:
		execute(m, line, w)
	}
	return true
}

func execute(m *mcu.MCU, line string, w io.Writer) bool {
	msg, args, err := parseLine(line)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return false
	}
	value, err := m.Call(msg.Name, args...)
	if err != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", msg.Name, err)
		return false
	}
	fmt.Fprintf(w, "%s = %d (0x%08x)\n", msg.Name, value, value)
	return true
}

func printTrace(m *mcu.MCU, w io.Writer) {
	events, err := m.Trace()
	if err != nil {
		if n, cerr := m.Call("trace_count"); cerr == nil {
			fmt.Fprintf(w, "%d register writes recorded\n", n)
			return
		}
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "%d register writes recorded, last %d:\n", core.TraceCount(), len(events))
	for _, ev := range events {
		if ev.Kind == core.TraceModify {
			fmt.Fprintf(w, "  %-5s +0x%02x  0x%08x -> 0x%08x\n", ev.Block, ev.Offset, ev.Before, ev.After)
		} else {
			fmt.Fprintf(w, "  %-5s +0x%02x  <- 0x%08x\n", ev.Block, ev.Offset, ev.After)
		}
	}
}

func printMessages(w io.Writer) {
	for _, msg := range protocol.Messages {
		if msg.ID == protocol.MsgResult {
			continue
		}
		fmt.Fprintf(w, "  %3d  %s %s\n", msg.ID, msg.Name, msg.Format)
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Available commands:")
	fmt.Fprintln(w, "  help, ?          - Show this help")
	fmt.Fprintln(w, "  list             - List register commands and their arguments")
	fmt.Fprintln(w, "  trace            - Show recorded register writes")
	fmt.Fprintln(w, "  quit, exit, q    - Exit")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Register commands take positional or named arguments:")
	fmt.Fprintln(w, "  gpio_enable_output 3")
	fmt.Fprintln(w, "  gpio_set_output pin=3 level=1")
	fmt.Fprintln(w, "  timer_set_output_compare channel=7 action=1 interrupt=0 value=0x1000")
}
