package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"classtop/internal/config"
	"classtop/internal/ipc"
	"classtop/internal/runtimepath"
	"classtop/internal/types"
)

const requestTimeout = 10 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("classtopctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	socket := fs.String("socket", "", "path of the classtop command socket")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stdout)
		return 0
	}

	socketPath, err := resolveSocket(*socket)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	client := ipc.NewClient(socketPath)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "greet":
		return runGreet(ctx, client, cmdArgs, stdout, stderr)
	case "setup":
		return runSetup(ctx, client, cmdArgs, stderr)
	case "resize":
		return runResize(ctx, client, cmdArgs, stderr)
	case "toggle":
		return runToggle(ctx, client, cmdArgs, stdout, stderr)
	case "monitors":
		return runMonitors(ctx, client, cmdArgs, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", cmd)
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: classtopctl [--socket PATH] <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  greet NAME               Print the greeting")
	fmt.Fprintln(w, "  setup [HEIGHT]           Size and place the topbar (default height from config)")
	fmt.Fprintln(w, "  resize WIDTH HEIGHT      Resize the topbar and center it")
	fmt.Fprintln(w, "  toggle [-detailed] NAME  Show or hide a window")
	fmt.Fprintln(w, "  monitors [NAME]          List monitors seen by a window")
}

// resolveSocket prefers the flag, then the config file, then the runtime dir
func resolveSocket(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	override := ""
	if cfg, err := config.Load(); err == nil {
		override = cfg.IPC.SocketPath
	}
	return runtimepath.SocketPath(override)
}

func parseUint32(name, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", name, s)
	}
	return uint32(v), nil
}

func runGreet(ctx context.Context, client *ipc.Client, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Usage: classtopctl greet NAME")
		return 2
	}
	greeting, err := client.Greet(ctx, args[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, greeting)
	return 0
}

func runSetup(ctx context.Context, client *ipc.Client, args []string, stderr io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintln(stderr, "Usage: classtopctl setup [HEIGHT]")
		return 2
	}
	var height uint32
	if len(args) == 1 {
		h, err := parseUint32("height", args[0])
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		height = h
	}
	if err := client.SetupTopbar(ctx, height); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func runResize(ctx context.Context, client *ipc.Client, args []string, stderr io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(stderr, "Usage: classtopctl resize WIDTH HEIGHT")
		return 2
	}
	width, err := parseUint32("width", args[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	height, err := parseUint32("height", args[1])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if err := client.ResizeTopbar(ctx, width, height); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func runToggle(ctx context.Context, client *ipc.Client, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(stderr)
	detailed := fs.Bool("detailed", false, "report focus outcome as JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: classtopctl toggle [-detailed] NAME")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	name := fs.Arg(0)

	if *detailed {
		result, err := client.ToggleWindowDetailed(ctx, name)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return printJSON(stdout, stderr, result)
	}

	visible, err := client.ToggleWindow(ctx, name)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if visible {
		fmt.Fprintln(stdout, "visible")
	} else {
		fmt.Fprintln(stdout, "hidden")
	}
	return 0
}

func runMonitors(ctx context.Context, client *ipc.Client, args []string, stdout, stderr io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintln(stderr, "Usage: classtopctl monitors [NAME]")
		return 2
	}
	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	monitors, err := client.ListMonitors(ctx, name)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	for i, m := range monitors {
		primary := ""
		if m.Primary {
			primary = " (primary)"
		}
		fmt.Fprintf(stdout, "%d: %s %dx%d scale %.2f logical %.0fx%.0f%s\n", i, m.Name, m.PhysicalWidth, m.PhysicalHeight,
			m.EffectiveScale(), m.ScreenWidth(types.UnitLogical), m.ScreenHeight(types.UnitLogical), primary)
	}
	return 0
}

func printJSON(stdout, stderr io.Writer, v interface{}) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
