// sessiondump is a CLI utility for inspecting geobridge session files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/krefting/geobridge/internal/engine"
	"github.com/krefting/geobridge/internal/session"
	"github.com/krefting/geobridge/pkg/geom"
	"github.com/krefting/geobridge/pkg/protocol"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "show":
		cmdShow(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`sessiondump - geobridge session file utility

Usage:
  sessiondump <command> [options]

Commands:
  info <file.gbs>              Summarize recorded invocations
  show <file.gbs> <index>      Show one invocation in detail

Examples:
  sessiondump info run.gbs
  sessiondump show run.gbs 0`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: sessiondump info <file.gbs>")
		os.Exit(1)
	}

	entries, err := session.ReadAll(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Session:     %s\n", args[0])
	fmt.Printf("Invocations: %d\n", len(entries))
	fmt.Println()

	for i, e := range entries {
		status := "ok"
		if msg, failed := errorMessage(e); failed {
			status = "error: " + msg
		}
		fmt.Printf("  [%d] %-22s in: %d verts, %d indices  out: %d verts, %d indices  %s\n",
			i, e.Command(),
			len(e.Request.Vertices), len(e.Request.Indices),
			len(e.Response.Vertices), len(e.Response.Indices),
			status)
	}
}

func cmdShow(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: sessiondump show <file.gbs> <index>")
		os.Exit(1)
	}

	entries, err := session.ReadAll(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var idx int
	if _, err := fmt.Sscanf(fs.Arg(1), "%d", &idx); err != nil || idx < 0 || idx >= len(entries) {
		fmt.Fprintf(os.Stderr, "Invalid index %q (session has %d entries)\n", fs.Arg(1), len(entries))
		os.Exit(1)
	}
	e := entries[idx]

	fmt.Printf("Invocation %d  (request hash %016x)\n\n", idx, e.RequestHash)

	fmt.Println("Request:")
	fmt.Printf("  vertices: %d\n", len(e.Request.Vertices))
	fmt.Printf("  indices:  %d\n", len(e.Request.Indices))
	printTransforms(e.Request.Transforms)
	printWorldBounds(e.Request)
	if e.Request.Config != nil {
		keys, values := e.Request.Config.Encode()
		for i := range keys {
			fmt.Printf("  %s = %s\n", keys[i], values[i])
		}
	}

	fmt.Println("\nResponse:")
	fmt.Printf("  vertices: %d\n", len(e.Response.Vertices))
	fmt.Printf("  indices:  %d\n", len(e.Response.Indices))
	for i := range e.Response.ConfigKeys {
		fmt.Printf("  %s = %s\n", e.Response.ConfigKeys[i], e.Response.ConfigValues[i])
	}
}

func printTransforms(flat []float32) {
	for i := 0; i*16+16 <= len(flat); i++ {
		m, ok := geom.FromFlat(flat[i*16 : i*16+16])
		if !ok {
			return
		}
		if m.IsIdentity() {
			fmt.Printf("  model %d transform: identity\n", i)
			continue
		}
		fmt.Printf("  model %d transform:\n", i)
		for row := 0; row < 4; row++ {
			fmt.Printf("    %g %g %g %g\n", m[row*4], m[row*4+1], m[row*4+2], m[row*4+3])
		}
	}
}

// printWorldBounds places the primary model's vertices under its
// transform and reports the axis-aligned extent.
func printWorldBounds(req engine.Request) {
	if len(req.Vertices) == 0 {
		return
	}
	m := geom.Identity()
	if len(req.Transforms) >= 16 {
		if t, ok := geom.FromFlat(req.Transforms[:16]); ok {
			m = t
		}
	}
	lo := m.TransformPoint(req.Vertices[0])
	hi := lo
	for _, v := range req.Vertices[1:] {
		w := m.TransformPoint(v)
		lo.X = min(lo.X, w.X)
		lo.Y = min(lo.Y, w.Y)
		lo.Z = min(lo.Z, w.Z)
		hi.X = max(hi.X, w.X)
		hi.Y = max(hi.Y, w.Y)
		hi.Z = max(hi.Z, w.Z)
	}
	fmt.Printf("  world bounds: (%g %g %g) .. (%g %g %g)\n",
		lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
}

// errorMessage extracts a recorded engine failure, if any.
func errorMessage(e session.Entry) (string, bool) {
	for i, k := range e.Response.ConfigKeys {
		if k == protocol.KeyError {
			return e.Response.ConfigValues[i], true
		}
	}
	return "", false
}
