// Skein CLI - inspect compiled images and project configuration
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/skein/bytecode"
	"github.com/chazu/skein/manifest"
)

func main() {
	verbosity := flag.Int("v", -1, "Log verbosity (overrides skein.toml)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: skein [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  disasm [image]   Print an image's header and disassembly\n")
		fmt.Fprintf(os.Stderr, "  dump [image]     Print an image as YAML\n")
		fmt.Fprintf(os.Stderr, "  config [dir]     Print the resolved skein.toml settings\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	dir := "."
	if args[0] == "config" && len(args) > 1 {
		dir = args[1]
	}
	m, err := loadManifest(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}
	if *verbosity >= 0 {
		m.Log.Verbosity = *verbosity
	}
	commonlog.Configure(m.Log.Verbosity, m.LogPath())

	switch args[0] {
	case "disasm":
		path := m.ImagePath()
		if len(args) > 1 {
			path = args[1]
		}
		if err := handleDisasm(os.Stdout, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "dump":
		path := m.ImagePath()
		if len(args) > 1 {
			path = args[1]
		}
		if err := handleDump(os.Stdout, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "config":
		printConfig(os.Stdout, m)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
}

// loadManifest finds skein.toml at or above dir, falling back to defaults
// rooted at dir when there is none.
func loadManifest(dir string) (*manifest.Manifest, error) {
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = manifest.Default()
		m.Dir = dir
	}
	return m, nil
}

func handleDisasm(w io.Writer, path string) error {
	img, err := bytecode.ReadImageFile(path)
	if err != nil {
		return err
	}
	commonlog.GetLogger("skein.cli").Infof("read image %s: %d instructions", path, len(img.Code))
	_, err = io.WriteString(w, img.Disassemble())
	return err
}

func printConfig(w io.Writer, m *manifest.Manifest) {
	name := m.Project.Name
	if name == "" {
		name = "(none)"
	}
	logTo := "stderr"
	if p := m.LogPath(); p != nil {
		logTo = *p
	}
	fmt.Fprintf(w, "project:        %s %s\n", name, m.Project.Version)
	fmt.Fprintf(w, "dir:            %s\n", m.Dir)
	fmt.Fprintf(w, "variadic:       %t\n", m.Compiler.Variadic)
	fmt.Fprintf(w, "hoist-defines:  %t\n", m.Compiler.HoistDefines)
	fmt.Fprintf(w, "image:          %s\n", m.ImagePath())
	fmt.Fprintf(w, "log:            %s (verbosity %d)\n", logTo, m.Log.Verbosity)
}
