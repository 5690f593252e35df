// Package main is the headless entry point for the NodeStorm editing
// engine: it opens or creates a document, runs macros against it, and
// saves the result.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/nodestorm/internal/editor/session"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	configPath string
	docPath    string
	outPath    string
	macros     []string
}

func run() int {
	opts := parseFlags()

	sess, err := session.New(session.Options{
		ConfigPath:   opts.configPath,
		DocumentPath: opts.docPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer sess.Close()

	for _, path := range opts.macros {
		source, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading macro %s: %v\n", path, err)
			return 1
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := sess.Macros().Run(name, string(source)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if opts.outPath != "" {
		if err := sess.SaveDocument(opts.outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to settings file")
	flag.StringVar(&opts.configPath, "c", "", "Path to settings file (shorthand)")
	flag.StringVar(&opts.docPath, "doc", "", "Document to open")
	flag.StringVar(&opts.docPath, "d", "", "Document to open (shorthand)")
	flag.StringVar(&opts.outPath, "out", "", "Path to save the document to on exit")
	flag.StringVar(&opts.outPath, "o", "", "Path to save the document to on exit (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "NodeStorm - node graph editing engine\n\n")
		fmt.Fprintf(os.Stderr, "Usage: nodestorm [options] [macros...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  nodestorm -o scene.json build.lua      Build a scene from a macro\n")
		fmt.Fprintf(os.Stderr, "  nodestorm -d scene.json -o scene.json tweak.lua\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("NodeStorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.macros = flag.Args()
	return opts
}
