// Command lanematch matches recorded gestures against a set of reference
// lanes and manages a SQLite lane library.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/lanematch/internal/version"
)

// errUsage signals that usage has already been printed.
var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("lanematch: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lanematch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "Print version information and exit")
	fs.Usage = func() { printUsage(stderr) }
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		printVersion(stdout)
		return nil
	}

	if fs.NArg() < 1 {
		printUsage(stderr)
		return errUsage
	}

	command := fs.Arg(0)
	rest := fs.Args()[1:]

	switch command {
	case "match":
		return runMatch(rest, stdout, stderr)
	case "lanes":
		return runLanes(rest, stdout, stderr)
	case "version":
		printVersion(stdout)
		return nil
	case "help":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return errUsage
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, version.String())
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `lanematch - match gestures against reference lanes

Usage: lanematch <command> [options]

Commands:
  match          Score a recorded gesture against every lane and select the best
  lanes import   Import a JSON lane set into a lane library database
  lanes export   Export a lane library database to a JSON lane set
  lanes list     List the lanes in a lane library database
  lanes delete   Remove a lane from a lane library database
  version        Show version information
  help           Show this help message

Examples:
  lanematch match -lanes lanes.json -gesture gesture.json
  lanematch match -db lanes.db -gesture gesture.json -config tuning.json -json out.json -plot out.png -chart out.html
  lanematch lanes import -db lanes.db -file lanes.json
  lanematch lanes list -db lanes.db`)
}
