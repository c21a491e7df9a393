package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/banshee-data/lanematch/internal/fsutil"
	"github.com/banshee-data/lanematch/internal/kinematics"
	"github.com/banshee-data/lanematch/internal/lane"
	"github.com/banshee-data/lanematch/internal/monitoring"
	"github.com/banshee-data/lanematch/internal/storage/sqlite"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

func runLanes(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "Usage: lanematch lanes <import|export|list|delete> -db <path> [options]")
		return errUsage
	}

	sub := args[0]
	fs := flag.NewFlagSet("lanes "+sub, flag.ContinueOnError)
	fs.SetOutput(stderr)
	dbPath := fs.String("db", "", "Lane library database (required)")
	file := fs.String("file", "", "JSON lane set (import, export)")
	id := fs.String("id", "", "Lane ID (delete)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *dbPath == "" {
		fs.Usage()
		return errors.New("-db is required")
	}

	db, err := sqlite.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	store := sqlite.NewLaneStore(db)
	fsys := fsutil.OSFileSystem{}

	switch sub {
	case "import":
		if *file == "" {
			return errors.New("-file is required")
		}
		return importLanes(store, fsys, *file, stdout)
	case "export":
		if *file == "" {
			return errors.New("-file is required")
		}
		lanes, err := store.List()
		if err != nil {
			return err
		}
		if err := lane.Save(fsys, *file, lanes); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported %d lanes to %s\n", len(lanes), *file)
		return nil
	case "list":
		lanes, err := store.List()
		if err != nil {
			return err
		}
		printLanes(stdout, lanes)
		return nil
	case "delete":
		if *id == "" {
			return errors.New("-id is required")
		}
		if err := store.Delete(*id); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Deleted lane %s\n", *id)
		return nil
	default:
		return fmt.Errorf("unknown lanes command: %s", sub)
	}
}

func importLanes(store *sqlite.LaneStore, fsys fsutil.FileSystem, path string, stdout io.Writer) error {
	lanes, err := lane.Load(fsys, path)
	if err != nil {
		return err
	}
	for i := range lanes {
		if err := store.Save(&lanes[i]); err != nil {
			return fmt.Errorf("import lane %s: %w", lanes[i].ID, err)
		}
	}
	monitoring.Logf("[Lanes] Imported %d lanes from %s", len(lanes), path)
	fmt.Fprintf(stdout, "Imported %d lanes from %s\n", len(lanes), path)
	return nil
}

func printLanes(w io.Writer, lanes []lane.Lane) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tKEY\tPOINTS\tLENGTH\tSPEED")
	for _, l := range lanes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\t%.3f\n",
			l.ID, l.Name, l.Key, l.Path.Len(), trajectory.Length(l.Path), kinematics.LaneSpeed(l))
	}
	tw.Flush()
}
