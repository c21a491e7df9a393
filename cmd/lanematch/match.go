package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/banshee-data/lanematch/internal/config"
	"github.com/banshee-data/lanematch/internal/fsutil"
	"github.com/banshee-data/lanematch/internal/lane"
	"github.com/banshee-data/lanematch/internal/report"
	"github.com/banshee-data/lanematch/internal/selector"
	"github.com/banshee-data/lanematch/internal/storage/sqlite"
	"github.com/banshee-data/lanematch/internal/trajectory"
)

// matchOptions holds the flags of the match command.
type matchOptions struct {
	LanesFile   string
	DBPath      string
	GestureFile string
	ConfigFile  string
	Strategy    string
	JSONOut     string
	PlotOut     string
	ChartOut    string
	Replay      bool
}

func parseMatchFlags(args []string, stderr io.Writer) (matchOptions, error) {
	var o matchOptions
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.LanesFile, "lanes", "", "JSON lane set to match against")
	fs.StringVar(&o.DBPath, "db", "", "Lane library database to match against")
	fs.StringVar(&o.GestureFile, "gesture", "", "JSON gesture file (required)")
	fs.StringVar(&o.ConfigFile, "config", "", "Tuning configuration file (.json)")
	fs.StringVar(&o.Strategy, "strategy", "", "Override the scoring strategy")
	fs.StringVar(&o.JSONOut, "json", "", "Write the outcome as JSON to this file")
	fs.StringVar(&o.PlotOut, "plot", "", "Write an overlay plot of gesture and lanes (.png, .svg, .pdf)")
	fs.StringVar(&o.ChartOut, "chart", "", "Write an HTML chart of per-lane scores")
	fs.BoolVar(&o.Replay, "replay", false, "Feed the timestamped gesture through the recorder sample by sample")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.GestureFile == "" {
		fs.Usage()
		return o, errors.New("-gesture is required")
	}
	if (o.LanesFile == "") == (o.DBPath == "") {
		fs.Usage()
		return o, errors.New("exactly one of -lanes or -db is required")
	}
	return o, nil
}

func runMatch(args []string, stdout, stderr io.Writer) error {
	o, err := parseMatchFlags(args, stderr)
	if err != nil {
		return err
	}
	fsys := fsutil.OSFileSystem{}

	cfg, err := loadTuning(o.ConfigFile, o.Strategy)
	if err != nil {
		return err
	}

	lanes, err := loadLanes(fsys, o)
	if err != nil {
		return err
	}

	gesture, err := trajectory.LoadGesture(fsys, o.GestureFile)
	if err != nil {
		return err
	}

	sel, err := selector.NewFromTuning(cfg, nil)
	if err != nil {
		return err
	}

	if o.Replay && !gesture.HasTimestamps() {
		return fmt.Errorf("-replay needs a gesture with timestamps: %s has none", o.GestureFile)
	}

	var out selector.Outcome
	if o.Replay {
		out = replay(sel, gesture, lanes)
	} else {
		out = sel.Evaluate(gesture, lanes)
	}

	printOutcome(stdout, out)

	if o.JSONOut != "" {
		if err := fsutil.WriteJSON(fsys, o.JSONOut, out); err != nil {
			return fmt.Errorf("write outcome: %w", err)
		}
	}
	if o.PlotOut != "" {
		if err := report.PlotOverlay(o.PlotOut, gesture, lanes, out); err != nil {
			return err
		}
	}
	if o.ChartOut != "" {
		if err := report.WriteScoreChart(fsys, o.ChartOut, out); err != nil {
			return err
		}
	}
	return nil
}

// replay runs the gesture through the full arm/record/finish cycle so the
// recorder's sampling limits apply.
func replay(sel *selector.Selector, gesture trajectory.TimedPath, lanes []lane.Lane) selector.Outcome {
	sel.Arm()
	for i, p := range gesture.Points {
		sel.RecordAt(p, gesture.Timestamps[i])
	}
	out, _ := sel.Finish(lanes)
	return out
}

func loadTuning(path, strategy string) (*config.TuningConfig, error) {
	cfg := config.EmptyTuningConfig()
	if path != "" {
		var err error
		if cfg, err = config.LoadTuningConfig(path); err != nil {
			return nil, err
		}
	}
	if strategy != "" {
		cfg.ScoringStrategy = &strategy
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func loadLanes(fsys fsutil.FileSystem, o matchOptions) ([]lane.Lane, error) {
	if o.LanesFile != "" {
		return lane.Load(fsys, o.LanesFile)
	}
	db, err := sqlite.Open(o.DBPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return sqlite.NewLaneStore(db).List()
}

func printOutcome(w io.Writer, out selector.Outcome) {
	fmt.Fprintf(w, "status:   %s\n", out.Status)
	fmt.Fprintf(w, "strategy: %s\n", out.Strategy)
	if out.BestLaneID != "" {
		fmt.Fprintf(w, "best:     %s (key %q) score=%.4f accuracy=%.1f%%\n", out.BestLaneID, out.BestLaneKey, out.BestScore, out.Accuracy)
	}
	if out.Reason != "" {
		fmt.Fprintf(w, "reason:   %s\n", out.Reason)
	}
	if len(out.Results) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LANE\tKEY\tSCORE\tFRECHET\tSPEED SIM\tLANE SPEED")
	for _, r := range out.Results {
		if !r.Finite() {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t%s\n", r.LaneID, r.LaneKey, r.SkipReason)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%.3f\t%.3f\n", r.LaneID, r.LaneKey, r.Score, r.RawFrechet, r.SpeedSimilarity, r.LaneSpeed)
	}
	tw.Flush()
}
