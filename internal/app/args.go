package app

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxArgDepth bounds nested @file references
const maxArgDepth = 8

var errUsage = errors.New("usage: msggen [-config file] stock_file event_file model_seq_file output_test_file output_seeded_file\n" +
	"       msggen [-config file] -runs | -show run_id | -find clordid | -delete run_id")

// ExpandArgs replaces every "@path" argument with the lines of that file,
// one argument per line. Referenced files may themselves contain @path lines.
func ExpandArgs(args []string) ([]string, error) {
	return expandArgs(args, 0)
}

func expandArgs(args []string, depth int) ([]string, error) {
	if depth > maxArgDepth {
		return nil, fmt.Errorf("argument files nested deeper than %d", maxArgDepth)
	}
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "@") || len(a) == 1 {
			out = append(out, a)
			continue
		}
		lines, err := readArgFile(a[1:])
		if err != nil {
			return nil, err
		}
		nested, err := expandArgs(lines, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

func readArgFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("argument file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// Query selects one read or maintenance operation on the run archive
type Query struct {
	ListRuns  bool
	ShowRun   string
	FindID    string
	DeleteRun string
}

// Active reports whether any archive operation was requested
func (q Query) Active() bool {
	return q.ListRuns || q.ShowRun != "" || q.FindID != "" || q.DeleteRun != ""
}

func (q Query) count() int {
	n := 0
	for _, set := range []bool{q.ListRuns, q.ShowRun != "", q.FindID != "", q.DeleteRun != ""} {
		if set {
			n++
		}
	}
	return n
}

// Command is a parsed command line: either a generation run over Paths
// or an archive Query.
type Command struct {
	ConfigPath string
	Paths      Paths
	Query      Query
}

// ParseArgs parses the command line (without the program name).
func ParseArgs(args []string, stderr io.Writer) (Command, error) {
	args, err := ExpandArgs(args)
	if err != nil {
		return Command{}, err
	}

	var cmd Command
	fs := flag.NewFlagSet("msggen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cmd.ConfigPath, "config", "", "YAML configuration file")
	fs.BoolVar(&cmd.Query.ListRuns, "runs", false, "list archived runs")
	fs.StringVar(&cmd.Query.ShowRun, "show", "", "print the records of an archived run")
	fs.StringVar(&cmd.Query.FindID, "find", "", "find an order identifier across archived runs")
	fs.StringVar(&cmd.Query.DeleteRun, "delete", "", "delete an archived run")
	if err := fs.Parse(args); err != nil {
		return Command{}, err
	}

	pos := fs.Args()
	if cmd.Query.Active() {
		if cmd.Query.count() > 1 || len(pos) != 0 {
			return Command{}, errUsage
		}
		return cmd, nil
	}

	if len(pos) != 5 {
		return Command{}, errUsage
	}
	cmd.Paths = Paths{
		StockFile:    pos[0],
		EventFile:    pos[1],
		ModelSeqFile: pos[2],
		TestOutput:   pos[3],
		SeededOutput: pos[4],
	}
	return cmd, nil
}
