package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/zakazai/tinysql/internal/engine"
	"github.com/zakazai/tinysql/internal/planner"
	"github.com/zakazai/tinysql/internal/storage"
	"github.com/zakazai/tinysql/internal/types"
)

func main() {
	cfg := storage.DefaultConfig()
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory holding table files")
	flag.StringVar(&cfg.MirrorDir, "mirror", "", "directory for parquet mirrors (disabled when empty)")
	strict := flag.Bool("strict", false, "reject table files with malformed rows instead of nulling them")
	logLevel := flag.String("log-level", "warning", "debug, info, warning, error or none")
	flag.Parse()

	level, err := types.ParseLogLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(2)
	}
	logger := types.InitLogger(level, os.Stderr)
	cfg.Logger = logger
	if *strict {
		cfg.DecodeMode = storage.DecodeStrict
	}

	persister, err := storage.NewPersister(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] initializing storage: %v\n", err)
		os.Exit(1)
	}
	var catalog planner.TableLister
	if l, ok := persister.(planner.TableLister); ok {
		catalog = l
	}
	p := planner.NewPlanner(engine.New(persister, logger), catalog)

	// Check if we're in interactive mode or piped input
	stat, _ := os.Stdin.Stat()
	if stat != nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		run(os.Stdin, os.Stdout, p)
		return
	}

	fmt.Println("tinysql shell")
	fmt.Println("Type 'exit' to quit")
	if err := interactive(p, filepath.Join(cfg.DataDir, ".tinysql_history")); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}

// interactive reads statements with line editing and history until exit or EOF.
func interactive(p *planner.Planner, historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				break
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if !execute(rl.Stdout(), p, line) {
			break
		}
	}
	fmt.Println("Goodbye!")
	return nil
}

// run executes one statement per line of r, writing results to w.
func run(r io.Reader, w io.Writer, p *planner.Planner) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if !execute(w, p, scanner.Text()) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(w, "[ERROR] reading input: %v\n", err)
	}
}

// execute runs a single input line. It returns false when the shell should stop.
func execute(w io.Writer, p *planner.Planner, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" || strings.HasPrefix(input, "--") {
		return true
	}
	if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
		return false
	}

	out, err := p.ExecuteSQL(input)
	if err != nil {
		fmt.Fprintf(w, "[ERROR] %v\n", err)
		return true
	}
	printOutput(w, out)
	return true
}

func printOutput(w io.Writer, out *planner.Output) {
	switch {
	case out.Aggregate != nil:
		fmt.Fprintf(w, "[OK] %s\n", out.Message)
	case out.Columns != nil:
		printFormattedResults(w, out.Columns, out.Rows)
		fmt.Fprintf(w, "[OK] %s\n", out.Message)
	default:
		fmt.Fprintf(w, "[OK] %s\n", out.Message)
	}
}

// printFormattedResults prints rows as a table with one column per name in
// columns, in that order.
func printFormattedResults(w io.Writer, columns []string, rows []types.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "Empty result set")
		return
	}

	columnWidths := make([]int, len(columns))
	for i, col := range columns {
		columnWidths[i] = len(col)
	}
	for _, row := range rows {
		for i, col := range columns {
			if n := len(row.Values[col].String()); n > columnWidths[i] {
				columnWidths[i] = n
			}
		}
	}

	// Header
	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(w, " | ")
		}
		fmt.Fprintf(w, "%-*s", columnWidths[i], col)
	}
	fmt.Fprintln(w)

	// Separator
	for i := range columns {
		if i > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", columnWidths[i]))
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, col := range columns {
			if i > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprintf(w, "%-*s", columnWidths[i], row.Values[col].String())
		}
		fmt.Fprintln(w)
	}
}
