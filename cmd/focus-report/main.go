// focus-report summarizes the most recent session log.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/teslashibe/go-focus/internal/config"
	"github.com/teslashibe/go-focus/internal/log"
	"github.com/teslashibe/go-focus/pkg/report"
	"github.com/teslashibe/go-focus/pkg/sessionlog"
)

func main() {
	env, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "focus-report: configuration error: %v\n", err)
		os.Exit(1)
	}
	log.Init(env.LogLevel, env.LogFormat)

	dir := flag.String("log-dir", env.SessionDir, "Directory holding session CSV files")
	file := flag.String("file", "", "Summarize this file instead of the newest one")
	asJSON := flag.Bool("json", false, "Print the summary as JSON")
	flag.Parse()

	if err := run(*dir, *file, *asJSON, env); err != nil {
		if errors.Is(err, sessionlog.ErrNoSession) {
			fmt.Println("No logs found!")
			os.Exit(1)
		}
		if errors.Is(err, report.ErrEmptySession) {
			fmt.Println("Log file is empty.")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "focus-report: %v\n", err)
		os.Exit(1)
	}
}

func run(dir, file string, asJSON bool, env *config.Config) error {
	path := file
	if path == "" {
		latest, err := sessionlog.Latest(dir)
		if err != nil {
			return err
		}
		path = latest
	}
	log.Debug("analyzing session", "path", path)

	records, err := sessionlog.ReadCSV(path)
	if err != nil {
		return err
	}
	summary, err := report.Summarize(records, env.LogInterval)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			File string `json:"file"`
			report.Summary
		}{path, summary})
	}

	fmt.Printf("Analyzing: %s\n\n", path)
	return summary.Write(os.Stdout)
}
