package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tekunalogy/company-researcher/pkg/clients"
	"github.com/Tekunalogy/company-researcher/pkg/config"
	"github.com/Tekunalogy/company-researcher/pkg/research"
)

const defaultStateFile = "report_state.json"

func newComposer(ctx context.Context) (*research.Composer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Setup structured logging
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})
	slog.SetDefault(slog.New(handler))

	model, err := clients.NewReportModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init report model: %w", err)
	}
	return research.NewComposer(model), nil
}

func newGenerateCmd() *cobra.Command {
	var (
		url        string
		dataPath   string
		searchPath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new report from crawled company data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			composer, err := newComposer(ctx)
			if err != nil {
				return err
			}

			state, err := initialState(url, dataPath, searchPath)
			if err != nil {
				return err
			}

			slog.Info("Generating report", "url", url)
			return runStage(ctx, composer, state, outPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "The company website URL")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Path to the crawled data JSON file")
	cmd.Flags().StringVarP(&searchPath, "search", "s", "", "Path to a JSON array of fallback search results")
	cmd.Flags().StringVarP(&outPath, "out", "o", defaultStateFile, "Where to write the resulting state")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newReviseCmd() *cobra.Command {
	var (
		statePath string
		prompt    string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "revise",
		Short: "Revise the latest report in a saved state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			state, err := readState(statePath)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("prompt") {
				// Interactive Mode
				fmt.Fprint(cmd.OutOrStdout(), "Enter revision instructions: ")
				prompt, err = readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(prompt) == "" {
				return fmt.Errorf("revision instructions cannot be empty")
			}
			state.UserPrompt = prompt

			composer, err := newComposer(ctx)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = statePath
			}
			slog.Info("Revising report", "state", statePath, "revisions", len(state.ReportRevisions))
			return runStage(ctx, composer, state, outPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&statePath, "state", defaultStateFile, "Path to a state file written by generate or revise")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Revision instructions")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Where to write the resulting state (defaults to --state)")

	return cmd
}

// runStage composes a report for state, saves the merged state to outPath
// and prints the report to w.
func runStage(ctx context.Context, composer *research.Composer, state research.ResearchState, outPath string, w io.Writer) error {
	update, err := composer.Compose(ctx, state)
	if err != nil {
		return err
	}

	if err := writeState(outPath, state.Apply(update)); err != nil {
		return err
	}
	slog.Info("Saved state", "filename", outPath, "revisions", len(update.ReportRevisions))

	_, err = fmt.Fprintln(w, update.FinalReport)
	return err
}

func initialState(url, dataPath, searchPath string) (research.ResearchState, error) {
	crawled, err := os.ReadFile(dataPath)
	if err != nil {
		return research.ResearchState{}, fmt.Errorf("failed to read crawled data: %w", err)
	}
	if !json.Valid(crawled) {
		return research.ResearchState{}, fmt.Errorf("crawled data in %s is not valid JSON", dataPath)
	}

	state := research.ResearchState{
		UserURL:     url,
		CrawledData: json.RawMessage(crawled),
	}

	if searchPath != "" {
		raw, err := os.ReadFile(searchPath)
		if err != nil {
			return research.ResearchState{}, fmt.Errorf("failed to read search results: %w", err)
		}
		if err := json.Unmarshal(raw, &state.FallbackSearchKeyPersons); err != nil {
			return research.ResearchState{}, fmt.Errorf("search results in %s must be a JSON array: %w", searchPath, err)
		}
	}

	return state, nil
}

func readState(path string) (research.ResearchState, error) {
	var state research.ResearchState
	raw, err := os.ReadFile(path)
	if err != nil {
		return state, fmt.Errorf("failed to read state: %w", err)
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	return state, nil
}

func writeState(path string, state research.ResearchState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func readLine(r io.Reader) (string, error) {
	input, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
