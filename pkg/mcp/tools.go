package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/sbfl/pkg/export"
	"github.com/Sumatoshi-tech/sbfl/pkg/pipeline"
	"github.com/Sumatoshi-tech/sbfl/pkg/ranking"
	"github.com/Sumatoshi-tech/sbfl/pkg/suspicion"
)

// Tool name constants.
const (
	ToolNameRank     = "sbfl_rank"
	ToolNameFormulas = "sbfl_formulas"
)

// DefaultTop is the number of entries returned when the caller sets no limit.
const DefaultTop = 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyDir indicates the dir parameter is empty.
	ErrEmptyDir = errors.New("dir parameter is required and must not be empty")
	// ErrDirNotAbsolute indicates dir is not an absolute path.
	ErrDirNotAbsolute = errors.New("dir must be an absolute path")
	// ErrDirNotFound indicates dir does not exist or is not a directory.
	ErrDirNotFound = errors.New("record directory does not exist")
	// ErrNegativeInput indicates a negative count parameter.
	ErrNegativeInput = errors.New("forced_failures and top must not be negative")
)

// RankInput is the input schema for the sbfl_rank tool.
type RankInput struct {
	Dir            string `json:"dir"                       jsonschema:"absolute path to the directory of coverage records"`
	ForcedFailures int    `json:"forced_failures,omitempty" jsonschema:"treat the first N records in name order as failed"`
	Top            int    `json:"top,omitempty"             jsonschema:"maximum number of entries to return (default: 20)"`
	Write          bool   `json:"write,omitempty"           jsonschema:"also write Suspicion.csv into the directory"`
}

// FormulasInput is the input schema for the sbfl_formulas tool.
type FormulasInput struct{}

// RankResult is the payload of a successful sbfl_rank call.
type RankResult struct {
	Directory string            `json:"directory"`
	Totals    export.Totals     `json:"totals"`
	Entries   []export.DocEntry `json:"entries"`
	Files     []string          `json:"files,omitempty"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

type ranker struct {
	logger        *slog.Logger
	runnerOptions []pipeline.Option
}

func newRanker(logger *slog.Logger, runnerOptions []pipeline.Option) *ranker {
	if logger == nil {
		logger = slog.Default()
	}

	return &ranker{logger: logger, runnerOptions: runnerOptions}
}

func (r *ranker) handleRank(ctx context.Context, _ *mcpsdk.CallToolRequest, input RankInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateRankInput(input)
	if err != nil {
		return errorResult(err)
	}

	opts := append([]pipeline.Option{pipeline.WithLogger(r.logger)}, r.runnerOptions...)
	runner := pipeline.NewRunner(opts...)

	run := runner.Rank
	if input.Write {
		run = runner.Run
	}

	result, err := run(ctx, input.Dir, input.ForcedFailures)
	if err != nil {
		return errorResult(err)
	}

	table, entries, files := result.Table, result.Entries, result.Files

	top := input.Top
	if top == 0 {
		top = DefaultTop
	}

	doc := export.NewReport(input.Dir, input.ForcedFailures, table, ranking.Top(entries, top)).Document()
	doc.Totals.Methods = len(entries)

	return jsonResult(RankResult{
		Directory: input.Dir,
		Totals:    doc.Totals,
		Entries:   doc.Entries,
		Files:     files,
	})
}

func validateRankInput(input RankInput) error {
	if input.Dir == "" {
		return ErrEmptyDir
	}

	if !filepath.IsAbs(input.Dir) {
		return fmt.Errorf("%w: %s", ErrDirNotAbsolute, input.Dir)
	}

	if input.ForcedFailures < 0 || input.Top < 0 {
		return ErrNegativeInput
	}

	info, err := os.Stat(input.Dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrDirNotFound, input.Dir)
	}

	return nil
}

func handleFormulas(_ context.Context, _ *mcpsdk.CallToolRequest, _ FormulasInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	formulas := make([]export.FormulaInfo, 0, len(suspicion.Formulas().Names()))

	for _, m := range suspicion.Formulas().All() {
		formulas = append(formulas, export.FormulaInfo{
			Name:        m.Name(),
			DisplayName: m.DisplayName(),
			Description: m.Description(),
		})
	}

	return jsonResult(formulas)
}
