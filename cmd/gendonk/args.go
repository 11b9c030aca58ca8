package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gendonk/internal/workflow"
)

// sourceArgs accepts "<file> <question-col> <answer-col>" or
// "<file> <sheet> <question-col> <answer-col>".
var sourceArgs = cobra.RangeArgs(3, 4)

func parseSourceArgs(args []string) (workflow.Request, error) {
	switch len(args) {
	case 3:
		return workflow.Request{Source: args[0], PromptColumn: args[1], CompletionColumn: args[2]}, nil
	case 4:
		return workflow.Request{Source: args[0], Sheet: args[1], PromptColumn: args[2], CompletionColumn: args[3]}, nil
	default:
		return workflow.Request{}, fmt.Errorf("expected <file> [sheet] <question-column> <answer-column>, got %d arguments", len(args))
	}
}
