package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/fantasy"
	"github.com/spf13/cobra"
)

// Backend is what the tools call into. The cmd package implements it on top of
// the risk API client, so this package never imports cmd.
type Backend interface {
	Student(ctx context.Context, rollNo string) (any, error)
	Predict(ctx context.Context, rollNo string) (any, error)
	Report(ctx context.Context, rollNo string, predict bool) (string, error)
	Cohort(ctx context.Context, rollNos []string) (any, error)
	List(ctx context.Context, query string) (any, error)
}

// toolInput is the argument object shared by every generated tool
type toolInput struct {
	RollNo  string   `json:"roll_no,omitempty" description:"Student roll number, e.g. 2023CS101"`
	RollNos []string `json:"roll_nos,omitempty" description:"Roll numbers for a cohort summary; empty means every student"`
	Predict bool     `json:"predict,omitempty" description:"Include the dropout prediction in a report"`
	Query   string   `json:"query,omitempty" description:"Case-insensitive filter on roll number or name when listing students"`
}

// CreateToolsFromCommands creates Fantasy tools from all registered Cobra commands
// except for the specified exclusions (e.g., "serve", "ask")
func CreateToolsFromCommands(rootCmd *cobra.Command, backend Backend, exclusions []string) []fantasy.AgentTool {
	var tools []fantasy.AgentTool

	for _, cobraCmd := range rootCmd.Commands() {
		skip := false
		for _, excl := range exclusions {
			if cobraCmd.Use == excl || strings.HasPrefix(cobraCmd.Use, excl) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}

		tools = append(tools, createToolForCommand(cobraCmd, backend))
	}

	return tools
}

func commandName(cobraCmd *cobra.Command) string {
	return strings.Split(cobraCmd.Use, " ")[0]
}

// createToolForCommand creates a Fantasy tool from a Cobra command
func createToolForCommand(cobraCmd *cobra.Command, backend Backend) fantasy.AgentTool {
	cmdName := commandName(cobraCmd)

	description := cobraCmd.Short
	if description == "" {
		description = fmt.Sprintf("Execute the %s command", cmdName)
	}

	return fantasy.NewAgentTool(
		cmdName,
		description,
		func(ctx context.Context, input toolInput, call fantasy.ToolCall) (fantasy.ToolResponse, error) {
			result, err := runCommand(ctx, backend, cmdName, input)
			if err != nil {
				// errors go back to the model as tool output
				return fantasy.NewTextErrorResponse(err.Error()), nil
			}
			return fantasy.NewTextResponse(result), nil
		},
	)
}

// runCommand executes one tool call against the backend and returns JSON or
// markdown text for the model
func runCommand(ctx context.Context, backend Backend, cmdName string, input toolInput) (string, error) {
	var result interface{}
	var err error

	rollNo := strings.TrimSpace(input.RollNo)

	switch cmdName {
	case "student", "predict", "report":
		if rollNo == "" {
			return "", fmt.Errorf("roll_no parameter is required")
		}
	}

	switch cmdName {
	case "student":
		result, err = backend.Student(ctx, rollNo)
		if err != nil {
			return "", fmt.Errorf("failed to get student: %v", err)
		}

	case "predict":
		result, err = backend.Predict(ctx, rollNo)
		if err != nil {
			return "", fmt.Errorf("failed to get prediction: %v", err)
		}

	case "report":
		md, err := backend.Report(ctx, rollNo, input.Predict)
		if err != nil {
			return "", fmt.Errorf("failed to build report: %v", err)
		}
		return md, nil

	case "cohort":
		result, err = backend.Cohort(ctx, input.RollNos)
		if err != nil {
			return "", fmt.Errorf("failed to summarize cohort: %v", err)
		}

	case "list":
		result, err = backend.List(ctx, input.Query)
		if err != nil {
			return "", fmt.Errorf("failed to list students: %v", err)
		}

	default:
		return "", fmt.Errorf("unsupported command: %s", cmdName)
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result as JSON: %v", err)
	}

	return string(jsonBytes), nil
}
