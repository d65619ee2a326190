// Complexity CLI - asymptotic complexity resolution
//
// Usage:
//   complexity resolve --request request.json [options]
//   complexity resolve --request - < request.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"complexity-engine/internal/resolve"
	"complexity-engine/internal/solver"
	"complexity-engine/internal/viz"
	"complexity-engine/pkg/complexity"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := &cli.App{
		Name:    "complexity",
		Usage:   "Resolve asymptotic complexity bounds from recurrence and iteration cost descriptions",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		Flags: []cli.Flag{
			&cli.Float64Flag{
				Name:    "epsilon",
				Value:   solver.DefaultParams().Epsilon,
				Usage:   "Tolerance for the degree-vs-critical-exponent comparison",
				EnvVars: []string{"RESOLVE_EPSILON"},
			},
			&cli.IntFlag{
				Name:    "base-threshold",
				Value:   solver.DefaultParams().BaseThreshold,
				Usage:   "Argument at which recurrences bottom out",
				EnvVars: []string{"RESOLVE_BASE_THRESHOLD"},
			},
		},

		Commands: []*cli.Command{
			resolveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve a tagged analysis request into O/Ω/Θ bounds",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "request",
				Aliases:  []string{"r"},
				Usage:    "Path to the JSON request file, or - for stdin",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "output",
				Value: "table",
				Usage: "Output format: table or json",
			},
			&cli.BoolFlag{
				Name:  "steps",
				Usage: "Print the full derivation trace",
			},
			&cli.BoolFlag{
				Name:  "mermaid",
				Usage: "Also emit a Mermaid diagram of the recursion tree",
			},
		},
		Action: runResolve,
	}
}

func runResolve(c *cli.Context) error {
	req, err := readRequest(c.String("request"))
	if err != nil {
		return err
	}

	params := solver.DefaultParams()
	params.Epsilon = c.Float64("epsilon")
	params.BaseThreshold = c.Int("base-threshold")

	engine := resolve.NewEngine(params)
	result, err := engine.Resolve(context.Background(), *req)
	if err != nil {
		return err
	}

	if c.String("output") == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result, c.Bool("steps"))

	if c.Bool("mermaid") {
		for _, expr := range req.Expressions {
			if expr.Kind != complexity.KindRecurrence {
				continue
			}
			diagram, err := viz.RecursionTreeDiagram(expr, 0)
			if err != nil {
				return err
			}
			fmt.Printf("\nRecursion tree (%s case):\n%s", expr.Case, diagram)
		}
	}
	return nil
}

func readRequest(path string) (*resolve.Request, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}
	var req resolve.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

func printResult(result *complexity.ComplexityResult, withSteps bool) {
	fmt.Printf("Algorithm: %s (%s)\n", result.AlgorithmName, result.AlgorithmType)
	fmt.Printf("Split cases: %v\n\n", result.HasDifferentCases)

	printCase := func(cr *complexity.CaseResolution) {
		if cr == nil {
			return
		}
		fmt.Printf("%-8s  %s\n", cr.Case, cr.Equation)
		res := cr.Resolution
		if res.Theta != nil {
			fmt.Printf("          %s  [%s, tight]\n", res.Theta.Expression(), res.Theta.Method)
		} else {
			fmt.Printf("          %s / %s  [%s, loose]\n", res.O.Expression(), res.Omega.Expression(), res.O.Method)
		}
		if withSteps {
			for _, step := range res.O.Steps {
				fmt.Printf("            %s\n", step)
			}
		}
		fmt.Println()
	}

	printCase(result.Unified)
	printCase(result.Best)
	printCase(result.Average)
	printCase(result.Worst)

	for _, d := range result.Diagnostics {
		fmt.Printf("Diagnostic: %s\n", d)
	}
}
