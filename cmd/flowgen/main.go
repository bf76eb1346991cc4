package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/builder"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/catalog"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/repair"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/workflow"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		catalogPath string
		logLevel    string
		logFormat   string
	)

	root := &cobra.Command{
		Use:   "flowgen",
		Short: "Flowgen — text-to-workflow generator",
		Long: `Flowgen turns a plain-language automation description into a
validated workflow graph.

The pipeline runs in three stages: extract a structured intent from the
text, synthesize a typed node graph from the intent, then validate and
repair the graph against the node-type catalog.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initLogger(logLevel, logFormat)
		},
	}

	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "path to an alternate node-type catalog YAML (default: bundled)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(generateCmd(&catalogPath))
	root.AddCommand(lintCmd(&catalogPath))
	root.AddCommand(repairCmd(&catalogPath))
	root.AddCommand(graphCmd())
	return root
}

// ─── generate ─────────────────────────────────────────────────────────────────

func generateCmd(catalogPath *string) *cobra.Command {
	var (
		name   string
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "generate <description...>",
		Short: "Generate a workflow from a plain-language description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cat, err := loadCatalog(*catalogPath)
			if err != nil {
				return err
			}
			eng, err := builder.New(cat)
			if err != nil {
				return err
			}

			res, err := eng.Generate(strings.Join(args, " "), name)
			if err != nil {
				return err
			}

			data, err := renderWorkflow(res.Workflow, format)
			if err != nil {
				return err
			}
			if err := writeOutput(out, data); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "generated %q: %d nodes, %d edges, confidence %.2f\n",
				res.Workflow.Name, len(res.Workflow.Nodes), res.Workflow.EdgeCount(),
				res.Intent.OverallConfidence)
			for _, issue := range res.Repair.Warnings() {
				fmt.Fprintf(os.Stderr, "warning: %s\n", issue)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "workflow name (default: derived)")
	cmd.Flags().StringVar(&out, "out", "", "write the workflow to this file instead of stdout")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or dot")
	return cmd
}

// ─── lint ─────────────────────────────────────────────────────────────────────

func lintCmd(catalogPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <workflow.json|workflow.dot>",
		Short: "Validate a workflow file without modifying it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cat, err := loadCatalog(*catalogPath)
			if err != nil {
				return err
			}
			w, err := readWorkflowFile(args[0])
			if err != nil {
				return err
			}

			res, err := repair.Repair(cat, w, repair.Options{})
			if err != nil {
				return err
			}

			for _, issue := range res.Warnings() {
				fmt.Printf("warning: %s\n", issue)
			}
			if errs := res.ValidationErrors(); len(errs) > 0 {
				lines := make([]string, len(errs))
				for i, issue := range errs {
					lines[i] = "  " + issue.String()
				}
				return fmt.Errorf("workflow %q has %d error(s):\n%s",
					w.Name, len(errs), strings.Join(lines, "\n"))
			}
			fmt.Printf("OK: workflow %q is valid (%d nodes, %d edges)\n",
				w.Name, len(w.Nodes), w.EdgeCount())
			return nil
		},
	}
	return cmd
}

// ─── repair ───────────────────────────────────────────────────────────────────

func repairCmd(catalogPath *string) *cobra.Command {
	var (
		out  string
		grid bool
	)

	cmd := &cobra.Command{
		Use:   "repair <workflow.json|workflow.dot>",
		Short: "Fix a workflow file and print the repaired graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cat, err := loadCatalog(*catalogPath)
			if err != nil {
				return err
			}
			w, err := readWorkflowFile(args[0])
			if err != nil {
				return err
			}

			res, err := repair.Repair(cat, w, repair.Options{AutoFix: true, PreserveComplexity: grid})
			if err != nil {
				return err
			}

			for _, issue := range res.Fixed {
				fmt.Fprintf(os.Stderr, "fixed: %s\n", issue)
			}

			data, err := workflow.Marshal(res.Workflow)
			if err != nil {
				return err
			}
			if err := writeOutput(out, data); err != nil {
				return err
			}

			if errs := res.ValidationErrors(); len(errs) > 0 {
				lines := make([]string, len(errs))
				for i, issue := range errs {
					lines[i] = "  " + issue.String()
				}
				return fmt.Errorf("%d unfixable error(s) remain:\n%s",
					len(errs), strings.Join(lines, "\n"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "write the repaired workflow to this file instead of stdout")
	cmd.Flags().BoolVar(&grid, "grid", false, "also normalize node positions onto the layout grid")
	return cmd
}

// ─── helpers ──────────────────────────────────────────────────────────────────

// initLogger installs the process-wide slog default.
func initLogger(level, format string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q: use debug, info, warn, or error", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format %q: use text or json", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadCatalog returns the bundled catalog, or one loaded from path.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	cat, err := catalog.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return cat, nil
}

// readWorkflowFile loads a workflow from JSON, or from a DOT sketch when the
// file carries a .dot/.gv extension.
func readWorkflowFile(path string) (*workflow.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		w, err := workflow.ParseDOT(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return w, nil
	default:
		w, err := workflow.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return w, nil
	}
}

// renderWorkflow serializes a workflow in the requested output format.
func renderWorkflow(w *workflow.Workflow, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json", "":
		return workflow.Marshal(w)
	case "dot":
		return []byte(workflow.MarshalDOT(w)), nil
	default:
		return nil, fmt.Errorf("unknown format %q: use json or dot", format)
	}
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
