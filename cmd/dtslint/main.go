// Command dtslint drives the tokenize -> parse -> merge -> validate
// pipeline against one or more real DTS files and prints the resulting
// diagnostics. It is the thin, cobra-based command that exercises the
// library end to end (§3 of the module's own spec), grounded on the
// cobra command trees in the adest-aes-scripts and grafana-k6 sibling
// examples.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/golangee/dts/ast"
	"github.com/golangee/dts/binding"
	"github.com/golangee/dts/cache"
	dtscontext "github.com/golangee/dts/context"
	"github.com/golangee/dts/diag"
	"github.com/golangee/dts/validate"
	"github.com/golangee/dts/xmldump"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	log := logrus.New()

	var (
		verbose  bool
		format   string
		bindings []string
	)

	root := &cobra.Command{
		Use:   "dtslint [files...]",
		Short: "Parse, merge, and validate Devicetree Source files",
		Long: `dtslint runs the full language-service core pipeline — tokenize,
parse (with error recovery), cross-file context merge, and standard-binding
property validation — against one or more .dts/.dtsi files and prints the
resulting diagnostics.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			return run(cmd.Context(), log, args, bindings, format, cmd.OutOrStdout())
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.Flags().StringVar(&format, "format", "text", "diagnostic output format: text or xml")
	root.Flags().StringSliceVar(&bindings, "bindings", nil, "additional YAML binding pack(s) to load")

	return root
}

func run(ctx context.Context, log *logrus.Logger, files, bindingPacks []string, format string, out io.Writer) error {
	cat := binding.Standard()

	for _, path := range bindingPacks {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open binding pack %s: %w", path, err)
		}

		err = cat.LoadYAML(f)
		f.Close()

		if err != nil {
			return fmt.Errorf("load binding pack %s: %w", path, err)
		}
	}

	docCache := cache.New(log)

	docs := make([]*ast.RootDoc, 0, len(files))

	var allIssues []diag.Diagnostic

	for _, path := range files {
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		res := docCache.GetOrCreate(ctx, path, string(text))
		docs = append(docs, res.Root)
		allIssues = append(allIssues, res.Issues...)
	}

	tree, contextIssues := dtscontext.Build(ctx, docs)
	allIssues = append(allIssues, contextIssues...)

	allIssues = append(allIssues, validate.Validate(ctx, tree, cat)...)

	if format == "xml" {
		return xmldump.Write(out, tree)
	}

	printDiagnostics(out, allIssues)

	for _, iss := range allIssues {
		if iss.Severity == diag.Error {
			return fmt.Errorf("%d error diagnostic(s)", countErrors(allIssues))
		}
	}

	return nil
}

func countErrors(issues []diag.Diagnostic) int {
	n := 0

	for _, iss := range issues {
		if iss.Severity == diag.Error {
			n++
		}
	}

	return n
}

func printDiagnostics(out io.Writer, issues []diag.Diagnostic) {
	for _, iss := range issues {
		pos := iss.Element.FirstToken().Pos

		var kinds string
		for i, k := range iss.Kinds {
			if i > 0 {
				kinds += ","
			}
			kinds += k.String()
		}

		fmt.Fprintf(out, "%s [%s] %s: %v\n", pos, iss.Severity, kinds, iss.TemplateArgs)
	}
}
