package app

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/agentstation/inferdelta/internal/cmd/output"
	"github.com/agentstation/inferdelta/internal/inspect"
	"github.com/agentstation/inferdelta/pkg/graph"
	"github.com/agentstation/inferdelta/pkg/logging"
	"github.com/agentstation/inferdelta/pkg/reconciler"
)

// inputsFromArgs maps 3 or 4 positional arguments onto run inputs. The
// additional file sits between the inferred snapshot and the output.
func inputsFromArgs(args []string) reconciler.Inputs {
	in := reconciler.Inputs{
		Stated:   args[0],
		Inferred: args[1],
		Output:   args[len(args)-1],
	}
	if len(args) == 4 {
		in.Additional = args[2]
	}
	return in
}

// runReconcile runs one reconciliation and prints its report.
func (a *App) runReconcile(cmd *cobra.Command, args []string) error {
	ctx := logging.WithLogger(cmd.Context(), a.logger)

	format, err := output.ParseFormat(a.config.Format)
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	opts, err := a.reconcilerOptions()
	if err != nil {
		return err
	}
	rec, err := reconciler.New(opts...)
	if err != nil {
		return err
	}

	result, err := rec.Run(ctx, inputsFromArgs(args))
	if err != nil {
		return err
	}

	if err := output.FormatReport(a.out, result.Report(a.config.MaxUnresolved), format); err != nil {
		return err
	}

	if !a.config.Interactive {
		return nil
	}
	inspector := inspect.New(
		[]*graph.Graph{result.Stated, result.Inferred},
		inspect.WithFormat(format),
		inspect.WithPrompt(a.interactiveInput()),
	)
	return inspector.Run(ctx, a.in, a.out)
}

// interactiveInput reports whether input comes from a terminal.
func (a *App) interactiveInput() bool {
	f, ok := a.in.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
