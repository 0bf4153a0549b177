// Package cmdutil provides shared flags and error plumbing for rmarecon commands.
package cmdutil

import (
	stderrors "errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/agentstation/rmarecon/pkg/errors"
	"github.com/agentstation/rmarecon/pkg/reconcile"
)

// InputFlags holds the report paths and result set shared by commands that
// run a reconciliation.
type InputFlags struct {
	GSX string
	SA  string
	Set string
}

// AddInputFlags adds --gsx, --sa and --set to cmd.
func AddInputFlags(cmd *cobra.Command, defaultSet string) *InputFlags {
	flags := &InputFlags{}

	cmd.Flags().StringVar(&flags.GSX, "gsx", "",
		"GSX repair export (csv, tsv, txt or xlsx)")
	cmd.Flags().StringVar(&flags.SA, "sa", "",
		"SA service-desk export (csv, tsv, txt or xlsx)")
	cmd.Flags().StringVar(&flags.Set, "set", defaultSet,
		fmt.Sprintf("result set: %v", reconcile.SetNames()))
	_ = cmd.MarkFlagRequired("gsx")
	_ = cmd.MarkFlagRequired("sa")
	_ = cmd.RegisterFlagCompletionFunc("set", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return reconcile.SetNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return flags
}

// Validate checks the flag values.
func (f *InputFlags) Validate() error {
	if !slices.Contains(reconcile.SetNames(), f.Set) {
		return errors.NewValidationError("set", f.Set,
			fmt.Sprintf("must be one of %v", reconcile.SetNames()))
	}
	return nil
}

// ReportedError wraps an error the user has already been shown, so the
// top-level handler sets the exit code without printing it again.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

// Unwrap implements errors.Unwrap.
func (e *ReportedError) Unwrap() error { return e.Err }

// Reported marks err as already shown. It returns nil for a nil err. A run
// rejected because another one is in flight never reaches the status sink,
// so that error is returned unmarked.
func Reported(err error) error {
	if err == nil || errors.IsRunInProgress(err) {
		return err
	}
	return &ReportedError{Err: err}
}

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var re *ReportedError
	return stderrors.As(err, &re)
}
