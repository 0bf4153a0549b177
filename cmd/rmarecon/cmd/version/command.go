// Package version provides the version command.
package version

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/rmarecon/internal/cmd/output"
	"github.com/agentstation/rmarecon/internal/cmd/table"
	"github.com/agentstation/rmarecon/pkg/constants"
)

// AppContext defines what the version command needs from the app.
type AppContext interface {
	OutputFormat() string
	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}

// Info is the structured version output.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// NewCommand creates the version command.
func NewCommand(app AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := Info{
				Version:   app.Version(),
				Commit:    app.Commit(),
				Date:      app.Date(),
				BuiltBy:   app.BuiltBy(),
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}

			format := output.Format(app.OutputFormat())
			if !format.IsTable() {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), info)
			}
			if format != output.FormatWide {
				cmd.Printf("%s %s\n", constants.AppName, info.Version)
				return nil
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), table.KeyValue(
				[2]string{"Version", info.Version},
				[2]string{"Commit", info.Commit},
				[2]string{"Built", info.Date},
				[2]string{"Built by", info.BuiltBy},
				[2]string{"Go version", info.GoVersion},
				[2]string{"Platform", info.Platform},
			))
		},
	}
}
