package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/rules"
)

// NewJoinCommand creates the join command.
func NewJoinCommand(rootOpts *RootOptions) *cobra.Command {
	var condition string

	cmd := &cobra.Command{
		Use:   "join <fragment>...",
		Short: "Combine filter fragments under one condition",
		Long: `Join JSON filter fragments into a single filter.

Empty fragments are dropped; a single remaining fragment is printed as
is. Output is canonical JSON, suitable for --filter.

Example:
  sift join '{"field":"age","operator":"greaterthan","value":20}' '{"field":"email","operator":"isnotnull"}'
  sift join --condition or "$TENANT_FILTER" "$USER_FILTER"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(rootOpts, condition, args, cmd)
		},
	}

	cmd.Flags().StringVar(&condition, "condition", rules.ConditionAnd, "condition joining the fragments")
	return cmd
}

func runJoin(opts *RootOptions, condition string, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	fragments := make([]any, len(args))
	for i, arg := range args {
		fragments[i] = arg
	}

	joined, err := rules.StringJoinFilters(condition, fragments...)
	if err != nil {
		return outputRuleError(formatter, err)
	}

	if formatter.Format == "json" {
		raw, err := rules.JoinFilters(condition, fragments...)
		if err != nil {
			return outputRuleError(formatter, err)
		}
		return formatter.Success(raw)
	}
	fmt.Fprintln(formatter.Writer, joined)
	return nil
}
