package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sift/internal/compiler"
	"github.com/roach88/sift/internal/querysql"
)

// SortResult is the output of the sort command.
type SortResult struct {
	OrderBy string   `json:"order_by"`
	Fields  []string `json:"fields"`
}

// NewSortCommand creates the sort command.
func NewSortCommand(rootOpts *RootOptions) *cobra.Command {
	var fields string

	cmd := &cobra.Command{
		Use:   "sort [rules]",
		Short: "Compile sort rules to an ORDER BY clause",
		Long: `Compile sort rules against a field spec and print the ORDER BY keys.

Without rules the field spec's default sort is used.

Examples:
  sift sort --fields users.cue '[{"field":"age","direction":"desc"},{"property":"id"}]'
  sift sort --fields users.cue`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return runSort(rootOpts, fields, input, cmd)
		},
	}

	cmd.Flags().StringVar(&fields, "fields", "", "path to field spec (required)")
	_ = cmd.MarkFlagRequired("fields")
	return cmd
}

func runSort(opts *RootOptions, fieldsPath, input string, cmd *cobra.Command) error {
	s, err := newSession(opts, fieldsPath, cmd)
	if err != nil {
		return err
	}
	raw, err := readRuleInput(input, cmd.InOrStdin())
	if err != nil {
		return s.inputError("sort", err)
	}

	order, ctx, err := compiler.BuildSorting(raw, s.config, nil)
	if err != nil {
		return outputRuleError(s.formatter, err)
	}

	result := SortResult{OrderBy: querysql.CompileOrder(order), Fields: ctx.Fields()}
	if s.formatter.Format == "json" {
		return s.formatter.Success(result)
	}
	if result.OrderBy == "" {
		fmt.Fprintln(s.formatter.Writer, "(no ordering)")
		return nil
	}
	fmt.Fprintln(s.formatter.Writer, "ORDER BY "+result.OrderBy)
	return nil
}
