package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/ens"
)

func newSupportersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supporters",
		Short: "Look up and create supporters",
	}

	cmd.AddCommand(newSupportersGetCommand())
	cmd.AddCommand(newSupportersCreateCommand())
	cmd.AddCommand(newSupportersFieldsCommand())
	cmd.AddCommand(newSupportersQuestionsCommand())

	return cmd
}

// supporters get command
func newSupportersGetCommand() *cobra.Command {
	var (
		email string
		opts  ens.SupporterQueryOptions
	)

	cmd := &cobra.Command{
		Use:   "get [SUPPORTER_ID]",
		Short: "Look up a supporter by id or email address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (email != "") {
				return fmt.Errorf("specify either a supporter id or --email")
			}

			cctx := getCliContext(cmd)

			var (
				supporter *ens.Supporter
				err       error
			)
			if email != "" {
				supporter, err = cctx.Client.GetSupporterByEmailAddress(cmd.Context(), email, opts)
			} else {
				id, parseErr := parseID(args[0])
				if parseErr != nil {
					return parseErr
				}
				supporter, err = cctx.Client.GetSupporterByID(cmd.Context(), id, opts)
			}
			if err != nil {
				return fmt.Errorf("failed to get supporter: %w", err)
			}
			return printJSON(cmd, supporter)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Look up by email address instead of id")
	cmd.Flags().BoolVar(&opts.IncludeMemberships, "memberships", false, "Include memberships")
	cmd.Flags().BoolVar(&opts.IncludeQuestions, "questions", false, "Include question responses")

	return cmd
}

// supporters create command
func newSupportersCreateCommand() *cobra.Command {
	var (
		email  string
		fields []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a supporter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseFields(fields)
			if err != nil {
				return err
			}

			cctx := getCliContext(cmd)
			id, err := cctx.Client.CreateSupporter(cmd.Context(), email, values)
			if err != nil {
				return fmt.Errorf("failed to create supporter: %w", err)
			}
			cctx.Logger.WithSupporterID(id).Info("Supporter created")
			return printJSON(cmd, map[string]int{"id": id})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringArrayVar(&fields, "field", nil, `Custom field as "Name=value", repeatable`)
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// supporters fields command
func newSupportersFieldsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the fields available on supporter records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := getCliContext(cmd)
			fields, err := cctx.Client.GetSupporterFields(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list supporter fields: %w", err)
			}

			list := make([]ens.SupporterField, 0, len(fields))
			for _, field := range fields {
				list = append(list, field)
			}
			sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
			return printJSON(cmd, list)
		},
	}
}

// supporters questions command
func newSupportersQuestionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "questions [QUESTION_ID]",
		Short: "List supporter questions, or show one with its details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := getCliContext(cmd)

			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				question, err := cctx.Client.GetSupporterQuestion(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("failed to get question %d: %w", id, err)
				}
				return printJSON(cmd, question)
			}

			questions, err := cctx.Client.GetSupporterQuestions(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list supporter questions: %w", err)
			}

			list := make([]ens.SupporterQuestion, 0, len(questions))
			for _, question := range questions {
				list = append(list, question)
			}
			sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
			return printJSON(cmd, list)
		},
	}
}

// parseFields turns "Name=value" pairs into a field map
func parseFields(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid field %q: expected Name=value", pair)
		}
		values[strings.TrimSpace(name)] = value
	}
	return values, nil
}
