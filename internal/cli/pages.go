package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/ens"
)

func newPagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List, inspect and process campaign pages",
	}

	cmd.AddCommand(newPagesListCommand())
	cmd.AddCommand(newPagesGetCommand())
	cmd.AddCommand(newPagesProcessCommand())

	return cmd
}

// pages list command
func newPagesListCommand() *cobra.Command {
	var pageType, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pages of a type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := ens.ParsePageType(pageType)
			if err != nil {
				return err
			}

			var statusFilter *ens.PageStatus
			if status != "" {
				s, err := ens.ParsePageStatus(status)
				if err != nil {
					return err
				}
				statusFilter = &s
			}

			cctx := getCliContext(cmd)
			pages, err := cctx.Client.GetPages(cmd.Context(), t, statusFilter)
			if err != nil {
				return fmt.Errorf("failed to list pages: %w", err)
			}
			return printJSON(cmd, pages)
		},
	}

	cmd.Flags().StringVar(&pageType, "type", "", "Page type, e.g. dcf or pet (required)")
	cmd.Flags().StringVar(&status, "status", "", "Only list pages with this campaign status")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

// pages get command
func newPagesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PAGE_ID",
		Short: "Show a single page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			cctx := getCliContext(cmd)
			page, err := cctx.Client.GetPage(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get page %d: %w", id, err)
			}
			return printJSON(cmd, page)
		},
	}
}

// pages process command
func newPagesProcessCommand() *cobra.Command {
	var payload string

	cmd := &cobra.Command{
		Use:   "process PAGE_ID",
		Short: "Submit a page request",
		Long:  `Submit a page request. The payload is the JSON body ENS expects for the page, e.g. {"supporter": {...}, "transaction": {...}}.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var body any
			if payload != "" {
				if err := json.Unmarshal([]byte(payload), &body); err != nil {
					return fmt.Errorf("invalid payload: %w", err)
				}
			}

			cctx := getCliContext(cmd)
			result, err := cctx.Client.ProcessPage(cmd.Context(), id, body)
			if err != nil {
				return fmt.Errorf("failed to process page %d: %w", id, err)
			}
			cctx.Logger.WithPageID(id).Info("Page request processed")
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&payload, "payload", "", "JSON request body (defaults to {})")

	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", s)
	}
	return id, nil
}
