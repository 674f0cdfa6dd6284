package main

import (
	"encoding/json"
	"fmt"

	"github.com/maxviazov/taskboard-service/internal/pagination"
	"github.com/spf13/cobra"
)

func pagesCmd() *cobra.Command {
	var (
		req    pagination.Request
		limits = pagination.DefaultLimits
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Print the page selector for a position in a listing",
		Long: `Print the page selector for a position in a listing.

Examples:
  taskboard pages --page 5 --total 100 --size 10
  taskboard pages --page 1 --total 30 --size 5 --siblings 0 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pages, err := req.RangeWithin(limits)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(pages)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), pagination.Format(pages))
			return err
		},
	}
	cmd.Flags().IntVarP(&req.CurrentPage, "page", "p", 1, "current page (1-based)")
	cmd.Flags().IntVarP(&req.TotalCount, "total", "t", 0, "total number of items")
	cmd.Flags().IntVarP(&req.PageSize, "size", "s", 10, "items per page")
	cmd.Flags().IntVar(&req.SiblingCount, "siblings", pagination.DefaultSiblingCount, "pages shown on each side of the current one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the range as JSON")
	cmd.Flags().IntVar(&limits.MaxSiblings, "max-siblings", limits.MaxSiblings, "reject --siblings above this")
	cmd.Flags().IntVar(&limits.MaxPages, "max-pages", limits.MaxPages, "reject ranges with more pages than this")
	return cmd
}
