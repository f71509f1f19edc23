package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mdfview/internal/session"
)

func newChannelsCommand(ctx *commandContext) *cobra.Command {
	var query string
	var all bool

	cmd := &cobra.Command{
		Use:   "channels <file>",
		Short: "List the channels of a measurement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, args[0], func(runCtx context.Context, sess *session.Session) error {
				names := sess.Channels(runCtx)
				out := cmd.OutOrStdout()
				if sess.Catalog.Large() && query == "" && !all {
					fmt.Fprintf(out, "%s channels available; use --search to filter or --all to list everything.\n",
						humanize.Comma(int64(len(names))))
					return nil
				}
				if query != "" {
					names = sess.ChannelOptions(runCtx, query)
				}
				rows := make([][]string, len(names))
				for i, name := range names {
					rows[i] = []string{humanize.Comma(int64(i + 1)), name}
				}
				caption := fmt.Sprintf("%s of %s channels", humanize.Comma(int64(len(names))),
					humanize.Comma(int64(len(sess.Catalog.Names()))))
				fmt.Fprintln(out, renderTable([]string{"#", "Channel"}, rows, []columnAlignment{alignRight, alignLeft}, caption))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query, "search", "s", "", "Case-insensitive substring filter")
	cmd.Flags().BoolVar(&all, "all", false, "List every channel even when the catalog is large")
	return cmd
}
