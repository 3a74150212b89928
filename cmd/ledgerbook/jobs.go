package main

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledgerbook/cmd/ledgerbook/cli"
)

func newJobsCmd() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage background report jobs",
	}

	var opts cli.TriggerOptions
	trigger := &cobra.Command{
		Use:   "trigger <name>",
		Short: "Enqueue reports:warmup or reports:invalidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJobsCLI(func(c *cli.JobsCLI) error {
				info, err := c.Trigger(cmd.Context(), args[0], opts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
				return nil
			})
		},
	}
	trigger.Flags().StringSliceVar(&opts.Books, "book", nil, "books to warm (defaults to REPORT_WARMUP_BOOKS)")
	trigger.Flags().StringSliceVar(&opts.Types, "type", nil, "report types to warm (defaults to all)")
	trigger.Flags().StringVar(&opts.Reason, "reason", "", "reason recorded with an invalidation")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show default queue statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJobsCLI(func(c *cli.JobsCLI) error {
				s, err := c.InspectQueue(cmd.Context())
				if err != nil {
					return err
				}
				return json.NewEncoder(cmd.OutOrStdout()).Encode(s)
			})
		},
	}

	var size int
	scheduled := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withJobsCLI(func(c *cli.JobsCLI) error {
				infos, err := c.ListScheduled(cmd.Context(), size)
				if err != nil {
					return err
				}
				for _, info := range infos {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", info.ID, info.Type, info.NextProcessAt.Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}
	scheduled.Flags().IntVar(&size, "size", 10, "page size")

	jobsCmd.AddCommand(trigger, stats, scheduled)
	return jobsCmd
}

func withJobsCLI(fn func(*cli.JobsCLI) error) error {
	cfg, _, err := bootstrap()
	if err != nil {
		return err
	}
	c, err := cli.NewJobsCLI(asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	return fn(c)
}
