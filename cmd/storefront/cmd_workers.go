package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/server"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/queue"
)

var queueWorkersFlag int

var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Run queue workers without the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		n := queueWorkersFlag
		if n < 1 {
			n = config.Queue().Workers
		}
		return server.Work(n)
	},
}

var queueFailedLimit int

var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "List jobs that exhausted their retries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}

		var rows []queue.FailedJobRecord
		if err := database.DB.Order("id DESC").Limit(queueFailedLimit).Find(&rows).Error; err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tJOB\tATTEMPTS\tFAILED AT\tERROR")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", r.ID, r.JobType, r.Attempts, r.FailedAt.Format(time.RFC3339), r.Error)
		}
		return w.Flush()
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "number of concurrent workers (default QUEUE_WORKERS)")
	queueFailedCmd.Flags().IntVarP(&queueFailedLimit, "limit", "n", 20, "rows to show")
}
