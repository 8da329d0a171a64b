package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server and in-process queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// route:list builds the kernel without any backing services; handlers are
// never invoked.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		k := kernel.NewHTTPKernel(server.NewServices(nil))

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, rt := range k.Router().Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", rt.Method, rt.Path, rt.Name)
		}
		return w.Flush()
	},
}

var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "List the housekeeping tasks serve runs in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, line := range server.Housekeeping(server.NewServices(nil).Cart).List() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}
