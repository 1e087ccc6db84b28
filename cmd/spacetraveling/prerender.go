package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var prerenderCmd = &cobra.Command{
	Use:   "prerender",
	Short: "Generate the home page and newest posts into the page cache",
	Long: `prerender fills the page cache ahead of traffic. It is useful with the
sqlite and redis backends, whose entries outlive the process.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		paths, err := app.Prerender(cmd.Context())
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return err
	},
}
