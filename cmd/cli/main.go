package main

import (
	"fmt"
	"os"

	"github.com/granafy/reports/pkg/runtime/terminal"
	"github.com/granafy/reports/pkg/terminal/commands"
	"github.com/spf13/cobra"
)

func main() {
	reporter := terminal.NewReporter(os.Stdout)

	rootCmd := &cobra.Command{
		Use:   "reports",
		Short: "Personal finance report tool",
	}
	rootCmd.AddCommand(commands.NewRunCmd(reporter))
	rootCmd.AddCommand(commands.NewExportCmd())
	rootCmd.AddCommand(commands.NewCleanExportsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
