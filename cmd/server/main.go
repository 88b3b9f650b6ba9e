// Package main is the entry point for the keeper API server
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "keeper-api",
	Short: "Keeper API server",
	Long:  `Keeper API serves the campaign hierarchy, turn processing, and realtime session relay for collaborative investigative storytelling.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
