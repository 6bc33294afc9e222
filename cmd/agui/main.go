package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agui",
	Short: "Drive a streaming agent endpoint from the terminal",
	Long: `agui connects to an agent endpoint speaking the streaming event
protocol, runs it with a user message and prints the evolving conversation
as it is materialized from the event stream.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
