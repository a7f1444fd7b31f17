// Package main provides the entry point for the coldgen CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coldgen",
	Short: "Cold outreach message generator",
	Long:  "ColdGen scrapes a job listing URL, extracts the job details, and generates a cold outreach message (email, LinkedIn message, or referral request) in a selectable tone.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
