package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag string
	keyFlag string
	rootCmd = &cobra.Command{
		Use:   "homeboardctl",
		Short: "CLI client for the Homeboard dashboard REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Homeboard service base URL")
	rootCmd.PersistentFlags().StringVarP(&keyFlag, "key", "k", "hb_local_dev_key", "API key")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
