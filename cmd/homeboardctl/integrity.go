package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	integrityCmd := &cobra.Command{Use: "integrity", Short: "Maintenance operations"}

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove widgets whose tab no longer exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newClient().mutate("POST", "/api/integrity/prune", nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	integrityCmd.AddCommand(pruneCmd)

	rootCmd.AddCommand(integrityCmd)
}
