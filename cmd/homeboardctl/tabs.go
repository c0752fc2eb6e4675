package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	tabsCmd := &cobra.Command{Use: "tabs", Short: "Tab operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show the full dashboard state",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newClient().get("/api/dashboard")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	tabsCmd.AddCommand(listCmd)

	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newClient().mutate("POST", "/api/tabs", map[string]string{"name": args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	tabsCmd.AddCommand(addCmd)

	removeCmd := &cobra.Command{
		Use:   "remove TAB_ID",
		Short: "Remove a tab and its widgets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newClient().mutate("DELETE", "/api/tabs/"+args[0], nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	tabsCmd.AddCommand(removeCmd)

	rootCmd.AddCommand(tabsCmd)
}
