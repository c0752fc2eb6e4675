package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	widgetsCmd := &cobra.Command{Use: "widgets", Short: "Widget operations"}

	var tabID, widgetType, argsJSON string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a widget to a tab",
		RunE: func(cmd *cobra.Command, args []string) error {
			var rawArgs map[string]interface{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &rawArgs); err != nil {
					return fmt.Errorf("--args must be a JSON object: %w", err)
				}
			}
			data, err := newClient().mutate("POST", "/api/tabs/"+tabID+"/widgets", map[string]interface{}{
				"type": widgetType,
				"args": rawArgs,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	addCmd.Flags().StringVarP(&tabID, "tab", "t", "", "Tab ID (required)")
	addCmd.Flags().StringVarP(&widgetType, "type", "y", "content-list", "Widget type")
	addCmd.Flags().StringVarP(&argsJSON, "args", "j", "", "Widget args as a JSON object")
	_ = addCmd.MarkFlagRequired("tab")
	widgetsCmd.AddCommand(addCmd)

	var removeTab string
	removeCmd := &cobra.Command{
		Use:   "remove WIDGET_ID",
		Short: "Remove a widget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := newClient().mutate("DELETE", "/api/tabs/"+removeTab+"/widgets/"+args[0], nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	removeCmd.Flags().StringVarP(&removeTab, "tab", "t", "", "Tab ID (required)")
	_ = removeCmd.MarkFlagRequired("tab")
	widgetsCmd.AddCommand(removeCmd)

	var orderTab string
	orderCmd := &cobra.Command{
		Use:   "order WIDGET_ID[,WIDGET_ID...]",
		Short: "Replace a tab's widget ordering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := strings.Split(args[0], ",")
			data, err := newClient().mutate("PUT", "/api/tabs/"+orderTab+"/widgets/order", map[string]interface{}{
				"widgetIds": ids,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, data)
			return nil
		},
	}
	orderCmd.Flags().StringVarP(&orderTab, "tab", "t", "", "Tab ID (required)")
	_ = orderCmd.MarkFlagRequired("tab")
	widgetsCmd.AddCommand(orderCmd)

	rootCmd.AddCommand(widgetsCmd)
}
