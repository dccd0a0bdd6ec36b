package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL    string
	adminToken string
	timeout    time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "golend-cli",
		Short: "GoLend CLI tool",
		Long:  `A command line interface for interacting with the GoLend API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoLend API")
	rootCmd.PersistentFlags().StringVar(&adminToken, "token", os.Getenv("GOLEND_ADMIN_TOKEN"), "Admin token for operator commands")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Loan commands
	loanCmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan operations",
	}
	loanCmd.AddCommand(statusCmd(), historyCmd())
	rootCmd.AddCommand(loanCmd)

	// Operator commands
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator commands (require --token)",
	}
	adminCmd.AddCommand(atRiskCmd(), forceLiquidateCmd(), accrueCmd(), reconcileCmd())
	rootCmd.AddCommand(adminCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <owner-id>",
		Short: "Show the owner's active loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/loans/status/"+args[0], false)
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <owner-id>",
		Short: "List the owner's operation log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/loans/history/"+args[0], false)
		},
	}
}

func atRiskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "at-risk",
		Short: "List loans above the warning threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/admin/loans/at-risk", true)
		},
	}
}

func forceLiquidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "liquidate <loan-id>",
		Short: "Force a full liquidation of a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/admin/loans/"+args[0]+"/liquidate", true)
		},
	}
}

func accrueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accrue",
		Short: "Trigger an interest accrual pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/admin/accrual/run", true)
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Cross-check account debt totals against loan debt totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/admin/reconciliation", true)
		},
	}
}

func getJSON(path string, admin bool) error {
	return doRequest(http.MethodGet, path, admin)
}

func postJSON(path string, admin bool) error {
	return doRequest(http.MethodPost, path, admin)
}

func doRequest(method, path string, admin bool) error {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		return err
	}
	if admin {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(body)), 200))
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		fmt.Println(string(body))
		return nil
	}
	printJSON(parsed)

	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
