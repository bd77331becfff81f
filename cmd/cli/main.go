package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bilans-cli",
		Short: "Bilans CLI tool",
		Long:  `A command line interface for interacting with the Bilans ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Bilans API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Chart commands
	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Chart of accounts operations",
	}
	chartCmd.AddCommand(chartInitCmd(), chartTreeCmd())
	rootCmd.AddCommand(chartCmd)

	// Report commands
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Financial reports",
	}
	reportCmd.AddCommand(balanceSheetCmd(), trialBalanceCmd())
	rootCmd.AddCommand(reportCmd)

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd())
	rootCmd.AddCommand(ledgerCmd)

	// Statement commands
	statementCmd := &cobra.Command{
		Use:   "statement",
		Short: "Bank statement operations",
	}
	statementCmd.AddCommand(autoMatchCmd())
	rootCmd.AddCommand(statementCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func chartInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Seed the default chart of accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/accounts/init", nil)
		},
	}
}

func chartTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the account hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/accounts/tree", nil)
		},
	}
}

func balanceSheetCmd() *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Build a balance sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/reports/balance-sheet"
			if asOf != "" {
				path += "?as_of=" + asOf
			}
			return request(http.MethodGet, path, nil)
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "Report date (RFC 3339)")
	return cmd
}

func trialBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trial-balance",
		Short: "Build a trial balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/reports/trial-balance", nil)
		},
	}
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/reports/consistency", nil)
		},
	}
}

func autoMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <statement-id>",
		Short: "Run auto-matching over a statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/statements/"+args[0]+"/auto-match", nil)
		},
	}
}

// request performs one API call and prints the JSON response.
func request(method, path string, body []byte) error {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		fmt.Println(string(raw))
		return nil
	}
	printJSON(decoded)

	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
