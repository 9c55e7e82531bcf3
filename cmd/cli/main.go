package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bankledger-cli",
		Short: "BankLedger CLI tool",
		Long:  `A command line interface for interacting with the BankLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the BankLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}
	accountCmd.AddCommand(openAccountCmd(), getAccountCmd(), listAccountsCmd(), balanceCmd(), recordsCmd())

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd())

	rootCmd.AddCommand(accountCmd, ledgerCmd, depositCmd(), withdrawCmd(), transferCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openAccountCmd() *cobra.Command {
	var name, openingBalance string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/accounts/", map[string]string{
				"name":            name,
				"opening_balance": openingBalance,
			}, "")
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Account holder name")
	cmd.Flags().StringVar(&openingBalance, "opening-balance", "0", "Opening balance")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func getAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/accounts/" + args[0])
		},
	}
}

func listAccountsCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/accounts/?limit=%d&offset=%d", limit, offset))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/accounts/" + args[0] + "/balance")
		},
	}
}

func recordsCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "records <account-id>",
		Short: "List an account's transaction records, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/accounts/%s/records?limit=%d&offset=%d", args[0], limit, offset))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	return cmd
}

func depositCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "deposit <account-id> <amount>",
		Short: "Deposit into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/accounts/"+args[0]+"/deposit", map[string]string{
				"amount":      args[1],
				"description": description,
			}, newIdempotencyKey())
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Record description")
	return cmd
}

func withdrawCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "withdraw <account-id> <amount>",
		Short: "Withdraw from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/accounts/"+args[0]+"/withdraw", map[string]string{
				"amount":      args[1],
				"description": description,
			}, newIdempotencyKey())
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Record description")
	return cmd
}

func transferCmd() *cobra.Command {
	var from, to, amount, description string

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer between two accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/transfers/", map[string]string{
				"from_account_id": from,
				"to_account_id":   to,
				"amount":          amount,
				"description":     description,
			}, newIdempotencyKey())
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source account ID")
	cmd.Flags().StringVar(&to, "to", "", "Destination account ID")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to transfer")
	cmd.Flags().StringVar(&description, "description", "", "Record description")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, body, err := doRequest(http.MethodGet, "/api/v1/ledger/consistency", nil, "")
			if err != nil {
				return err
			}

			if resp.StatusCode != http.StatusOK {
				fmt.Printf("Consistency check FAILED (Status: %d)\n", resp.StatusCode)
				printRawJSON(body)
				os.Exit(1)
			}

			fmt.Println("Consistency check PASSED")
			printRawJSON(body)
			return nil
		},
	}
}

func getJSON(path string) error {
	resp, body, err := doRequest(http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		printRawJSON(body)
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	printRawJSON(body)
	return nil
}

func postJSON(path string, payload any, idempotencyKey string) error {
	resp, body, err := doRequest(http.MethodPost, path, payload, idempotencyKey)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		printRawJSON(body)
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	printRawJSON(body)
	return nil
}

func doRequest(method, path string, payload any, idempotencyKey string) (*http.Response, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, body, nil
}

// printRawJSON re-indents a JSON response for the terminal, falling back
// to raw output when the body is not valid JSON.
func printRawJSON(body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(buf.String())
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// newIdempotencyKey generates a fresh key so that a retried command does
// not move money twice when the client resends after a timeout.
func newIdempotencyKey() string {
	return ulid.Make().String()
}
