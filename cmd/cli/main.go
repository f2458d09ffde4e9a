package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	cliUser string
	apiURL  string = "http://localhost:8080"
	output  string = "text" // "text" or "json"
)

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Inkwell CLI - Browse feeds and search from the terminal",
	Long: `Inkwell CLI provides command-line access to the Inkwell API.
Fetch your ranked feed, check what's trending, and search published posts.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cliUser == "" {
			cliUser = os.Getenv("INKWELL_USER")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cliUser, "user", "", "User ID sent as X-User-ID (defaults to INKWELL_USER env var)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", apiURL, "API server URL")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	// Add command groups
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(searchCmd)
}

// apiGet performs an authenticated GET against the API and returns the body
func apiGet(path string, params url.Values) ([]byte, error) {
	endpoint := apiURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if cliUser != "" {
		req.Header.Set("X-User-ID", cliUser)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp map[string]interface{}
		json.Unmarshal(body, &errResp)
		if msg, ok := errResp["message"].(string); ok {
			return nil, fmt.Errorf("API error: %s", msg)
		}
		if msg, ok := errResp["error"].(string); ok {
			return nil, fmt.Errorf("API error: %s", msg)
		}
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	return body, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
