package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil)
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players of the club",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/players", nil)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the matches, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/matches", nil)
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Create a match from an announcement message stored in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}
		return performRequest(http.MethodPost, "/matches/parse", body)
	},
}

var resultCmd = &cobra.Command{
	Use:   "result <match-id> <file>",
	Short: "Record the result of a match from a JSON file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read result: %w", err)
		}
		return performRequest(http.MethodPost, "/matches/"+url.PathEscape(args[0])+"/result", body)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <match-id>",
	Short: "Finish the player updates of an interrupted result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/matches/"+url.PathEscape(args[0])+"/resume", nil)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <match-id>",
	Short: "Reverse the effects of a match and delete it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/matches/"+url.PathEscape(args[0]), nil)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Post the rating leaderboard to Slack",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/leaderboard", nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil)
	},
}

func requestURL(endpoint string) string {
	q := url.Values{}
	if dryRun {
		q.Set("dry_run", "true")
	}
	if verbose {
		q.Set("verbose", "true")
	}
	if len(q) == 0 {
		return host + endpoint
	}
	return host + endpoint + "?" + q.Encode()
}

func performRequest(method, endpoint string, body []byte) error {
	target := requestURL(endpoint)
	fmt.Printf("Making %s request to %s\n", method, target)

	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server answered %s", resp.Status)
	}
	return nil
}
