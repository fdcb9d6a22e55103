// Package main implements the ragctl CLI for manual operations against the
// ragd HTTP server.
package main

import (
	"bytes"
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
	// serverURL is the base URL for the ragd HTTP server
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "CLI for ragd HTTP server operations",
	Long: `ragctl is a command-line interface for interacting with the ragd HTTP server.
It provides commands for ingesting documents, asking questions, and
generating summaries.`,
	Version: version,
}

var (
	modelFlag  string
	lengthFlag string
	styleFlag  string
	focusFlag  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8521", "ragd server URL")

	askCmd.Flags().StringVar(&modelFlag, "model", "", "preferred provider (gemini, openai, claude, mistral)")
	summarizeCmd.Flags().StringVar(&modelFlag, "model", "", "preferred provider (gemini, openai, claude, mistral)")
	summarizeCmd.Flags().StringVar(&lengthFlag, "length", "", "summary length (short, medium, long)")
	summarizeCmd.Flags().StringVar(&styleFlag, "style", "", "summary style (paragraph, bullet)")
	summarizeCmd.Flags().StringVar(&focusFlag, "focus", "", "summary focus (comprehensive, methods, results, conclusions)")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(summarizeCmd)
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check ragd server health",
	Long: `Check the health status of the ragd HTTP server.

Examples:
  # Check health
  ragctl health

  # Check health on a different server
  ragctl health --server http://localhost:9000`,
	RunE: runHealth,
}

// ingestCmd uploads a document for question answering
var ingestCmd = &cobra.Command{
	Use:   "ingest <document-id> [file]",
	Short: "Ingest a document into the chunk store",
	Long: `Ingest a document so questions can be asked about it. Reads the
document from a file, or from stdin when the file is omitted or "-".

Examples:
  # Ingest a file
  ragctl ingest report-2026 report.txt

  # Ingest from stdin
  cat notes.md | ragctl ingest meeting-notes -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runIngest,
}

// askCmd asks a question about an ingested document
var askCmd = &cobra.Command{
	Use:   "ask <document-id> <question>",
	Short: "Ask a question about an ingested document",
	Long: `Ask a question grounded in an ingested document.

Examples:
  # Ask with the default provider chain
  ragctl ask report-2026 "What were the key findings?"

  # Prefer a specific provider
  ragctl ask report-2026 "Summarize the methodology" --model claude`,
	Args: cobra.ExactArgs(2),
	RunE: runAsk,
}

// summarizeCmd generates a document summary
var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize a document",
	Long: `Generate an AI summary of a document. Reads the document from a
file, or from stdin when the file is omitted or "-".

Examples:
  # Summarize a file as bullet points
  ragctl summarize report.txt --style bullet

  # Short summary focused on results
  ragctl summarize report.txt --length short --focus results`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func readInput(args []string, index int) ([]byte, error) {
	if len(args) <= index || args[index] == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return content, nil
	}
	content, err := os.ReadFile(args[index])
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", args[index], err)
	}
	return content, nil
}

// postJSON sends a request and decodes the response, with a long timeout
// because generation can cross a provider fallback chain.
func postJSON(path string, reqBody, respBody any) error {
	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := serverURL + path
	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(reqJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Minute}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	url := serverURL + "/health"
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var health struct {
		Status        string   `json:"status"`
		RetrievalMode string   `json:"retrieval_mode"`
		Providers     []string `json:"providers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Server Status:  %s\n", health.Status)
	fmt.Printf("Retrieval Mode: %s\n", health.RetrievalMode)
	if len(health.Providers) == 0 {
		fmt.Println("Providers:      none configured")
	} else {
		fmt.Printf("Providers:      %s\n", strings.Join(health.Providers, ", "))
	}
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	content, err := readInput(args, 1)
	if err != nil {
		return err
	}
	if len(content) == 0 {
		return fmt.Errorf("no document content to ingest")
	}

	req := map[string]string{
		"document_id":   args[0],
		"document_text": string(content),
	}

	var resp struct {
		DocumentID string `json:"document_id"`
		ChunkCount int    `json:"chunk_count"`
		Embedded   bool   `json:"embedded"`
	}
	if err := postJSON("/api/v1/documents", req, &resp); err != nil {
		return err
	}

	fmt.Printf("Ingested %s: %d chunk(s), embedded=%t\n", resp.DocumentID, resp.ChunkCount, resp.Embedded)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	req := map[string]string{
		"document_id": args[0],
		"question":    args[1],
	}
	if modelFlag != "" {
		req["model"] = modelFlag
	}

	var resp struct {
		Answer    string `json:"answer"`
		ModelUsed string `json:"model_used"`
		Fallback  bool   `json:"fallback_context"`
	}
	if err := postJSON("/api/v1/questions", req, &resp); err != nil {
		return err
	}

	fmt.Println(resp.Answer)
	fmt.Fprintf(os.Stderr, "\n[ragctl] answered by %s", resp.ModelUsed)
	if resp.Fallback {
		fmt.Fprint(os.Stderr, " (fallback context)")
	}
	fmt.Fprintln(os.Stderr)
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	content, err := readInput(args, 0)
	if err != nil {
		return err
	}
	if len(content) == 0 {
		return fmt.Errorf("no document content to summarize")
	}

	req := map[string]any{
		"text":  string(content),
		"model": modelFlag,
		"options": map[string]string{
			"length": lengthFlag,
			"style":  styleFlag,
			"focus":  focusFlag,
		},
	}

	var resp struct {
		Summary string `json:"summary"`
		Model   string `json:"model"`
	}
	if err := postJSON("/api/v1/summaries", req, &resp); err != nil {
		return err
	}

	fmt.Println(resp.Summary)
	fmt.Fprintf(os.Stderr, "\n[ragctl] summarized by %s\n", resp.Model)
	return nil
}
