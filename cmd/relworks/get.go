package main

import (
	"fmt"
	"strings"

	"github.com/scholex/relworks/internal/paper"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <arxiv-id>",
	Short: "Get a stored extraction record by arXiv identifier",
	Long: `Get a single stored record with its section text and citations.

Example:
  relworks get 2502.07374`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	db := openStore(cfg)
	defer db.Close()

	id := args[0]
	rec, err := db.GetRecord(id)
	if err != nil {
		exitWithError(ExitError, "getting record: %v", err)
	}
	if rec == nil {
		exitWithError(ExitDataError, "record not found: %s", id)
	}

	if humanOutput {
		printRecordDetail(rec)
		return nil
	}
	return outputJSON(rec)
}

func printRecordSummary(rec *paper.Record) {
	outputHuman("%s  %s\n", rec.ArXivID, truncateString(rec.Title, ListTitleMaxLen))
	outputHuman("    %d chars, %d citations (%d resolved)",
		len(rec.Section), len(rec.Citations), rec.ResolvedCount())
	if rec.Degraded {
		outputHuman(", degraded")
	}
	if rec.SparseCitations {
		outputHuman(", sparse")
	}
	outputHuman("\n")
}

func printRecordDetail(rec *paper.Record) {
	fmt.Println(rec.ArXivID)
	fmt.Println(strings.Repeat("═", 70))
	fmt.Println()

	fmt.Printf("Title:    %s\n", wrapText(rec.Title, 60, "          "))
	if rec.AbsURL != "" {
		fmt.Printf("URL:      %s\n", rec.AbsURL)
	}
	if !rec.Published.IsZero() {
		fmt.Printf("Date:     %s\n", rec.Published.Format("2006-01-02"))
	}
	if rec.Degraded {
		fmt.Println("Source:   markup fallback (rendered path failed)")
	}

	fmt.Println()
	fmt.Println("Section:")
	fmt.Printf("  %s\n", wrapText(rec.Section, DetailTextWrapWidth, "  "))

	if len(rec.Citations) > 0 {
		fmt.Println()
		fmt.Printf("Citations (%d, %d resolved):\n", len(rec.Citations), rec.ResolvedCount())
		for i := range rec.Citations {
			c := &rec.Citations[i]
			mark := " "
			if c.Resolved() {
				mark = "*"
			}
			fmt.Printf("  %s %s\n", mark, c.Key)
			if c.Title != "" {
				fmt.Printf("      %s\n", truncateString(c.Title, DetailTextWrapWidth))
			}
			if c.Identifier != "" {
				fmt.Printf("      %s\n", c.Identifier)
			}
		}
	}
}
