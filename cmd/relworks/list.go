package main

import (
	"github.com/scholex/relworks/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored extraction records",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	db := openStore(cfg)
	defer db.Close()

	summaries, err := db.ListSummaries()
	if err != nil {
		exitWithError(ExitError, "listing records: %v", err)
	}

	if humanOutput {
		for _, s := range summaries {
			outputHuman("%s  %s\n", s.ArXivID, truncateString(s.Title, ListTitleMaxLen))
			outputHuman("    %d chars, %d citations (%d resolved)", s.SectionChars, s.CitationCount, s.ResolvedCount)
			if s.Degraded {
				outputHuman(", degraded")
			}
			outputHuman("\n")
		}
		return nil
	}
	if summaries == nil {
		summaries = []storage.Summary{}
	}
	return outputJSON(summaries)
}
