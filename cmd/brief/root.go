package main

import (
	"github.com/spf13/cobra"

	"github.com/brieflab/brief/version"
)

var (
	cfgFile string
	homeDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "brief",
	Short: "AI content summarization pipeline with illustrated HTML reports",
	Long: `Brief turns articles, documents, and raw text into illustrated
HTML reports using staged LLM summarization.

The pipeline includes:
  - Content extraction from URLs, text files, and PDFs
  - Key takeaway and section-by-section summarization
  - Executive synthesis, key terms, and limitations analysis
  - AI-generated section illustrations and a hero banner`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.brief/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "brief home directory (default: ~/.brief)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.AddCommand(versionCmd)
}
