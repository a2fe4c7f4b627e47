package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brieflab/brief/internal/config"
	"github.com/brieflab/brief/internal/metrics"
)

var (
	runText     string
	runFile     string
	runTitle    string
	runStyle    string
	runOutput   string
	runNoImages bool
)

var runCmd = &cobra.Command{
	Use:   "run [url]",
	Short: "Summarize a URL, file, or raw text into an HTML report",
	Long: `Run the summarization pipeline on a single source and write the
report to the output directory.

Examples:
  brief run https://example.com/article
  brief run --file paper.pdf
  brief run --text "..." --title "Meeting notes"
  brief run https://example.com/article --style Infographic --no-images`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		cm, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}
		cfg := cm.Get()

		if runStyle != "" {
			cfg.Images.Style = runStyle
		}
		if runOutput != "" {
			cfg.Report.OutputDir = runOutput
		}
		if runNoImages {
			cfg.Images.Enabled = false
		}

		rec := metrics.NewRecorder()
		a, err := buildApp(cfg, logger, rec)
		if err != nil {
			return err
		}

		var source string
		if len(args) == 1 {
			source = args[0]
		}
		if source == "" && runText == "" && runFile == "" {
			return fmt.Errorf("nothing to summarize: pass a URL, --file, or --text")
		}

		var (
			path   string
			runErr error
		)
		switch {
		case runText != "":
			_, path, runErr = a.SummarizeText(ctx, runText, runTitle)
		case runFile != "":
			_, path, runErr = a.SummarizeFile(ctx, runFile)
		default:
			_, path, runErr = a.Summarize(ctx, source)
		}
		if runErr != nil {
			return runErr
		}

		usage := rec.Summarize(metrics.Filter{})
		fmt.Printf("report written to %s\n", path)
		fmt.Printf("model calls: %d, tokens: %d\n", usage.Count, usage.TotalTokens)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runText, "text", "", "summarize raw text instead of a URL")
	runCmd.Flags().StringVar(&runFile, "file", "", "summarize a local file (.txt, .md, .pdf)")
	runCmd.Flags().StringVar(&runTitle, "title", "", "title for raw text input")
	runCmd.Flags().StringVar(&runStyle, "style", "", "image style preset (default: Watercolor Whimsical)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "report output directory")
	runCmd.Flags().BoolVar(&runNoImages, "no-images", false, "skip image generation")

	rootCmd.AddCommand(runCmd)
}
