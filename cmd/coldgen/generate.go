package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepika/coldgen/internal/config"
	"github.com/deepika/coldgen/internal/fetch"
	"github.com/deepika/coldgen/internal/llm"
	"github.com/deepika/coldgen/internal/pipeline"
	"github.com/deepika/coldgen/internal/portfolio"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a cold outreach message for a job listing URL",
	Long:  "Fetch a job listing, extract the job details, and generate a cold outreach message personalized with your name and portfolio.",
	RunE:  runGenerate,
}

var (
	genURL        string
	genName       string
	genBackground string
	genType       string
	genTone       string
	genConfigPath string
	genPortfolio  string
	genRegenerate int
	genUseBrowser bool
	genStructured bool
	genVerbose    bool
)

func init() {
	generateCmd.Flags().StringVarP(&genURL, "url", "u", "", "Job listing URL (required)")
	generateCmd.Flags().StringVarP(&genName, "name", "n", "", "Your name, used to sign the message (required)")
	generateCmd.Flags().StringVar(&genBackground, "background", "", "One-line background used to introduce you")
	generateCmd.Flags().StringVarP(&genType, "type", "t", "cold_email", "Message type: cold_email, linkedin_message, or referral_request")
	generateCmd.Flags().StringVar(&genTone, "tone", "formal", "Tone: formal, casual, professional, or friendly")
	generateCmd.Flags().StringVarP(&genConfigPath, "config", "c", "", "Path to JSON config file")
	generateCmd.Flags().StringVarP(&genPortfolio, "portfolio", "p", "", "Path to portfolio CSV (Techstack,Description)")
	generateCmd.Flags().IntVarP(&genRegenerate, "regenerate", "r", 0, "Number of extra variants to generate from the same prompt")
	generateCmd.Flags().BoolVar(&genUseBrowser, "use-browser", false, "Render SPA listings with a headless browser")
	generateCmd.Flags().BoolVar(&genStructured, "structured", false, "Use the model to extract structured listing fields")
	generateCmd.Flags().BoolVarP(&genVerbose, "verbose", "v", false, "Print detailed debug information")

	_ = generateCmd.MarkFlagRequired("url")
	_ = generateCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadMergedConfig(genConfigPath)
	if err != nil {
		return err
	}
	if genPortfolio != "" {
		cfg.PortfolioCSV = genPortfolio
	}
	if genUseBrowser {
		cfg.UseBrowser = true
	}
	if genStructured {
		cfg.StructuredExtraction = true
	}
	if genVerbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key configured; set GEMINI_API_KEY or api_key in the config file")
	}

	client, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer func() { _ = client.Close() }()

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	runner := pipeline.New(client, pipeline.Options{
		Store:                store,
		FetchOptions:         &fetch.Options{Timeout: cfg.FetchTimeout(), UserAgent: fetch.DefaultUserAgent, MaxRetries: 1},
		UseBrowser:           cfg.UseBrowser,
		StructuredExtraction: cfg.StructuredExtraction,
		Verbose:              cfg.Verbose,
	})

	result := runner.Generate(ctx, pipeline.Request{
		URL:         genURL,
		Name:        genName,
		Background:  genBackground,
		MessageType: genType,
		Tone:        genTone,
	})
	printResult(result, 0)
	if result.State != pipeline.StateDone {
		return fmt.Errorf("generation failed: %s", result.Error)
	}

	for i := 1; i <= genRegenerate; i++ {
		variant := runner.Regenerate(ctx, result.Spec)
		printResult(variant, i)
	}

	return nil
}

func printResult(result *pipeline.GenerationResult, variant int) {
	if result.Error != "" {
		fmt.Fprintf(os.Stderr, "Error: %s (jobs found: %d)\n", result.Error, result.JobsFound)
		return
	}
	if variant > 0 {
		fmt.Printf("\n--- Variant %d ---\n", variant)
	} else {
		fmt.Printf("Jobs found: %d\n\n", result.JobsFound)
	}
	fmt.Println(result.MessageText)
}

// loadMergedConfig layers an optional config file over environment defaults.
func loadMergedConfig(path string) (*config.Config, error) {
	envCfg := config.FromEnv()
	if path == "" {
		return envCfg, nil
	}
	fileCfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	merged := fileCfg.MergeWithDefaults(*envCfg)
	return &merged, nil
}

// openStore picks the portfolio backend: Postgres when configured, else CSV.
func openStore(ctx context.Context, cfg *config.Config) (portfolio.Store, func(), error) {
	if cfg.DatabaseURL != "" {
		pg, err := portfolio.ConnectPG(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	if cfg.PortfolioCSV != "" {
		projects, err := portfolio.LoadCSV(cfg.PortfolioCSV)
		if err != nil {
			return nil, nil, err
		}
		return portfolio.NewMemoryStore(projects...), nil, nil
	}
	return nil, nil, nil
}
