package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepika/coldgen/internal/config"
	"github.com/deepika/coldgen/internal/portfolio"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Manage the project portfolio used to personalize messages",
}

var portfolioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored portfolio projects",
	RunE:  runPortfolioList,
}

var portfolioAddCmd = &cobra.Command{
	Use:   "add <techstack> <description>",
	Short: "Add a project to the portfolio",
	Args:  cobra.ExactArgs(2),
	RunE:  runPortfolioAdd,
}

var portfolioCSVPath string

func init() {
	portfolioCmd.PersistentFlags().StringVarP(&portfolioCSVPath, "portfolio", "p", "", "Path to portfolio CSV (used when no database is configured)")

	portfolioCmd.AddCommand(portfolioListCmd)
	portfolioCmd.AddCommand(portfolioAddCmd)
	rootCmd.AddCommand(portfolioCmd)
}

func runPortfolioList(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	store, cleanup, err := openPortfolioStore(ctx)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	projects, err := store.All(ctx)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("No portfolio projects stored.")
		return nil
	}
	for _, p := range projects {
		fmt.Printf("%s\t%s\t%s\n", p.ID, p.Techstack, p.Description)
	}
	return nil
}

func runPortfolioAdd(cmd *cobra.Command, args []string) error {
	ctx := cmdContext(cmd)
	cfg := config.FromEnv()

	// A CSV-backed store lives in a file, not a process, so append directly.
	if cfg.DatabaseURL == "" {
		path := portfolioCSVPath
		if path == "" {
			path = cfg.PortfolioCSV
		}
		if path == "" {
			return fmt.Errorf("no portfolio backend configured; set DATABASE_URL or pass --portfolio")
		}
		if err := portfolio.AppendCSV(path, args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("Project added.")
		return nil
	}

	store, cleanup, err := openPortfolioStore(ctx)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}
	if err := store.Add(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Println("Project added.")
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openPortfolioStore requires a configured backend; unlike generation,
// portfolio management with nowhere to store projects is an error.
func openPortfolioStore(ctx context.Context) (portfolio.Store, func(), error) {
	cfg := config.FromEnv()
	if portfolioCSVPath != "" {
		cfg.PortfolioCSV = portfolioCSVPath
	}
	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if store == nil {
		return nil, nil, fmt.Errorf("no portfolio backend configured; set DATABASE_URL or pass --portfolio")
	}
	return store, cleanup, nil
}
