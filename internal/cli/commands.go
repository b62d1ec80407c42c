package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyike/CoinCortex/config"
	"github.com/dyike/CoinCortex/internal/display"
	"github.com/dyike/CoinCortex/internal/logger"
	"github.com/dyike/CoinCortex/internal/trading"
)

// Version is overridden at build time with -ldflags "-X .../cli.Version=...".
var Version = "1.0.0"

// promptAsset is swapped out in tests.
var promptAsset = PromptForAsset

type globalFlags struct {
	apiKey     string
	provider   string
	model      string
	source     string
	envFile    string
	days       int
	news       bool
	structured bool
	debug      bool
	jsonOutput bool
}

func (f *globalFlags) options() config.Options {
	return config.Options{
		APIKey:     f.apiKey,
		Provider:   f.provider,
		Model:      f.model,
		Source:     f.source,
		Days:       f.days,
		EnvFile:    f.envFile,
		News:       f.news,
		Structured: f.structured,
		Debug:      f.debug,
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "coincortex [ASSET]",
		Short: "CoinCortex - AI-assisted crypto market analysis",
		Long: `CoinCortex fetches recent market data for a cryptocurrency, computes a few
technical indicators and asks a generative model for a short analysis.

Run without arguments to be prompted for the asset.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeCommand(cmd, flags, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.apiKey, "api-key", "k", "", "API key for the model provider (overrides env and .env)")
	pf.StringVar(&flags.provider, "provider", "", "Model provider: gemini, openai or deepseek")
	pf.StringVar(&flags.model, "model", "", "Model name (provider default if empty)")
	pf.StringVar(&flags.source, "source", "", "Market data source: coingecko or yahoo")
	pf.IntVar(&flags.days, "days", 0, "Days of price history to fetch (default 90)")
	pf.StringVar(&flags.envFile, "env-file", config.DefaultEnvFile, "Optional KEY=VALUE file with credentials")
	pf.BoolVar(&flags.news, "news", false, "Include a web-grounded news sentiment lookup")
	pf.BoolVar(&flags.structured, "structured", false, "Ask for a structured verdict (analysis, recommendation, confidence)")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newAnalyzeCmd(flags))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(flags))

	rootCmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Print the report as JSON")
	return rootCmd
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [ASSET]",
		Short: "Analyze a cryptocurrency by symbol or CoinGecko id",
		Long: `Analyze a cryptocurrency given a symbol such as btc or a CoinGecko id such as bitcoin.
Example: coincortex analyze eth --news --structured`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyzeCommand(cmd, flags, args)
		},
	}
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Print the report as JSON")
	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "CoinCortex v%s\n", Version)
			fmt.Fprintln(out, "Crypto market analysis with CoinGecko data and generative models")
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(flags *globalFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Inspect the configuration resolved from flags, environment and the .env file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			showConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return validateConfig(cmd.OutOrStdout(), cfg)
		},
	})

	return configCmd
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.options())
	if err != nil {
		return nil, err
	}
	logger.SetLevel(cfg.LogLevel)
	logger.Debugf("config: provider=%s model=%s source=%s credential from %q",
		cfg.LLMProvider, cfg.LLMModel, cfg.MarketSource, cfg.CredentialSource)
	return cfg, nil
}

// runAnalyzeCommand executes the main analysis workflow
func runAnalyzeCommand(cmd *cobra.Command, flags *globalFlags, args []string) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	// Report a missing credential before prompting or touching the network.
	if err := cfg.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	progress := out
	if flags.jsonOutput {
		progress = cmd.ErrOrStderr()
	}

	var asset string
	if len(args) == 1 {
		asset = args[0]
	} else {
		DisplayWelcomeBanner(progress)
		if asset, err = promptAsset(); err != nil {
			return err
		}
	}
	if cfg.News && cfg.LLMProvider != config.ProviderGemini {
		DisplayInfo(progress, "Web search grounding is only available with the gemini provider; news will come from the model alone.")
	}
	fmt.Fprintf(progress, "🚀 Starting analysis for %s\n", strings.TrimSpace(asset))
	session := trading.NewAnalysisSession(cfg, trading.WithProgress(progress))
	report, err := session.Execute(cmd.Context(), asset)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	results := display.NewResultsDisplay(out)
	if flags.jsonOutput {
		return results.JSON(report)
	}
	results.Show(report)
	return nil
}

// showConfig displays the current configuration
func showConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "📋 Current CoinCortex Configuration:")
	fmt.Fprintln(w, "═══════════════════════════════════════")
	for _, row := range cfg.Summary() {
		fmt.Fprintf(w, "%-20s %s\n", row[0]+":", row[1])
	}
}

// validateConfig validates the configuration
func validateConfig(w io.Writer, cfg *config.Config) error {
	fmt.Fprintln(w, "🔍 Validating CoinCortex Configuration...")
	fmt.Fprintln(w, "═══════════════════════════════════════")

	fmt.Fprint(w, "🔑 Checking API key... ")
	if cfg.APIKey() == "" {
		fmt.Fprintln(w, "❌")
		return cfg.Validate()
	}
	fmt.Fprintf(w, "✅ (%s from %s)\n", cfg.CredentialVarName(), cfg.CredentialSource)

	fmt.Fprint(w, "⚙️  Checking configuration values... ")
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(w, "❌")
		return err
	}
	fmt.Fprintln(w, "✅")

	fmt.Fprintln(w)
	DisplaySuccess(w, "Configuration validation completed successfully!")
	return nil
}
