package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"wordsmith/pkg/completions"
	"wordsmith/pkg/config"
	"wordsmith/pkg/errors"
	"wordsmith/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	unknownValue = "unknown"
)

var (
	Version   string
	BuildTime string
	GitCommit string
)

var globalTimeout time.Duration
var outputFormat string
var profileFlag string
var dryRunFlag bool
var assumeYesFlag bool
var logLevel string
var logFile string

var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:   "wordsmith",
	Short: "Convert chat output into Word-ready HTML",
	Long: `Convert free-form text (Markdown, LaTeX math, mixed Chinese/English prose)
into HTML that pastes cleanly into a word processor, with equations as native
MathML. The conversion is delegated to a text-generation backend (DeepSeek,
Gemini or any OpenAI-compatible service) and the result can be copied to the
clipboard as rich text with a plain-text fallback.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env is normal; set variables always win
		_ = godotenv.Load()

		level := logLevel
		if !cmd.Flags().Changed("log-level") {
			if envLevel := os.Getenv("WORDSMITH_LOG_LEVEL"); envLevel != "" {
				level = envLevel
			}
		}
		logger.SetLevel(level)

		dest := logFile
		if dest == "" {
			dest = os.Getenv("WORDSMITH_LOG_FILE")
		}
		if dest == "" {
			dest = logger.DefaultLogPath()
		}
		if dest != "-" {
			closer, err := logger.SetFile(dest)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: cannot open log file %s: %v\n", dest, err)
			} else {
				logCloser = closer
			}
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		ver := Version
		if ver == "" {
			ver = "dev"
		}
		bt := BuildTime
		if bt == "" {
			bt = unknownValue
		}
		gc := GitCommit
		if gc == "" {
			gc = unknownValue
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "wordsmith version %s\n", ver)
		fmt.Fprintf(out, "Built: %s\n", bt)
		fmt.Fprintf(out, "Git commit: %s\n", gc)
	},
}

func Execute() {
	err := rootCmd.Execute()
	code := errors.ExitCodeSuccess
	if err != nil {
		code = errors.Exit(err)
	}
	if logCloser != nil {
		logCloser.Close()
	}
	if code != errors.ExitCodeSuccess {
		os.Exit(int(code))
	}
}

// GetContext returns a context bounded by --timeout, or by fallback when the
// flag was not given.
func GetContext(fallback time.Duration) (context.Context, context.CancelFunc) {
	timeout := globalTimeout
	if timeout <= 0 {
		timeout = fallback
	}
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

// currentOverrides collects the flags that take precedence over the config
// file and environment.
func currentOverrides() config.Overrides {
	return config.Overrides{
		Profile: profileFlag,
		Timeout: globalTimeout,
	}
}

func init() {
	RegisterCommands(rootCmd)

	rootCmd.PersistentFlags().DurationVar(&globalTimeout, "timeout", 0, "Timeout for backend requests (e.g. 30s, 2m; default from config, 2m)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Configuration profile to use")
	rootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", false, "Show what would be done without making changes")
	rootCmd.PersistentFlags().BoolVarP(&assumeYesFlag, "yes", "y", false, "Skip confirmation prompts")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error, off)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log destination file, or - for stderr (default in the user cache dir)")

	completions.RegisterCompletions(rootCmd)
}
