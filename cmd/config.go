package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"wordsmith/pkg/config"
	"wordsmith/pkg/errors"
	"wordsmith/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	configProfileName string
	configProvider    string
	configModel       string
	configBaseURL     string
	configTemperature float64
	configKey         string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage wordsmith configuration, keys and profiles",
	Long: `Manage wordsmith configuration: the backend provider and model, API keys
stored in the OS keyring, and named profiles for switching between backends.`,
}

// configView is the structured form of the effective configuration. The key
// itself is never printed.
type configView struct {
	Path          string   `json:"path" yaml:"path"`
	ActiveProfile string   `json:"active_profile,omitempty" yaml:"active_profile,omitempty"`
	Provider      string   `json:"provider" yaml:"provider"`
	Model         string   `json:"model" yaml:"model"`
	BaseURL       string   `json:"base_url" yaml:"base_url"`
	Temperature   float64  `json:"temperature" yaml:"temperature"`
	Timeout       string   `json:"timeout" yaml:"timeout"`
	APIKey        string   `json:"api_key" yaml:"api_key"`
	KeySource     string   `json:"key_source" yaml:"key_source"`
	PlainFallback bool     `json:"plain_fallback" yaml:"plain_fallback"`
	History       bool     `json:"history" yaml:"history"`
	HistoryPath   string   `json:"history_path" yaml:"history_path"`
	HistoryLimit  int      `json:"history_limit" yaml:"history_limit"`
	Profiles      []string `json:"profiles" yaml:"profiles"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after the config file, environment, active
profile and command-line flags have been applied. The API key is masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(currentOverrides())
		if err != nil {
			return err
		}
		path, _ := config.GetConfigPath()

		view := configView{
			Path:          path,
			ActiveProfile: cfg.ActiveProfile,
			Provider:      cfg.Backend.Provider,
			Model:         cfg.Backend.Model,
			BaseURL:       cfg.Backend.BaseURL,
			Temperature:   cfg.Backend.TemperatureOrDefault(),
			Timeout:       cfg.Backend.Timeout.String(),
			APIKey:        logger.MaskSecret(cfg.Backend.APIKey),
			KeySource:     keySourceLabel(cfg.Backend),
			PlainFallback: cfg.Clipboard.PlainFallback,
			History:       cfg.History.IsEnabled(),
			HistoryPath:   cfg.HistoryPath(),
			HistoryLimit:  cfg.History.Limit,
			Profiles:      cfg.ListProfiles(),
		}

		out := NewOutputWriter(outputFormat)
		out.SetWriter(cmd.OutOrStdout())
		if out.IsStructured() {
			return out.Write(view)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "Current Configuration:")
		fmt.Fprintln(w, "======================")
		fmt.Fprintf(w, "Config File: %s\n", view.Path)
		fmt.Fprintf(w, "Active Profile: %s\n", orNone(view.ActiveProfile))
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Provider: %s\n", view.Provider)
		fmt.Fprintf(w, "Model: %s\n", view.Model)
		fmt.Fprintf(w, "Base URL: %s\n", view.BaseURL)
		fmt.Fprintf(w, "Temperature: %g\n", view.Temperature)
		fmt.Fprintf(w, "Timeout: %s\n", view.Timeout)
		if cfg.Backend.APIKey == "" {
			fmt.Fprintf(w, "API Key: (not set, use %s or 'wordsmith config set-key')\n", config.KeyEnvVar(view.Provider))
		} else {
			fmt.Fprintf(w, "API Key: %s (from %s)\n", view.APIKey, view.KeySource)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Plain-text Fallback: %t\n", view.PlainFallback)
		fmt.Fprintf(w, "History: %t (%s, limit %d)\n", view.History, view.HistoryPath, view.HistoryLimit)

		if len(cfg.Profiles) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Available Profiles:")
			for _, p := range cfg.Profiles {
				active := ""
				if cfg.IsProfileActive(p.Name) {
					active = " (active)"
				}
				fmt.Fprintf(w, "  - %s%s\n", p.Name, active)
				fmt.Fprintf(w, "      Provider: %s, Model: %s\n", orDefault(p.Backend.Provider), orDefault(p.Backend.Model))
			}
		}

		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store a provider API key in the OS keyring",
	Long: `Store an API key in the OS keyring so it does not have to live in the
config file or environment. The key is read from --key or, when omitted, from
the first line of stdin.`,
	Example: `  # Store a DeepSeek key from the terminal
  wordsmith config set-key --provider deepseek

  # Store a Gemini key from a password manager
  pass show gemini | wordsmith config set-key --provider gemini`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configProvider == "" {
			return errors.ConfigurationError("provider is required (--provider)")
		}
		key := configKey
		if key == "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "API key for %s: ", configProvider)
			line, err := readLine(cmd.InOrStdin())
			if err != nil {
				return errors.WrapWithCode(err, errors.ExitCodeValidation, "failed to read API key")
			}
			key = line
		}

		if IsDryRun() {
			PrintDryRun(cmd.OutOrStdout(), "Would store key %s for %s in the keyring", logger.MaskSecret(key), configProvider)
			return nil
		}
		if err := config.StoreKey(configProvider, key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored API key for %s in the keyring.\n", configProvider)
		return nil
	},
}

var configDeleteKeyCmd = &cobra.Command{
	Use:   "delete-key",
	Short: "Remove a provider API key from the OS keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configProvider == "" {
			return errors.ConfigurationError("provider is required (--provider)")
		}
		if err := RequireConfirmation(cmd.ErrOrStderr(), "remove an API key from the keyring", map[string]string{
			"provider": configProvider,
		}); err != nil {
			if IsDryRun() {
				return nil
			}
			return err
		}
		if err := config.DeleteKey(configProvider); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed API key for %s from the keyring.\n", configProvider)
		return nil
	},
}

var configProfilesCmd = &cobra.Command{
	Use:     "profiles",
	Aliases: []string{"profile"},
	Short:   "Manage configuration profiles",
	Long:    `List, add, remove, and switch between backend profiles.`,
}

var configProfilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		profiles := cfg.ListProfiles()
		if len(profiles) == 0 {
			fmt.Fprintln(w, "No profiles configured.")
			fmt.Fprintln(w, "Use 'wordsmith config profiles add --name <name> --provider <provider>' to create one.")
			return nil
		}

		fmt.Fprintln(w, "Profiles:")
		for _, name := range profiles {
			profile, _ := cfg.GetProfile(name)
			active := ""
			if cfg.IsProfileActive(name) {
				active = " *active*"
			}
			fmt.Fprintf(w, "  %s%s\n", name, active)
			fmt.Fprintf(w, "    Provider: %s\n", orDefault(profile.Backend.Provider))
			fmt.Fprintf(w, "    Model: %s\n", orDefault(profile.Backend.Model))
			if profile.Backend.BaseURL != "" {
				fmt.Fprintf(w, "    Base URL: %s\n", profile.Backend.BaseURL)
			}
		}

		return nil
	},
}

var configProfilesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new profile",
	Long:  `Add a named backend profile. Keys are not stored in profiles; use set-key or the environment.`,
	Example: `  # A Gemini profile
  wordsmith config profiles add --name gemini --provider gemini --model gemini-2.5-flash

  # A local OpenAI-compatible server
  wordsmith config profiles add --name local --provider openai --base-url http://localhost:8080/v1 --model qwen2.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configProfileName == "" {
			return errors.ConfigurationError("profile name is required (--name)")
		}
		if configProvider == "" {
			return errors.ConfigurationError("provider is required (--provider)")
		}

		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		profile := config.Profile{
			Name: configProfileName,
			Backend: config.BackendConfig{
				Provider: configProvider,
				Model:    configModel,
				BaseURL:  configBaseURL,
			},
		}
		if cmd.Flags().Changed("temperature") {
			t := configTemperature
			profile.Backend.Temperature = &t
		}

		if err := cfg.AddProfile(profile); err != nil {
			return errors.NewWithError(errors.ExitCodeConfig, "failed to add profile", err)
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' added successfully.\n", configProfileName)
		fmt.Fprintf(cmd.OutOrStdout(), "Use 'wordsmith config profiles use --name %s' to activate it.\n", configProfileName)

		return nil
	},
}

var configProfilesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configProfileName == "" {
			return errors.ConfigurationError("profile name is required (--name)")
		}

		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		if err := cfg.RemoveProfile(configProfileName); err != nil {
			return errors.NewWithError(errors.ExitCodeConfig, "failed to remove profile", err)
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' removed successfully.\n", configProfileName)
		return nil
	},
}

var configProfilesUseCmd = &cobra.Command{
	Use:   "use",
	Short: "Switch to a profile",
	Long:  `Set the active profile for subsequent commands. An empty name clears it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		if err := cfg.SetProfile(configProfileName); err != nil {
			return errors.NewWithError(errors.ExitCodeConfig, "failed to switch profile", err)
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		if configProfileName == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared the active profile.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile '%s'.\n", configProfileName)
		return nil
	},
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

func init() {
	configSetKeyCmd.Flags().StringVarP(&configProvider, "provider", "p", "", "Provider the key belongs to (required)")
	configSetKeyCmd.Flags().StringVar(&configKey, "key", "", "API key (read from stdin when omitted)")
	configDeleteKeyCmd.Flags().StringVarP(&configProvider, "provider", "p", "", "Provider whose key to remove (required)")

	configProfilesAddCmd.Flags().StringVar(&configProfileName, "name", "", "Profile name (required)")
	configProfilesAddCmd.Flags().StringVarP(&configProvider, "provider", "p", "", "Backend provider (required)")
	configProfilesAddCmd.Flags().StringVarP(&configModel, "model", "m", "", "Model name")
	configProfilesAddCmd.Flags().StringVar(&configBaseURL, "base-url", "", "Backend base URL")
	configProfilesAddCmd.Flags().Float64Var(&configTemperature, "temperature", config.DefaultTemperature, "Sampling temperature")
	if err := configProfilesAddCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}
	if err := configProfilesAddCmd.MarkFlagRequired("provider"); err != nil {
		panic(err)
	}

	configProfilesRemoveCmd.Flags().StringVar(&configProfileName, "name", "", "Profile name (required)")
	if err := configProfilesRemoveCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}

	configProfilesUseCmd.Flags().StringVar(&configProfileName, "name", "", "Profile name (empty clears the active profile)")

	configProfilesCmd.AddCommand(configProfilesListCmd)
	configProfilesCmd.AddCommand(configProfilesAddCmd)
	configProfilesCmd.AddCommand(configProfilesRemoveCmd)
	configProfilesCmd.AddCommand(configProfilesUseCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configDeleteKeyCmd)
	configCmd.AddCommand(configProfilesCmd)
}
