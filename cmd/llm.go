package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jedisherpa/sphereai/internal/config"
	"github.com/jedisherpa/sphereai/internal/llm"
)

var (
	flagLLMProvider string
	flagLLMBaseURL  string
	flagLLMModel    string
	flagLLMKey      string
	flagLLMTimeout  int
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure and test the LLM backend",
}

var llmSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure an LLM provider",
	Long: `Configure the LLM backend used for analysis. Known providers carry
sensible defaults; override the base URL or model as needed.

Examples:
  sphere llm setup --provider ollama
  sphere llm setup --provider anthropic --api-key sk-...
  sphere llm setup --provider custom --base-url http://myhost:8080/v1 --model mymodel`,
	RunE: func(cmd *cobra.Command, args []string) error {
		preset, ok := llm.GetPreset(flagLLMProvider)
		if !ok {
			return fmt.Errorf("unknown provider %q. Run: sphere llm providers", flagLLMProvider)
		}

		cfg := &config.LLMConfig{
			Provider:     flagLLMProvider,
			ProviderName: preset.Name,
			Type:         preset.Type,
			BaseURL:      preset.BaseURL,
			Model:        preset.DefaultModel,
			APIKey:       flagLLMKey,
			Timeout:      flagLLMTimeout,
		}
		if flagLLMBaseURL != "" {
			cfg.BaseURL = flagLLMBaseURL
		}
		if flagLLMModel != "" {
			cfg.Model = flagLLMModel
		}

		if cfg.BaseURL == "" {
			return fmt.Errorf("provider %q needs --base-url", flagLLMProvider)
		}
		if cfg.Model == "" {
			return fmt.Errorf("provider %q needs --model", flagLLMProvider)
		}
		if preset.KeyRequired && cfg.Key() == "" {
			return fmt.Errorf("%s requires an API key (--api-key or SPHERE_API_KEY)", preset.Name)
		}

		if err := config.SaveLLM(flagConfigDir, cfg); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Configured %s (%s)", preset.Name, cfg.Model)))
		fmt.Println(dimStyle.Render("Verify with: sphere llm test"))
		return nil
	},
}

var llmStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current LLM configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadLLM(flagConfigDir)
		if err != nil {
			return err
		}
		if cfg == nil {
			fmt.Println(dimStyle.Render("No LLM configured. Run: sphere llm setup --provider <provider>"))
			return nil
		}
		fmt.Println(headerStyle.Render("LLM configuration"))
		fmt.Printf("  Provider: %s\n", cfg.ProviderName)
		fmt.Printf("  Type:     %s\n", cfg.Type)
		fmt.Printf("  Base URL: %s\n", cfg.BaseURL)
		fmt.Printf("  Model:    %s\n", cfg.Model)
		if cfg.Key() != "" {
			fmt.Println("  API key:  configured")
		} else {
			fmt.Println(dimStyle.Render("  API key:  none"))
		}
		if cfg.ConfiguredAt != "" {
			fmt.Println(dimStyle.Render("  Since:    " + cfg.ConfiguredAt))
		}
		return nil
	},
}

var llmTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a short round-trip request to the configured backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadLLM(flagConfigDir)
		if err != nil {
			return err
		}
		provider, err := llm.New(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		start := time.Now()
		reply, err := provider.Complete(ctx, llm.Request{
			Messages:  []llm.Message{{Role: "user", Content: "Say 'connection successful' in exactly two words."}},
			MaxTokens: 20,
		})
		if err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("%s responded in %.1fs", provider.Name(), time.Since(start).Seconds())))
		fmt.Println(dimStyle.Render("  " + reply))
		return nil
	},
}

var llmProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List known provider presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(headerStyle.Render("Providers"))
		for _, name := range llm.PresetNames() {
			preset, _ := llm.GetPreset(name)
			key := ""
			if preset.KeyRequired {
				key = warnStyle.Render(" (API key required)")
			}
			fmt.Printf("  %-12s %s%s\n", name, preset.Name, key)
			fmt.Println(dimStyle.Render("               " + preset.Notes))
		}
		return nil
	},
}

var llmRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete the LLM configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DeleteLLM(flagConfigDir); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("LLM configuration removed"))
		return nil
	},
}

func init() {
	llmSetupCmd.Flags().StringVar(&flagLLMProvider, "provider", "", "provider preset name (see: sphere llm providers)")
	llmSetupCmd.Flags().StringVar(&flagLLMBaseURL, "base-url", "", "override the preset base URL")
	llmSetupCmd.Flags().StringVar(&flagLLMModel, "model", "", "override the preset model")
	llmSetupCmd.Flags().StringVar(&flagLLMKey, "api-key", "", "API key (or set SPHERE_API_KEY)")
	llmSetupCmd.Flags().IntVar(&flagLLMTimeout, "timeout", 0, "request timeout in seconds (default 120)")
	_ = llmSetupCmd.MarkFlagRequired("provider")

	llmCmd.AddCommand(llmSetupCmd, llmStatusCmd, llmTestCmd, llmProvidersCmd, llmRemoveCmd)
	rootCmd.AddCommand(llmCmd)
}
