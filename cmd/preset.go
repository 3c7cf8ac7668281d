package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jedisherpa/sphereai/internal/config"
)

var (
	flagPresetQuery    string
	flagPresetTags     []string
	flagPresetSchedule string
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage saved analysis presets",
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a named analysis configuration",
	Long: `Save a tag filter and query under a name for reuse:

  sphere preset save morning --tags tech,ai --query "What happened overnight?"
  sphere analyze --preset morning`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := config.Preset{
			Name:     args[0],
			Feeds:    flagPresetTags,
			Query:    flagPresetQuery,
			Schedule: flagPresetSchedule,
		}
		if err := config.SavePreset(flagConfigDir, p); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Saved preset " + p.Name))
		return nil
	},
}

var presetListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := config.ListPresets(flagConfigDir)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println(dimStyle.Render("No presets saved. Create one with: sphere preset save <name>"))
			return nil
		}
		fmt.Println(headerStyle.Render("Presets"))
		for _, name := range names {
			p, err := config.LoadPreset(flagConfigDir, name)
			if err != nil || p == nil {
				fmt.Println("  " + name)
				continue
			}
			detail := ""
			if len(p.Feeds) > 0 {
				detail += "tags=" + strings.Join(p.Feeds, ",")
			}
			if p.Query != "" {
				if detail != "" {
					detail += "  "
				}
				detail += "query=" + truncate(p.Query, 50)
			}
			fmt.Printf("  %-16s %s\n", name, dimStyle.Render(detail))
		}
		return nil
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved preset",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DeletePreset(flagConfigDir, args[0]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Deleted preset " + args[0]))
		return nil
	},
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func init() {
	presetSaveCmd.Flags().StringVarP(&flagPresetQuery, "query", "q", "", "default query for this preset")
	presetSaveCmd.Flags().StringSliceVarP(&flagPresetTags, "tags", "t", nil, "feed tags this preset analyzes")
	presetSaveCmd.Flags().StringVar(&flagPresetSchedule, "schedule", "", "informational schedule hint (e.g., daily)")

	presetCmd.AddCommand(presetSaveCmd, presetListCmd, presetDeleteCmd)
	rootCmd.AddCommand(presetCmd)
}
