package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jedisherpa/sphereai/internal/config"
	"github.com/jedisherpa/sphereai/internal/persona"
)

var personaCmd = &cobra.Command{
	Use:   "persona",
	Short: "Manage agent personas",
}

var personaListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available personas",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := personaStore()
		infos, err := store.List()
		if err != nil {
			return err
		}
		fmt.Println(headerStyle.Render("Personas"))
		for _, info := range infos {
			if info.Active {
				fmt.Println(successStyle.Render("  * " + info.Name + " (active)"))
			} else {
				fmt.Println("    " + info.Name)
			}
		}
		return nil
	},
}

var personaUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active persona",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := personaStore()
		if err := store.Use(args[0]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Active persona: " + args[0]))
		return nil
	},
}

var personaShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a persona's agents",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := personaStore()
		name := store.ActiveName()
		if len(args) == 1 {
			name = args[0]
		}
		p, err := store.Load(name)
		if err != nil {
			return err
		}
		fmt.Println(headerStyle.Render(fmt.Sprintf("%s (%d agents)", p.Name, len(p.Agents))))
		for i, a := range p.Agents {
			fmt.Printf("  %2d. %s\n", i+1, a.Role)
			fmt.Println(dimStyle.Render("      " + a.Prompt))
		}
		return nil
	},
}

func personaStore() *persona.Store {
	dir := flagConfigDir
	if dir == "" {
		dir = config.DefaultDir()
	}
	return persona.NewStore(dir)
}

func init() {
	personaCmd.AddCommand(personaListCmd, personaUseCmd, personaShowCmd)
	rootCmd.AddCommand(personaCmd)
}
