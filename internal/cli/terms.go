package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/decoda/decoda/internal/normalize"
)

// termsCmd groups terminology management subcommands
var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Manage the acronym and terminology tables",
}

var termsAddCmd = &cobra.Command{
	Use:   "add <acronym> <full form...>",
	Short: "Teach a new acronym expansion",
	Long: `Add persists an acronym expansion so future queries expand it.

Example:
  decoda terms add PBS "Positive Behaviour Support"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		norm := normalize.New(cfg.Terminology, newLogger())

		acronym := strings.ToUpper(args[0])
		fullForm := strings.Join(args[1:], " ")
		if err := norm.Teach(acronym, fullForm); err != nil {
			return fmt.Errorf("add term: %w", err)
		}
		fmt.Printf("Added %s = %s\n", acronym, fullForm)
		return nil
	},
}

var termsExpandCmd = &cobra.Command{
	Use:   "expand <query...>",
	Short: "Show how a query is normalized",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		norm := normalize.New(cfg.Terminology, newLogger())

		query := strings.Join(args, " ")
		fmt.Println(norm.ExpandAcronyms(normalize.CanonicalizeCodes(query)))
		return nil
	},
}

func init() {
	termsCmd.AddCommand(termsAddCmd, termsExpandCmd)
	rootCmd.AddCommand(termsCmd)
}
