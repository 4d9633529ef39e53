package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ndmitriev/docsweep/internal/rules"
)

var rulesFormat string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the configured rule sets",
	Long: `Rules prints the entity types docsweep knows how to scan and the rule
set bound to each: required fields, type declarations, allowed value
sets, ranges, defaults, and custom checks.

Example:
  docsweep rules
  docsweep rules --format json`,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "",
		"output format: text or json (default: config value)")
}

func runRules(cmd *cobra.Command, args []string) error {
	registry, err := buildRegistry()
	if err != nil {
		return err
	}

	format := rulesFormat
	if format == "" {
		format = cfg.Format
	}

	if format == "json" {
		sets := make(map[string]*rules.RuleSet)
		for _, name := range registry.EntityTypes() {
			sets[name] = registry.Get(name)
		}
		data, err := json.MarshalIndent(sets, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, name := range registry.EntityTypes() {
		rs := registry.Get(name)
		fmt.Printf("%s\n", name)
		fmt.Printf("--------------------------------------------------\n")
		if len(rs.Required) > 0 {
			fmt.Printf("  Required: %s\n", strings.Join(rs.Required, ", "))
		}
		for field, kind := range rs.Types {
			fmt.Printf("  Type: %s is %s\n", field, kind)
		}
		for field, allowed := range rs.Allowed {
			fmt.Printf("  Allowed: %s in %v\n", field, allowed)
		}
		for field, r := range rs.Ranges {
			fmt.Printf("  Range: %s in [%v, %v]\n", field, r.Min, r.Max)
		}
		for field, def := range rs.Defaults {
			fmt.Printf("  Default: %s = %v\n", field, def)
		}
		for field, check := range rs.Custom {
			fmt.Printf("  Custom: %s via %s\n", field, check)
		}
		fmt.Printf("\n")
	}

	if cfg.RulesFile != "" {
		fmt.Printf("Rules file: %s\n", cfg.RulesFile)
	}
	return nil
}
