package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pollnerd/internal/schedule"
)

// classesCmd prints the configured classes and whether each would be
// monitored right now.
var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List configured classes and their schedule status",
	RunE:  runClasses,
}

func runClasses(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Classes) == 0 {
		fmt.Println("No classes configured.")
		return nil
	}

	now := time.Now()
	fmt.Printf("%-20s %-15s %-15s %s\n", "CLASS", "SECTION", "WINDOW", "ACTIVE NOW")
	for _, cc := range cfg.Classes {
		def, derr := schedule.FromConfig(cc)
		active := "no"
		if def.ActiveAt(now) {
			active = "yes"
		}
		fmt.Printf("%-20s %-15s %-15s %s\n", def.Name, def.Section, def.WindowString(), active)
		if derr != nil {
			fmt.Printf("  warning: %v\n", derr)
		}
	}
	return nil
}
