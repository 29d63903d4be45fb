package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"policyscan/internal/dataset"
)

// inspectCmd previews a dataset before an analyze run: columns, samples,
// guessed mappings, and how many rows would short-circuit.
var inspectCmd = &cobra.Command{
	Use:   "inspect [input.csv]",
	Short: "Inspect a dataset and suggest column mappings",
	Long: `Shows every column in the input file with a sample value, guesses which
columns hold the policy text, app id, and app name, and prints the exact
analyze command to run with those mappings.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	rep, err := dataset.Inspect(inputPath, cfg.Batch.MinPolicyChars)
	if err != nil {
		return err
	}

	fmt.Println("File loaded successfully!")
	fmt.Printf("Total rows: %d\n", rep.Rows)
	fmt.Println("\nColumns found:")
	for i, col := range rep.Columns {
		fmt.Printf("%d. %s\n", i+1, col.Name)
		if col.Sample != "" {
			fmt.Printf("   Sample: %s\n", col.Sample)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("COLUMN MAPPING HELPER")
	fmt.Println(strings.Repeat("=", 50))

	fmt.Println("\nAuto-detected mappings:")
	fmt.Printf("Policy text column: %s\n", orNotFound(rep.Detected.Policy))
	fmt.Printf("App ID column: %s\n", orNotFound(rep.Detected.ID))
	fmt.Printf("App name column: %s\n", orNotFound(rep.Detected.Name))

	if rep.Detected.Policy != "" && rep.Detected.ID != "" {
		fmt.Println("\n✅ Ready to analyze! Use this command:")
		fmt.Printf("\npolicyscan analyze '%s' results.csv \\\n", inputPath)
		fmt.Printf("  --policy-column '%s' \\\n", rep.Detected.Policy)
		fmt.Printf("  --id-column '%s'", rep.Detected.ID)
		if rep.Detected.Name != "" {
			fmt.Printf(" \\\n  --name-column '%s'\n", rep.Detected.Name)
		} else {
			fmt.Println()
		}
	} else {
		fmt.Println("\n⚠️  Could not auto-detect all required columns.")
		fmt.Println("You'll need to specify them manually in the command.")
	}

	if rep.ShortPolicies > 0 {
		fmt.Printf("\n⚠️  Warning: %d policies are empty or very short (<%d chars)\n",
			rep.ShortPolicies, cfg.Batch.MinPolicyChars)
		fmt.Println("These will be marked as errors in the output.")
	}
	return nil
}

func orNotFound(column string) string {
	if column == "" {
		return "(not found)"
	}
	return column
}
