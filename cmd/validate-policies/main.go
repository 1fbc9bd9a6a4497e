package main

import (
	"fmt"
	"os"

	"github.com/marcelsud/wallet-connector/policies"
)

/* validate-policies - Standalone CLI tool to validate a retry policies file
 * Usage: go run cmd/validate-policies/main.go [policies.yaml]
 * Exit codes: 0 = valid, 1 = invalid
 */

func main() {
	policiesFile := "policies.yaml"
	if len(os.Args) > 1 {
		policiesFile = os.Args[1]
	}

	fmt.Printf("Validating policies file: %s\n\n", policiesFile)

	loader := policies.NewLoader()
	if err := loader.Load(policiesFile); err != nil {
		fmt.Fprintf(os.Stderr, "VALIDATION FAILED\n\n")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	names := loader.Names()
	fmt.Printf("VALIDATION PASSED\n\n")
	fmt.Printf("Effective policies (%d):\n", len(names))

	for i, name := range names {
		p := loader.MustGet(name)
		fmt.Printf("\n%d. Policy: %s\n", i+1, name)
		fmt.Printf("   Max Attempts:       %d\n", p.MaxAttempts)
		fmt.Printf("   Base Delay:         %s\n", p.BaseDelay)
		fmt.Printf("   Max Delay:          %s\n", p.MaxDelay)
		fmt.Printf("   Backoff Multiplier: %g\n", p.BackoffMultiplier)
	}

	fmt.Printf("\nAll policies are valid!\n")
}
