// Package main - test_runner.go
// Executable to run headless gameplay scenarios.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/MTorresVidal/InboxOverload/server/test"
)

func main() {
	fmt.Println("📬 INBOX OVERLOAD - SCENARIO TEST SUITE")
	fmt.Println("================================================")

	var results []test.ScenarioResult

	scenarios := []struct {
		seed int64
		run  func(*test.ScenarioHarness)
	}{
		{seed: 1, run: (*test.ScenarioHarness).RunNeglectedShift},
		{seed: 2, run: (*test.ScenarioHarness).RunDiligentShift},
		{seed: 3, run: (*test.ScenarioHarness).RunAutopilotShift},
	}

	for _, sc := range scenarios {
		harness, err := test.NewScenarioHarness(sc.seed)
		if err != nil {
			fmt.Printf("❌ Failed to build harness: %v\n", err)
			os.Exit(1)
		}
		sc.run(harness)
		harness.CheckInvariants()
		results = append(results, harness.Results()...)
	}

	// Summary
	passed := 0
	failed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("📊 SCENARIO SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("   ✅ Passed: %d\n", passed)
	fmt.Printf("   ❌ Failed: %d\n", failed)

	if failed > 0 {
		fmt.Println("\n⚠️  The simulation needs recalibration")
		os.Exit(1)
	}
	fmt.Println("\n✅ The simulation is ready to ship")
}
