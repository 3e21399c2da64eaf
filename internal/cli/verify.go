package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/decoda/decoda/internal/verify"
	"github.com/decoda/decoda/internal/worker"
)

var (
	seedThreshold float64
	seedWorkers   int
)

// verifyCmd groups the out-of-pipeline verification operations. Query
// answering never verifies live; verdicts enter the cache only through
// these commands.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Maintain the fact verification cache",
}

var verifySeedCmd = &cobra.Command{
	Use:   "seed <verdicts.json>",
	Short: "Load verification verdicts into the cache",
	Long: `Seed reads a JSON array of verdict entries and caches them so future
answers can replay them. Entries without an explicit verdict are
cross-referenced against the known scheme sources.

Entry format:
  [{"type": "support_code", "value": "01_011_0107_1_1",
    "verified": true, "sources": ["NDIS Support Catalogue"]}]`,
	Args: cobra.ExactArgs(1),
	RunE: runVerifySeed,
}

var verifyCheckCmd = &cobra.Command{
	Use:   "check <statement>",
	Short: "Cross-reference one statement and cache its facts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		verifier := newVerifier(cfg, newLogger())

		statement := args[0]
		record := verifier.CrossReference(statement, seedThreshold)
		fmt.Printf("Verified: %v\n", record.Verified)
		if len(record.Sources) > 0 {
			fmt.Printf("Sources: %v\n", record.Sources)
		}

		for _, fact := range verify.ExtractFacts(statement) {
			if err := verifier.CacheVerificationResult(fact, record); err != nil {
				return err
			}
			fmt.Printf("Cached %s %q\n", fact.Type, fact.Value)
		}
		return nil
	},
}

func runVerifySeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read verdicts file: %w", err)
	}
	var entries []worker.SeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse verdicts file: %w", err)
	}

	workers := seedWorkers
	if workers <= 0 {
		workers = cfg.Concurrency.SeedWorkers
	}

	verifier := newVerifier(cfg, log)
	cached, verified, errs := worker.Seed(verifier, entries, seedThreshold, workers)

	fmt.Printf("Cached %d verdicts (%d verified) from %d entries\n", cached, verified, len(entries))
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d entries failed", len(errs))
	}
	return nil
}

// Default threshold for deriving verdicts by cross-reference
const defaultSeedThreshold = 0.6

func init() {
	verifySeedCmd.Flags().Float64Var(&seedThreshold, "threshold", defaultSeedThreshold, "confidence threshold for derived verdicts")
	verifySeedCmd.Flags().IntVar(&seedWorkers, "workers", 0, "seeding workers (0 uses the configured default)")
	verifyCheckCmd.Flags().Float64Var(&seedThreshold, "threshold", defaultSeedThreshold, "confidence threshold")

	verifyCmd.AddCommand(verifySeedCmd, verifyCheckCmd)
	rootCmd.AddCommand(verifyCmd)
}
