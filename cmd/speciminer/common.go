package main

import (
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid/v2"
	"github.com/pbnjay/memory"

	"github.com/adamancer/speciminer/internal/config"
	"github.com/adamancer/speciminer/internal/logging"
	"github.com/adamancer/speciminer/internal/regexbank"
	"github.com/adamancer/speciminer/internal/store"
)

// loadConfig reads the YAML configuration at flags.configPath, falling
// back to the bundled default when no --config flag was given. A failure
// here is a configuration failure and therefore fatal at startup (spec.md
// §7).
func loadConfig(flags *globalFlags) (*config.Config, error) {
	if flags.configPath == "" {
		cfg, err := config.Default()
		if err != nil {
			return nil, fmt.Errorf("loading bundled configuration: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", flags.configPath, err)
	}
	return cfg, nil
}

// openStore opens the BadgerDB store at flags.dbDir. When --batch-size
// wasn't given, the flush threshold is sized from available memory
// rather than left at store.Open's flat default, the same way the
// teacher's utils.go reports "Mmry" from memory.TotalMemory() to justify
// its own resource-sizing decisions (eutils/utils.go).
func openStore(flags *globalFlags, log *logging.Logger) (*store.Store, error) {
	batchSize := flags.batchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize()
	}
	st, err := store.Open(flags.dbDir, batchSize, log)
	if err != nil {
		return nil, fmt.Errorf("opening store at %s: %w", flags.dbDir, err)
	}
	return st, nil
}

// defaultBatchSize picks a write-behind flush threshold proportional to
// available system memory: 2,000 records per GiB of total memory,
// clamped to spec.md §5's suggested 1,000-10,000 range.
func defaultBatchSize() int {
	gib := int(memory.TotalMemory() / (1 << 30))
	size := gib * 2000
	if size < 1000 {
		size = 1000
	}
	if size > 10000 {
		size = 10000
	}
	return size
}

// documentWorkers reports how many documents the match command should
// resolve concurrently (spec.md §5: parallelism permitted at document
// granularity only), following the same thread-per-core reality check as
// the teacher's utils.go numProcs calculation: hyperthreads are throttled
// back to physical cores, since contention on the portal client and the
// store's single write-behind batch degrades past that point.
func documentWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if cpuid.CPU.ThreadsPerCore > 1 {
		if cores := n / cpuid.CPU.ThreadsPerCore; cores > 0 {
			n = cores
		}
	}
	return n
}

// newLogger builds the shared stderr logger for a subcommand invocation.
func newLogger(flags *globalFlags) *logging.Logger {
	if !flags.logColor {
		return logging.NewNoColor()
	}
	return logging.New()
}

// compileBank is a small convenience wrapper so subcommands that need the
// regex bank don't each repeat the cfg.Bank() error-wrapping.
func compileBank(cfg *config.Config) (*regexbank.Bank, error) {
	bank, err := cfg.Bank()
	if err != nil {
		return nil, fmt.Errorf("compiling regex bank: %w", err)
	}
	return bank, nil
}
