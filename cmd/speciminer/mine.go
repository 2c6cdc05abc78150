package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamancer/speciminer/internal/corpus"
	"github.com/adamancer/speciminer/internal/corpus/localfs"
	"github.com/adamancer/speciminer/internal/mine"
)

// newMineCmd builds `speciminer mine <corpus> <query>` (spec.md §6 Phase
// 0: snippet extraction + parse). <corpus> selects a source-corpus
// adapter; only "local" is implemented in this module (spec.md §1: the
// two digital-library API adapters are external collaborators, specified
// only by corpus.Adapter, and are not implemented here).
func newMineCmd(flags *globalFlags) *cobra.Command {
	var dir string
	var window int

	cmd := &cobra.Command{
		Use:   "mine <corpus> <query>",
		Short: "Mine a corpus for specimen catalog-number mentions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			corpusName, query := args[0], args[1]
			adapter, err := resolveAdapter(corpusName, dir)
			if err != nil {
				return err
			}

			log := newLogger(flags)
			cfg, err := loadConfig(flags)
			if err != nil {
				log.Fatalf("%v", err)
				return err
			}
			bank, err := compileBank(cfg)
			if err != nil {
				log.Fatalf("%v", err)
				return err
			}
			st, err := openStore(flags, log)
			if err != nil {
				log.Fatalf("%v", err)
				return err
			}
			defer st.Close()

			miner := mine.New(st, bank, window, log)
			if err := miner.Run(cmd.Context(), adapter, query); err != nil {
				return err
			}
			log.Infof("mine: finished corpus=%s query=%q", corpusName, query)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "./corpus", "root directory for the local corpus adapter")
	cmd.Flags().IntVar(&window, "window", 0, "context window width in characters (default: 75)")
	return cmd
}

// resolveAdapter looks up a source-corpus adapter by name. Names other
// than "local" name the out-of-scope external collaborators (spec.md
// §1/§6) and fail clearly instead of silently doing nothing.
func resolveAdapter(name, dir string) (corpus.Adapter, error) {
	switch strings.ToLower(name) {
	case "local":
		return localfs.New(dir), nil
	default:
		return nil, fmt.Errorf("mine: corpus adapter %q is an external collaborator (spec.md §1) and is not implemented in this module; only \"local\" is available", name)
	}
}
