package main

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/adamancer/speciminer/internal/logging"
	"github.com/adamancer/speciminer/internal/portal"
	"github.com/adamancer/speciminer/internal/resolve"
	"github.com/adamancer/speciminer/internal/store"
)

// newMatchCmd builds `speciminer match` (spec.md §6: run Phases 1-4 of
// the resolution engine over every document in the store). spec.md §5
// permits parallelism at document granularity only, since Phase 2 within
// a document depends on every other Link in that document having
// finished Phase 1 first; documentWorkers fixed goroutines each drain one
// document at a time off a shared channel, the same wg/channel shape the
// teacher's cache.go/index.go multiplexers use for their own
// document-level fan-out.
func newMatchCmd(flags *globalFlags) *cobra.Command {
	var portalURL string

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Resolve mined mentions against the collections portal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(flags)
			cfg, err := loadConfig(flags)
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

			client := portal.NewRetry(portal.NewHTTPClient(portalURL))
			engine := resolve.NewEngine(st, client, cfg.Departments, log)

			docs, err := st.AllDocuments()
			if err != nil {
				return err
			}
			workers := documentWorkers()
			if workers > len(docs) {
				workers = len(docs)
			}
			log.Infof("match: resolving %d documents across %d workers", len(docs), workers)
			resolveDocuments(cmd.Context(), docs, workers, engine, log)
			return nil
		},
	}
	cmd.Flags().StringVar(&portalURL, "portal-url", "https://geogallery.si.edu/portal", "collections portal base URL")
	return cmd
}

// resolveDocuments fans doc out to numWorkers goroutines, each calling
// engine.Resolve on one document at a time; a per-document failure is
// logged and does not stop the other workers (spec.md §7).
func resolveDocuments(ctx context.Context, docs []store.Document, numWorkers int, engine *resolve.Engine, log *logging.Logger) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	queue := make(chan store.Document)
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for doc := range queue {
				if err := engine.Resolve(ctx, doc.URL); err != nil {
					log.Errorf("match: document %s: %v", doc.URL, err)
				}
			}
		}()
	}
	for _, doc := range docs {
		queue <- doc
	}
	close(queue)
	wg.Wait()
}
