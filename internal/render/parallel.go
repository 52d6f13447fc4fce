package render

import (
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/gbtranslate/internal/catalog"
)

// WorkItem identifies one gene to render.
type WorkItem struct {
	Seq     int
	Catalog *catalog.Catalog
	Index   int
}

// WorkResult holds the rendering of a single gene.
type WorkResult struct {
	Seq    int
	Index  int
	Report *Report
	Err    error
}

// ParallelRender renders work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (r *Renderer) ParallelRender(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				rep, err := r.Render(item.Catalog, item.Index)
				results <- WorkResult{
					Seq:    item.Seq,
					Index:  item.Index,
					Report: rep,
					Err:    err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for res := range results {
		pending[res.Seq] = res

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// RenderAll renders every gene of the catalogs in order and passes each
// result to fn. A gene that fails to render is logged and handed to fn
// with its error set; fn decides whether to stop.
func (r *Renderer) RenderAll(catalogs []*catalog.Catalog, workers int, fn func(WorkResult) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	items := make(chan WorkItem, 2*workers)

	r.logger.Debug("rendering genes",
		zap.Int("catalogs", len(catalogs)),
		zap.Int("workers", workers),
		zap.Stringer("base_policy", r.formatter.Translator().Policy()),
		zap.Bool("one_letter", r.formatter.OneLetter()))

	go func() {
		defer close(items)
		seq := 0
		for _, c := range catalogs {
			for i := range c.Genes {
				items <- WorkItem{Seq: seq, Catalog: c, Index: i}
				seq++
			}
		}
	}()

	return OrderedCollect(r.ParallelRender(items, workers), func(res WorkResult) error {
		if res.Err != nil {
			r.logger.Warn("failed to render gene",
				zap.Int("index", res.Index),
				zap.Error(res.Err))
		}
		return fn(res)
	})
}
