package crud

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/alitto/pond/v2"
)

// LoadOptions lists every source concurrently on pool and returns the options
// keyed like sources. Sources that fail are missing from the result and
// reported in the returned error; the others are still usable.
func LoadOptions(ctx context.Context, pool pond.Pool, l Lister, sources map[string]*OptionsSource) (map[string][]Option, error) {
	out := make(map[string][]Option, len(sources))
	if len(sources) == 0 {
		return out, nil
	}

	var (
		mu     sync.Mutex
		failed []string
	)
	group := pool.NewGroupContext(ctx)
	for _, key := range slices.Sorted(maps.Keys(sources)) {
		src := sources[key]
		group.Submit(func() {
			rows, err := l.FetchAll(ctx, src.Endpoint)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, src.Endpoint)
				return
			}
			out[key] = src.Options(rows)
		})
	}
	if err := group.Wait(); err != nil {
		return out, err
	}
	if len(failed) > 0 {
		slices.Sort(failed)
		return out, fmt.Errorf("failed to load %v", failed)
	}
	return out, nil
}
