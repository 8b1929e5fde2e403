package metrics

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// shardSum partitions [0, n) into contiguous shards, runs fn on each shard
// concurrently, and reduces the partial sums in shard order so the result is
// deterministic for a fixed shard count. Summation is associative only up to
// floating-point rounding; comparisons belong behind an epsilon.
func shardSum(n int, fn func(lo, hi int) (raw, found float64)) (raw, found float64) {
	if n == 0 {
		return 0, 0
	}
	shards := runtime.GOMAXPROCS(0)
	if shards > n {
		shards = n
	}
	if shards <= 1 {
		return fn(0, n)
	}

	type partial struct {
		raw   float64
		found float64
	}
	parts := make([]partial, shards)
	size := (n + shards - 1) / shards

	var g errgroup.Group
	for i := 0; i < shards; i++ {
		lo := i * size
		hi := lo + size
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		g.Go(func() error {
			r, f := fn(lo, hi)
			parts[i] = partial{raw: r, found: f}
			return nil
		})
	}
	// fn never fails; Wait only synchronizes the shards.
	_ = g.Wait()

	for _, p := range parts {
		raw += p.raw
		found += p.found
	}
	return raw, found
}
