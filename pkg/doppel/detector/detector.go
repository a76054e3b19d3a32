package detector

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doppelkit/doppel/pkg/doppel/cache"
	"github.com/doppelkit/doppel/pkg/doppel/digest"
	"github.com/doppelkit/doppel/pkg/doppel/scanner"
	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// ErrInvalidRoot is returned when the scan root does not exist or is not a
// readable directory. No work is performed in that case.
var ErrInvalidRoot = scanner.ErrInvalidRoot

// ErrCancelled is the terminal outcome of a cancelled scan. A cancelled
// scan never returns a partial ScanResult.
var ErrCancelled = errors.New("scan cancelled")

// Detector finds groups of content-identical files under a root directory.
type Detector struct {
	opts Options

	filesHashed atomic.Int64
	bytesHashed atomic.Int64
	cacheHits   atomic.Int64
	candidates  atomic.Int64
}

// groupKey identifies a duplicate group. Group identity derives from digest
// value plus size, never from arrival order, so results are deterministic
// under any worker scheduling.
type groupKey struct {
	size   int64
	digest types.Digest
}

// hashResult carries one worker's outcome back to the collector.
type hashResult struct {
	rec    types.FileRecord
	quick  uint64
	err    error
	cached bool
}

// New creates a Detector with the given options.
func New(opts Options) *Detector {
	_ = opts.Validate()
	return &Detector{opts: opts}
}

// Run executes a full detection pass. It blocks until the scan completes or
// ctx is cancelled; on cancellation it returns ErrCancelled and no result.
func (d *Detector) Run(ctx context.Context) (*types.ScanResult, error) {
	start := time.Now()

	sc, err := scanner.New(scanner.Options{
		Root:       d.opts.Root,
		MinSize:    d.opts.MinSize,
		MaxDepth:   d.opts.MaxDepth,
		Exclude:    d.opts.Exclude,
		OnProgress: d.opts.OnProgress,
	})
	if err != nil {
		return nil, err
	}

	walk, err := sc.Scan(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrCancelled
		}
		return nil, err
	}

	unreadable := walk.Unreadable

	// Size bucketing: unique sizes cannot be duplicates and are dropped
	// without any content read.
	buckets := bucketBySize(walk.Files)

	// Quick-hash subdivision splits same-size candidates that differ in
	// their leading bytes, so most same-size-different-content pairs never
	// get fully read.
	survivors, quickUnreadable, err := d.quickSieve(ctx, buckets)
	if err != nil {
		return nil, err
	}
	unreadable = append(unreadable, quickUnreadable...)

	groups, confirmUnreadable, err := d.confirm(ctx, survivors)
	if err != nil {
		return nil, err
	}
	unreadable = append(unreadable, confirmUnreadable...)

	return &types.ScanResult{
		Groups:       groups,
		Unreadable:   unreadable,
		DirsScanned:  walk.DirsScanned,
		FilesScanned: walk.FilesScanned,
		FilesHashed:  d.filesHashed.Load(),
		BytesHashed:  d.bytesHashed.Load(),
		CacheHits:    d.cacheHits.Load(),
		Elapsed:      time.Since(start),
	}, nil
}

// bucketBySize groups candidates by exact byte size and discards buckets
// with a single member.
func bucketBySize(files []types.FileRecord) map[int64][]types.FileRecord {
	buckets := make(map[int64][]types.FileRecord)
	for _, f := range files {
		buckets[f.Size] = append(buckets[f.Size], f)
	}
	for size, members := range buckets {
		if len(members) < 2 {
			delete(buckets, size)
		}
	}
	return buckets
}

// quickSieve computes quick hashes for every candidate in a multi-member
// bucket and drops candidates whose (size, quick hash) sub-bucket has no
// peer. Quick hash equality proves nothing; survivors still go through full
// digest confirmation.
func (d *Detector) quickSieve(ctx context.Context, buckets map[int64][]types.FileRecord) ([]types.FileRecord, []types.ScanError, error) {
	var total int
	for _, members := range buckets {
		total += len(members)
	}
	d.candidates.Store(int64(total))
	if total == 0 {
		return nil, nil, nil
	}

	results, err := d.runWorkers(ctx, flatten(buckets), func(rec types.FileRecord) hashResult {
		q, qerr := digest.Quick(rec.Path)
		return hashResult{rec: rec, quick: q, err: qerr}
	})
	if err != nil {
		return nil, nil, err
	}

	type quickKey struct {
		size  int64
		quick uint64
	}

	var unreadable []types.ScanError
	subBuckets := make(map[quickKey][]types.FileRecord)
	for _, r := range results {
		if r.err != nil {
			unreadable = append(unreadable, types.ScanError{Path: r.rec.Path, Error: r.err.Error()})
			continue
		}
		k := quickKey{size: r.rec.Size, quick: r.quick}
		subBuckets[k] = append(subBuckets[k], r.rec)
	}

	var survivors []types.FileRecord
	for _, members := range subBuckets {
		if len(members) >= 2 {
			survivors = append(survivors, members...)
		}
	}
	return survivors, unreadable, nil
}

// confirm computes full-content digests for the surviving candidates and
// assembles the final groups. Workers return results to a single collector;
// nothing else mutates the group map.
func (d *Detector) confirm(ctx context.Context, candidates []types.FileRecord) ([]types.DuplicateGroup, []types.ScanError, error) {
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	results, err := d.runWorkers(ctx, candidates, d.digestOne)
	if err != nil {
		return nil, nil, err
	}

	var unreadable []types.ScanError
	groups := make(map[groupKey][]types.FileRecord)
	freshDigests := make(map[string]cache.Entry)

	for _, r := range results {
		if r.err != nil {
			unreadable = append(unreadable, types.ScanError{Path: r.rec.Path, Error: r.err.Error()})
			continue
		}
		k := groupKey{size: r.rec.Size, digest: r.rec.Digest}
		groups[k] = append(groups[k], r.rec)
		if !r.cached && d.opts.Cache != nil {
			freshDigests[r.rec.Path] = cache.Entry{
				Size:   r.rec.Size,
				Mtime:  r.rec.ModTime.UnixNano(),
				Digest: r.rec.Digest,
			}
		}
	}

	if d.opts.Cache != nil && len(freshDigests) > 0 {
		// Cache write failure costs a future rescan, nothing more.
		_ = d.opts.Cache.StoreBatch(freshDigests)
	}

	return buildGroups(groups), unreadable, nil
}

// digestOne resolves a candidate's digest, consulting the cache first.
func (d *Detector) digestOne(rec types.FileRecord) hashResult {
	if d.opts.Cache != nil {
		if dig, err := d.opts.Cache.Lookup(rec.Path, rec.Size, rec.ModTime.UnixNano()); err == nil {
			rec.Digest = dig
			d.cacheHits.Add(1)
			return hashResult{rec: rec, cached: true}
		}
	}

	dig, n, err := digest.SumWithSize(rec.Path)
	if err != nil {
		return hashResult{rec: rec, err: err}
	}
	rec.Digest = dig
	d.filesHashed.Add(1)
	d.bytesHashed.Add(n)
	return hashResult{rec: rec}
}

// runWorkers fans candidates out to a bounded worker pool and gathers all
// results. The jobs channel is bounded by QueueSize so feeding applies
// backpressure; cancellation is checked before every file is handed out.
func (d *Detector) runWorkers(ctx context.Context, candidates []types.FileRecord, work func(types.FileRecord) hashResult) ([]hashResult, error) {
	jobs := make(chan types.FileRecord, d.opts.QueueSize)
	out := make(chan hashResult, d.opts.QueueSize)

	g, workerCtx := errgroup.WithContext(ctx)
	for i := 0; i < d.opts.Workers; i++ {
		g.Go(func() error {
			for rec := range jobs {
				select {
				case <-workerCtx.Done():
					return workerCtx.Err()
				default:
				}
				select {
				case out <- work(rec):
				case <-workerCtx.Done():
					return workerCtx.Err()
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for _, rec := range candidates {
			select {
			case jobs <- rec:
			case <-workerCtx.Done():
				return workerCtx.Err()
			}
		}
		return nil
	})

	done := make(chan struct{})
	var results []hashResult
	go func() {
		defer close(done)
		for r := range out {
			results = append(results, r)
			d.reportDigestProgress(r.rec.Path)
		}
	}()

	err := g.Wait()
	close(out)
	<-done

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrCancelled
		}
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ErrCancelled
	}
	return results, nil
}

// reportDigestProgress forwards digest-phase counters to the caller.
func (d *Detector) reportDigestProgress(path string) {
	if d.opts.OnProgress == nil {
		return
	}
	d.opts.OnProgress(types.ScanProgress{
		Candidates:  d.candidates.Load(),
		FilesHashed: d.filesHashed.Load(),
		BytesHashed: d.bytesHashed.Load(),
		CurrentPath: path,
	})
}

// flatten concatenates all bucket members.
func flatten(buckets map[int64][]types.FileRecord) []types.FileRecord {
	var all []types.FileRecord
	for _, members := range buckets {
		all = append(all, members...)
	}
	return all
}

// buildGroups turns the aggregation map into the final deterministic
// ordering: groups of fewer than two members are dropped, members sort by
// path, groups sort by size descending then digest ascending.
func buildGroups(groups map[groupKey][]types.FileRecord) []types.DuplicateGroup {
	result := make([]types.DuplicateGroup, 0, len(groups))
	for k, members := range groups {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			return members[i].Path < members[j].Path
		})
		result = append(result, types.DuplicateGroup{
			Digest: k.digest,
			Size:   k.size,
			Files:  members,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Size != result[j].Size {
			return result[i].Size > result[j].Size
		}
		return bytes.Compare(result[i].Digest[:], result[j].Digest[:]) < 0
	})

	return result
}
