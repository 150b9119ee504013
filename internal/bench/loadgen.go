// Package bench implements a synthetic load generator for the logging
// pipeline: N producer goroutines, each throttled to a target emit rate,
// hammering a Log with a mix of messages and regions. Grounded on pebble's
// own rate-limited compaction/flush paths, which use the same
// cockroachdb/tokenbucket package to pace background I/O.
package bench

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/cockroachdb/tokenbucket"

	"github.com/TimZoet/logandload-module/internal/wire"
	"github.com/TimZoet/logandload-module/logandload"
)

// Config describes one load-generation run.
type Config struct {
	// Streams is the number of concurrent producer goroutines, each with
	// its own Stream.
	Streams int
	// RatePerStream caps each stream's emit rate in messages per second.
	// Zero means unthrottled.
	RatePerStream float64
	// MessagesPerStream is how many messages each stream emits before
	// returning.
	MessagesPerStream int
	// RegionEvery, when > 0, wraps each run of RegionEvery consecutive
	// messages in one region.
	RegionEvery int
	// StreamBufferSize is the buffer size passed to Log.CreateStream.
	StreamBufferSize int
}

// Result summarizes a completed run.
type Result struct {
	MessagesEmitted int
	Elapsed         time.Duration
}

var benchKey, benchSize = logandload.ParameterType[uint64]()
var benchFormat = logandload.NewFormat("seq={}", 0, []wire.ParameterKey{benchKey}, []int{benchSize})

// Run drives Config against log until every stream has emitted its full
// quota, or ctx is cancelled.
func Run(ctx context.Context, log *logandload.Log, cfg Config) (Result, error) {
	start := time.Now()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var emitted int
	var firstErr error

	for i := 0; i < cfg.Streams; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := runStream(ctx, log, cfg)
			mu.Lock()
			emitted += n
			if err != nil && firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	return Result{MessagesEmitted: emitted, Elapsed: time.Since(start)}, firstErr
}

func runStream(ctx context.Context, log *logandload.Log, cfg Config) (int, error) {
	s := log.CreateStream(cfg.StreamBufferSize)

	var limiter *tokenbucket.TokenBucket
	if cfg.RatePerStream > 0 {
		limiter = &tokenbucket.TokenBucket{}
		limiter.Init(tokenbucket.TokensPerSecond(cfg.RatePerStream), tokenbucket.Tokens(cfg.RatePerStream))
	}

	var payload [8]byte
	var region *logandload.Region
	emitted := 0

	for i := 0; i < cfg.MessagesPerStream; i++ {
		if ctx.Err() != nil {
			return emitted, ctx.Err()
		}
		if limiter != nil {
			if err := limiter.WaitCtx(ctx, tokenbucket.Tokens(1)); err != nil {
				return emitted, err
			}
		}

		if cfg.RegionEvery > 0 && i%cfg.RegionEvery == 0 {
			region = s.BeginRegion()
		}

		binary.LittleEndian.PutUint64(payload[:], uint64(i))
		s.Message(benchFormat, payload[:])
		emitted++

		if region != nil && (i+1)%cfg.RegionEvery == 0 {
			region.End()
			region = nil
		}
	}
	if region != nil {
		region.End()
	}

	return emitted, nil
}
