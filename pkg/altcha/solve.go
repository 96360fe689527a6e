package altcha

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrNoSolution = errors.New("no solution in search space")

type Solution struct {
	Number int64
	Took   time.Duration
}

// Solve brute-forces the secret number in [0, MaxNumber], spreading the
// search over workers goroutines (GOMAXPROCS when workers <= 0).
func Solve(ctx context.Context, ch Challenge, workers int) (Solution, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	newHash, err := Algorithm(ch.Algorithm).hasher()
	if err != nil {
		return Solution{}, err
	}
	want := []byte(ch.Challenge)
	salt := []byte(ch.Salt)

	start := time.Now()
	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var found atomic.Int64
	found.Store(-1)

	g, gctx := errgroup.WithContext(searchCtx)
	for w := 0; w < workers; w++ {
		offset := int64(w)
		g.Go(func() error {
			h := newHash()
			num := make([]byte, 0, 20)
			sum := make([]byte, 0, h.Size())
			hexSum := make([]byte, h.Size()*2)
			for i, n := 0, offset; n <= ch.MaxNumber; i, n = i+1, n+int64(workers) {
				if i%4096 == 0 && gctx.Err() != nil {
					return nil
				}
				h.Reset()
				h.Write(salt)
				h.Write(strconv.AppendInt(num[:0], n, 10))
				sum = h.Sum(sum[:0])
				hexEncode(hexSum, sum)
				if bytes.Equal(hexSum, want) {
					found.Store(n)
					cancel()
					return nil
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := found.Load(); n >= 0 {
		return Solution{Number: n, Took: time.Since(start)}, nil
	}
	if err := ctx.Err(); err != nil {
		return Solution{}, err
	}
	return Solution{}, ErrNoSolution
}

// SolvePayload solves ch and returns the payload ready to submit.
func SolvePayload(ctx context.Context, ch Challenge, workers int) (Payload, error) {
	sol, err := Solve(ctx, ch, workers)
	if err != nil {
		return Payload{}, err
	}
	return Payload{
		Algorithm: ch.Algorithm,
		Challenge: ch.Challenge,
		Number:    sol.Number,
		Salt:      ch.Salt,
		Signature: ch.Signature,
		Took:      sol.Took.Milliseconds(),
	}, nil
}

const hexDigits = "0123456789abcdef"

func hexEncode(dst, src []byte) {
	for i, b := range src {
		dst[i*2] = hexDigits[b>>4]
		dst[i*2+1] = hexDigits[b&0x0f]
	}
}
