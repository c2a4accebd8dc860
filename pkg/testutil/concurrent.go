package testutil

import (
	"context"
	"errors"
	"sync"

	dErrors "targetkit/pkg/domain-errors"
)

// uncoded buckets errors that carry no domain code.
const uncoded dErrors.Code = ""

// Outcomes tallies the results of a concurrent run.
type Outcomes struct {
	Successes int32
	ByCode    map[dErrors.Code]int32
}

// Failed reports how many calls returned an error with the given code. Pass
// "" to count errors that are not domain errors.
func (o *Outcomes) Failed(code dErrors.Code) int32 {
	return o.ByCode[code]
}

// Total is the number of calls made.
func (o *Outcomes) Total() int32 {
	n := o.Successes
	for _, c := range o.ByCode {
		n += c
	}
	return n
}

// RunConcurrentCtx starts n goroutines running fn at once and waits for all
// of them.
func RunConcurrentCtx(ctx context.Context, n int, fn func(ctx context.Context, idx int) error) *Outcomes {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		start = make(chan struct{})
		out   = &Outcomes{ByCode: map[dErrors.Code]int32{}}
	)

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := fn(ctx, i)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				out.Successes++
				return
			}
			out.ByCode[codeOf(err)]++
		}()
	}
	close(start)
	wg.Wait()

	return out
}

func codeOf(err error) dErrors.Code {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return uncoded
}
