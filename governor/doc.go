// Package governor paces outbound calls to a rate-limited provider.
//
// A Governor owns a single FIFO queue of pending operations and one dispatch
// loop. Operations are started one at a time, with a minimum interval between
// consecutive dispatch starts. When an operation reports provider throttling
// (by returning a *ThrottledError) it is put back at the front of the queue and
// all dispatch pauses for a cooldown window. After a bounded number of
// throttled attempts the operation settles with a *RetryExhaustedError.
//
// Every submitted operation settles exactly once, either with its value or
// with an error.
//
// # Usage
//
//	gov := governor.New(
//		governor.WithMinInterval(600*time.Millisecond),
//		governor.WithCooldown(time.Minute),
//		governor.WithLogger(logger),
//	)
//	defer gov.Close()
//
//	body, err := governor.Do(gov, ctx, func(ctx context.Context) ([]byte, error) {
//		return fetch(ctx, url)
//	})
package governor
