/*
Package metrics exposes Prometheus collectors for the request governor, the
HTTP API and the cover refresh job.

All collectors are registered on the default registry at init through
promauto and served by the server package at /metrics.

Governor metrics:
  - bdshelf_governor_queued_total: submitted requests (counter)
  - bdshelf_governor_dispatches_total: attempts sent (counter), label kind
  - bdshelf_governor_throttles_total: throttled attempts (counter)
  - bdshelf_governor_cooldown_seconds: last cooldown length (gauge)
  - bdshelf_governor_settled_total: settled requests (counter), label outcome
  - bdshelf_governor_request_duration_seconds: submission to settlement (histogram)
  - bdshelf_governor_queue_depth: waiting requests (gauge)

Wire the observer when building the governor:

	obs := metrics.NewGovernorObserver()
	gov := governor.New(governor.WithObserver(obs))
	obs.TrackDepth(gov.Pending)
*/
package metrics
