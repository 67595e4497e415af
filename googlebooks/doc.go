// Package googlebooks provides a client for the Google Books volumes API.
//
// The client builds provider queries for comic lookups (free text, ISBN/EAN,
// cover image) and submits every HTTP call through a governor.Governor so
// that concurrent lookups share one paced, throttling-aware request stream.
//
// # Errors
//
//   - HTTP 429 is reported to the governor as a *governor.ThrottledError and
//     retried there; callers only see it as a *governor.RetryExhaustedError.
//   - Any other non-2xx status is returned as a *ProviderError, without retry.
//   - An empty result set is not an error.
//
// # Usage
//
//	gov := governor.New(governor.WithLogger(logger))
//	client, err := googlebooks.NewClient(gov, logger,
//		googlebooks.WithAPIKey(key),
//		googlebooks.WithLanguage("fr"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.SearchByText(ctx, "Blacksad tome 1")
package googlebooks
