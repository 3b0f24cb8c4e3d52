// Package scraper implements the composable chapter-crawl engine, including
// the retrying fetch client, the content normalizer, the retry policy, the
// raw-page archive, and the orchestrator that drives a novel harvest run.
package scraper
