package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalRequests tracks the number of HTTP attempts dispatched, retries included.
	TotalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "novelscraper_requests_total",
		Help: "The total number of HTTP fetch attempts sent.",
	})
	// TotalRequestErrors tracks the number of attempts that resulted in an error.
	TotalRequestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "novelscraper_request_errors_total",
		Help: "The total number of failed HTTP fetch attempts.",
	})
	// TotalChaptersSaved tracks the number of chapters successfully persisted.
	TotalChaptersSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "novelscraper_chapters_saved_total",
		Help: "The total number of chapters persisted.",
	})
	// TotalChapterFailures tracks chapter steps that failed and were counted
	// toward the circuit breaker.
	TotalChapterFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "novelscraper_chapter_failures_total",
		Help: "The total number of failed chapter steps.",
	})
	// TotalWordsSaved accumulates the word counts of persisted chapters.
	TotalWordsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "novelscraper_words_saved_total",
		Help: "The total number of words persisted across chapters.",
	})
)
