/*
Package observability exports catalog activity as Prometheus metrics.

Metrics.Hooks returns lifecycle hooks for catalog.WithHooks; every validation
feeds an outcome counter, a per-code issue counter and a duration histogram.
Metrics.Handler serves the registry for scraping.
*/
package observability
