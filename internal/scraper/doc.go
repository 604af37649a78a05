// Package scraper fetches the inputs of a schedule build: the Sessionize
// dataset of the conference and the agenda page of each DevConf location.
//
// Requests carry a fixed User-Agent and are retried with exponential backoff
// on transport errors, 5xx and 429 responses. Either input can be fetched
// from its Wayback Machine snapshot for a given day instead of the live
// site, and agenda pages can be rendered in headless Chromium when the
// markup is built by scripts.
package scraper
