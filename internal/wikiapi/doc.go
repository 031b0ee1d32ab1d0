// Package wikiapi talks to MediaWiki content services (Wikisource, Wikibooks,
// Wikilivres).
//
// Requests return futures so callers can compose continuations with Then or
// block with Wait. CompleteQuery follows the API's continuation protocol one
// round at a time, merging every page of results into a single document.
// Page content is exposed through the ContentSource interface with two
// strategies: QuerySource (parsed revisions from api.php) and RESTSource
// (rendered HTML from the REST page endpoint).
package wikiapi
