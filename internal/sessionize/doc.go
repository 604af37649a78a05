// Package sessionize decodes the Sessionize "view/all" dataset and exposes it
// as a read-only Directory.
//
// The Directory is the lookup side of agenda reconciliation: agenda markup only
// carries numeric slot ids, and titles, descriptions, speakers and rooms are
// resolved here.
package sessionize
