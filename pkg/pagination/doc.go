// Package pagination derives the page indicators shown under a product
// listing and turns page navigation into cursor changes.
//
// Window follows a fixed rule: up to seven pages are all listed; beyond
// that the first and last page are always shown, the current page with
// one neighbour on each side, and an ellipsis for each gap.
//
//	pagination.Window(5, 10) // 1 … 4 5 6 … 10
//
// Controller applies Prev/Next/Goto to a PageSetter (the filter store) and
// ignores moves past either boundary.
//
// BatchFetcher walks every page of a listing with a bounded worker pool,
// for exports that need the whole result set rather than one page.
package pagination
