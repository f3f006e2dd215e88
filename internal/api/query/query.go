package query

// Query bundles everything a store needs to execute a list or search request
type Query struct {
	Predicate Predicate
	Sort      Sort
	Page      Page
}
