// Package catalog loads, validates, filters and saves repository catalogs.
//
// A catalog is a YAML document whose top-level "repositories" list declares
// every repository repofleet operates on. Repositories remember the
// directory of the catalog they were loaded from so relative clone paths can
// be resolved against it. Filtering preserves catalog order and combines a
// tag predicate with an explicit name list using AND semantics.
package catalog
