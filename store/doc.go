// Package store builds, persists and loads the two artifacts the validator
// reads after generation.
//
// A [SchemaStore] is the merged table of every named schema across all input
// documents, with each $ref rewritten to the bare full name of its target
// and every GroupVersionKind indexed under "group/version:Kind" (or
// "version:Kind" for the core group). It is written as _schema.json:
//
//	{"version": 2, "gvk_index": {...}, "schemas": {...}}
//
// A [ValidationMap] is the lighter alternative: for each indexed resource, the
// path patterns at which a Kubernetes quantity can occur, such as
// "$.spec.template.spec.containers[*].resources.limits[*]". It is written as
// _validation.json:
//
//	{"version": 1, "quantities": {...}}
//
// Both encodings sort every object key, so identical inputs produce
// byte-identical output. Both loaders are soft: an unknown version or a
// missing key reports the artifact as unavailable instead of failing, and
// callers fall back to a weaker validation tier.
package store
