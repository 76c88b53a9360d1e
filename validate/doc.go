// Package validate checks already-built Kubernetes documents against the
// schemas persisted at generation time.
//
// Each document is checked by the strongest tier available for its
// apiVersion and kind:
//
//  1. Schema store: the document is walked against its full schema from the
//     root path "$". Type, enum, bounds, pattern, required and quantity
//     checks apply, following $ref and every allOf branch.
//  2. Validation map: when the store is absent or does not index the
//     resource, the quantity path patterns recorded for it are expanded
//     over the document and every value found is checked as a quantity.
//  3. Heuristic: otherwise, every object keyed "resources" has the values
//     of its "requests" and "limits" maps checked as quantities.
//
// Validation never stops at the first problem. [Validator.Validate] returns
// nil when every document passes, or an [Errors] value listing every
// problem in document order, with object keys visited in sorted order.
//
// A null value always passes. Schema graphs may be cyclic, so recursion
// stops silently past a depth cap (see [WithMaxDepth]). A pattern that is
// not a valid regular expression is ignored.
//
// A loaded [store.SchemaStore] or [store.ValidationMap] is read-only, so a
// single [Validator] may be used from multiple goroutines.
package validate
