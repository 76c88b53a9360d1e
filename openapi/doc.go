// Package openapi turns OpenAPI-shaped schema documents into a flat list of
// [SchemaInfo] records that the emitters and the schema store consume.
//
// A document is any JSON object carrying named schemas under
// components.schemas (OpenAPI v3, as served by a cluster's /openapi/v3
// endpoints) or definitions (Swagger 2). Each named schema is decoded into a
// [spec.Schema] and then reduced to:
//
//   - a short name (the last dot-separated segment of the full name),
//   - a [Location] that decides which generated module declares it,
//   - the first GroupVersionKind from x-kubernetes-group-version-kind,
//   - one [PropertyInfo] per property, typed with [TypeOf].
//
// # Classification
//
// Names under io.k8s.apimachinery. are shared metadata and land in the
// common module. Names of the form io.k8s.api.<group>.<version>.<Type> land
// in their group-version module. Everything else starts out as "other";
// schemas in that bucket that carry a GVK (CRDs, aggregated APIs) are then
// promoted to the group-version named by the GVK, with an empty group
// spelled "core".
//
// # Type model
//
// [TsType] is deliberately small. Inline object schemas that are not maps
// become [KindAny] rather than anonymous structures: named schemas are the
// unit of generation, and the OpenAPI documents served by Kubernetes name
// every structure that matters.
//
// # Errors
//
// Parsing never fails hard. Malformed documents produce no schemas, and
// missing or malformed fields fall back to defaults, because upstream
// documents are not under our control and partial type information is more
// useful than none. [ParseDocument] is the one entry point that reports
// [ErrInvalidDocument], for callers that need to distinguish.
package openapi
