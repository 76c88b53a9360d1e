// Package chart produces the JSON Schema that drives generation of a chart's
// values builders.
//
// Charts that ship a values.schema.json are read with [LoadSchema], which
// accepts the schema as JSON or YAML. Charts that ship only a values.yaml
// get a schema inferred from the file structure by [InferSchema].
//
// # Inference
//
// Inference is best-effort and fails open. It never marks a property
// required, and objects allow additional properties unless
// [WithStrict] is set. Types come from the YAML scalars themselves:
//
//	replicas: 1        # integer
//	ratio: 0.5         # number
//	enabled: true      # boolean
//	name: web          # string
//	tag:               # no constraint
//
// Mappings become objects with their keys in document order, sequences of
// mappings become arrays whose item schema is the union of every element,
// and sequences of scalars widen their element types (integer and number
// widen to number, anything else drops the constraint). Anchors, aliases and
// merge keys are resolved before inference.
//
// A comment directly above a key, or trailing its value, becomes the
// property description. helm-docs "# -- text" comments are understood.
// Other lines that start with "@" are treated as tooling annotations and
// ignored, except for readme-generator annotations anywhere in the file:
//
//	## @param image.tag [string] Image tag
//	## @skip debug
//
// A "@param" line sets the description of the named key path and, when it
// names a type in brackets, the type of a key that is not an object with
// properties. A "@skip" line drops the key. Array indices in key paths are
// ignored.
//
// When several values files are given, the result describes their union:
// properties from every file are kept and conflicting types widen.
package chart
