// Package emit renders TypeScript declaration (.d.ts) and implementation
// (.js) files that expose a typed, chainable construction API for parsed
// schemas.
//
// There are two generation paths.
//
// # OpenAPI and CRD schemas
//
// [OpenAPI] groups schemas by module (_common, _other, or one module per
// group-version) and renders, for each module:
//
//   - An interface per schema, or a type alias for scalar schemas such as
//     Quantity and IntOrString.
//   - A resource builder for every schema with a GVK. It has one chainable
//     method per spec property, a typed spec(value) method, and one method
//     per extra top-level property. When the spec has a template of type
//     PodTemplateSpec it also gets containers() and initContainers().
//   - A plain builder for every other schema that nests a named type
//     (see [ShouldGenerateBuilder]).
//   - A factory per builder named exactly like the schema.
//
// For example:
//
//	Deployment("web").replicas(3).containers([...])
//	Container({ name: "web" })
//
// References across modules become "import type" lines with relative
// paths. Names that would clash are imported under an alias prefixed with
// the source module, for example CoreV1Container.
//
// Inline objects with properties are typed as any on this path.
//
// # Chart values
//
// [Chart] walks a chart's values schema, including $defs and definitions,
// and extracts every nested object with properties as a named type, using
// the PascalCase property key as its name. Each named type gets a builder
// class and a structural <Name>Spec interface. Factories are lowerCamel:
//
//	values().image(image().tag("1.2.3"))
//
// Both paths print types through [openapi.TsType.String] and render with
// the embedded templates. Every file begins with a "Code generated ... DO
// NOT EDIT." header.
package emit
