package emit

import (
	"cmp"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.jacobcolvin.com/kubeschema/openapi"
)

// Top-level resource properties that never get a builder method.
var fixedResourceKeys = map[string]bool{
	"apiVersion": true,
	"kind":       true,
	"metadata":   true,
	"spec":       true,
	"status":     true,
}

const podTemplateSpec = "PodTemplateSpec"

// ShouldGenerateBuilder reports whether a schema without a GVK nests
// another named type, directly or as an array element.
func ShouldGenerateBuilder(info openapi.SchemaInfo) bool {
	if info.GVK != nil {
		return false
	}

	for _, p := range info.Properties {
		if _, ok := p.Type.RefTarget(); ok {
			return true
		}
	}

	return false
}

// OpenAPI renders one declaration file and one implementation file per
// module for the given schemas. Files are returned in module order.
func OpenAPI(schemas []openapi.SchemaInfo, opts ...Option) ([]File, error) {
	e := newEmitter(opts)
	idx := newIndex(schemas)

	var files []File

	for _, module := range slices.Sorted(maps.Keys(idx.modules)) {
		w := newModuleWriter(idx, module)

		out, err := e.render(module, w.view(e))
		if err != nil {
			return nil, err
		}

		files = append(files, out...)
	}

	return files, nil
}

// index resolves full schema names to their module and module-local name.
type index struct {
	byName  map[string]*openapi.SchemaInfo
	local   map[string]string
	modules map[string][]*openapi.SchemaInfo
}

func newIndex(schemas []openapi.SchemaInfo) *index {
	idx := &index{
		byName:  make(map[string]*openapi.SchemaInfo, len(schemas)),
		local:   make(map[string]string, len(schemas)),
		modules: make(map[string][]*openapi.SchemaInfo),
	}

	for i := range schemas {
		info := &schemas[i]
		if _, ok := idx.byName[info.FullName]; ok {
			continue
		}

		idx.byName[info.FullName] = info
		module := info.Location.Module()
		idx.modules[module] = append(idx.modules[module], info)
	}

	for _, infos := range idx.modules {
		slices.SortFunc(infos, func(a, b *openapi.SchemaInfo) int {
			return cmp.Compare(a.FullName, b.FullName)
		})

		names := newNamer("Builder")
		for _, info := range infos {
			idx.local[info.FullName] = names.unique(typeName(info.ShortName), namePrefixes(info.FullName)...)
		}
	}

	return idx
}

// namePrefixes returns the PascalCase segments preceding the short name,
// nearest first.
func namePrefixes(fullName string) []string {
	parts := strings.Split(fullName, ".")
	prefixes := make([]string, 0, len(parts))

	for i := len(parts) - 2; i >= 0; i-- {
		if p := PascalCase(parts[i]); p != "" {
			prefixes = append(prefixes, p)
		}
	}

	return prefixes
}

// moduleWriter builds the view for one module, tracking the names it
// imports from other modules.
type moduleWriter struct {
	idx     *index
	module  string
	scope   map[string]bool
	bound   map[string]string
	imports map[string]map[string]string
	runtime map[string]string
}

func newModuleWriter(idx *index, module string) *moduleWriter {
	w := &moduleWriter{
		idx:     idx,
		module:  module,
		scope:   make(map[string]bool),
		bound:   make(map[string]string),
		imports: make(map[string]map[string]string),
		runtime: make(map[string]string),
	}

	for _, info := range idx.modules[module] {
		name := idx.local[info.FullName]
		w.scope[name] = true
		w.scope[name+"Builder"] = true
	}

	return w
}

func (w *moduleWriter) view(e *emitter) *fileView {
	view := &fileView{}

	for _, info := range w.idx.modules[w.module] {
		name := w.idx.local[info.FullName]

		if info.Alias != nil {
			view.Aliases = append(view.Aliases, aliasView{
				Doc:  docComment(info.Description, ""),
				Name: name,
				Type: w.typeString(*info.Alias),
			})

			continue
		}

		iface := interfaceView{
			Doc:  docComment(info.Description, ""),
			Name: name,
		}

		for _, p := range info.Properties {
			iface.Fields = append(iface.Fields, fieldView{
				Doc:      docComment(p.Description, "  "),
				Key:      propertyKey(p.Name),
				Type:     w.typeString(p.Type),
				Required: p.Required,
			})
		}

		view.Interfaces = append(view.Interfaces, iface)

		switch {
		case info.GVK != nil:
			view.Builders = append(view.Builders, w.resourceBuilder(info, name))
		case ShouldGenerateBuilder(*info):
			view.Builders = append(view.Builders, w.builder(info, name))
		}
	}

	if line := e.runtimeImport(w.runtimeBindings()); line != "" {
		view.DeclImports = append(view.DeclImports, line)
		view.ImplImports = append(view.ImplImports, line)
	}

	view.DeclImports = append(view.DeclImports, w.typeImports()...)

	return view
}

func (w *moduleWriter) resourceBuilder(info *openapi.SchemaInfo, name string) builderView {
	gvk := info.GVK
	b := builderView{
		Doc:     docComment(info.Description, ""),
		Class:   name + "Builder",
		Base:    w.runtimeName(runtimeResourceBuilder),
		Type:    name,
		Params:  "name: string",
		Args:    "name",
		Super:   fmt.Sprintf("%s, %s, name", strconv.Quote(gvk.GroupVersion().String()), strconv.Quote(gvk.Kind)),
		Factory: name,
	}

	seen := maps.Clone(builderMethods)

	if specProp, ok := info.Property("spec"); ok {
		seen["spec"] = true
		b.Methods = append(b.Methods, methodView{
			Doc:  docComment(specProp.Description, "  "),
			Name: "spec",
			Type: w.typeString(specProp.Type),
			Call: setCall("spec"),
		})

		if specInfo := w.target(specProp.Type); specInfo != nil {
			for _, p := range specInfo.Properties {
				if seen[p.Name] {
					continue
				}

				seen[p.Name] = true
				b.Methods = append(b.Methods, methodView{
					Doc:  docComment(p.Description, "  "),
					Name: propertyKey(p.Name),
					Type: w.typeString(p.Type),
					Call: setInCall("spec", p.Name),
				})
			}

			if tmpl := w.podTemplate(specInfo); tmpl != nil {
				for _, field := range []string{"containers", "initContainers"} {
					if seen[field] {
						continue
					}

					seen[field] = true
					b.Methods = append(b.Methods, methodView{
						Name: field,
						Type: w.podSpecType(tmpl, field),
						Call: setInCall("spec", "template", "spec", field),
					})
				}
			}
		}
	}

	for _, p := range info.Properties {
		if fixedResourceKeys[p.Name] || seen[p.Name] {
			continue
		}

		seen[p.Name] = true
		b.Methods = append(b.Methods, methodView{
			Doc:  docComment(p.Description, "  "),
			Name: propertyKey(p.Name),
			Type: w.typeString(p.Type),
			Call: setCall(p.Name),
		})
	}

	return b
}

func (w *moduleWriter) builder(info *openapi.SchemaInfo, name string) builderView {
	b := builderView{
		Doc:     docComment(info.Description, ""),
		Class:   name + "Builder",
		Base:    w.runtimeName(runtimeBuilder),
		Type:    name,
		Params:  "init?: Partial<" + name + ">",
		Args:    "init",
		Super:   "init",
		Factory: name,
	}

	for _, p := range info.Properties {
		if builderMethods[p.Name] {
			continue
		}

		b.Methods = append(b.Methods, methodView{
			Doc:  docComment(p.Description, "  "),
			Name: propertyKey(p.Name),
			Type: w.typeString(p.Type),
			Call: setCall(p.Name),
		})
	}

	return b
}

// target returns the schema a direct reference points to.
func (w *moduleWriter) target(t openapi.TsType) *openapi.SchemaInfo {
	if t.Kind != openapi.KindRef {
		return nil
	}

	return w.idx.byName[t.Target]
}

// podTemplate returns the pod template schema when spec has a template
// property of that type.
func (w *moduleWriter) podTemplate(spec *openapi.SchemaInfo) *openapi.SchemaInfo {
	p, ok := spec.Property("template")
	if !ok || p.Type.Kind != openapi.KindRef || openapi.ShortName(p.Type.Target) != podTemplateSpec {
		return nil
	}

	if tmpl := w.target(p.Type); tmpl != nil {
		return tmpl
	}

	return &openapi.SchemaInfo{FullName: p.Type.Target}
}

// podSpecType resolves the type of a pod spec field through the template.
func (w *moduleWriter) podSpecType(tmpl *openapi.SchemaInfo, field string) string {
	if specProp, ok := tmpl.Property("spec"); ok {
		if podSpec := w.target(specProp.Type); podSpec != nil {
			if p, ok := podSpec.Property(field); ok {
				return w.typeString(p.Type)
			}
		}
	}

	return openapi.ArrayOf(openapi.TypeAny).String()
}

func (w *moduleWriter) typeString(t openapi.TsType) string {
	return t.Rename(w.refName).String()
}

// refName returns the name a reference is bound to in this module,
// registering an import for references into other modules. References to
// unknown schemas become any.
func (w *moduleWriter) refName(ref openapi.TsType) string {
	info, ok := w.idx.byName[ref.Target]
	if !ok {
		return "any"
	}

	local := w.idx.local[ref.Target]

	module := info.Location.Module()
	if module == w.module {
		return local
	}

	if name, ok := w.bound[ref.Target]; ok {
		return name
	}

	name := local
	if w.scope[name] {
		name = PascalCase(module) + local
		for i := 2; w.scope[name]; i++ {
			name = PascalCase(module) + local + strconv.Itoa(i)
		}
	}

	w.scope[name] = true
	w.bound[ref.Target] = name

	if w.imports[module] == nil {
		w.imports[module] = make(map[string]string)
	}

	w.imports[module][local] = name

	return name
}

// runtimeName returns the local binding of a runtime class.
func (w *moduleWriter) runtimeName(class string) string {
	if name, ok := w.runtime[class]; ok {
		return name
	}

	name := class
	for i := 2; w.scope[name]; i++ {
		name = "Runtime" + class
		if i > 2 {
			name += strconv.Itoa(i)
		}
	}

	w.scope[name] = true
	w.runtime[class] = name

	return name
}

func (w *moduleWriter) runtimeBindings() []string {
	bindings := make([]string, 0, len(w.runtime))
	for _, class := range slices.Sorted(maps.Keys(w.runtime)) {
		bindings = append(bindings, binding(class, w.runtime[class]))
	}

	return bindings
}

func (w *moduleWriter) typeImports() []string {
	lines := make([]string, 0, len(w.imports))

	for _, module := range slices.Sorted(maps.Keys(w.imports)) {
		names := w.imports[module]

		bindings := make([]string, 0, len(names))
		for _, name := range slices.Sorted(maps.Keys(names)) {
			bindings = append(bindings, binding(name, names[name]))
		}

		lines = append(lines, fmt.Sprintf("import type { %s } from %s;",
			strings.Join(bindings, ", "), strconv.Quote(importPath(w.module, module))))
	}

	return lines
}

func binding(name, local string) string {
	if name == local {
		return name
	}

	return name + " as " + local
}

// importPath returns the relative specifier of module "to" as seen from
// module "from".
func importPath(from, to string) string {
	rel, err := filepath.Rel(filepath.Dir(filepath.FromSlash(from)), filepath.FromSlash(to+".js"))
	if err != nil {
		return "./" + to + ".js"
	}

	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}

	return rel
}
