package openapi

import (
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Kind identifies the variant of a [TsType].
type Kind int

// TsType variants.
const (
	KindAny Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindIntOrString
	KindArray
	KindMap
	KindRef
)

// TsType is the type model shared by the parser and the emitters.
//
// Array and Map carry their element in Elem. Ref carries the short name
// printed in generated code and the full schema name it resolves to.
type TsType struct {
	Elem   *TsType
	Name   string
	Target string
	Kind   Kind
}

// Scalar types.
var (
	TypeAny         = TsType{Kind: KindAny}
	TypeString      = TsType{Kind: KindString}
	TypeNumber      = TsType{Kind: KindNumber}
	TypeBoolean     = TsType{Kind: KindBoolean}
	TypeIntOrString = TsType{Kind: KindIntOrString}
)

// ArrayOf returns an array type with elements of type elem.
func ArrayOf(elem TsType) TsType {
	return TsType{Kind: KindArray, Elem: &elem}
}

// MapOf returns a string-keyed map type with values of type elem.
func MapOf(elem TsType) TsType {
	return TsType{Kind: KindMap, Elem: &elem}
}

// RefTo returns a reference to the schema with the given full name.
func RefTo(fullName string) TsType {
	return TsType{Kind: KindRef, Name: ShortName(fullName), Target: fullName}
}

// NamedRef returns a reference whose printed name differs from its target.
func NamedRef(name, target string) TsType {
	return TsType{Kind: KindRef, Name: name, Target: target}
}

// String renders t as a TypeScript type expression.
func (t TsType) String() string {
	switch t.Kind {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindIntOrString:
		return "number | string"
	case KindArray:
		elem := t.elem()
		if elem.Kind == KindIntOrString {
			return "(" + elem.String() + ")[]"
		}

		return elem.String() + "[]"
	case KindMap:
		return "Record<string, " + t.elem().String() + ">"
	case KindRef:
		return t.Name
	case KindAny:
	}

	return "any"
}

// RefTarget returns the full name referenced by t when t is a Ref or an
// Array of Ref.
func (t TsType) RefTarget() (string, bool) {
	switch t.Kind {
	case KindRef:
		return t.Target, true
	case KindArray:
		if e := t.elem(); e.Kind == KindRef {
			return e.Target, true
		}
	}

	return "", false
}

// Refs calls fn for every Ref nested anywhere in t.
func (t TsType) Refs(fn func(TsType)) {
	switch t.Kind {
	case KindRef:
		fn(t)
	case KindArray, KindMap:
		t.elem().Refs(fn)
	}
}

// Rename returns a copy of t with every Ref's printed name replaced by
// fn(ref).
func (t TsType) Rename(fn func(TsType) string) TsType {
	switch t.Kind {
	case KindRef:
		t.Name = fn(t)
	case KindArray, KindMap:
		elem := t.elem().Rename(fn)
		t.Elem = &elem
	}

	return t
}

func (t TsType) elem() TsType {
	if t.Elem == nil {
		return TypeAny
	}

	return *t.Elem
}

// LocationKind classifies where a schema is declared.
type LocationKind int

// Location kinds.
const (
	LocationCommon LocationKind = iota
	LocationGroupVersion
	LocationOther
)

// Module names for the non-group-version locations.
const (
	CommonModule = "_common"
	OtherModule  = "_other"
)

// Location is the generated module a schema belongs to.
type Location struct {
	Group   string
	Version string
	Kind    LocationKind
}

// GroupVersionLocation returns the location of a group-version module.
func GroupVersionLocation(group, version string) Location {
	return Location{Kind: LocationGroupVersion, Group: group, Version: version}
}

// Module returns the slash-separated module path, without extension.
func (l Location) Module() string {
	switch l.Kind {
	case LocationCommon:
		return CommonModule
	case LocationGroupVersion:
		return l.Group + "/" + l.Version
	case LocationOther:
	}

	return OtherModule
}

// String implements [fmt.Stringer].
func (l Location) String() string {
	return l.Module()
}

// PropertyInfo describes one property of a named schema.
type PropertyInfo struct {
	Name        string
	Description string
	Type        TsType
	Required    bool
}

// SchemaInfo is the parsed form of one named schema.
type SchemaInfo struct {
	GVK         *schema.GroupVersionKind
	Alias       *TsType
	FullName    string
	ShortName   string
	Description string
	Properties  []PropertyInfo
	Location    Location
}

// Property returns the property with the given name.
func (s *SchemaInfo) Property(name string) (PropertyInfo, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}

	return PropertyInfo{}, false
}

// ShortName returns the last dot-separated segment of a full schema name.
func ShortName(fullName string) string {
	if i := strings.LastIndexByte(fullName, '.'); i >= 0 {
		return fullName[i+1:]
	}

	return fullName
}
