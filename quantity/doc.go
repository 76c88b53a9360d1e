// Package quantity checks strings against the Kubernetes resource quantity
// grammar (for example "500m", "2Gi", "1e3").
//
// The grammar accepted by [IsValid] is:
//
//	<quantity> ::= [<sign>] <number> [<suffix>]
//	<number>   ::= <digits> | <digits> "." [<digits>] | "." <digits>
//	<suffix>   ::= <binarySI> | <decimalSI> | <exponent>
//	<binarySI> ::= "Ki" | "Mi" | "Gi" | "Ti" | "Pi" | "Ei"
//	<decimalSI>::= "n" | "u" | "m" | "k" | "M" | "G" | "T" | "P" | "E"
//	<exponent> ::= ("e" | "E") [<sign>] <digits>
//
// SI suffixes are matched before exponents, so "1E" is one exa rather than
// an incomplete exponent, while "1E3" is one thousand.
//
// The check is purely syntactic. It does not bound the magnitude of the
// value the way [k8s.io/apimachinery/pkg/api/resource.ParseQuantity] does.
package quantity
