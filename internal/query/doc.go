// Package query builds and serializes typed search requests for the
// xeno-canto recordings catalogue.
//
// # Queries
//
// A Query is a bag of typed constraint tags; the zero value matches
// everything. Serialize renders it in the catalogue's tag syntax with
// terms joined by '+', always in the same order:
//
//	q := query.Query{Genus: "troglodytes", Length: ptr(query.AtLeast(30))}
//	expr, _ := q.Serialize() // `gen:troglodytes len:">30"`
//
// Operator constraints are quoted on the wire because the remote
// parser requires it; range constraints (a-b) and bare values are not.
//
// # Parsing
//
// Parse is the boundary for raw user input. It accepts the same
// field:value term syntax the website's search box does and converts
// it into a validated Query, so a typo fails locally instead of
// producing a request that silently matches nothing:
//
//	q, err := query.Parse("gen:Troglodytes cnt:ES q:>C")
//
// # Quality bounds
//
// Ratings run A (best) to E (worst). QualityAtLeast and QualityAtMost
// bound the rating in that order, and the serializer rewrites them
// into the strict < and > operators the wire syntax offers. Bounds
// covering the whole scale serialize to no constraint at all.
package query
