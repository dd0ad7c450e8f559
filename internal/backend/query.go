package backend

import "encoding/json"

// AttrCreatedAt is the backend-managed creation timestamp attribute.
const AttrCreatedAt = "$createdAt"

// Query describes one filter primitive understood by the backend's list
// endpoints. Queries travel on the wire as JSON strings.
type Query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

// OrderDesc sorts results by attribute, newest first.
func OrderDesc(attribute string) Query {
	return Query{Method: "orderDesc", Attribute: attribute}
}

// Limit caps the number of returned records.
func Limit(n int) Query {
	return Query{Method: "limit", Values: []any{n}}
}

// Offset skips the first n records.
func Offset(n int) Query {
	return Query{Method: "offset", Values: []any{n}}
}

// Equal filters records whose attribute equals value.
func Equal(attribute string, value any) Query {
	return Query{Method: "equal", Attribute: attribute, Values: []any{value}}
}

// Search applies a full-text filter on attribute.
func Search(attribute, keyword string) Query {
	return Query{Method: "search", Attribute: attribute, Values: []any{keyword}}
}

// Or combines queries disjunctively. Nested queries ride along as their
// encoded wire form.
func Or(queries ...Query) Query {
	values := make([]any, 0, len(queries))
	for _, q := range queries {
		values = append(values, q.String())
	}
	return Query{Method: "or", Values: values}
}

// String returns the wire form of the query.
func (q Query) String() string {
	encoded, _ := json.Marshal(q)
	return string(encoded)
}

func encodeQueries(queries []Query) []string {
	out := make([]string, 0, len(queries))
	for _, q := range queries {
		out = append(out, q.String())
	}
	return out
}
