package record

import (
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Match selects how a condition compares a document field with its value.
type Match int

const (
	// Equals requires the field to hold exactly the value.
	Equals Match = iota
	// Contains requires the field to be a sequence holding the value.
	Contains
)

// Condition is a single field predicate.
type Condition struct {
	Field string
	Match Match
	Value string
}

// Filter is a conjunction of conditions. An empty filter matches every document.
type Filter []Condition

// FilterParam maps a list-endpoint query parameter onto a document field.
type FilterParam struct {
	Name  string
	Field string
	Match Match
	// Email marks parameters that must be a syntactically valid address.
	Email bool
}

// ValidationError reports input rejected before it reaches the store.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var validate = validator.New()

// BuildFilter translates the kind's recognized query parameters into a
// filter. Absent and empty parameters are left out; everything else is
// ignored.
func (k Kind) BuildFilter(q url.Values) (Filter, error) {
	f := Filter{}
	for _, p := range k.Params {
		v := q.Get(p.Name)
		if v == "" {
			continue
		}
		if p.Email {
			if err := validate.Var(v, "email"); err != nil {
				return nil, &ValidationError{Field: p.Name, Err: fmt.Errorf("%q is not a valid email address", v)}
			}
			v = NormalizeEmail(v)
		}
		f = append(f, Condition{Field: p.Field, Match: p.Match, Value: v})
	}
	return f, nil
}

// BSON renders the filter as a MongoDB query document.
func (f Filter) BSON() bson.M {
	out := bson.M{}
	for _, c := range f {
		switch c.Match {
		case Contains:
			out[c.Field] = bson.M{"$in": bson.A{c.Value}}
		default:
			out[c.Field] = c.Value
		}
	}
	return out
}

// Matches evaluates the filter against a document in process, with the
// same semantics the Mongo query has.
func (f Filter) Matches(doc Document) bool {
	for _, c := range f {
		v, ok := doc[c.Field]
		if !ok {
			return false
		}
		switch c.Match {
		case Contains:
			if !containsString(v, c.Value) {
				return false
			}
		default:
			s, ok := v.(string)
			if !ok || s != c.Value {
				return false
			}
		}
	}
	return true
}

func containsString(v any, want string) bool {
	var items []any
	switch t := v.(type) {
	case primitive.A:
		items = t
	case []any:
		items = t
	case []string:
		for _, s := range t {
			if s == want {
				return true
			}
		}
		return false
	default:
		return false
	}
	for _, it := range items {
		if s, ok := it.(string); ok && s == want {
			return true
		}
	}
	return false
}
