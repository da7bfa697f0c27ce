// Package blocks converts nested closures ("blocks") into the
// map[string]interface{} request bodies that the Elasticsearch client
// expects. A Block describes a JSON object the same way the query DSL
// reads, without hand-assembling nested map literals:
//
//	src, err := blocks.Map(func(b *blocks.Body) {
//	    b.Set("query.term.user", "kimchy")
//	    b.Object("sort", func(b *blocks.Body) {
//	        b.Set("post_date.order", "desc")
//	    })
//	    b.Set("size", 10)
//	})
//
// Dotted paths are shorthand for nested object assignment, so the
// example above produces:
//
//	{"query": {"term": {"user": "kimchy"}}, "sort": {"post_date": {"order": "desc"}}, "size": 10}
package blocks

import (
	"errors"
	"reflect"
)

// Block describes a JSON object body.
// Run it through Map (or pass it to a client method that does)
// to get the equivalent map[string]interface{}.
type Block func(*Body)

// ErrShorthandReference is returned by Body.Get when the path names an
// object that only exists because a longer dotted path passed through
// it. Intermediate objects created by shorthand assignment aren't
// values; read one of their leaves instead, or create the object
// explicitly with Body.Object first.
var ErrShorthandReference = errors.New("blocks: shorthand path intermediate referenced as a value")

// Map runs a Block and converts the result to a map.
// A nil Block yields an empty map, which Elasticsearch treats
// as "no body" or "match all" depending on the API.
func Map(blk Block) (map[string]interface{}, error) {
	b := newBody()
	if blk != nil {
		blk(b)
	}
	if b.err != nil {
		return nil, b.err
	}
	return b.root.materializeObject(), nil
}

// MustMap is like Map but panics on a conversion error.
// Intended for bodies built from constants, where an error
// is a programming mistake.
func MustMap(blk Block) map[string]interface{} {
	m, err := Map(blk)
	if err != nil {
		panic(err)
	}
	return m
}

// convertValue converts a value assigned into a Body to the plain
// map/slice/scalar form that encoding/json serializes the obvious way.
// Blocks become objects, slices and arrays become []interface{} with
// converted elements, string-keyed maps are converted per-entry, and
// everything else passes through untouched.
func convertValue(v interface{}) (interface{}, error) {
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case Block:
		return Map(tv)
	case func(*Body): // Allow bare closures without the Block conversion.
		return Map(tv)
	case []interface{}:
		return convertSlice(tv)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(tv))
		for k, ev := range tv {
			cv, err := convertValue(ev)
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil
	case []byte, string:
		// Strings are scalars, not element sequences.
		return v, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			cv, err := convertValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := make(map[string]interface{}, rv.Len())
			for _, k := range rv.MapKeys() {
				cv, err := convertValue(rv.MapIndex(k).Interface())
				if err != nil {
					return nil, err
				}
				out[k.String()] = cv
			}
			return out, nil
		}
	}

	// Scalars, time.Time, json.Marshaler implementations, structs...
	// encoding/json knows what to do with these.
	return v, nil
}

func convertSlice(vs []interface{}) ([]interface{}, error) {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		cv, err := convertValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = cv
	}
	return out, nil
}
