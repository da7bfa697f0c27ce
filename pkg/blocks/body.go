package blocks

import (
	"fmt"
	"strings"
)

// Body accumulates the key/value structure described by a Block.
// Methods return the Body for chaining. The first error encountered
// (a path conflict, say) sticks: later calls become no-ops and Map
// returns it. A Body is single-use and not safe for concurrent use.
type Body struct {
	root *node
	err  error
}

// node is one object or leaf in the accumulated tree.
type node struct {
	obj   map[string]*node // non-nil iff this is an object
	value interface{}      // leaf value, already converted

	// implicit marks objects that exist only because a dotted
	// shorthand path passed through them. Reading one back as an
	// r-value is the classic misuse; see ErrShorthandReference.
	implicit bool
}

func newBody() *Body {
	return &Body{root: newObjectNode(false)}
}

func newObjectNode(implicit bool) *node {
	return &node{obj: make(map[string]*node), implicit: implicit}
}

func (n *node) isObject() bool { return n.obj != nil }

// materializeObject converts an object node to a plain map.
func (n *node) materializeObject() map[string]interface{} {
	m := make(map[string]interface{}, len(n.obj))
	for k, c := range n.obj {
		if c.isObject() {
			m[k] = c.materializeObject()
		} else {
			m[k] = c.value
		}
	}
	return m
}

// Set assigns a value. The path may be a dotted shorthand like
// "query.term.user", which is reinterpreted as nested object
// assignment; intermediate objects are created as needed and merge
// with objects created by earlier assignments. Assigning a Block is
// equivalent to Object. Reassigning a leaf overwrites it, but
// replacing an existing object with a scalar (or vice versa) is a
// conflict and poisons the Body.
func (b *Body) Set(path string, value interface{}) *Body {
	if b.err != nil {
		return b
	}
	switch blk := value.(type) {
	case Block:
		return b.Object(path, blk)
	case func(*Body):
		return b.Object(path, blk)
	}

	parent, name, err := b.walk(path)
	if err != nil {
		b.fail(err)
		return b
	}
	if existing, ok := parent.obj[name]; ok && existing.isObject() {
		b.fail(fmt.Errorf("blocks: cannot assign value at %q: an object already exists there", path))
		return b
	}
	cv, err := convertValue(value)
	if err != nil {
		b.fail(err)
		return b
	}
	parent.obj[name] = &node{value: cv}
	return b
}

// Field assigns a value under a literal key: no dotted shorthand, the
// whole name is one key. Use it when key names may themselves contain
// dots, like field names from external input.
func (b *Body) Field(name string, value interface{}) *Body {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.fail(fmt.Errorf("blocks: empty field name"))
		return b
	}
	if existing, ok := b.root.obj[name]; ok && existing.isObject() {
		b.fail(fmt.Errorf("blocks: cannot assign value at field %q: an object already exists there", name))
		return b
	}
	cv, err := convertValue(value)
	if err != nil {
		b.fail(err)
		return b
	}
	b.root.obj[name] = &node{value: cv}
	return b
}

// Object describes a nested object with its own Block. If an object
// already exists at path (explicitly or as a shorthand intermediate)
// the block merges into it.
func (b *Body) Object(path string, blk Block) *Body {
	if b.err != nil {
		return b
	}
	parent, name, err := b.walk(path)
	if err != nil {
		b.fail(err)
		return b
	}
	child, ok := parent.obj[name]
	if ok && !child.isObject() {
		b.fail(fmt.Errorf("blocks: cannot open object at %q: a value already exists there", path))
		return b
	}
	if !ok {
		child = newObjectNode(false)
		parent.obj[name] = child
	}
	// Explicitly opened, even if shorthand created it first.
	child.implicit = false

	if blk != nil {
		sub := &Body{root: child}
		blk(sub)
		if sub.err != nil {
			b.fail(sub.err)
		}
	}
	return b
}

// Array assigns an array value. Elements are converted like Set
// values, so Blocks and nested slices are fine:
//
//	b.Array("filter",
//	    blocks.Block(func(b *blocks.Body) { b.Set("term.state", "open") }),
//	    blocks.Block(func(b *blocks.Body) { b.Set("range.age.gte", 21) }),
//	)
func (b *Body) Array(path string, values ...interface{}) *Body {
	if b.err != nil {
		return b
	}
	vs, err := convertSlice(values)
	if err != nil {
		b.fail(err)
		return b
	}
	return b.Set(path, vs)
}

// Get reads back a previously assigned value, converting the path the
// same way Set does. Leaves come back as their converted value and
// explicit objects as a map. Objects that only exist as shorthand
// intermediates return ErrShorthandReference, and absent paths are an
// error.
func (b *Body) Get(path string) (interface{}, error) {
	if b.err != nil {
		return nil, b.err
	}
	cur := b.root
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	for i, seg := range segments {
		if !cur.isObject() {
			return nil, fmt.Errorf("blocks: no value at %q: %q is not an object", path, strings.Join(segments[:i], "."))
		}
		next, ok := cur.obj[seg]
		if !ok {
			return nil, fmt.Errorf("blocks: no value at %q", path)
		}
		cur = next
	}
	if cur.isObject() {
		if cur.implicit {
			return nil, ErrShorthandReference
		}
		return cur.materializeObject(), nil
	}
	return cur.value, nil
}

// Err returns the sticky error, if any.
func (b *Body) Err() error {
	return b.err
}

func (b *Body) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// walk resolves all but the last segment of a dotted path, creating
// implicit intermediate objects, and returns the parent object node
// and the final segment name.
func (b *Body) walk(path string) (*node, string, error) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, "", err
	}
	cur := b.root
	for i, seg := range segments[:len(segments)-1] {
		next, ok := cur.obj[seg]
		if !ok {
			next = newObjectNode(true)
			cur.obj[seg] = next
		} else if !next.isObject() {
			return nil, "", fmt.Errorf("blocks: cannot descend into %q: %q is already a value", path, strings.Join(segments[:i+1], "."))
		}
		cur = next
	}
	return cur, segments[len(segments)-1], nil
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("blocks: empty path")
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("blocks: path %q has an empty segment", path)
		}
	}
	return segments, nil
}
