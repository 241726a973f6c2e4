package codegen

import (
	"hash/fnv"
	"math/bits"

	"github.com/funvibe/still/internal/typesystem"
)

// binding is what the generator knows about a local name.
type binding struct {
	Type typesystem.Type
	// Copy is the ownership classification of Type.
	Copy bool
	// Reference bindings hold a borrow of the matched value: they were bound
	// below a boxed payload or while matching a borrowed scrutinee.
	Reference bool
	// Depth is the closure nesting level the binding was introduced at.
	Depth    int
	RustName string
}

// Scope is an immutable map from local names to their bindings, stored as a
// hash array mapped trie. Extending a scope leaves the original untouched,
// so sibling branches never observe each other's bindings.
type Scope struct {
	root  *hamtNode
	count int
}

const (
	hamtBits = 5
	hamtSize = 1 << hamtBits
	hamtMask = hamtSize - 1
)

type hamtNode struct {
	bitmap uint32
	nodes  []any // hamtEntry or *hamtNode
}

type hamtEntry struct {
	hash  uint32
	key   string
	value *binding
}

func emptyScope() *Scope {
	return &Scope{}
}

func (s *Scope) Len() int {
	return s.count
}

// Lookup returns the binding of name, or nil.
func (s *Scope) Lookup(name string) *binding {
	if s == nil || s.root == nil {
		return nil
	}
	return s.root.get(hashName(name), name, 0)
}

// LocalType lets the analyzer's inference see the bindings in scope.
func (s *Scope) LocalType(name string) (typesystem.Type, bool) {
	b := s.Lookup(name)
	if b == nil {
		return nil, false
	}
	return b.Type, true
}

// With returns a new scope in which name is bound to b.
func (s *Scope) With(name string, b *binding) *Scope {
	root := s.root
	if root == nil {
		root = &hamtNode{}
	}
	newRoot, added := root.put(hashName(name), name, b, 0)
	count := s.count
	if added {
		count++
	}
	return &Scope{root: newRoot, count: count}
}

func (n *hamtNode) get(hash uint32, key string, shift uint) *binding {
	if shift >= 32 {
		for _, node := range n.nodes {
			if entry := node.(hamtEntry); entry.key == key {
				return entry.value
			}
		}
		return nil
	}
	bit := uint32(1) << ((hash >> shift) & hamtMask)
	if n.bitmap&bit == 0 {
		return nil
	}
	switch v := n.nodes[popcount(n.bitmap&(bit-1))].(type) {
	case hamtEntry:
		if v.hash == hash && v.key == key {
			return v.value
		}
	case *hamtNode:
		return v.get(hash, key, shift+hamtBits)
	}
	return nil
}

func (n *hamtNode) put(hash uint32, key string, value *binding, shift uint) (*hamtNode, bool) {
	newNode := &hamtNode{bitmap: n.bitmap, nodes: make([]any, len(n.nodes))}
	copy(newNode.nodes, n.nodes)

	// hash bits exhausted: the node is a collision bucket
	if shift >= 32 {
		for i, node := range newNode.nodes {
			if node.(hamtEntry).key == key {
				newNode.nodes[i] = hamtEntry{hash: hash, key: key, value: value}
				return newNode, false
			}
		}
		newNode.nodes = append(newNode.nodes, hamtEntry{hash: hash, key: key, value: value})
		return newNode, true
	}

	bit := uint32(1) << ((hash >> shift) & hamtMask)
	pos := popcount(n.bitmap & (bit - 1))
	if n.bitmap&bit == 0 {
		newNode.bitmap |= bit
		newNode.nodes = append(newNode.nodes, nil)
		copy(newNode.nodes[pos+1:], newNode.nodes[pos:])
		newNode.nodes[pos] = hamtEntry{hash: hash, key: key, value: value}
		return newNode, true
	}

	switch v := newNode.nodes[pos].(type) {
	case hamtEntry:
		if v.hash == hash && v.key == key {
			newNode.nodes[pos] = hamtEntry{hash: hash, key: key, value: value}
			return newNode, false
		}
		// push both entries one level down
		child, _ := (&hamtNode{}).put(v.hash, v.key, v.value, shift+hamtBits)
		child, _ = child.put(hash, key, value, shift+hamtBits)
		newNode.nodes[pos] = child
		return newNode, true
	case *hamtNode:
		child, added := v.put(hash, key, value, shift+hamtBits)
		newNode.nodes[pos] = child
		return newNode, added
	}
	return newNode, false
}

func hashName(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}

func popcount(x uint32) int {
	return bits.OnesCount32(x)
}
