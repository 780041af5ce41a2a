package compat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// compatKey is the JSON key that carries a compatibility statement.
const compatKey = "__compat"

// ErrNotObject is returned when a compatibility node is not a JSON object.
var ErrNotObject = errors.New("compat node must be a JSON object")

// NodeKind tags the shape of a compatibility node.
type NodeKind uint8

const (
	// NodeEmpty has neither a statement nor children.
	NodeEmpty NodeKind = iota
	// NodeLeaf carries only a compatibility statement.
	NodeLeaf
	// NodeInternal carries only named children.
	NodeInternal
	// NodeMixed carries a statement and named children.
	NodeMixed
)

// CompatStatement is the __compat payload of a node.
type CompatStatement struct {
	Description string                         `json:"description,omitempty"`
	LynxPath    string                         `json:"lynx_path,omitempty"`
	Support     map[string]*SupportDeclaration `json:"support,omitempty"`
}

// Child is a named child node. Children keep their document order.
type Child struct {
	Key  string
	Node *Node
}

// Node is one node of a compatibility tree.
type Node struct {
	Compat   *CompatStatement
	Children []Child
}

// Kind reports which variant the node is.
func (n *Node) Kind() NodeKind {
	switch {
	case n == nil:
		return NodeEmpty
	case n.Compat != nil && len(n.Children) > 0:
		return NodeMixed
	case n.Compat != nil:
		return NodeLeaf
	case len(n.Children) > 0:
		return NodeInternal
	default:
		return NodeEmpty
	}
}

// Child returns the named child, or nil.
func (n *Node) Child(key string) *Node {
	if n == nil {
		return nil
	}

	for _, c := range n.Children {
		if c.Key == key {
			return c.Node
		}
	}

	return nil
}

// UnmarshalJSON decodes a node, keeping children in document order.
// Non-object members other than __compat are ignored.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode node: %w", err)
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return ErrNotObject
	}

	*n = Node{}

	for dec.More() {
		keyTok, keyErr := dec.Token()
		if keyErr != nil {
			return fmt.Errorf("decode node key: %w", keyErr)
		}

		key, _ := keyTok.(string)

		var raw json.RawMessage

		decodeErr := dec.Decode(&raw)
		if decodeErr != nil {
			return fmt.Errorf("decode %q: %w", key, decodeErr)
		}

		if !isObject(raw) {
			continue
		}

		if key == compatKey {
			var stmt CompatStatement

			stmtErr := json.Unmarshal(raw, &stmt)
			if stmtErr != nil {
				return fmt.Errorf("decode %s: %w", compatKey, stmtErr)
			}

			n.Compat = &stmt

			continue
		}

		child := &Node{}

		childErr := child.UnmarshalJSON(raw)
		if childErr != nil {
			return fmt.Errorf("%s: %w", key, childErr)
		}

		n.Children = append(n.Children, Child{Key: key, Node: child})
	}

	_, err = dec.Token()
	if err != nil {
		return fmt.Errorf("decode node end: %w", err)
	}

	return nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Document is one parsed compat data file.
type Document struct {
	// Path is the file path relative to the data root without the .json
	// extension, e.g. "elements/view".
	Path string
	// Root holds the top-level members of the file.
	Root *Node
}

// ParseDocument decodes a compat data file.
func ParseDocument(path string, data []byte) (Document, error) {
	root := &Node{}

	err := json.Unmarshal(data, root)
	if err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return Document{Path: path, Root: root}, nil
}
