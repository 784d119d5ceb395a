package exprtree

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/fsynth/atom"
)

// nodeJSON is the wire layout of a single tree node:
// {arity, num, name?, arg1?, arg2?}.
type nodeJSON struct {
	Arity int       `json:"arity"`
	Num   int       `json:"num"`
	Name  string    `json:"name,omitempty"`
	Arg1  *nodeJSON `json:"arg1,omitempty"`
	Arg2  *nodeJSON `json:"arg2,omitempty"`
}

// MarshalJSON encodes n using the {arity, num, name, arg1, arg2} layout.
func (n *Node[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toWire())
}

func (n *Node[V]) toWire() *nodeJSON {
	name := ""
	if a, err := n.lib.Get(n.idx); err == nil {
		switch v := a.(type) {
		case atom.Atom0[V]:
			name = v.String()
		case atom.Atom1[V]:
			name = v.String()
		case atom.Atom2[V]:
			name = v.String()
		}
	}

	nj := &nodeJSON{Arity: n.idx.Arity, Num: n.idx.Num, Name: name}
	if n.Arity() > 0 {
		nj.Arg1 = n.arg1.toWire()
	}
	if n.Arity() > 1 {
		nj.Arg2 = n.arg2.toWire()
	}
	return nj
}

// UnmarshalJSON decodes data into n. On failure n is left unchanged:
// decoding happens into a scratch node which only replaces n's
// contents once the whole tree has parsed successfully.
func (n *Node[V]) UnmarshalJSON(data []byte) error {
	var nj nodeJSON
	if err := json.Unmarshal(data, &nj); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	scratch := n.newChild()
	if err := scratch.fromWire(&nj); err != nil {
		return err
	}
	*n = *scratch
	return nil
}

func (n *Node[V]) fromWire(nj *nodeJSON) error {
	idx := atom.Index{Arity: nj.Arity, Num: nj.Num}
	if _, err := n.lib.Get(idx); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	n.idx = idx
	n.arg1 = nil
	n.arg2 = nil
	n.ClearCalculated()

	if n.idx.Arity > 0 {
		if nj.Arg1 == nil {
			return fmt.Errorf("%w: missing arg1 for arity %d node", ErrInvalidJSON, n.idx.Arity)
		}
		n.arg1 = n.newChild()
		if err := n.arg1.fromWire(nj.Arg1); err != nil {
			return err
		}
	}

	if n.idx.Arity > 1 {
		if nj.Arg2 == nil {
			return fmt.Errorf("%w: missing arg2 for arity %d node", ErrInvalidJSON, n.idx.Arity)
		}
		n.arg2 = n.newChild()
		if err := n.arg2.fromWire(nj.Arg2); err != nil {
			return err
		}
	}

	return nil
}
