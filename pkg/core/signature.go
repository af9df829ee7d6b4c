package core

// ParameterIntrospectable is implemented by anything that can report its
// declared formal parameters.
//
// Implementations return only named, bindable parameters in declaration
// order. Catch-all slots (*args, **kwargs) are never included. Callables
// implemented opaquely by the host return an empty slice rather than an error.
type ParameterIntrospectable interface {
	ParameterNames() []string
}

// Resolver maps a callable name to something that can be introspected.
type Resolver interface {
	Resolve(name string) (ParameterIntrospectable, bool)
}

// Params is a fixed parameter list. It is the simplest ParameterIntrospectable
// and is used for stored snapshots and tests.
type Params []string

// ParameterNames returns a copy of the list.
func (p Params) ParameterNames() []string {
	out := make([]string, len(p))
	copy(out, p)
	return out
}

// Descriptor is one collected callable signature.
type Descriptor struct {
	Name   string   `json:"name" yaml:"name"`
	Params []string `json:"params" yaml:"params"`
}

// Arity returns the number of declared parameters.
func (d Descriptor) Arity() int {
	return len(d.Params)
}

// SignatureTable is an insertion-ordered mapping from callable name to its
// parameter list. Iteration never depends on Go map ordering.
type SignatureTable struct {
	entries []Descriptor
	index   map[string]int
}

// NewSignatureTable creates an empty table with room for n entries.
func NewSignatureTable(n int) *SignatureTable {
	return &SignatureTable{
		entries: make([]Descriptor, 0, n),
		index:   make(map[string]int, n),
	}
}

// Add appends a descriptor. It returns ErrDuplicateCallable if the name is
// already present.
func (t *SignatureTable) Add(name string, params []string) error {
	if _, ok := t.index[name]; ok {
		return &DuplicateCallableError{Name: name}
	}
	if params == nil {
		params = []string{}
	}
	t.index[name] = len(t.entries)
	t.entries = append(t.entries, Descriptor{Name: name, Params: params})
	return nil
}

// Get returns the parameters recorded for name.
func (t *SignatureTable) Get(name string) ([]string, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.entries[i].Params, true
}

// Names returns the callable names in insertion order.
func (t *SignatureTable) Names() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}
	return names
}

// Descriptors returns the entries in insertion order.
func (t *SignatureTable) Descriptors() []Descriptor {
	out := make([]Descriptor, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *SignatureTable) Len() int {
	return len(t.entries)
}

// MaxArity returns the largest parameter count, or 0 for an empty table.
func (t *SignatureTable) MaxArity() int {
	w := 0
	for _, e := range t.entries {
		if len(e.Params) > w {
			w = len(e.Params)
		}
	}
	return w
}
