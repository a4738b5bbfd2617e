package behavior

import (
	"sort"
	"sync"
)

// Constructor builds an unbound behavior instance. Constructors take no
// arguments; all static configuration happens in the Init hook after the
// factory has injected the context.
type Constructor func() Behavior

// Factory is a type-name-keyed registry constructing behaviors and
// supplying them a shared Context. Every registered behavior must be
// buildable and validatable without being executed, so editing and preview
// tooling can construct and inspect instances safely.
type Factory struct {
	ctx *Context

	mu           sync.RWMutex
	constructors map[Type]Constructor
}

// NewFactory creates a factory injecting the given context into every
// behavior it constructs.
func NewFactory(ctx *Context) *Factory {
	if ctx == nil {
		ctx = NewContext(nil, nil, nil)
	}
	return &Factory{
		ctx:          ctx,
		constructors: make(map[Type]Constructor),
	}
}

// Context returns the context the factory injects.
func (f *Factory) Context() *Context {
	return f.ctx
}

// Register adds a constructor under the given type name.
func (f *Factory) Register(typ Type, constructor Constructor) error {
	if typ == "" {
		return newError(ErrorClassConstruction, "", "empty behavior type")
	}
	if constructor == nil {
		return newError(ErrorClassConstruction, "", "nil constructor for type %q", typ)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.constructors[typ]; exists {
		return newError(ErrorClassConstruction, "", "type %q already registered", typ)
	}
	f.constructors[typ] = constructor
	return nil
}

// Construct builds, binds and initializes a behavior of the registered type.
// It fails without an instance when the type is unregistered or the
// behavior's Init hook reports an error.
func (f *Factory) Construct(typ Type, name Name) (Behavior, error) {
	f.mu.RLock()
	constructor, ok := f.constructors[typ]
	f.mu.RUnlock()
	if !ok {
		return nil, wrapError(ErrorClassConstruction, string(name), ErrTypeNotRegistered, "type %q", typ)
	}

	b := constructor()
	if b == nil {
		return nil, newError(ErrorClassConstruction, string(name), "constructor for type %q returned nil", typ)
	}
	if err := Setup(b, name, typ, f.ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// Types returns the registered type names in sorted order.
func (f *Factory) Types() []Type {
	f.mu.RLock()
	defer f.mu.RUnlock()
	types := make([]Type, 0, len(f.constructors))
	for typ := range f.constructors {
		types = append(types, typ)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Registered reports whether a type is registered.
func (f *Factory) Registered(typ Type) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.constructors[typ]
	return ok
}

// Setup binds a behavior to its name, type and context, then runs its
// optional Init hook. The factory calls it for registered types; behavior
// constructors call it directly for children they create in code.
func Setup(b Behavior, name Name, typ Type, ctx *Context) error {
	if name == "" {
		return newError(ErrorClassConstruction, "", "behavior name must not be empty")
	}
	b.bind(b, name, typ, ctx)
	if init, ok := b.(Initializer); ok {
		if err := init.Init(); err != nil {
			return wrapError(ErrorClassConstruction, string(name), err, "init of type %q", typ)
		}
	}
	return nil
}
