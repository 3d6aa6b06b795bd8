package project

import (
	"fmt"
)

// Kind identifies a capability.
type Kind int

// Capability kinds in registry order.
const (
	KindInformation Kind = iota
	KindViewDecorator
	KindActionDispatcher
	KindMoveOperation
	KindCopyOperation
	KindDeleteOperation
)

var kindNames = [...]string{
	KindInformation:      "information",
	KindViewDecorator:    "view-decorator",
	KindActionDispatcher: "action-dispatcher",
	KindMoveOperation:    "move-operation",
	KindCopyOperation:    "copy-operation",
	KindDeleteOperation:  "delete-operation",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every capability kind in registry order.
func Kinds() []Kind {
	return []Kind{
		KindInformation,
		KindViewDecorator,
		KindActionDispatcher,
		KindMoveOperation,
		KindCopyOperation,
		KindDeleteOperation,
	}
}

// Capability is a role a Project exposes.
type Capability interface {
	Kind() Kind
	// Project returns the owning project.
	Project() *Project
}

// registry holds one instance per kind. It is immutable once built.
type registry struct {
	information *Information
	view        *LogicalView
	actions     *ActionDispatcher
	move        *MoveOperation
	copy        *CopyOperation
	delete      *DeleteOperation
}

func newRegistry(p *Project) *registry {
	return &registry{
		information: &Information{project: p},
		view:        &LogicalView{project: p},
		actions:     &ActionDispatcher{project: p},
		move:        &MoveOperation{operation{project: p}},
		copy:        &CopyOperation{operation{project: p}},
		delete:      &DeleteOperation{operation{project: p}},
	}
}

func (r *registry) get(k Kind) (Capability, bool) {
	switch k {
	case KindInformation:
		return r.information, true
	case KindViewDecorator:
		return r.view, true
	case KindActionDispatcher:
		return r.actions, true
	case KindMoveOperation:
		return r.move, true
	case KindCopyOperation:
		return r.copy, true
	case KindDeleteOperation:
		return r.delete, true
	}
	return nil, false
}

// capabilitySet builds the registry on first use. Concurrent first
// callers block until the single build completes and see the same set.
func (p *Project) capabilitySet() *registry {
	p.once.Do(func() {
		p.caps = newRegistry(p)
	})
	return p.caps
}

// Lookup returns the capability instance for kind.
func (p *Project) Lookup(kind Kind) (Capability, error) {
	c, ok := p.capabilitySet().get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCapability, kind)
	}
	return c, nil
}

// Capabilities returns every capability in registry order.
func (p *Project) Capabilities() []Capability {
	r := p.capabilitySet()
	out := make([]Capability, 0, len(kindNames))
	for _, k := range Kinds() {
		c, _ := r.get(k)
		out = append(out, c)
	}
	return out
}

// Information returns the Information capability.
func (p *Project) Information() *Information { return p.capabilitySet().information }

// View returns the view decorator capability.
func (p *Project) View() *LogicalView { return p.capabilitySet().view }

// Actions returns the action dispatcher capability.
func (p *Project) Actions() *ActionDispatcher { return p.capabilitySet().actions }

// MoveOperation returns the move capability. Rename uses it as well.
func (p *Project) MoveOperation() *MoveOperation { return p.capabilitySet().move }

// CopyOperation returns the copy capability.
func (p *Project) CopyOperation() *CopyOperation { return p.capabilitySet().copy }

// DeleteOperation returns the delete capability.
func (p *Project) DeleteOperation() *DeleteOperation { return p.capabilitySet().delete }
