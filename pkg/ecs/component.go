package ecs

// UntypedComponent is a type-erased, immutable-after-construction value
// carrying a typed payload plus its instance id. Queries and hooks hold
// copies of the handle concurrently with the store; mutation is always by
// replacement (copy-on-write via ComponentGroup writeback, see
// componentgroup.go), never in place, so concurrent readers never need to
// lock a component payload.
type UntypedComponent struct {
	typeID     ComponentTypeID
	instanceID ComponentInstanceID
	payload    any
}

// NewComponent wraps value as the component of type T belonging to entity.
func NewComponent[T any](entity EntityID, value T) UntypedComponent {
	tid := TypeID[T]()
	return UntypedComponent{
		typeID:     tid,
		instanceID: ComponentInstanceID{Entity: entity, Type: tid},
		payload:    value,
	}
}

// Type returns the component's type id.
func (c UntypedComponent) Type() ComponentTypeID { return c.typeID }

// InstanceID returns the (entity, type) pair naming this component instance.
func (c UntypedComponent) InstanceID() ComponentInstanceID { return c.instanceID }

// Entity returns the owning entity.
func (c UntypedComponent) Entity() EntityID { return c.instanceID.Entity }

// Get downcasts the component's payload to T. Ok is false if the component
// does not hold a T payload (i.e. the caller asked for the wrong type).
func Get[T any](c UntypedComponent) (T, bool) {
	v, ok := c.payload.(T)
	return v, ok
}

// NewUntypedComponent builds a component from a dynamic type id and an
// already-boxed payload. It exists for code that reconstructs components
// generically by type id, such as a persistence layer decoding a payload
// whose concrete type it only knows through a registry (see pkg/kvstore);
// ordinary callers should use NewComponent[T] instead.
func NewUntypedComponent(entity EntityID, tid ComponentTypeID, payload any) UntypedComponent {
	return UntypedComponent{
		typeID:     tid,
		instanceID: ComponentInstanceID{Entity: entity, Type: tid},
		payload:    payload,
	}
}

// Payload returns the component's boxed value for code that cannot name
// its concrete type statically (see pkg/kvstore).
func Payload(c UntypedComponent) any {
	return c.payload
}
