package domain

import "github.com/google/uuid"

// Decision is the outcome of an ownership check.
type Decision int

const (
	// Permitted means the caller is the recorded owner.
	Permitted Decision = iota
	// NotFound means the resource does not exist.
	NotFound
	// Forbidden means the resource exists but belongs to someone else.
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Permitted:
		return "permitted"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Owned is implemented by every resource with a recorded creator.
type Owned interface {
	OwnerID() uuid.UUID
}

// Authorize decides whether caller may act on a resource. found must be
// false when the lookup returned nothing; owner is ignored in that case.
func Authorize(caller, owner uuid.UUID, found bool) Decision {
	if !found {
		return NotFound
	}
	if caller != owner {
		return Forbidden
	}
	return Permitted
}

// AuthorizeResource is Authorize for a resolved resource pointer, which may be nil.
func AuthorizeResource[T interface {
	*M
	Owned
}, M any](caller uuid.UUID, resource T) Decision {
	if resource == nil {
		return NotFound
	}
	return Authorize(caller, resource.OwnerID(), true)
}
