package topology

import (
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

// Endpoint is one resolved side of a cable
type Endpoint struct {
	DeviceID   int64
	DeviceName string
	Interface  string
}

// EndpointResolver recovers the device behind a cable termination. Each
// implementation understands one way NetBox has stored terminations.
type EndpointResolver interface {
	Resolve(t netbox.Termination) (Endpoint, bool)
}

// linkedObjectResolver follows the termination's object (interface, port)
// to the device that owns it.
type linkedObjectResolver struct{}

func (linkedObjectResolver) Resolve(t netbox.Termination) (Endpoint, bool) {
	if t.Object == nil || t.Object.Device == nil {
		return Endpoint{}, false
	}
	return Endpoint{DeviceID: t.Object.Device.ID, DeviceName: t.Object.Device.Name, Interface: t.Object.Name}, true
}

// directDeviceResolver uses the device cached on the termination itself
type directDeviceResolver struct{}

func (directDeviceResolver) Resolve(t netbox.Termination) (Endpoint, bool) {
	if t.Device == nil {
		return Endpoint{}, false
	}
	return Endpoint{DeviceID: t.Device.ID, DeviceName: t.Device.Name, Interface: t.Name}, true
}

// interfaceShapedResolver handles legacy records where the termination is
// the interface row.
type interfaceShapedResolver struct{}

func (interfaceShapedResolver) Resolve(t netbox.Termination) (Endpoint, bool) {
	if t.ID == 0 || t.Device == nil {
		return Endpoint{}, false
	}
	return Endpoint{DeviceID: t.Device.ID, DeviceName: t.Device.Name, Interface: t.Name}, true
}

// Chain tries each resolver in order
type Chain []EndpointResolver

func (c Chain) Resolve(t netbox.Termination) (Endpoint, bool) {
	if t.Err != nil {
		return Endpoint{}, false
	}
	for _, r := range c {
		if ep, ok := r.Resolve(t); ok {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// ResolverFor returns the resolver chain for a schema shape
func ResolverFor(shape netbox.SchemaShape) Chain {
	switch shape {
	case netbox.ShapeCableTermination:
		return Chain{linkedObjectResolver{}, directDeviceResolver{}}
	case netbox.ShapeLegacy:
		return Chain{interfaceShapedResolver{}}
	default:
		return Chain{linkedObjectResolver{}, directDeviceResolver{}, interfaceShapedResolver{}}
	}
}

// CableOutcome records what happened to one cable during resolution
type CableOutcome string

const (
	OutcomeResolved    CableOutcome = "resolved"
	OutcomeSelfLoop    CableOutcome = "self_loop"
	OutcomeUnresolvedA CableOutcome = "unresolved_a"
	OutcomeUnresolvedB CableOutcome = "unresolved_b"
	OutcomeLookupError CableOutcome = "lookup_error"
	OutcomeOutsideSet  CableOutcome = "outside_set"
)

// Outcomes lists every CableOutcome
var Outcomes = []CableOutcome{
	OutcomeResolved,
	OutcomeSelfLoop,
	OutcomeUnresolvedA,
	OutcomeUnresolvedB,
	OutcomeLookupError,
	OutcomeOutsideSet,
}

// CableResolver turns cables into device-to-device connections
type CableResolver struct {
	chain  Chain
	strict bool
	set    map[int64]bool
}

// NewCableResolver builds a resolver. When strict is set, only cables whose
// both ends lie in devices are connected.
func NewCableResolver(chain Chain, devices []int64, strict bool) *CableResolver {
	set := make(map[int64]bool, len(devices))
	for _, id := range devices {
		set[id] = true
	}
	return &CableResolver{chain: chain, strict: strict, set: set}
}

// side resolves the first usable termination of one cable end. In strict
// mode terminations outside the device set are passed over; outside
// reports that at least one was seen.
func (r *CableResolver) side(terms []netbox.Termination) (ep Endpoint, ok, outside, errored bool) {
	for _, t := range terms {
		if t.Err != nil {
			errored = true
			continue
		}
		got, resolved := r.chain.Resolve(t)
		if !resolved {
			continue
		}
		if r.strict && !r.set[got.DeviceID] {
			outside = true
			continue
		}
		return got, true, outside, errored
	}
	return Endpoint{}, false, outside, errored
}

// Resolve returns the connection for a cable, or false with the reason it
// produced none.
func (r *CableResolver) Resolve(c netbox.Cable) (Connection, CableOutcome, bool) {
	a, aok, aout, aerr := r.side(c.A)
	b, bok, bout, berr := r.side(c.B)

	switch {
	case aerr || berr:
		return Connection{}, OutcomeLookupError, false
	case !aok && aout, !bok && bout:
		return Connection{}, OutcomeOutsideSet, false
	case !aok:
		return Connection{}, OutcomeUnresolvedA, false
	case !bok:
		return Connection{}, OutcomeUnresolvedB, false
	case a.DeviceID == b.DeviceID:
		return Connection{}, OutcomeSelfLoop, false
	}

	conn := Connection{
		ID:         cableKey(c.ID),
		CableID:    c.ID,
		Source:     a.DeviceID,
		Target:     b.DeviceID,
		Type:       c.Type,
		Status:     c.Status,
		AInterface: a.Interface,
		BInterface: b.Interface,
	}
	if conn.Type == "" {
		conn.Type = "ethernet"
	}
	if conn.Status == "" {
		conn.Status = "connected"
	}
	if c.Length != nil && *c.Length != 0 {
		l := *c.Length
		conn.Length = &l
	}
	return conn, OutcomeResolved, true
}

// Resolution is the result of resolving a batch of cables
type Resolution struct {
	Connections []Connection
	Outcomes    map[CableOutcome]int
	Dropped     []DroppedCable
}

// DroppedCable is a cable that produced no connection
type DroppedCable struct {
	CableID int64        `json:"cable_id"`
	Outcome CableOutcome `json:"outcome"`
}

// ResolveAll resolves every cable in order. Duplicate cables between the
// same pair of devices yield separate connections.
func (r *CableResolver) ResolveAll(cables []netbox.Cable) Resolution {
	res := Resolution{Outcomes: make(map[CableOutcome]int)}
	for _, c := range cables {
		conn, outcome, ok := r.Resolve(c)
		res.Outcomes[outcome]++
		if !ok {
			res.Dropped = append(res.Dropped, DroppedCable{CableID: c.ID, Outcome: outcome})
			continue
		}
		res.Connections = append(res.Connections, conn)
	}
	return res
}
