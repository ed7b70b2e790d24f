// Package netbox reads and writes the NetBox records netcanvas builds its
// topology from: devices, sites, interfaces, cables and their terminations.
package netbox

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrReadOnly is returned by stores that cannot run write transactions
	ErrReadOnly = errors.New("store is read-only")
	// ErrCabled is returned when a cable would land on an interface that
	// already has one
	ErrCabled = errors.New("interface already cabled")
)

type Site struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Status          string `json:"status,omitempty"`
	PhysicalAddress string `json:"physical_address,omitempty"`
}

type Manufacturer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type DeviceType struct {
	ID           int64         `json:"id"`
	Model        string        `json:"model"`
	Slug         string        `json:"slug"`
	PartNumber   string        `json:"part_number,omitempty"`
	Manufacturer *Manufacturer `json:"manufacturer,omitempty"`
}

type DeviceRole struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color,omitempty"`
}

// IPAddress holds an address in CIDR notation, e.g. 10.1.10.10/24
type IPAddress struct {
	ID      int64  `json:"id"`
	Address string `json:"address"`
}

// Host returns the address without its prefix length
func (ip *IPAddress) Host() string {
	if ip == nil {
		return ""
	}
	host, _, _ := strings.Cut(ip.Address, "/")
	return host
}

// Device is a device record with its related objects joined in. Related
// pointers are nil when the reference is unset or dangling.
type Device struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Status         string      `json:"status"`
	Site           *Site       `json:"site,omitempty"`
	DeviceType     *DeviceType `json:"device_type,omitempty"`
	Role           *DeviceRole `json:"role,omitempty"`
	PrimaryIP4     *IPAddress  `json:"primary_ip4,omitempty"`
	PrimaryIP6     *IPAddress  `json:"primary_ip6,omitempty"`
	InterfaceCount int         `json:"interface_count"`
}

// PrimaryIP returns the primary IPv4 host address, falling back to IPv6
func (d *Device) PrimaryIP() string {
	if d.PrimaryIP4 != nil {
		return d.PrimaryIP4.Host()
	}
	return d.PrimaryIP6.Host()
}

// DisplayName mirrors NetBox's device display: the name, or a placeholder
// built from the model and id for unnamed devices.
func (d *Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.DeviceType != nil {
		return fmt.Sprintf("%s (%d)", d.DeviceType.Model, d.ID)
	}
	return fmt.Sprintf("Device %d", d.ID)
}

type Interface struct {
	ID         int64  `json:"id"`
	DeviceID   int64  `json:"device_id"`
	DeviceName string `json:"device_name"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Enabled    bool   `json:"enabled"`
	MgmtOnly   bool   `json:"mgmt_only,omitempty"`
	CableID    *int64 `json:"cable_id,omitempty"`
}

// Connected reports whether a cable is attached
func (i *Interface) Connected() bool {
	return i.CableID != nil
}

// CableEnd names a cable side
type CableEnd string

const (
	EndA CableEnd = "A"
	EndB CableEnd = "B"
)

// Cable is a physical link with its A- and B-side terminations loaded
type Cable struct {
	ID         int64         `json:"id"`
	Type       string        `json:"type"`
	Status     string        `json:"status"`
	Label      string        `json:"label,omitempty"`
	Length     *float64      `json:"length,omitempty"`
	LengthUnit string        `json:"length_unit,omitempty"`
	A          []Termination `json:"a_terminations"`
	B          []Termination `json:"b_terminations"`
}

// Termination object types as stored in NetBox's content type table
const (
	ObjectInterface          = "dcim.interface"
	ObjectFrontPort          = "dcim.frontport"
	ObjectRearPort           = "dcim.rearport"
	ObjectConsolePort        = "dcim.consoleport"
	ObjectConsoleServerPort  = "dcim.consoleserverport"
	ObjectPowerPort          = "dcim.powerport"
	ObjectPowerOutlet        = "dcim.poweroutlet"
	ObjectPowerFeed          = "dcim.powerfeed"
	ObjectCircuitTermination = "circuits.circuittermination"
	ObjectDevice             = "dcim.device"
)

// DeviceRef is the id and name of a device referenced from elsewhere
type DeviceRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Terminable is the object a termination points at
type Terminable struct {
	ID     int64      `json:"id"`
	Type   string     `json:"type"`
	Name   string     `json:"name"`
	Device *DeviceRef `json:"device,omitempty"`
}

// Termination links one side of a cable to a terminable object. Depending
// on the schema shape the store fills different fields: Object for the
// linked object, Device for a device cached on the termination itself, and
// Name when the record is the interface row itself. Err is set when the
// store failed to load what the termination references.
type Termination struct {
	ID         int64       `json:"id"`
	ObjectType string      `json:"object_type"`
	ObjectID   int64       `json:"object_id"`
	Name       string      `json:"name,omitempty"`
	Device     *DeviceRef  `json:"device,omitempty"`
	Object     *Terminable `json:"object,omitempty"`
	Err        error       `json:"-"`
}

// Describe renders a termination for diagnostics
func (t Termination) Describe() string {
	switch {
	case t.Err != nil:
		return fmt.Sprintf("%s #%d: %v", t.ObjectType, t.ObjectID, t.Err)
	case t.Object != nil && t.Object.Device != nil:
		return fmt.Sprintf("%s:%s", t.Object.Device.Name, t.Object.Name)
	case t.Object != nil:
		return fmt.Sprintf("%s %s (no device)", t.Object.Type, t.Object.Name)
	case t.Device != nil:
		return fmt.Sprintf("%s:%s", t.Device.Name, t.Name)
	default:
		return fmt.Sprintf("%s #%d (unlinked)", t.ObjectType, t.ObjectID)
	}
}

// CircuitTermination is one side of a provider circuit
type CircuitTermination struct {
	ID        int64  `json:"id"`
	CircuitID int64  `json:"circuit_id"`
	Term      string `json:"term_side"`
}

// RecordError describes a record that was skipped or degraded while loading
type RecordError struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
	Err  string `json:"error"`
}

func (e RecordError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Kind, e.ID, e.Err)
}
