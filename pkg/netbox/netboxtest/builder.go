// Package netboxtest builds NetBox datasets for tests.
package netboxtest

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

// Builder assembles a netbox.Dataset one record at a time. Manufacturers,
// device types and roles are created on first use.
type Builder struct {
	ds     netbox.Dataset
	roles  map[string]int64
	types  map[string]int64
	ifaces map[string]int64
	nextID int64
}

func New() *Builder {
	return &Builder{
		ds:     netbox.Dataset{Shape: netbox.ShapeCableTermination},
		roles:  make(map[string]int64),
		types:  make(map[string]int64),
		ifaces: make(map[string]int64),
	}
}

func (b *Builder) id() int64 {
	b.nextID++
	return b.nextID
}

// Legacy switches the dataset to the pre-3.3 termination layout
func (b *Builder) Legacy() *Builder {
	b.ds.Shape = netbox.ShapeLegacy
	return b
}

// Shape sets the dataset's schema shape
func (b *Builder) Shape(s netbox.SchemaShape) *Builder {
	b.ds.Shape = s
	return b
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
}

func (b *Builder) Site(name string) int64 {
	id := b.id()
	b.ds.Sites = append(b.ds.Sites, netbox.Site{ID: id, Name: name, Slug: slug(name), Status: "active"})
	return id
}

func (b *Builder) role(name string) *int64 {
	if name == "" {
		return nil
	}
	id, ok := b.roles[name]
	if !ok {
		id = b.id()
		b.roles[name] = id
		b.ds.Roles = append(b.ds.Roles, netbox.DeviceRole{ID: id, Name: name, Slug: slug(name), Color: "9e9e9e"})
	}
	return &id
}

func (b *Builder) deviceType(model string) *int64 {
	if model == "" {
		return nil
	}
	id, ok := b.types[model]
	if !ok {
		mfr := b.id()
		b.ds.Manufacturers = append(b.ds.Manufacturers, netbox.Manufacturer{ID: mfr, Name: "Vendor " + model, Slug: slug("vendor " + model)})
		id = b.id()
		b.types[model] = id
		b.ds.DeviceTypes = append(b.ds.DeviceTypes, netbox.DeviceTypeRow{ID: id, ManufacturerID: mfr, Model: model, Slug: slug(model)})
	}
	return &id
}

// Device adds an active device. A zero site leaves the device unsited; an
// empty role or model leaves that reference unset.
func (b *Builder) Device(name string, site int64, role, model string) int64 {
	id := b.id()
	row := netbox.DeviceRow{
		ID:           id,
		Name:         name,
		Status:       "active",
		RoleID:       b.role(role),
		DeviceTypeID: b.deviceType(model),
	}
	if site != 0 {
		s := site
		row.SiteID = &s
	}
	b.ds.Devices = append(b.ds.Devices, row)
	return id
}

// SetStatus changes a device's status
func (b *Builder) SetStatus(device int64, status string) {
	for i := range b.ds.Devices {
		if b.ds.Devices[i].ID == device {
			b.ds.Devices[i].Status = status
		}
	}
}

// SetPrimaryIP gives a device a primary address (v4 unless it contains ':')
func (b *Builder) SetPrimaryIP(device int64, address string) {
	ipID := b.id()
	b.ds.IPAddresses = append(b.ds.IPAddresses, netbox.IPAddressRow{ID: ipID, Address: address, Status: "active"})
	for i := range b.ds.Devices {
		if b.ds.Devices[i].ID != device {
			continue
		}
		if strings.Contains(address, ":") {
			b.ds.Devices[i].PrimaryIP6ID = &ipID
		} else {
			b.ds.Devices[i].PrimaryIP4ID = &ipID
		}
	}
}

// Interface returns the id of a device's interface, creating it if needed
func (b *Builder) Interface(device int64, name string) int64 {
	key := fmt.Sprintf("%d/%s", device, name)
	if id, ok := b.ifaces[key]; ok {
		return id
	}
	id := b.id()
	b.ifaces[key] = id
	b.ds.Interfaces = append(b.ds.Interfaces, netbox.InterfaceRow{
		ID: id, DeviceID: device, Name: name, Type: "1000base-t", Enabled: true,
	})
	return id
}

// Cable connects two device interfaces with one termination per side
func (b *Builder) Cable(aDevice int64, aIface string, bDevice int64, bIface string) int64 {
	a, z := b.Interface(aDevice, aIface), b.Interface(bDevice, bIface)
	id := b.CableRow("cat6", "connected")
	b.Terminate(id, netbox.EndA, netbox.ObjectInterface, a, &aDevice)
	b.Terminate(id, netbox.EndB, netbox.ObjectInterface, z, &bDevice)
	b.attach(a, id)
	b.attach(z, id)
	return id
}

// CableRow adds a cable with no terminations
func (b *Builder) CableRow(typ, status string) int64 {
	id := b.id()
	b.ds.Cables = append(b.ds.Cables, netbox.CableRow{ID: id, Type: typ, Status: status})
	return id
}

// SetLength records a cable length in metres
func (b *Builder) SetLength(cable int64, length float64) {
	for i := range b.ds.Cables {
		if b.ds.Cables[i].ID == cable {
			l := length
			b.ds.Cables[i].Length = &l
			b.ds.Cables[i].LengthUnit = "m"
		}
	}
}

// Terminate adds a raw termination row. device is the cached owning device
// and may be nil.
func (b *Builder) Terminate(cable int64, end netbox.CableEnd, objectType string, objectID int64, device *int64) int64 {
	id := b.id()
	var cached *int64
	if device != nil {
		d := *device
		cached = &d
	}
	b.ds.Terminations = append(b.ds.Terminations, netbox.TerminationRow{
		ID:         id,
		CableID:    cable,
		End:        end,
		ObjectType: objectType,
		ObjectID:   objectID,
		DeviceID:   cached,
	})
	return id
}

// CircuitTermination adds one side of a provider circuit
// Circuit adds an active circuit. Its provider and circuit type are
// created alongside it.
func (b *Builder) Circuit(cid string) int64 {
	provider, typ := b.id(), b.id()
	b.ds.Providers = append(b.ds.Providers, netbox.ProviderRow{ID: provider, Name: "Provider " + cid, Slug: slug("provider " + cid)})
	b.ds.CircuitTypes = append(b.ds.CircuitTypes, netbox.CircuitTypeRow{ID: typ, Name: "Type " + cid, Slug: slug("type " + cid)})
	id := b.id()
	b.ds.Circuits = append(b.ds.Circuits, netbox.CircuitRow{ID: id, CID: cid, ProviderID: provider, TypeID: typ, Status: "active"})
	return id
}

// Cluster adds a cluster in its own group and cluster type
func (b *Builder) Cluster(name string) int64 {
	typ, group := b.id(), b.id()
	b.ds.ClusterTypes = append(b.ds.ClusterTypes, netbox.ClusterTypeRow{ID: typ, Name: name + " type", Slug: slug(name + " type")})
	b.ds.ClusterGroups = append(b.ds.ClusterGroups, netbox.ClusterGroupRow{ID: group, Name: name + " group", Slug: slug(name + " group")})
	id := b.id()
	b.ds.Clusters = append(b.ds.Clusters, netbox.ClusterRow{ID: id, Name: name, TypeID: typ, GroupID: &group, Status: "active"})
	return id
}

// VirtualMachine adds an active VM with one interface per name. A zero site
// leaves the VM unsited.
func (b *Builder) VirtualMachine(name string, cluster, site int64, ifaces ...string) int64 {
	id := b.id()
	row := netbox.VirtualMachineRow{ID: id, Name: name, Status: "active", ClusterID: &cluster}
	if site != 0 {
		s := site
		row.SiteID = &s
	}
	b.ds.VirtualMachines = append(b.ds.VirtualMachines, row)
	for _, iface := range ifaces {
		b.ds.VMInterfaces = append(b.ds.VMInterfaces, netbox.VMInterfaceRow{ID: b.id(), VirtualMachineID: id, Name: iface, Enabled: true})
	}
	return id
}

func (b *Builder) CircuitTermination(circuit int64, side string) int64 {
	id := b.id()
	b.ds.CircuitTerminations = append(b.ds.CircuitTerminations, netbox.CircuitTermination{ID: id, CircuitID: circuit, Term: side})
	return id
}

func (b *Builder) attach(iface, cable int64) {
	for i := range b.ds.Interfaces {
		if b.ds.Interfaces[i].ID == iface {
			c := cable
			b.ds.Interfaces[i].CableID = &c
		}
	}
}

// Dataset returns a copy of the built dataset
func (b *Builder) Dataset() *netbox.Dataset {
	return b.ds.Clone()
}

// Store returns a MemoryStore over the built dataset
func (b *Builder) Store() *netbox.MemoryStore {
	return netbox.NewMemoryStore(&b.ds)
}

// Campus is a small two-site network: HQ with a core switch, an edge
// router, a firewall and a server; Branch with a switch and an access point.
// Cables: core-sw1<->edge-rtr1, core-sw1<->fw1, core-sw1<->srv1,
// edge-rtr1<->branch-sw1, branch-sw1<->branch-ap1.
type Campus struct {
	*Builder
	HQ, Branch                     int64
	CoreSwitch, Router, Firewall   int64
	Server, BranchSwitch, BranchAP int64
	Cables                         []int64
}

func NewCampus() *Campus {
	b := New()
	c := &Campus{Builder: b}
	c.HQ = b.Site("HQ")
	c.Branch = b.Site("Branch")
	c.CoreSwitch = b.Device("core-sw1", c.HQ, "Core Switch", "Catalyst 9500")
	c.Router = b.Device("edge-rtr1", c.HQ, "Router", "ASR 1001-X")
	c.Firewall = b.Device("fw1", c.HQ, "Firewall", "PA-3220")
	c.Server = b.Device("srv1", c.HQ, "Server", "PowerEdge R750")
	c.BranchSwitch = b.Device("branch-sw1", c.Branch, "Access Switch", "Catalyst 9200")
	c.BranchAP = b.Device("branch-ap1", c.Branch, "Access Point", "AP-515")
	b.SetPrimaryIP(c.CoreSwitch, "10.1.10.10/24")
	b.SetPrimaryIP(c.Router, "2001:db8::1/64")

	c.Cables = []int64{
		b.Cable(c.CoreSwitch, "Gi1/0/1", c.Router, "Gi0/0/0"),
		b.Cable(c.CoreSwitch, "Gi1/0/2", c.Firewall, "eth1"),
		b.Cable(c.CoreSwitch, "Gi1/0/3", c.Server, "eth0"),
		b.Cable(c.Router, "Gi0/0/1", c.BranchSwitch, "Gi1/0/24"),
		b.Cable(c.BranchSwitch, "Gi1/0/1", c.BranchAP, "eth0"),
	}
	b.SetLength(c.Cables[0], 5)
	return c
}
