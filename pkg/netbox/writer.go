package netbox

import "context"

// Kind names a record type for bulk deletion and counting
type Kind string

const (
	KindCircuitTermination Kind = "circuit_terminations"
	KindCircuit            Kind = "circuits"
	KindCircuitType        Kind = "circuit_types"
	KindProvider           Kind = "providers"
	KindCable              Kind = "cables"
	KindIPAddress          Kind = "ip_addresses"
	KindVMInterface        Kind = "vm_interfaces"
	KindInterface          Kind = "interfaces"
	KindVirtualMachine     Kind = "virtual_machines"
	KindDevice             Kind = "devices"
	KindCluster            Kind = "clusters"
	KindRack               Kind = "racks"
	KindPrefix             Kind = "prefixes"
	KindVLAN               Kind = "vlans"
	KindVLANGroup          Kind = "vlan_groups"
	KindSite               Kind = "sites"
	KindClusterGroup       Kind = "cluster_groups"
	KindClusterType        Kind = "cluster_types"
	KindDeviceType         Kind = "device_types"
	KindRole               Kind = "device_roles"
	KindManufacturer       Kind = "manufacturers"
	KindTenant             Kind = "tenants"
	KindTenantGroup        Kind = "tenant_groups"
)

// DeletionOrder lists kinds so that every record is deleted before the
// records it references.
var DeletionOrder = []Kind{
	KindCircuitTermination,
	KindCircuit,
	KindCircuitType,
	KindProvider,
	KindCable,
	KindIPAddress,
	KindVMInterface,
	KindInterface,
	KindVirtualMachine,
	KindDevice,
	KindCluster,
	KindRack,
	KindPrefix,
	KindVLAN,
	KindVLANGroup,
	KindSite,
	KindClusterGroup,
	KindClusterType,
	KindDeviceType,
	KindRole,
	KindManufacturer,
	KindTenant,
	KindTenantGroup,
}

// SiteScoped reports whether records of kind k belong to a site. Deletion
// prefixes match the owning site's name for these kinds, and the record's
// own name for every other kind.
func (k Kind) SiteScoped() bool {
	switch k {
	case KindCable, KindIPAddress, KindInterface, KindDevice, KindRack, KindPrefix, KindVLAN, KindCircuitTermination,
		KindVMInterface, KindVirtualMachine:
		return true
	}
	return false
}

// Ref identifies a record returned from a get-or-create call
type Ref struct {
	ID      int64
	Created bool
}

type SiteSpec struct {
	Name            string
	Slug            string
	Status          string
	PhysicalAddress string
	TenantID        *int64
}

// ClusterSpec names a virtualization cluster. Clusters are not tied to a site.
type ClusterSpec struct {
	Name     string
	TypeID   int64
	GroupID  *int64
	TenantID *int64
}

type VirtualMachineSpec struct {
	Name      string
	ClusterID int64
	SiteID    *int64
	TenantID  *int64
	Status    string
}

type DeviceSpec struct {
	Name         string
	DeviceTypeID int64
	RoleID       int64
	SiteID       int64
	RackID       *int64
	Position     *float64
	TenantID     *int64
	Status       string
}

type InterfaceSpec struct {
	DeviceID int64
	Name     string
	Type     string
	Enabled  bool
	MgmtOnly bool
}

type VLANSpec struct {
	VID     int
	Name    string
	GroupID *int64
	SiteID  *int64
}

type PrefixSpec struct {
	Prefix      string
	VLANID      *int64
	SiteID      *int64
	Description string
}

type CableSpec struct {
	Type       string
	Status     string
	Label      string
	Length     *float64
	LengthUnit string
}

// Writer performs get-or-create writes keyed by each record's natural key
// (name, slug, or name within its parent). Existing records are returned
// unchanged.
type Writer interface {
	EnsureTenantGroup(ctx context.Context, name, slug string) (Ref, error)
	EnsureTenant(ctx context.Context, name, slug string, groupID *int64) (Ref, error)
	EnsureManufacturer(ctx context.Context, name, slug string) (Ref, error)
	EnsureDeviceType(ctx context.Context, manufacturerID int64, model, slug, partNumber string) (Ref, error)
	EnsureRole(ctx context.Context, name, slug, color string) (Ref, error)
	EnsureSite(ctx context.Context, spec SiteSpec) (Ref, error)
	EnsureRack(ctx context.Context, siteID int64, name string) (Ref, error)
	EnsureVLANGroup(ctx context.Context, name, slug string) (Ref, error)
	EnsureVLAN(ctx context.Context, spec VLANSpec) (Ref, error)
	EnsurePrefix(ctx context.Context, spec PrefixSpec) (Ref, error)
	// EnsureDevice matches an existing device by name within its site
	EnsureDevice(ctx context.Context, spec DeviceSpec) (Ref, error)
	EnsureInterface(ctx context.Context, spec InterfaceSpec) (Ref, error)
	EnsureIPAddress(ctx context.Context, address string, interfaceID *int64) (Ref, error)
	SetPrimaryIP4(ctx context.Context, deviceID, ipID int64) error
	EnsureClusterType(ctx context.Context, name, slug string) (Ref, error)
	EnsureClusterGroup(ctx context.Context, name, slug string) (Ref, error)
	EnsureCluster(ctx context.Context, spec ClusterSpec) (Ref, error)
	// EnsureVirtualMachine matches an existing VM by name within its cluster
	EnsureVirtualMachine(ctx context.Context, spec VirtualMachineSpec) (Ref, error)
	EnsureVMInterface(ctx context.Context, vmID int64, name string) (Ref, error)
	EnsureProvider(ctx context.Context, name, slug string) (Ref, error)
	EnsureCircuitType(ctx context.Context, name, slug string) (Ref, error)
	// FindInterface returns ErrNotFound when the device has no such interface
	FindInterface(ctx context.Context, deviceID int64, name string) (int64, error)
	// CreateCable connects two interfaces. Either interface already being
	// cabled is an error.
	CreateCable(ctx context.Context, aInterfaceID, bInterfaceID int64, spec CableSpec) (int64, error)
	// Delete removes every record of kind whose scope name starts with
	// prefix; an empty prefix removes all records of that kind.
	Delete(ctx context.Context, kind Kind, prefix string) (int64, error)
}
