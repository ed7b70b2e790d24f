package netbox

// Dataset is a flat, foreign-key-shaped copy of the NetBox tables netcanvas
// uses. It backs MemoryStore and is the payload of snapshot files.
type Dataset struct {
	Shape               SchemaShape          `json:"shape"`
	TenantGroups        []TenantGroupRow     `json:"tenant_groups,omitempty"`
	Tenants             []TenantRow          `json:"tenants,omitempty"`
	Sites               []Site               `json:"sites"`
	SiteTenants         map[int64]int64      `json:"site_tenants,omitempty"`
	Racks               []RackRow            `json:"racks,omitempty"`
	Manufacturers       []Manufacturer       `json:"manufacturers"`
	DeviceTypes         []DeviceTypeRow      `json:"device_types"`
	Roles               []DeviceRole         `json:"roles"`
	Devices             []DeviceRow          `json:"devices"`
	Interfaces          []InterfaceRow       `json:"interfaces"`
	IPAddresses         []IPAddressRow       `json:"ip_addresses,omitempty"`
	Cables              []CableRow           `json:"cables"`
	Terminations        []TerminationRow     `json:"terminations"`
	VLANGroups          []VLANGroupRow       `json:"vlan_groups,omitempty"`
	VLANs               []VLANRow            `json:"vlans,omitempty"`
	Prefixes            []PrefixRow          `json:"prefixes,omitempty"`
	CircuitTerminations []CircuitTermination `json:"circuit_terminations,omitempty"`
	Providers           []ProviderRow        `json:"providers,omitempty"`
	CircuitTypes        []CircuitTypeRow     `json:"circuit_types,omitempty"`
	Circuits            []CircuitRow         `json:"circuits,omitempty"`
	ClusterTypes        []ClusterTypeRow     `json:"cluster_types,omitempty"`
	ClusterGroups       []ClusterGroupRow    `json:"cluster_groups,omitempty"`
	Clusters            []ClusterRow         `json:"clusters,omitempty"`
	VirtualMachines     []VirtualMachineRow  `json:"virtual_machines,omitempty"`
	VMInterfaces        []VMInterfaceRow     `json:"vm_interfaces,omitempty"`
}

type TenantGroupRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TenantRow struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	GroupID *int64 `json:"group_id,omitempty"`
}

type RackRow struct {
	ID     int64  `json:"id"`
	SiteID int64  `json:"site_id"`
	Name   string `json:"name"`
}

type DeviceTypeRow struct {
	ID             int64  `json:"id"`
	ManufacturerID int64  `json:"manufacturer_id"`
	Model          string `json:"model"`
	Slug           string `json:"slug"`
	PartNumber     string `json:"part_number,omitempty"`
}

type DeviceRow struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	SiteID       *int64   `json:"site_id,omitempty"`
	DeviceTypeID *int64   `json:"device_type_id,omitempty"`
	RoleID       *int64   `json:"role_id,omitempty"`
	RackID       *int64   `json:"rack_id,omitempty"`
	Position     *float64 `json:"position,omitempty"`
	TenantID     *int64   `json:"tenant_id,omitempty"`
	PrimaryIP4ID *int64   `json:"primary_ip4_id,omitempty"`
	PrimaryIP6ID *int64   `json:"primary_ip6_id,omitempty"`
}

type InterfaceRow struct {
	ID       int64  `json:"id"`
	DeviceID int64  `json:"device_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Enabled  bool   `json:"enabled"`
	MgmtOnly bool   `json:"mgmt_only,omitempty"`
	CableID  *int64 `json:"cable_id,omitempty"`
}

type IPAddressRow struct {
	ID          int64  `json:"id"`
	Address     string `json:"address"`
	Status      string `json:"status"`
	InterfaceID *int64 `json:"interface_id,omitempty"`
}

type CableRow struct {
	ID         int64    `json:"id"`
	Type       string   `json:"type"`
	Status     string   `json:"status"`
	Label      string   `json:"label,omitempty"`
	Length     *float64 `json:"length,omitempty"`
	LengthUnit string   `json:"length_unit,omitempty"`
}

// TerminationRow is a dcim_cabletermination row. DeviceID is NetBox's
// cached owning device and may be unset.
type TerminationRow struct {
	ID         int64    `json:"id"`
	CableID    int64    `json:"cable_id"`
	End        CableEnd `json:"cable_end"`
	ObjectType string   `json:"object_type"`
	ObjectID   int64    `json:"object_id"`
	DeviceID   *int64   `json:"device_id,omitempty"`
}

type VLANGroupRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type VLANRow struct {
	ID      int64  `json:"id"`
	VID     int    `json:"vid"`
	Name    string `json:"name"`
	GroupID *int64 `json:"group_id,omitempty"`
	SiteID  *int64 `json:"site_id,omitempty"`
}

type PrefixRow struct {
	ID          int64  `json:"id"`
	Prefix      string `json:"prefix"`
	VLANID      *int64 `json:"vlan_id,omitempty"`
	SiteID      *int64 `json:"site_id,omitempty"`
	Description string `json:"description,omitempty"`
}

type ProviderRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type CircuitTypeRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type CircuitRow struct {
	ID         int64  `json:"id"`
	CID        string `json:"cid"`
	ProviderID int64  `json:"provider_id"`
	TypeID     int64  `json:"type_id"`
	Status     string `json:"status"`
}

type ClusterTypeRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ClusterGroupRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ClusterRow struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	TypeID   int64  `json:"type_id"`
	GroupID  *int64 `json:"group_id,omitempty"`
	TenantID *int64 `json:"tenant_id,omitempty"`
	Status   string `json:"status"`
}

type VirtualMachineRow struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	ClusterID *int64 `json:"cluster_id,omitempty"`
	SiteID    *int64 `json:"site_id,omitempty"`
	TenantID  *int64 `json:"tenant_id,omitempty"`
}

type VMInterfaceRow struct {
	ID               int64  `json:"id"`
	VirtualMachineID int64  `json:"virtual_machine_id"`
	Name             string `json:"name"`
	Enabled          bool   `json:"enabled"`
}

// Clone returns a deep copy. Row pointers are shared; rows are treated as
// immutable values and replaced rather than mutated in place.
func (d *Dataset) Clone() *Dataset {
	c := *d
	c.TenantGroups = append([]TenantGroupRow(nil), d.TenantGroups...)
	c.Tenants = append([]TenantRow(nil), d.Tenants...)
	c.Sites = append([]Site(nil), d.Sites...)
	c.Racks = append([]RackRow(nil), d.Racks...)
	c.Manufacturers = append([]Manufacturer(nil), d.Manufacturers...)
	c.DeviceTypes = append([]DeviceTypeRow(nil), d.DeviceTypes...)
	c.Roles = append([]DeviceRole(nil), d.Roles...)
	c.Devices = append([]DeviceRow(nil), d.Devices...)
	c.Interfaces = append([]InterfaceRow(nil), d.Interfaces...)
	c.IPAddresses = append([]IPAddressRow(nil), d.IPAddresses...)
	c.Cables = append([]CableRow(nil), d.Cables...)
	c.Terminations = append([]TerminationRow(nil), d.Terminations...)
	c.VLANGroups = append([]VLANGroupRow(nil), d.VLANGroups...)
	c.VLANs = append([]VLANRow(nil), d.VLANs...)
	c.Prefixes = append([]PrefixRow(nil), d.Prefixes...)
	c.CircuitTerminations = append([]CircuitTermination(nil), d.CircuitTerminations...)
	c.Providers = append([]ProviderRow(nil), d.Providers...)
	c.CircuitTypes = append([]CircuitTypeRow(nil), d.CircuitTypes...)
	c.Circuits = append([]CircuitRow(nil), d.Circuits...)
	c.ClusterTypes = append([]ClusterTypeRow(nil), d.ClusterTypes...)
	c.ClusterGroups = append([]ClusterGroupRow(nil), d.ClusterGroups...)
	c.Clusters = append([]ClusterRow(nil), d.Clusters...)
	c.VirtualMachines = append([]VirtualMachineRow(nil), d.VirtualMachines...)
	c.VMInterfaces = append([]VMInterfaceRow(nil), d.VMInterfaces...)
	if d.SiteTenants != nil {
		c.SiteTenants = make(map[int64]int64, len(d.SiteTenants))
		for k, v := range d.SiteTenants {
			c.SiteTenants[k] = v
		}
	}
	return &c
}

// Summary returns per-kind row counts
func (d *Dataset) Summary() map[Kind]int {
	return map[Kind]int{
		KindTenantGroup:        len(d.TenantGroups),
		KindTenant:             len(d.Tenants),
		KindSite:               len(d.Sites),
		KindRack:               len(d.Racks),
		KindManufacturer:       len(d.Manufacturers),
		KindDeviceType:         len(d.DeviceTypes),
		KindRole:               len(d.Roles),
		KindDevice:             len(d.Devices),
		KindInterface:          len(d.Interfaces),
		KindIPAddress:          len(d.IPAddresses),
		KindCable:              len(d.Cables),
		KindVLANGroup:          len(d.VLANGroups),
		KindVLAN:               len(d.VLANs),
		KindPrefix:             len(d.Prefixes),
		KindCircuitTermination: len(d.CircuitTerminations),
		KindProvider: len(d.Providers),
		KindCircuitType: len(d.CircuitTypes),
		KindCircuit: len(d.Circuits),
		KindClusterType: len(d.ClusterTypes),
		KindClusterGroup: len(d.ClusterGroups),
		KindCluster: len(d.Clusters),
		KindVirtualMachine: len(d.VirtualMachines),
		KindVMInterface: len(d.VMInterfaces),
	}
}
