package seed

import "fmt"

const (
	// DemoSitePrefix starts the name of every demo site
	DemoSitePrefix = "Demo Site"
	// DemoPrefix starts the name of demo tenants, tenant groups, VLAN groups
	// and clusters
	DemoPrefix = "Demo"

	MaxDemoSites          = 250
	MaxDemoDevicesPerSite = 250

	// DemoVMsPerSite is how many virtual machines each demo cluster holds
	DemoVMsPerSite = 5
)

type demoKind struct {
	prefix string
	model  string
	role   string
}

// demoKinds is the round-robin order devices are created in
var demoKinds = []demoKind{
	{"sw", "Catalyst 9300", "Switch"},
	{"rtr", "ISR 4331", "Router"},
	{"ap", "AP-515", "Access Point"},
	{"srv", "PowerEdge R640", "Server"},
}

// DemoPlan builds the demo network: sites "Demo Site N" each with a rack, a
// VLAN, a /24 prefix and devicesPerSite devices cycling through switch,
// router, access point and server. Every device has eth1 and eth2 and a
// management address 10.N.0.k/24 on eth1. Within a site the k-th switch
// connects to the k-th router on eth1, and consecutive switches pair up on
// eth2.
//
// Each site also gets a cluster "Demo Cluster N" of DemoVMsPerSite virtual
// machines with eth1 and eth2. A provider and circuit type are catalogued
// but no circuits are created.
func DemoPlan(sites, devicesPerSite int) (*Plan, error) {
	if sites < 1 || sites > MaxDemoSites {
		return nil, fmt.Errorf("sites must be between 1 and %d, got %d", MaxDemoSites, sites)
	}
	if devicesPerSite < 1 || devicesPerSite > MaxDemoDevicesPerSite {
		return nil, fmt.Errorf("devices per site must be between 1 and %d, got %d", MaxDemoDevicesPerSite, devicesPerSite)
	}

	p := &Plan{
		Name:         "demo",
		TenantGroups: []TenantGroup{{Name: "Demo Tenants", Slug: "demo-tenants"}},
		Tenants:      []Tenant{{Name: "Demo Tenant", Slug: "demo-tenant", Group: "Demo Tenants"}},
		Manufacturers: []Manufacturer{
			{Name: "Cisco", Slug: "cisco"},
			{Name: "Juniper", Slug: "juniper"},
			{Name: "Aruba", Slug: "aruba"},
			{Name: "Dell", Slug: "dell"},
		},
		DeviceTypes: []DeviceType{
			{Manufacturer: "Cisco", Model: "Catalyst 9300", Slug: "catalyst-9300", PartNumber: "C9300-48P"},
			{Manufacturer: "Cisco", Model: "ISR 4331", Slug: "isr-4331", PartNumber: "ISR4331"},
			{Manufacturer: "Aruba", Model: "AP-515", Slug: "ap-515", PartNumber: "AP-515"},
			{Manufacturer: "Dell", Model: "PowerEdge R640", Slug: "r640", PartNumber: "R640"},
		},
		Roles: []Role{
			{Name: "Switch", Slug: "switch", Color: "2196f3"},
			{Name: "Router", Slug: "router", Color: "f44336"},
			{Name: "Access Point", Slug: "ap", Color: "4caf50"},
			{Name: "Server", Slug: "server", Color: "9c27b0"},
		},
		VLANGroups:    []VLANGroup{{Name: "Demo VLANs", Slug: "demo-vlans"}},
		ClusterTypes:  []ClusterType{{Name: "VMware", Slug: "vmware"}},
		ClusterGroups: []ClusterGroup{{Name: "Demo Clusters", Slug: "demo-clusters"}},
		Providers:     []Provider{{Name: "Demo Provider", Slug: "demo-provider"}},
		CircuitTypes:  []CircuitType{{Name: "Internet", Slug: "internet"}},
	}

	for n := 1; n <= sites; n++ {
		site := fmt.Sprintf("%s %d", DemoSitePrefix, n)
		vlan := fmt.Sprintf("VLAN%d", 100+n)
		p.Sites = append(p.Sites, Site{Name: site, Slug: fmt.Sprintf("demo-site-%d", n), Tenant: "Demo Tenant"})
		p.Racks = append(p.Racks, Rack{Site: site, Name: "Rack 1"})
		p.VLANs = append(p.VLANs, VLAN{VID: 100 + n, Name: vlan, Group: "Demo VLANs", Site: site})
		p.Prefixes = append(p.Prefixes, Prefix{Prefix: fmt.Sprintf("10.%d.0.0/24", n), VLAN: vlan, Site: site})

		cluster := fmt.Sprintf("%s Cluster %d", DemoPrefix, n)
		p.Clusters = append(p.Clusters, Cluster{Name: cluster, Type: "VMware", Group: "Demo Clusters", Tenant: "Demo Tenant"})
		for v := 1; v <= DemoVMsPerSite; v++ {
			p.VirtualMachines = append(p.VirtualMachines, VirtualMachine{
				Name:       fmt.Sprintf("vm%d-%d", n, v),
				Cluster:    cluster,
				Site:       site,
				Tenant:     "Demo Tenant",
				Interfaces: []string{"eth1", "eth2"},
			})
		}

		byKind := make(map[string][]string)
		for i := 0; i < devicesPerSite; i++ {
			kind := demoKinds[i%len(demoKinds)]
			name := fmt.Sprintf("%s%d-%d", kind.prefix, n, i/len(demoKinds)+1)
			byKind[kind.prefix] = append(byKind[kind.prefix], name)
			p.Devices = append(p.Devices, Device{
				Name:   name,
				Model:  kind.model,
				Role:   kind.role,
				Site:   site,
				Rack:   "Rack 1",
				Tenant: "Demo Tenant",
				Interfaces: []Interface{
					{Name: "eth1", Type: "1000base-t"},
					{Name: "eth2", Type: "1000base-t"},
				},
				MgmtInterface: "eth1",
				MgmtIP:        fmt.Sprintf("10.%d.0.%d/24", n, i+1),
			})
		}

		switches, routers := byKind["sw"], byKind["rtr"]
		for k := 0; k < min(len(switches), len(routers)); k++ {
			p.Cables = append(p.Cables, Cable{
				ADevice: switches[k], AInterface: "eth1",
				BDevice: routers[k], BInterface: "eth1",
				Type: "cat6", Length: 5, LengthUnit: "m",
			})
		}
		for k := 0; k+1 < len(switches); k += 2 {
			p.Cables = append(p.Cables, Cable{
				ADevice: switches[k], AInterface: "eth2",
				BDevice: switches[k+1], BInterface: "eth2",
				Type: "cat6", Length: 3, LengthUnit: "m",
			})
		}
	}
	return p, nil
}
