package seed

import (
	"fmt"
	"strings"
)

type networkType struct {
	manufacturer string
	model        string
	slug         string
	role         string
	ports        int
}

var networkTypes = []networkType{
	{"Cisco", "Catalyst 9500-48Y4C", "catalyst-9500-48y4c", "Core Switch", 52},
	{"Cisco", "Catalyst 9400-SUP-1", "catalyst-9400-sup-1", "Distribution Switch", 48},
	{"Cisco", "Catalyst 9200-48T", "catalyst-9200-48t", "Access Switch", 48},
	{"Cisco", "Catalyst 9130AX", "catalyst-9130ax", "Access Point", 2},
	{"Cisco", "ISR 4451", "isr-4451", "Router", 4},
	{"Cisco", "ASR 1001-X", "asr-1001-x", "Router", 6},
	{"Cisco", "ASA 5525-X", "asa-5525-x", "Firewall", 8},
	{"Cisco", "WLC 9800-40", "wlc-9800-40", "Wireless Controller", 4},
	{"HPE", "Aruba 8325-48Y8C", "aruba-8325-48y8c", "Core Switch", 56},
	{"HPE", "Aruba 6300M-24G", "aruba-6300m-24g", "Access Switch", 24},
	{"Juniper", "EX4650-48Y", "ex4650-48y", "Distribution Switch", 48},
	{"Juniper", "SRX550", "srx550", "Firewall", 8},
	{"Dell", "PowerEdge R750", "poweredge-r750", "Server", 4},
	{"HPE", "ProLiant DL380 Gen10", "proliant-dl380-gen10", "Server", 4},
	{"Supermicro", "SuperServer 2049P", "superserver-2049p", "Hypervisor", 4},
	{"Ubiquiti", "UniFi AP AC Pro", "unifi-ap-ac-pro", "Access Point", 2},
	{"Ruckus", "R750", "ruckus-r750", "Access Point", 2},
	{"F5", "BIG-IP 2600", "big-ip-2600", "Load Balancer", 8},
	{"Cisco", "ASA 5516-X", "asa-5516-x", "VPN Gateway", 6},
	{"Fortinet", "FortiGate 100F", "fortigate-100f", "VPN Gateway", 8},
	{"Palo Alto", "PA-220", "pa-220", "VPN Gateway", 4},
	{"Dell", "PowerVault ME4024", "powervault-me4024", "Storage", 4},
}

var networkManufacturers = []string{
	"Cisco", "Juniper", "HPE", "Dell", "Arista", "Fortinet", "Palo Alto",
	"Ubiquiti", "Meraki", "Ruckus", "Extreme", "VMware", "Supermicro", "F5",
}

var networkRoles = []Role{
	{Name: "Core Switch", Slug: "core-switch", Color: "ff0000"},
	{Name: "Distribution Switch", Slug: "dist-switch", Color: "ff8000"},
	{Name: "Access Switch", Slug: "access-switch", Color: "ffff00"},
	{Name: "Router", Slug: "router", Color: "0080ff"},
	{Name: "Firewall", Slug: "firewall", Color: "ff0080"},
	{Name: "Load Balancer", Slug: "load-balancer", Color: "8000ff"},
	{Name: "Wireless Controller", Slug: "wireless-controller", Color: "00ff80"},
	{Name: "Access Point", Slug: "access-point", Color: "80ff00"},
	{Name: "Server", Slug: "server", Color: "00ffff"},
	{Name: "Storage", Slug: "storage", Color: "ff8080"},
	{Name: "Hypervisor", Slug: "hypervisor", Color: "8080ff"},
	{Name: "Management", Slug: "management", Color: "808080"},
	{Name: "VPN Gateway", Slug: "vpn-gateway", Color: "ff00ff"},
}

var networkSites = []Site{
	{Name: "Headquarters", Slug: "hq", Address: "New York, NY"},
	{Name: "Branch Office East", Slug: "branch-east", Address: "Boston, MA"},
	{Name: "Branch Office West", Slug: "branch-west", Address: "San Francisco, CA"},
	{Name: "Data Center Primary", Slug: "dc-primary", Address: "Dallas, TX"},
	{Name: "Data Center DR", Slug: "dc-dr", Address: "Chicago, IL"},
}

var networkRacks = []Rack{
	{Site: "Headquarters", Name: "Rack-HQ-01"},
	{Site: "Headquarters", Name: "Rack-HQ-02"},
	{Site: "Headquarters", Name: "Rack-HQ-03"},
	{Site: "Branch Office East", Name: "Rack-BE-01"},
	{Site: "Branch Office West", Name: "Rack-BW-01"},
	{Site: "Data Center Primary", Name: "Rack-DC1-A01"},
	{Site: "Data Center Primary", Name: "Rack-DC1-A02"},
	{Site: "Data Center Primary", Name: "Rack-DC1-B01"},
	{Site: "Data Center DR", Name: "Rack-DC2-A01"},
}

var networkVLANGroups = []VLANGroup{
	{Name: "Headquarters", Slug: "hq"},
	{Name: "Branch Offices", Slug: "branches"},
	{Name: "Data Centers", Slug: "datacenters"},
	{Name: "Wireless", Slug: "wireless"},
	{Name: "Management", Slug: "management"},
}

type networkVLAN struct {
	vid    int
	name   string
	group  string
	subnet string
}

var networkVLANs = []networkVLAN{
	{1, "Default", "Management", ""},
	{10, "Management", "Management", "10.1.10.0/24"},
	{20, "Network Management", "Management", "10.1.20.0/24"},
	{100, "HQ-Users-Floor1", "Headquarters", "10.1.100.0/24"},
	{101, "HQ-Users-Floor2", "Headquarters", "10.1.101.0/24"},
	{110, "HQ-Servers", "Headquarters", "10.1.110.0/24"},
	{120, "HQ-DMZ", "Headquarters", "10.1.120.0/24"},
	{200, "Branch-East-Users", "Branch Offices", "10.2.200.0/24"},
	{201, "Branch-East-Printers", "Branch Offices", "10.2.201.0/24"},
	{210, "Branch-West-Users", "Branch Offices", "10.2.210.0/24"},
	{211, "Branch-West-Printers", "Branch Offices", "10.2.211.0/24"},
	{300, "DC-Web-Servers", "Data Centers", "10.3.100.0/24"},
	{301, "DC-App-Servers", "Data Centers", "10.3.101.0/24"},
	{302, "DC-DB-Servers", "Data Centers", "10.3.102.0/24"},
	{310, "DC-Storage", "Data Centers", "10.3.110.0/24"},
	{320, "DC-Backup", "Data Centers", "10.3.120.0/24"},
	{400, "WiFi-Corporate", "Wireless", "10.4.100.0/24"},
	{401, "WiFi-Guest", "Wireless", "10.4.101.0/24"},
	{410, "WiFi-IoT", "Wireless", "10.4.110.0/24"},
}

type networkDevice struct {
	name     string
	model    string
	site     string
	rack     string
	position float64
	ip       string
}

var networkDevices = []networkDevice{
	{"HQ-CORE-SW-01", "Catalyst 9500-48Y4C", "Headquarters", "Rack-HQ-01", 1, "10.1.10.10"},
	{"HQ-CORE-SW-02", "Catalyst 9500-48Y4C", "Headquarters", "Rack-HQ-01", 2, "10.1.10.11"},
	{"HQ-DIST-SW-01", "Catalyst 9400-SUP-1", "Headquarters", "Rack-HQ-02", 1, "10.1.10.20"},
	{"HQ-DIST-SW-02", "Catalyst 9400-SUP-1", "Headquarters", "Rack-HQ-03", 1, "10.1.10.21"},
	{"HQ-ACC-SW-01", "Catalyst 9200-48T", "Headquarters", "Rack-HQ-02", 2, "10.1.10.30"},
	{"HQ-ACC-SW-02", "Catalyst 9200-48T", "Headquarters", "Rack-HQ-02", 3, "10.1.10.31"},
	{"HQ-ACC-SW-03", "Catalyst 9200-48T", "Headquarters", "Rack-HQ-03", 2, "10.1.10.32"},
	{"HQ-ACC-SW-04", "Catalyst 9200-48T", "Headquarters", "Rack-HQ-03", 3, "10.1.10.33"},
	{"HQ-RTR-01", "ASR 1001-X", "Headquarters", "Rack-HQ-01", 3, "10.1.10.1"},
	{"HQ-RTR-02", "ISR 4451", "Headquarters", "Rack-HQ-01", 4, "10.1.10.2"},
	{"HQ-FW-01", "ASA 5525-X", "Headquarters", "Rack-HQ-01", 5, "10.1.10.5"},
	{"HQ-LB-01", "BIG-IP 2600", "Headquarters", "Rack-HQ-01", 6, "10.1.10.50"},
	{"HQ-VPN-GW-01", "ASA 5516-X", "Headquarters", "Rack-HQ-01", 8, "10.1.10.100"},
	{"HQ-WLC-01", "WLC 9800-40", "Headquarters", "Rack-HQ-01", 7, "10.1.10.60"},
	{"HQ-AP-01", "Catalyst 9130AX", "Headquarters", "", 0, "10.4.100.10"},
	{"HQ-AP-02", "UniFi AP AC Pro", "Headquarters", "", 0, "10.4.100.11"},
	{"HQ-AP-03", "R750", "Headquarters", "", 0, "10.4.100.12"},
	{"HQ-SRV-WEB-01", "PowerEdge R750", "Headquarters", "Rack-HQ-01", 10, "10.1.110.10"},
	{"HQ-SRV-APP-01", "ProLiant DL380 Gen10", "Headquarters", "Rack-HQ-01", 11, "10.1.110.11"},
	{"HQ-SRV-DB-01", "PowerEdge R750", "Headquarters", "Rack-HQ-01", 12, "10.1.110.12"},
	{"HQ-HV-01", "SuperServer 2049P", "Headquarters", "Rack-HQ-01", 15, "10.1.110.20"},
	{"HQ-SAN-01", "PowerVault ME4024", "Headquarters", "Rack-HQ-01", 20, "10.3.110.10"},
	{"BE-RTR-01", "ISR 4451", "Branch Office East", "Rack-BE-01", 1, "10.2.10.1"},
	{"BE-SW-01", "Aruba 6300M-24G", "Branch Office East", "Rack-BE-01", 2, "10.2.10.10"},
	{"BE-VPN-GW-01", "FortiGate 100F", "Branch Office East", "Rack-BE-01", 3, "10.2.10.100"},
	{"BE-AP-01", "UniFi AP AC Pro", "Branch Office East", "", 0, "10.4.100.20"},
	{"BE-AP-02", "UniFi AP AC Pro", "Branch Office East", "", 0, "10.4.100.21"},
	{"BW-RTR-01", "ISR 4451", "Branch Office West", "Rack-BW-01", 1, "10.2.20.1"},
	{"BW-SW-01", "Aruba 6300M-24G", "Branch Office West", "Rack-BW-01", 2, "10.2.20.10"},
	{"BW-VPN-GW-01", "PA-220", "Branch Office West", "Rack-BW-01", 3, "10.2.20.100"},
	{"BW-AP-01", "R750", "Branch Office West", "", 0, "10.4.100.30"},
	{"BW-AP-02", "R750", "Branch Office West", "", 0, "10.4.100.31"},
	{"DC1-CORE-SW-01", "Aruba 8325-48Y8C", "Data Center Primary", "Rack-DC1-A01", 1, "10.3.10.10"},
	{"DC1-CORE-SW-02", "Aruba 8325-48Y8C", "Data Center Primary", "Rack-DC1-A01", 2, "10.3.10.11"},
	{"DC1-FW-01", "SRX550", "Data Center Primary", "Rack-DC1-A01", 3, "10.3.10.5"},
	{"DC1-VPN-GW-01", "ASA 5516-X", "Data Center Primary", "Rack-DC1-A01", 4, "10.3.10.100"},
	{"DC1-SRV-WEB-01", "PowerEdge R750", "Data Center Primary", "Rack-DC1-A02", 5, "10.3.100.10"},
	{"DC1-SRV-WEB-02", "PowerEdge R750", "Data Center Primary", "Rack-DC1-A02", 6, "10.3.100.11"},
	{"DC1-SRV-APP-01", "ProLiant DL380 Gen10", "Data Center Primary", "Rack-DC1-B01", 5, "10.3.101.10"},
	{"DC1-SRV-APP-02", "ProLiant DL380 Gen10", "Data Center Primary", "Rack-DC1-B01", 6, "10.3.101.11"},
	{"DC1-SRV-DB-01", "PowerEdge R750", "Data Center Primary", "Rack-DC1-B01", 10, "10.3.102.10"},
	{"DC1-HV-01", "SuperServer 2049P", "Data Center Primary", "Rack-DC1-A02", 15, "10.3.110.30"},
	{"DC1-HV-02", "SuperServer 2049P", "Data Center Primary", "Rack-DC1-A02", 16, "10.3.110.31"},
	{"DC2-CORE-SW-01", "EX4650-48Y", "Data Center DR", "Rack-DC2-A01", 1, "10.3.20.10"},
	{"DC2-FW-01", "SRX550", "Data Center DR", "Rack-DC2-A01", 2, "10.3.20.5"},
	{"DC2-VPN-GW-01", "FortiGate 100F", "Data Center DR", "Rack-DC2-A01", 3, "10.3.20.100"},
	{"DC2-SRV-DB-DR", "PowerEdge R750", "Data Center DR", "Rack-DC2-A01", 10, "10.3.102.20"},
}

const (
	gi1 = "GigabitEthernet1/0/"
	gi0 = "GigabitEthernet0/0/"
)

var networkCables = [][4]string{
	// core to distribution
	{"HQ-CORE-SW-01", gi1 + "1", "HQ-DIST-SW-01", gi1 + "1"},
	{"HQ-CORE-SW-01", gi1 + "2", "HQ-DIST-SW-02", gi1 + "1"},
	{"HQ-CORE-SW-02", gi1 + "1", "HQ-DIST-SW-01", gi1 + "2"},
	{"HQ-CORE-SW-02", gi1 + "2", "HQ-DIST-SW-02", gi1 + "2"},
	{"HQ-CORE-SW-01", gi1 + "47", "HQ-CORE-SW-02", gi1 + "47"},
	{"HQ-CORE-SW-01", gi1 + "48", "HQ-CORE-SW-02", gi1 + "48"},
	// distribution to access
	{"HQ-DIST-SW-01", gi1 + "10", "HQ-ACC-SW-01", gi1 + "47"},
	{"HQ-DIST-SW-01", gi1 + "11", "HQ-ACC-SW-02", gi1 + "47"},
	{"HQ-DIST-SW-02", gi1 + "10", "HQ-ACC-SW-03", gi1 + "47"},
	{"HQ-DIST-SW-02", gi1 + "11", "HQ-ACC-SW-04", gi1 + "47"},
	{"HQ-DIST-SW-02", gi1 + "12", "HQ-ACC-SW-01", gi1 + "48"},
	{"HQ-DIST-SW-01", gi1 + "12", "HQ-ACC-SW-02", gi1 + "48"},
	// edge
	{"HQ-RTR-01", gi0 + "0", "HQ-CORE-SW-01", gi1 + "45"},
	{"HQ-RTR-02", gi0 + "0", "HQ-CORE-SW-02", gi1 + "45"},
	{"HQ-FW-01", gi1 + "1", "HQ-CORE-SW-01", gi1 + "46"},
	{"HQ-FW-01", gi1 + "2", "HQ-RTR-01", gi0 + "1"},
	{"HQ-LB-01", "eth0", "HQ-CORE-SW-01", gi1 + "40"},
	{"HQ-LB-01", "eth1", "HQ-CORE-SW-02", gi1 + "40"},
	{"HQ-WLC-01", "eth0", "HQ-CORE-SW-01", gi1 + "30"},
	// servers
	{"HQ-SRV-WEB-01", "eth0", "HQ-ACC-SW-01", gi1 + "10"},
	{"HQ-SRV-APP-01", "eth0", "HQ-ACC-SW-01", gi1 + "11"},
	{"HQ-SRV-DB-01", "eth0", "HQ-ACC-SW-01", gi1 + "12"},
	{"HQ-HV-01", "eth0", "HQ-ACC-SW-02", gi1 + "10"},
	{"HQ-SAN-01", "eth0", "HQ-ACC-SW-02", gi1 + "20"},
	// branches
	{"BE-RTR-01", gi0 + "0", "BE-SW-01", gi1 + "24"},
	{"BW-RTR-01", gi0 + "0", "BW-SW-01", gi1 + "24"},
	// primary data center
	{"DC1-CORE-SW-01", gi1 + "1", "DC1-CORE-SW-02", gi1 + "1"},
	{"DC1-FW-01", gi1 + "1", "DC1-CORE-SW-01", gi1 + "45"},
	{"DC1-SRV-WEB-01", "eth0", "DC1-CORE-SW-01", gi1 + "10"},
	{"DC1-SRV-WEB-02", "eth0", "DC1-CORE-SW-02", gi1 + "10"},
	{"DC1-SRV-APP-01", "eth0", "DC1-CORE-SW-01", gi1 + "15"},
	{"DC1-SRV-APP-02", "eth0", "DC1-CORE-SW-02", gi1 + "15"},
	{"DC1-SRV-DB-01", "eth0", "DC1-CORE-SW-01", gi1 + "20"},
	{"DC1-HV-01", "eth0", "DC1-CORE-SW-01", gi1 + "25"},
	{"DC1-HV-02", "eth0", "DC1-CORE-SW-02", gi1 + "25"},
	// WAN
	{"HQ-RTR-01", gi0 + "2", "BE-RTR-01", gi0 + "1"},
	{"HQ-RTR-02", gi0 + "2", "BW-RTR-01", gi0 + "1"},
	{"HQ-RTR-01", gi0 + "3", "DC1-FW-01", gi1 + "2"},
	{"HQ-RTR-02", gi0 + "3", "DC2-FW-01", gi1 + "1"},
}

// portName follows the role's naming convention: switch-style line cards
// number from 1, router ports from 0, everything else is ethN.
func portName(role string, i int) string {
	switch {
	case strings.Contains(role, "Switch"), role == "Access Point", role == "Firewall":
		return fmt.Sprintf("%s%d", gi1, i+1)
	case role == "Router":
		return fmt.Sprintf("%s%d", gi0, i)
	}
	return fmt.Sprintf("eth%d", i)
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// NetworkPlan builds the enterprise network: headquarters, two branch
// offices and two data centers with a layered switching core, edge routers
// and firewalls, wireless, servers and WAN links. Every device gets a
// management-only interface carrying its primary IP plus the data ports of
// its type.
func NetworkPlan() *Plan {
	p := &Plan{
		Name:       "network",
		Roles:      networkRoles,
		Sites:      networkSites,
		Racks:      networkRacks,
		VLANGroups: networkVLANGroups,
	}
	for _, m := range networkManufacturers {
		p.Manufacturers = append(p.Manufacturers, Manufacturer{Name: m, Slug: slugify(m)})
	}

	types := make(map[string]networkType, len(networkTypes))
	for _, t := range networkTypes {
		types[t.model] = t
		p.DeviceTypes = append(p.DeviceTypes, DeviceType{
			Manufacturer: t.manufacturer,
			Model:        t.model,
			Slug:         t.slug,
			PartNumber:   "PN-" + strings.ToUpper(t.slug),
		})
	}

	for _, v := range networkVLANs {
		p.VLANs = append(p.VLANs, VLAN{VID: v.vid, Name: v.name, Group: v.group})
		if v.subnet != "" {
			p.Prefixes = append(p.Prefixes, Prefix{
				Prefix:      v.subnet,
				VLAN:        v.name,
				Description: fmt.Sprintf("Subnet for VLAN %d - %s", v.vid, v.name),
			})
		}
	}

	for _, d := range networkDevices {
		t := types[d.model]
		ifaces := make([]Interface, 0, t.ports+1)
		ifaces = append(ifaces, Interface{Name: "Management", Type: "1000base-t", MgmtOnly: true})
		for i := 0; i < t.ports; i++ {
			ifaces = append(ifaces, Interface{Name: portName(t.role, i), Type: "1000base-t"})
		}
		p.Devices = append(p.Devices, Device{
			Name:          d.name,
			Model:         d.model,
			Role:          t.role,
			Site:          d.site,
			Rack:          d.rack,
			Position:      d.position,
			Interfaces:    ifaces,
			MgmtInterface: "Management",
			MgmtIP:        d.ip + "/24",
		})
	}

	for _, c := range networkCables {
		p.Cables = append(p.Cables, Cable{
			ADevice: c[0], AInterface: c[1],
			BDevice: c[2], BInterface: c[3],
			Type: "cat6", Length: 1, LengthUnit: "m",
		})
	}
	return p
}
