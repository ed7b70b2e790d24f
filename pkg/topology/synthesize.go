package topology

import "fmt"

// firstLogicalID numbers synthesized links well above real cable ids
const firstLogicalID = 10000

type linker struct {
	next  int
	conns []Connection
}

func (l *linker) link(a, b DeviceNode, aIface, bIface string) {
	l.conns = append(l.conns, Connection{
		ID:         fmt.Sprintf("logical-%d", l.next),
		Source:     a.ID,
		Target:     b.ID,
		Type:       "ethernet",
		Status:     "connected",
		AInterface: aIface,
		BInterface: bIface,
		Logical:    true,
	})
	l.next++
}

func byCategory(devices []DeviceNode) map[Category][]DeviceNode {
	out := make(map[Category][]DeviceNode)
	for _, d := range devices {
		out[d.Type] = append(out[d.Type], d)
	}
	return out
}

// Synthesize builds illustrative links for sites that have no cabling.
// Within a site every router uplinks to the first two switches, switches
// mesh with their next two peers, each switch serves two servers and one
// access point, and firewalls attach to the first router. The first routers
// of every pair of sites are joined by a WAN link.
func Synthesize(sites []SiteGroup) []Connection {
	l := &linker{next: firstLogicalID}
	for _, site := range sites {
		groups := byCategory(site.Devices)
		routers, switches := groups[CategoryRouter], groups[CategorySwitch]
		servers, aps := groups[CategoryServer], groups[CategoryAP]

		for _, r := range routers {
			for _, s := range switches[:min(2, len(switches))] {
				l.link(r, s, "eth0", "eth0")
			}
		}
		for i, a := range switches {
			for _, b := range switches[i+1 : min(i+3, len(switches))] {
				l.link(a, b, "eth1", "eth1")
			}
		}
		for i, s := range switches {
			for _, srv := range window(servers, i*2, 2) {
				l.link(s, srv, fmt.Sprintf("eth%d", i+10), "eth0")
			}
			for _, ap := range window(aps, i, 1) {
				l.link(s, ap, fmt.Sprintf("eth%d", i+20), "eth0")
			}
		}
		if len(routers) > 0 {
			for _, fw := range groups[CategoryFirewall] {
				l.link(fw, routers[0], "eth0", "eth1")
			}
		}
	}

	for i, a := range sites {
		ra := byCategory(a.Devices)[CategoryRouter]
		if len(ra) == 0 {
			continue
		}
		for _, b := range sites[i+1:] {
			rb := byCategory(b.Devices)[CategoryRouter]
			if len(rb) == 0 {
				continue
			}
			length := 100.0
			l.link(ra[0], rb[0], "wan0", "wan0")
			wan := &l.conns[len(l.conns)-1]
			wan.Type = "wan"
			wan.Length = &length
			wan.InterSite = true
		}
	}
	return l.conns
}

func window(s []DeviceNode, start, n int) []DeviceNode {
	if start >= len(s) {
		return nil
	}
	return s[start:min(start+n, len(s))]
}
