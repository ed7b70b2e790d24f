package topology

import (
	"fmt"
	"strconv"

	"github.com/dd0wney/cluso-netcanvas/pkg/layout"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

// UnknownSite names the group holding devices without a site
const UnknownSite = "Unknown Site"

// GroupMode selects how devices are grouped into sites
type GroupMode string

const (
	// GroupBySite groups on the site's id
	GroupBySite GroupMode = "site"
	// GroupBySiteName groups on the site's display name, merging distinct
	// sites that share a name
	GroupBySiteName GroupMode = "site_name"
)

// ParseGroupMode returns the mode for s, defaulting to GroupBySite
func ParseGroupMode(s string) (GroupMode, error) {
	switch GroupMode(s) {
	case "", GroupBySite:
		return GroupBySite, nil
	case GroupBySiteName:
		return GroupBySiteName, nil
	}
	return "", fmt.Errorf("unknown grouping %q", s)
}

type DeviceTypeRef struct {
	ID           int64  `json:"id,omitempty"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	Slug         string `json:"slug,omitempty"`
}

type SiteRef struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// DeviceNode is a device as drawn on the canvas
type DeviceNode struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	DisplayName    string           `json:"display_name"`
	DeviceType     DeviceTypeRef    `json:"device_type"`
	Site           SiteRef          `json:"site"`
	Role           string           `json:"role"`
	Status         string           `json:"status"`
	InterfaceCount int              `json:"interface_count"`
	Type           Category         `json:"type"`
	Icon           string           `json:"icon"`
	PrimaryIP      string           `json:"primary_ip,omitempty"`
	Position       *layout.Position `json:"position,omitempty"`
}

// NewDeviceNode classifies d and flattens it for display
func NewDeviceNode(d *netbox.Device) DeviceNode {
	category := Classify(d)
	n := DeviceNode{
		ID:             d.ID,
		Name:           d.Name,
		DisplayName:    d.DisplayName(),
		DeviceType:     DeviceTypeRef{Model: "Unknown", Manufacturer: "Unknown"},
		Site:           SiteRef{Name: UnknownSite},
		Role:           "Unknown",
		Status:         d.Status,
		InterfaceCount: d.InterfaceCount,
		Type:           category,
		Icon:           Icon(category),
		PrimaryIP:      d.PrimaryIP(),
	}
	if dt := d.DeviceType; dt != nil {
		n.DeviceType = DeviceTypeRef{ID: dt.ID, Model: dt.Model, Slug: dt.Slug, Manufacturer: "Unknown"}
		if dt.Manufacturer != nil {
			n.DeviceType.Manufacturer = dt.Manufacturer.Name
		}
	}
	if s := d.Site; s != nil {
		id := s.ID
		n.Site = SiteRef{ID: &id, Name: s.Name, Slug: s.Slug}
	}
	if d.Role != nil {
		n.Role = d.Role.Name
	}
	if n.Status == "" {
		n.Status = "unknown"
	}
	return n
}

// Connection is a link between two devices. Real connections come from
// cables; logical ones are synthesized for display.
type Connection struct {
	ID         string   `json:"id"`
	CableID    int64    `json:"cable_id,omitempty"`
	Source     int64    `json:"source"`
	Target     int64    `json:"target"`
	Type       string   `json:"type"`
	Status     string   `json:"status"`
	Length     *float64 `json:"length"`
	AInterface string   `json:"a_interface"`
	BInterface string   `json:"b_interface"`
	Logical    bool     `json:"logical"`
	InterSite  bool     `json:"inter_site,omitempty"`
}

func cableKey(id int64) string { return strconv.FormatInt(id, 10) }

// SiteGroup is a site container on the canvas
type SiteGroup struct {
	ID          *int64       `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug,omitempty"`
	Devices     []DeviceNode `json:"devices"`
	DeviceCount int          `json:"device_count"`
	Bounds      *layout.Rect `json:"bounds,omitempty"`
}

type Stats struct {
	TotalDevices     int `json:"total_devices"`
	TotalSites       int `json:"total_sites"`
	TotalConnections int `json:"total_connections"`
}

// Topology is the canvas payload
type Topology struct {
	Devices     []DeviceNode `json:"devices"`
	Sites       []SiteGroup  `json:"sites"`
	Connections []Connection `json:"connections"`
	Stats       Stats        `json:"stats"`
}

// Empty returns a topology with no devices and non-nil slices
func Empty() *Topology {
	return &Topology{Devices: []DeviceNode{}, Sites: []SiteGroup{}, Connections: []Connection{}}
}

func groupKey(n DeviceNode, mode GroupMode) string {
	if mode == GroupBySiteName {
		return "name:" + n.Site.Name
	}
	if n.Site.ID == nil {
		return "none"
	}
	return "id:" + strconv.FormatInt(*n.Site.ID, 10)
}

// Assemble groups devices into sites in order of first appearance and
// attaches the connections.
func Assemble(devices []DeviceNode, conns []Connection, mode GroupMode) *Topology {
	t := Empty()
	index := make(map[string]int)
	for _, n := range devices {
		key := groupKey(n, mode)
		i, ok := index[key]
		if !ok {
			i = len(t.Sites)
			index[key] = i
			t.Sites = append(t.Sites, SiteGroup{ID: n.Site.ID, Name: n.Site.Name, Slug: n.Site.Slug, Devices: []DeviceNode{}})
		}
		t.Sites[i].Devices = append(t.Sites[i].Devices, n)
		t.Sites[i].DeviceCount++
		t.Devices = append(t.Devices, n)
	}
	t.Connections = append(t.Connections, conns...)
	t.recount()
	return t
}

func (t *Topology) recount() {
	t.Stats = Stats{
		TotalDevices:     len(t.Devices),
		TotalSites:       len(t.Sites),
		TotalConnections: len(t.Connections),
	}
}

// tier orders categories top to bottom in hierarchical layouts
func tier(c Category) int {
	switch c {
	case CategoryRouter:
		return 0
	case CategoryFirewall:
		return 1
	case CategorySwitch:
		return 2
	}
	return 3
}

// ApplyLayout positions devices with the named algorithm, arranging site
// containers in a grid and placing each site's devices inside its container.
func (t *Topology) ApplyLayout(algorithm string) error {
	engine, err := layout.New(algorithm, layout.DefaultConfig())
	if err != nil {
		return err
	}

	boxes := layout.Containers(len(t.Sites), layout.DefaultConfig())
	positions := make(map[int64]layout.Position, len(t.Devices))
	for i := range t.Sites {
		site := &t.Sites[i]
		box := boxes[i]
		site.Bounds = &box

		g := layout.Graph{
			Nodes: make([]int64, 0, len(site.Devices)),
			Tiers: make(map[int64]int, len(site.Devices)),
		}
		member := make(map[int64]bool, len(site.Devices))
		for _, n := range site.Devices {
			g.Nodes = append(g.Nodes, n.ID)
			g.Tiers[n.ID] = tier(n.Type)
			member[n.ID] = true
		}
		for _, c := range t.Connections {
			if member[c.Source] && member[c.Target] {
				g.Edges = append(g.Edges, layout.Edge{From: c.Source, To: c.Target})
			}
		}
		local, err := engine.Compute(g, box)
		if err != nil {
			return fmt.Errorf("layout site %q: %w", site.Name, err)
		}
		for j := range site.Devices {
			p := local[site.Devices[j].ID]
			site.Devices[j].Position = &p
			positions[site.Devices[j].ID] = p
		}
	}
	for i := range t.Devices {
		if p, ok := positions[t.Devices[i].ID]; ok {
			t.Devices[i].Position = &p
		}
	}
	return nil
}
