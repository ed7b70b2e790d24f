package topology

import (
	"strings"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

// Category is the coarse device kind used to pick icons and synthesize links
type Category string

const (
	CategorySwitch   Category = "switch"
	CategoryRouter   Category = "router"
	CategoryFirewall Category = "firewall"
	CategoryAP       Category = "ap"
	CategoryServer   Category = "server"
	CategoryVM       Category = "vm"
	CategoryUnknown  Category = "unknown"
)

// Categories lists every value Classify can return
var Categories = []Category{
	CategorySwitch,
	CategoryRouter,
	CategoryFirewall,
	CategoryAP,
	CategoryServer,
	CategoryUnknown,
}

type rule struct {
	category Category
	needles  []string
}

// Rules are checked in order and the first match wins.
var (
	roleRules = []rule{
		{CategorySwitch, []string{"switch"}},
		{CategoryRouter, []string{"router"}},
		{CategoryFirewall, []string{"firewall", "security"}},
		{CategoryAP, []string{"access point", "ap", "wireless"}},
		{CategoryServer, []string{"server", "vm", "virtual"}},
	}
	modelRules = []rule{
		{CategorySwitch, []string{"switch", "catalyst", "nexus", "ex-", "qfx"}},
		{CategoryRouter, []string{"router", "isr", "asr", "mx-", "srx"}},
		{CategoryFirewall, []string{"firewall", "pa-", "asa", "fortigate"}},
		{CategoryAP, []string{"ap-", "access point", "wireless", "wifi"}},
		{CategoryServer, []string{"server", "poweredge", "proliant", "vm"}},
	}
)

var icons = map[Category]string{
	CategorySwitch:   "⚡",
	CategoryRouter:   "🔀",
	CategoryFirewall: "🛡️",
	CategoryAP:       "📶",
	CategoryServer:   "💻",
	CategoryVM:       "🖥️",
	CategoryUnknown:  "❓",
}

func match(rules []rule, s string) (Category, bool) {
	if s == "" {
		return "", false
	}
	s = strings.ToLower(s)
	for _, r := range rules {
		for _, needle := range r.needles {
			if strings.Contains(s, needle) {
				return r.category, true
			}
		}
	}
	return "", false
}

// Classify maps a device to a category from its role name, falling back to
// its device type model.
func Classify(d *netbox.Device) Category {
	if d == nil {
		return CategoryUnknown
	}
	if d.Role != nil {
		if c, ok := match(roleRules, d.Role.Name); ok {
			return c
		}
	}
	if d.DeviceType != nil {
		if c, ok := match(modelRules, d.DeviceType.Model); ok {
			return c
		}
	}
	return CategoryUnknown
}

// Icon returns the display glyph for a category
func Icon(c Category) string {
	if icon, ok := icons[c]; ok {
		return icon
	}
	return icons[CategoryUnknown]
}
