package topology

import (
	"testing"
)

func TestSynthesizeWithinSite(t *testing.T) {
	site := SiteGroup{Name: "HQ", Devices: []DeviceNode{
		node(1, 1, "HQ", CategoryRouter),
		node(2, 1, "HQ", CategorySwitch),
		node(3, 1, "HQ", CategorySwitch),
		node(4, 1, "HQ", CategorySwitch),
		node(5, 1, "HQ", CategoryServer),
		node(6, 1, "HQ", CategoryServer),
		node(7, 1, "HQ", CategoryServer),
		node(8, 1, "HQ", CategoryAP),
		node(9, 1, "HQ", CategoryFirewall),
	}}

	conns := Synthesize([]SiteGroup{site})
	type pair struct{ a, b int64 }
	got := make(map[pair]Connection)
	for _, c := range conns {
		if !c.Logical || c.Type != "ethernet" || c.CableID != 0 {
			t.Errorf("connection %+v should be a logical ethernet link", c)
		}
		got[pair{c.Source, c.Target}] = c
	}

	want := []pair{
		{1, 2}, {1, 3}, // router to first two switches
		{2, 3}, {2, 4}, {3, 4}, // switch mesh
		{2, 5}, {2, 6}, {3, 7}, // two servers per switch
		{2, 8}, // one AP per switch
		{9, 1}, // firewall to first router
	}
	if len(conns) != len(want) {
		t.Errorf("got %d links, want %d", len(conns), len(want))
	}
	for _, p := range want {
		if _, ok := got[p]; !ok {
			t.Errorf("missing link %d -> %d", p.a, p.b)
		}
	}
	if conns[0].ID != "logical-10000" {
		t.Errorf("first id = %s", conns[0].ID)
	}
	if got[pair{3, 7}].AInterface != "eth11" {
		t.Errorf("second switch server port = %s", got[pair{3, 7}].AInterface)
	}
}

func TestSynthesizeInterSite(t *testing.T) {
	sites := []SiteGroup{
		{Name: "A", Devices: []DeviceNode{node(1, 1, "A", CategoryRouter)}},
		{Name: "B", Devices: []DeviceNode{node(2, 2, "B", CategoryServer)}},
		{Name: "C", Devices: []DeviceNode{node(3, 3, "C", CategoryRouter), node(4, 3, "C", CategoryRouter)}},
	}
	conns := Synthesize(sites)
	if len(conns) != 1 {
		t.Fatalf("got %d links, want 1: %+v", len(conns), conns)
	}
	wan := conns[0]
	if wan.Source != 1 || wan.Target != 3 || wan.Type != "wan" || !wan.InterSite {
		t.Errorf("wan link = %+v", wan)
	}
	if wan.Length == nil || *wan.Length != 100 {
		t.Errorf("wan length = %v", wan.Length)
	}
}

func TestSynthesizeEmpty(t *testing.T) {
	if conns := Synthesize(nil); len(conns) != 0 {
		t.Errorf("got %d links", len(conns))
	}
}
