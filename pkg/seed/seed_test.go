package seed_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox/netboxtest"
	"github.com/dd0wney/cluso-netcanvas/pkg/seed"
)

func TestDemoPlanBounds(t *testing.T) {
	for _, tc := range []struct{ sites, devices int }{{0, 5}, {251, 5}, {3, 0}, {3, 251}} {
		_, err := seed.DemoPlan(tc.sites, tc.devices)
		assert.Error(t, err, "sites=%d devices=%d", tc.sites, tc.devices)
	}
}

func TestApplyDemo(t *testing.T) {
	ctx := context.Background()
	store := netbox.NewMemoryStore(nil)
	plan, err := seed.DemoPlan(2, 8)
	require.NoError(t, err)

	report, err := seed.Apply(ctx, store, plan, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created(netbox.KindSite))
	assert.Equal(t, 16, report.Created(netbox.KindDevice))
	assert.Equal(t, 32, report.Created(netbox.KindInterface))
	// two switch-router links and one switch pair per site
	assert.Equal(t, 6, report.Created(netbox.KindCable))

	summary := store.Dataset().Summary()
	assert.Equal(t, 16, summary[netbox.KindIPAddress])
	assert.Equal(t, 2, summary[netbox.KindVLAN])
	assert.Equal(t, 2, summary[netbox.KindPrefix])
	assert.Equal(t, 2, summary[netbox.KindRack])
	assert.Equal(t, 2, summary[netbox.KindCluster])
	assert.Equal(t, 2*seed.DemoVMsPerSite, summary[netbox.KindVirtualMachine])
	assert.Equal(t, 4*seed.DemoVMsPerSite, summary[netbox.KindVMInterface])
	assert.Equal(t, 1, summary[netbox.KindClusterType])
	assert.Equal(t, 1, summary[netbox.KindClusterGroup])
	assert.Equal(t, 1, summary[netbox.KindProvider])
	assert.Equal(t, 1, summary[netbox.KindCircuitType])
	assert.Zero(t, summary[netbox.KindCircuit])

	set, err := store.ListDevices(ctx, netbox.DeviceFilter{})
	require.NoError(t, err)
	for _, d := range set.Devices {
		require.NotNil(t, d.PrimaryIP4, d.Name)
		assert.True(t, strings.HasPrefix(d.Site.Name, seed.DemoSitePrefix))
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := netbox.NewMemoryStore(nil)
	plan, err := seed.DemoPlan(1, 6)
	require.NoError(t, err)

	_, err = seed.Apply(ctx, store, plan, nil)
	require.NoError(t, err)
	before := store.Dataset().Summary()

	report, err := seed.Apply(ctx, store, plan, nil)
	require.NoError(t, err)
	assert.Equal(t, before, store.Dataset().Summary())
	for kind, tally := range report.Kinds {
		assert.Zero(t, tally.Created, "%s created on rerun", kind)
		assert.NotZero(t, tally.Existing, kind)
	}
}

func TestApplyNetwork(t *testing.T) {
	ctx := context.Background()
	store := netbox.NewMemoryStore(nil)

	report, err := seed.Apply(ctx, store, seed.NetworkPlan(), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Created(netbox.KindSite))
	assert.Equal(t, 9, report.Created(netbox.KindRack))
	assert.Equal(t, 14, report.Created(netbox.KindManufacturer))
	assert.Equal(t, 22, report.Created(netbox.KindDeviceType))
	assert.Equal(t, 13, report.Created(netbox.KindRole))
	assert.Equal(t, 19, report.Created(netbox.KindVLAN))
	assert.Equal(t, 18, report.Created(netbox.KindPrefix))
	assert.Equal(t, 47, report.Created(netbox.KindDevice))
	assert.Equal(t, 39, report.Created(netbox.KindCable))
	assert.Zero(t, report.Kinds[netbox.KindCable].Existing)

	ifaces, err := store.ListInterfaces(ctx, nil)
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, i := range ifaces {
		names[i.DeviceName+" "+i.Name] = true
	}
	assert.True(t, names["HQ-RTR-01 GigabitEthernet0/0/0"])
	assert.True(t, names["HQ-CORE-SW-01 GigabitEthernet1/0/52"])
	assert.True(t, names["HQ-FW-01 GigabitEthernet1/0/1"])
	assert.True(t, names["HQ-SRV-WEB-01 eth0"])
	assert.True(t, names["HQ-AP-01 Management"])
	assert.False(t, names["HQ-CORE-SW-01 GigabitEthernet1/0/53"])
}

func TestApplyRollsBackOnUnknownReference(t *testing.T) {
	ctx := context.Background()
	store := netboxtest.NewCampus().Store()
	before := store.Dataset().Summary()

	plan := &seed.Plan{
		Name:  "broken",
		Sites: []seed.Site{{Name: "Lab", Slug: "lab"}},
		Devices: []seed.Device{
			{Name: "lab-sw1", Model: "Nonexistent", Role: "Switch", Site: "Lab"},
		},
	}
	_, err := seed.Apply(ctx, store, plan, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nonexistent")
	assert.Equal(t, before, store.Dataset().Summary())
}

func TestClearDemoKeepsOtherRecords(t *testing.T) {
	ctx := context.Background()
	store := netbox.NewMemoryStore(nil)
	_, err := seed.Apply(ctx, store, seed.NetworkPlan(), nil)
	require.NoError(t, err)
	demo, err := seed.DemoPlan(3, 4)
	require.NoError(t, err)
	_, err = seed.Apply(ctx, store, demo, nil)
	require.NoError(t, err)

	deleted, err := seed.Clear(ctx, store, seed.ScopeDemo, nil)
	require.NoError(t, err)
	counts := make(map[netbox.Kind]int64)
	for _, d := range deleted {
		counts[d.Kind] = d.Count
	}
	assert.Equal(t, int64(12), counts[netbox.KindDevice])
	assert.Equal(t, int64(3), counts[netbox.KindSite])
	assert.Equal(t, int64(1), counts[netbox.KindTenant])
	assert.Equal(t, int64(1), counts[netbox.KindVLANGroup])
	assert.Equal(t, int64(3*seed.DemoVMsPerSite), counts[netbox.KindVirtualMachine])
	assert.Equal(t, int64(3), counts[netbox.KindCluster])
	assert.Equal(t, int64(1), counts[netbox.KindClusterGroup])
	assert.NotContains(t, counts, netbox.KindManufacturer)
	assert.NotContains(t, counts, netbox.KindProvider)
	assert.NotContains(t, counts, netbox.KindClusterType)

	summary := store.Dataset().Summary()
	assert.Equal(t, 47, summary[netbox.KindDevice])
	assert.Equal(t, 39, summary[netbox.KindCable])
	assert.Equal(t, 5, summary[netbox.KindSite])
	assert.Equal(t, 5, summary[netbox.KindVLANGroup])
	assert.Zero(t, summary[netbox.KindTenant])
	assert.Zero(t, summary[netbox.KindVirtualMachine])
	assert.Zero(t, summary[netbox.KindCluster])
	assert.Equal(t, 1, summary[netbox.KindClusterType])
	assert.Equal(t, 1, summary[netbox.KindProvider])
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	store := netboxtest.NewCampus().Store()

	deleted, err := seed.Clear(ctx, store, seed.ScopeAll, nil)
	require.NoError(t, err)
	assert.Len(t, deleted, len(netbox.DeletionOrder))
	for kind, n := range store.Dataset().Summary() {
		assert.Zero(t, n, kind)
	}
}

func TestClearAllWithVirtualizationAndCircuits(t *testing.T) {
	ctx := context.Background()
	c := netboxtest.NewCampus()
	cluster := c.Cluster("Campus Cluster")
	c.VirtualMachine("app1", cluster, c.HQ, "eth0", "eth1")
	c.VirtualMachine("app2", cluster, c.Branch, "eth0")
	circuit := c.Circuit("CID-100")
	c.CircuitTermination(circuit, "A")
	c.CircuitTermination(circuit, "Z")
	store := c.Store()

	deleted, err := seed.Clear(ctx, store, seed.ScopeAll, nil)
	require.NoError(t, err)
	counts := make(map[netbox.Kind]int64)
	for _, d := range deleted {
		counts[d.Kind] = d.Count
	}
	assert.Equal(t, int64(2), counts[netbox.KindCircuitTermination])
	assert.Equal(t, int64(1), counts[netbox.KindCircuit])
	assert.Equal(t, int64(1), counts[netbox.KindProvider])
	assert.Equal(t, int64(3), counts[netbox.KindVMInterface])
	assert.Equal(t, int64(2), counts[netbox.KindVirtualMachine])
	assert.Equal(t, int64(1), counts[netbox.KindCluster])
	assert.Equal(t, int64(2), counts[netbox.KindSite])
	for kind, n := range store.Dataset().Summary() {
		assert.Zero(t, n, kind)
	}
}

func TestClearDemoAfterApply(t *testing.T) {
	ctx := context.Background()
	store := netbox.NewMemoryStore(nil)
	plan, err := seed.DemoPlan(2, 4)
	require.NoError(t, err)
	_, err = seed.Apply(ctx, store, plan, nil)
	require.NoError(t, err)

	_, err = seed.Clear(ctx, store, seed.ScopeDemo, nil)
	require.NoError(t, err)
	summary := store.Dataset().Summary()
	for _, kind := range []netbox.Kind{
		netbox.KindSite, netbox.KindDevice, netbox.KindVirtualMachine, netbox.KindVMInterface,
		netbox.KindCluster, netbox.KindClusterGroup, netbox.KindTenant,
	} {
		assert.Zero(t, summary[kind], kind)
	}

	// a rerun recreates the demo network on top of the kept catalog
	report, err := seed.Apply(ctx, store, plan, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created(netbox.KindCluster))
	assert.Zero(t, report.Created(netbox.KindClusterType))
}

func TestLinkFirstDevices(t *testing.T) {
	ctx := context.Background()
	b := netboxtest.New()
	site := b.Site("Lab")
	sw := b.Device("lab-sw1", site, "Switch", "Catalyst 9300")
	rtr := b.Device("lab-rtr1", site, "Router", "ISR 4331")
	b.Interface(sw, "eth0")
	b.Interface(sw, "eth1")
	b.Interface(rtr, "eth0")
	store := b.Store()

	link, err := seed.LinkFirstDevices(ctx, store, nil)
	require.NoError(t, err)
	assert.Equal(t, "lab-sw1", link.ADevice)
	assert.Equal(t, "eth0", link.AInterface)
	assert.Equal(t, "lab-rtr1", link.BDevice)
	assert.Equal(t, "eth0", link.BInterface)

	cables, err := store.ListCables(ctx, 0)
	require.NoError(t, err)
	require.Len(t, cables, 1)
	assert.Equal(t, link.CableID, cables[0].ID)

	// the router has no free port left
	_, err = seed.LinkFirstDevices(ctx, store, nil)
	assert.ErrorContains(t, err, "lab-rtr1 has no free interface")
}

func TestLinkNeedsTwoDevices(t *testing.T) {
	b := netboxtest.New()
	b.Device("solo", b.Site("Lab"), "Switch", "Catalyst 9300")

	_, err := seed.LinkFirstDevices(context.Background(), b.Store(), nil)
	assert.ErrorContains(t, err, "need at least 2 devices")
}
