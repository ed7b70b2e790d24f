package netbox_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox/netboxtest"
)

// seedSite creates a site with two cabled switches inside one transaction
func seedSite(t *testing.T, store *netbox.MemoryStore, name string) {
	t.Helper()
	err := store.WithTx(context.Background(), func(w netbox.Writer) error {
		ctx := context.Background()
		mfr, err := w.EnsureManufacturer(ctx, "Cisco", "cisco")
		if err != nil {
			return err
		}
		dt, err := w.EnsureDeviceType(ctx, mfr.ID, "C9300", "c9300", "")
		if err != nil {
			return err
		}
		role, err := w.EnsureRole(ctx, "Switch", "switch", "2196f3")
		if err != nil {
			return err
		}
		site, err := w.EnsureSite(ctx, netbox.SiteSpec{Name: name, Slug: name, Status: "active"})
		if err != nil {
			return err
		}
		var ifaces []int64
		for n, dev := range []string{name + "-sw1", name + "-sw2"} {
			d, err := w.EnsureDevice(ctx, netbox.DeviceSpec{Name: dev, DeviceTypeID: dt.ID, RoleID: role.ID, SiteID: site.ID, Status: "active"})
			if err != nil {
				return err
			}
			iface, err := w.EnsureInterface(ctx, netbox.InterfaceSpec{DeviceID: d.ID, Name: "eth1", Type: "1000base-t", Enabled: true})
			if err != nil {
				return err
			}
			ip, err := w.EnsureIPAddress(ctx, fmt.Sprintf("10.%d.0.%d/24", len(name), n+1), &iface.ID)
			if err != nil {
				return err
			}
			if err := w.SetPrimaryIP4(ctx, d.ID, ip.ID); err != nil {
				return err
			}
			ifaces = append(ifaces, iface.ID)
		}
		_, err = w.CreateCable(ctx, ifaces[0], ifaces[1], netbox.CableSpec{Type: "cat6"})
		return err
	})
	require.NoError(t, err)
}

func TestWithTxEnsureIsIdempotent(t *testing.T) {
	store := netbox.NewMemoryStore(nil)
	ctx := context.Background()

	var first, second netbox.Ref
	require.NoError(t, store.WithTx(ctx, func(w netbox.Writer) error {
		var err error
		first, err = w.EnsureManufacturer(ctx, "Arista", "arista")
		if err != nil {
			return err
		}
		second, err = w.EnsureManufacturer(ctx, "Arista", "arista")
		return err
	}))
	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.Dataset().Manufacturers, 1)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := netbox.NewMemoryStore(nil)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(w netbox.Writer) error {
		if _, err := w.EnsureManufacturer(ctx, "Arista", "arista"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.Dataset().Manufacturers)
}

func TestCreateCable(t *testing.T) {
	store := netbox.NewMemoryStore(nil)
	seedSite(t, store, "Demo Site A")
	ctx := context.Background()

	cables, err := store.ListCables(ctx, 0)
	require.NoError(t, err)
	require.Len(t, cables, 1)
	assert.Equal(t, "connected", cables[0].Status)
	assert.Equal(t, "Demo Site A-sw1", cables[0].A[0].Device.Name)
	assert.Equal(t, "Demo Site A-sw2", cables[0].B[0].Device.Name)

	devices := store.Dataset().Devices
	err = store.WithTx(ctx, func(w netbox.Writer) error {
		a, err := w.FindInterface(ctx, devices[0].ID, "eth1")
		if err != nil {
			return err
		}
		b, err := w.EnsureInterface(ctx, netbox.InterfaceSpec{DeviceID: devices[1].ID, Name: "eth2"})
		if err != nil {
			return err
		}
		_, err = w.CreateCable(ctx, a, b.ID, netbox.CableSpec{})
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, netbox.ErrCabled)
}

func TestCreateCableErrors(t *testing.T) {
	c := netboxtest.New()
	site := c.Site("Lab")
	dev := c.Device("sw", site, "Switch", "EX")
	iface := c.Interface(dev, "ge-0/0/0")
	store := c.Store()
	ctx := context.Background()

	err := store.WithTx(ctx, func(w netbox.Writer) error {
		_, err := w.CreateCable(ctx, iface, iface, netbox.CableSpec{})
		return err
	})
	assert.Error(t, err)

	err = store.WithTx(ctx, func(w netbox.Writer) error {
		_, err := w.CreateCable(ctx, iface, 99999, netbox.CableSpec{})
		return err
	})
	assert.ErrorIs(t, err, netbox.ErrNotFound)

	err = store.WithTx(ctx, func(w netbox.Writer) error {
		_, err := w.FindInterface(ctx, dev, "nope")
		return err
	})
	assert.ErrorIs(t, err, netbox.ErrNotFound)
}

func TestDeleteScopedByPrefix(t *testing.T) {
	store := netbox.NewMemoryStore(nil)
	seedSite(t, store, "Demo Site A")
	seedSite(t, store, "Production")
	ctx := context.Background()

	deleted := map[netbox.Kind]int64{}
	err := store.WithTx(ctx, func(w netbox.Writer) error {
		for _, kind := range netbox.DeletionOrder {
			if !kind.SiteScoped() && kind != netbox.KindSite {
				continue
			}
			n, err := w.Delete(ctx, kind, "Demo Site")
			if err != nil {
				return err
			}
			deleted[kind] = n
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), deleted[netbox.KindCable])
	assert.Equal(t, int64(2), deleted[netbox.KindDevice])
	assert.Equal(t, int64(2), deleted[netbox.KindInterface])
	assert.Equal(t, int64(1), deleted[netbox.KindSite])
	assert.Zero(t, deleted[netbox.KindCircuitTermination])

	ds := store.Dataset()
	require.Len(t, ds.Sites, 1)
	assert.Equal(t, "Production", ds.Sites[0].Name)
	assert.Len(t, ds.Devices, 2)
	assert.Len(t, ds.Cables, 1)
	assert.Len(t, ds.Manufacturers, 1)
}

func TestDeleteSiteWithReferencesRollsBack(t *testing.T) {
	store := netbox.NewMemoryStore(nil)
	seedSite(t, store, "Demo Site A")
	ctx := context.Background()
	before := store.Dataset().Summary()

	err := store.WithTx(ctx, func(w netbox.Writer) error {
		if _, err := w.Delete(ctx, netbox.KindCable, "Demo"); err != nil {
			return err
		}
		_, err := w.Delete(ctx, netbox.KindSite, "Demo")
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "references site")
	assert.Equal(t, before, store.Dataset().Summary())
}

func TestDeleteEverything(t *testing.T) {
	c := netboxtest.NewCampus()
	c.CircuitTermination(c.Circuit("CID-1"), "A")
	c.VirtualMachine("vm1", c.Cluster("HQ Cluster"), c.HQ, "eth0", "eth1")
	store := c.Store()
	ctx := context.Background()

	require.NoError(t, store.WithTx(ctx, func(w netbox.Writer) error {
		for _, kind := range netbox.DeletionOrder {
			if _, err := w.Delete(ctx, kind, ""); err != nil {
				return err
			}
		}
		return nil
	}))
	for kind, n := range store.Dataset().Summary() {
		assert.Zero(t, n, kind)
	}
}

func TestDeleteRespectsVirtualizationAndCircuitReferences(t *testing.T) {
	b := netboxtest.New()
	site := b.Site("Demo Site 1")
	b.VirtualMachine("vm1-1", b.Cluster("Demo Cluster 1"), site, "eth1", "eth2")
	b.CircuitTermination(b.Circuit("CID-1"), "A")
	store := b.Store()
	ctx := context.Background()

	tests := []struct {
		kind netbox.Kind
		want string
	}{
		{netbox.KindSite, "virtual machine"},
		{netbox.KindVirtualMachine, "interface"},
		{netbox.KindCluster, "vm"},
		{netbox.KindClusterType, "cluster"},
		{netbox.KindCircuit, "termination"},
		{netbox.KindProvider, "circuit"},
		{netbox.KindCircuitType, "circuit"},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			err := store.WithTx(ctx, func(w netbox.Writer) error {
				_, err := w.Delete(ctx, tc.kind, "")
				return err
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
	ds := store.Dataset()
	assert.Len(t, ds.VirtualMachines, 1)
	assert.Len(t, ds.VMInterfaces, 2)
	assert.Len(t, ds.Circuits, 1)
}

func TestDeleteVirtualMachinesBySite(t *testing.T) {
	b := netboxtest.New()
	demo, hq := b.Site("Demo Site 1"), b.Site("HQ")
	cluster := b.Cluster("Demo Cluster 1")
	b.VirtualMachine("vm1-1", cluster, demo, "eth1", "eth2")
	b.VirtualMachine("vm1-2", cluster, demo, "eth1")
	keep := b.VirtualMachine("app1", cluster, hq, "eth0")
	store := b.Store()
	ctx := context.Background()

	var ifaces, vms int64
	require.NoError(t, store.WithTx(ctx, func(w netbox.Writer) error {
		var err error
		if ifaces, err = w.Delete(ctx, netbox.KindVMInterface, "Demo Site"); err != nil {
			return err
		}
		if vms, err = w.Delete(ctx, netbox.KindVirtualMachine, "Demo Site"); err != nil {
			return err
		}
		if _, err := w.Delete(ctx, netbox.KindClusterGroup, "Demo"); err != nil {
			return err
		}
		_, err = w.Delete(ctx, netbox.KindSite, "Demo Site")
		return err
	}))
	assert.Equal(t, int64(3), ifaces)
	assert.Equal(t, int64(2), vms)

	ds := store.Dataset()
	require.Len(t, ds.VirtualMachines, 1)
	assert.Equal(t, keep, ds.VirtualMachines[0].ID)
	require.Len(t, ds.VMInterfaces, 1)
	assert.Equal(t, "eth0", ds.VMInterfaces[0].Name)
	require.Len(t, ds.Clusters, 1)
	assert.Nil(t, ds.Clusters[0].GroupID)
	assert.Len(t, ds.Sites, 1)
}

func TestEnsureDeviceIsScopedBySite(t *testing.T) {
	store := netbox.NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.WithTx(ctx, func(w netbox.Writer) error {
		a, err := w.EnsureSite(ctx, netbox.SiteSpec{Name: "Site A", Slug: "site-a"})
		require.NoError(t, err)
		b, err := w.EnsureSite(ctx, netbox.SiteSpec{Name: "Site B", Slug: "site-b"})
		require.NoError(t, err)

		first, err := w.EnsureDevice(ctx, netbox.DeviceSpec{Name: "sw1", SiteID: a.ID})
		require.NoError(t, err)
		second, err := w.EnsureDevice(ctx, netbox.DeviceSpec{Name: "sw1", SiteID: b.ID})
		require.NoError(t, err)
		again, err := w.EnsureDevice(ctx, netbox.DeviceSpec{Name: "sw1", SiteID: a.ID})
		require.NoError(t, err)

		assert.True(t, first.Created)
		assert.True(t, second.Created)
		assert.NotEqual(t, first.ID, second.ID)
		assert.False(t, again.Created)
		assert.Equal(t, first.ID, again.ID)
		return nil
	}))
	assert.Len(t, store.Dataset().Devices, 2)
}

func TestEnsureVirtualMachineInterfaces(t *testing.T) {
	store := netbox.NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.WithTx(ctx, func(w netbox.Writer) error {
		typ, err := w.EnsureClusterType(ctx, "VMware", "vmware")
		require.NoError(t, err)
		cluster, err := w.EnsureCluster(ctx, netbox.ClusterSpec{Name: "Cluster 1", TypeID: typ.ID})
		require.NoError(t, err)
		vm, err := w.EnsureVirtualMachine(ctx, netbox.VirtualMachineSpec{Name: "vm1", ClusterID: cluster.ID})
		require.NoError(t, err)
		iface, err := w.EnsureVMInterface(ctx, vm.ID, "eth1")
		require.NoError(t, err)
		assert.True(t, iface.Created)

		again, err := w.EnsureVMInterface(ctx, vm.ID, "eth1")
		require.NoError(t, err)
		assert.Equal(t, iface.ID, again.ID)
		assert.False(t, again.Created)

		_, err = w.EnsureVMInterface(ctx, vm.ID+100, "eth1")
		assert.ErrorIs(t, err, netbox.ErrNotFound)
		return nil
	}))
	ds := store.Dataset()
	require.Len(t, ds.VirtualMachines, 1)
	assert.Equal(t, "active", ds.VirtualMachines[0].Status)
}

func TestDeleteUnknownKind(t *testing.T) {
	store := netbox.NewMemoryStore(nil)
	err := store.WithTx(context.Background(), func(w netbox.Writer) error {
		_, err := w.Delete(context.Background(), netbox.Kind("widgets"), "")
		return err
	})
	assert.Error(t, err)
}
