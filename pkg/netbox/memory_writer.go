package netbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// memWriter applies writes to a private Dataset copy
type memWriter struct {
	data *Dataset
}

func nextID[T any](rows []T, id func(T) int64) int64 {
	var highest int64
	for _, r := range rows {
		if v := id(r); v > highest {
			highest = v
		}
	}
	return highest + 1
}

func ptr[T any](v T) *T { return &v }

func (w *memWriter) EnsureTenantGroup(_ context.Context, name, slug string) (Ref, error) {
	for _, g := range w.data.TenantGroups {
		if g.Name == name {
			return Ref{ID: g.ID}, nil
		}
	}
	id := nextID(w.data.TenantGroups, func(r TenantGroupRow) int64 { return r.ID })
	w.data.TenantGroups = append(w.data.TenantGroups, TenantGroupRow{ID: id, Name: name, Slug: slug})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureTenant(_ context.Context, name, slug string, groupID *int64) (Ref, error) {
	for _, t := range w.data.Tenants {
		if t.Name == name {
			return Ref{ID: t.ID}, nil
		}
	}
	id := nextID(w.data.Tenants, func(r TenantRow) int64 { return r.ID })
	w.data.Tenants = append(w.data.Tenants, TenantRow{ID: id, Name: name, Slug: slug, GroupID: groupID})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureManufacturer(_ context.Context, name, slug string) (Ref, error) {
	for _, m := range w.data.Manufacturers {
		if m.Name == name {
			return Ref{ID: m.ID}, nil
		}
	}
	id := nextID(w.data.Manufacturers, func(r Manufacturer) int64 { return r.ID })
	w.data.Manufacturers = append(w.data.Manufacturers, Manufacturer{ID: id, Name: name, Slug: slug})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureDeviceType(_ context.Context, manufacturerID int64, model, slug, partNumber string) (Ref, error) {
	for _, dt := range w.data.DeviceTypes {
		if dt.ManufacturerID == manufacturerID && dt.Model == model {
			return Ref{ID: dt.ID}, nil
		}
	}
	id := nextID(w.data.DeviceTypes, func(r DeviceTypeRow) int64 { return r.ID })
	w.data.DeviceTypes = append(w.data.DeviceTypes, DeviceTypeRow{
		ID:             id,
		ManufacturerID: manufacturerID,
		Model:          model,
		Slug:           slug,
		PartNumber:     partNumber,
	})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureRole(_ context.Context, name, slug, color string) (Ref, error) {
	for _, r := range w.data.Roles {
		if r.Name == name {
			return Ref{ID: r.ID}, nil
		}
	}
	id := nextID(w.data.Roles, func(r DeviceRole) int64 { return r.ID })
	w.data.Roles = append(w.data.Roles, DeviceRole{ID: id, Name: name, Slug: slug, Color: color})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureSite(_ context.Context, spec SiteSpec) (Ref, error) {
	for _, s := range w.data.Sites {
		if s.Name == spec.Name {
			return Ref{ID: s.ID}, nil
		}
	}
	id := nextID(w.data.Sites, func(r Site) int64 { return r.ID })
	status := spec.Status
	if status == "" {
		status = "active"
	}
	w.data.Sites = append(w.data.Sites, Site{
		ID:              id,
		Name:            spec.Name,
		Slug:            spec.Slug,
		Status:          status,
		PhysicalAddress: spec.PhysicalAddress,
	})
	if spec.TenantID != nil {
		if w.data.SiteTenants == nil {
			w.data.SiteTenants = make(map[int64]int64)
		}
		w.data.SiteTenants[id] = *spec.TenantID
	}
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureRack(_ context.Context, siteID int64, name string) (Ref, error) {
	for _, r := range w.data.Racks {
		if r.SiteID == siteID && r.Name == name {
			return Ref{ID: r.ID}, nil
		}
	}
	id := nextID(w.data.Racks, func(r RackRow) int64 { return r.ID })
	w.data.Racks = append(w.data.Racks, RackRow{ID: id, SiteID: siteID, Name: name})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureVLANGroup(_ context.Context, name, slug string) (Ref, error) {
	for _, g := range w.data.VLANGroups {
		if g.Name == name {
			return Ref{ID: g.ID}, nil
		}
	}
	id := nextID(w.data.VLANGroups, func(r VLANGroupRow) int64 { return r.ID })
	w.data.VLANGroups = append(w.data.VLANGroups, VLANGroupRow{ID: id, Name: name, Slug: slug})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureVLAN(_ context.Context, spec VLANSpec) (Ref, error) {
	for _, v := range w.data.VLANs {
		if v.VID == spec.VID && deref(v.GroupID) == deref(spec.GroupID) && deref(v.SiteID) == deref(spec.SiteID) {
			return Ref{ID: v.ID}, nil
		}
	}
	id := nextID(w.data.VLANs, func(r VLANRow) int64 { return r.ID })
	w.data.VLANs = append(w.data.VLANs, VLANRow{ID: id, VID: spec.VID, Name: spec.Name, GroupID: spec.GroupID, SiteID: spec.SiteID})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsurePrefix(_ context.Context, spec PrefixSpec) (Ref, error) {
	for _, p := range w.data.Prefixes {
		if p.Prefix == spec.Prefix {
			return Ref{ID: p.ID}, nil
		}
	}
	id := nextID(w.data.Prefixes, func(r PrefixRow) int64 { return r.ID })
	w.data.Prefixes = append(w.data.Prefixes, PrefixRow{
		ID:          id,
		Prefix:      spec.Prefix,
		VLANID:      spec.VLANID,
		SiteID:      spec.SiteID,
		Description: spec.Description,
	})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureDevice(_ context.Context, spec DeviceSpec) (Ref, error) {
	for _, d := range w.data.Devices {
		if d.Name == spec.Name && deref(d.SiteID) == spec.SiteID {
			return Ref{ID: d.ID}, nil
		}
	}
	status := spec.Status
	if status == "" {
		status = "active"
	}
	id := nextID(w.data.Devices, func(r DeviceRow) int64 { return r.ID })
	w.data.Devices = append(w.data.Devices, DeviceRow{
		ID:           id,
		Name:         spec.Name,
		Status:       status,
		SiteID:       ptr(spec.SiteID),
		DeviceTypeID: ptr(spec.DeviceTypeID),
		RoleID:       ptr(spec.RoleID),
		RackID:       spec.RackID,
		Position:     spec.Position,
		TenantID:     spec.TenantID,
	})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureInterface(_ context.Context, spec InterfaceSpec) (Ref, error) {
	for _, i := range w.data.Interfaces {
		if i.DeviceID == spec.DeviceID && i.Name == spec.Name {
			return Ref{ID: i.ID}, nil
		}
	}
	if !w.hasDevice(spec.DeviceID) {
		return Ref{}, fmt.Errorf("interface %q: device %d: %w", spec.Name, spec.DeviceID, ErrNotFound)
	}
	id := nextID(w.data.Interfaces, func(r InterfaceRow) int64 { return r.ID })
	w.data.Interfaces = append(w.data.Interfaces, InterfaceRow{
		ID:       id,
		DeviceID: spec.DeviceID,
		Name:     spec.Name,
		Type:     spec.Type,
		Enabled:  spec.Enabled,
		MgmtOnly: spec.MgmtOnly,
	})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureIPAddress(_ context.Context, address string, interfaceID *int64) (Ref, error) {
	for _, ip := range w.data.IPAddresses {
		if ip.Address == address {
			return Ref{ID: ip.ID}, nil
		}
	}
	id := nextID(w.data.IPAddresses, func(r IPAddressRow) int64 { return r.ID })
	w.data.IPAddresses = append(w.data.IPAddresses, IPAddressRow{ID: id, Address: address, Status: "active", InterfaceID: interfaceID})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) SetPrimaryIP4(_ context.Context, deviceID, ipID int64) error {
	for i := range w.data.Devices {
		if w.data.Devices[i].ID == deviceID {
			w.data.Devices[i].PrimaryIP4ID = ptr(ipID)
			return nil
		}
	}
	return fmt.Errorf("device %d: %w", deviceID, ErrNotFound)
}

func (w *memWriter) EnsureClusterType(_ context.Context, name, slug string) (Ref, error) {
	for _, t := range w.data.ClusterTypes {
		if t.Name == name {
			return Ref{ID: t.ID}, nil
		}
	}
	id := nextID(w.data.ClusterTypes, func(r ClusterTypeRow) int64 { return r.ID })
	w.data.ClusterTypes = append(w.data.ClusterTypes, ClusterTypeRow{ID: id, Name: name, Slug: slug})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureClusterGroup(_ context.Context, name, slug string) (Ref, error) {
	for _, g := range w.data.ClusterGroups {
		if g.Name == name {
			return Ref{ID: g.ID}, nil
		}
	}
	id := nextID(w.data.ClusterGroups, func(r ClusterGroupRow) int64 { return r.ID })
	w.data.ClusterGroups = append(w.data.ClusterGroups, ClusterGroupRow{ID: id, Name: name, Slug: slug})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureCluster(_ context.Context, spec ClusterSpec) (Ref, error) {
	for _, c := range w.data.Clusters {
		if c.Name == spec.Name && deref(c.GroupID) == deref(spec.GroupID) {
			return Ref{ID: c.ID}, nil
		}
	}
	id := nextID(w.data.Clusters, func(r ClusterRow) int64 { return r.ID })
	w.data.Clusters = append(w.data.Clusters, ClusterRow{
		ID:       id,
		Name:     spec.Name,
		TypeID:   spec.TypeID,
		GroupID:  spec.GroupID,
		TenantID: spec.TenantID,
		Status:   "active",
	})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureVirtualMachine(_ context.Context, spec VirtualMachineSpec) (Ref, error) {
	for _, vm := range w.data.VirtualMachines {
		if vm.Name == spec.Name && deref(vm.ClusterID) == spec.ClusterID {
			return Ref{ID: vm.ID}, nil
		}
	}
	status := spec.Status
	if status == "" {
		status = "active"
	}
	id := nextID(w.data.VirtualMachines, func(r VirtualMachineRow) int64 { return r.ID })
	w.data.VirtualMachines = append(w.data.VirtualMachines, VirtualMachineRow{
		ID:        id,
		Name:      spec.Name,
		Status:    status,
		ClusterID: ptr(spec.ClusterID),
		SiteID:    spec.SiteID,
		TenantID:  spec.TenantID,
	})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureVMInterface(_ context.Context, vmID int64, name string) (Ref, error) {
	found := false
	for _, vm := range w.data.VirtualMachines {
		found = found || vm.ID == vmID
	}
	for _, i := range w.data.VMInterfaces {
		if i.VirtualMachineID == vmID && i.Name == name {
			return Ref{ID: i.ID}, nil
		}
	}
	if !found {
		return Ref{}, fmt.Errorf("vm interface %q: virtual machine %d: %w", name, vmID, ErrNotFound)
	}
	id := nextID(w.data.VMInterfaces, func(r VMInterfaceRow) int64 { return r.ID })
	w.data.VMInterfaces = append(w.data.VMInterfaces, VMInterfaceRow{ID: id, VirtualMachineID: vmID, Name: name, Enabled: true})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureProvider(_ context.Context, name, slug string) (Ref, error) {
	for _, p := range w.data.Providers {
		if p.Name == name {
			return Ref{ID: p.ID}, nil
		}
	}
	id := nextID(w.data.Providers, func(r ProviderRow) int64 { return r.ID })
	w.data.Providers = append(w.data.Providers, ProviderRow{ID: id, Name: name, Slug: slug})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) EnsureCircuitType(_ context.Context, name, slug string) (Ref, error) {
	for _, t := range w.data.CircuitTypes {
		if t.Name == name {
			return Ref{ID: t.ID}, nil
		}
	}
	id := nextID(w.data.CircuitTypes, func(r CircuitTypeRow) int64 { return r.ID })
	w.data.CircuitTypes = append(w.data.CircuitTypes, CircuitTypeRow{ID: id, Name: name, Slug: slug})
	return Ref{ID: id, Created: true}, nil
}

func (w *memWriter) FindInterface(_ context.Context, deviceID int64, name string) (int64, error) {
	for _, i := range w.data.Interfaces {
		if i.DeviceID == deviceID && i.Name == name {
			return i.ID, nil
		}
	}
	return 0, fmt.Errorf("interface %q on device %d: %w", name, deviceID, ErrNotFound)
}

func (w *memWriter) CreateCable(_ context.Context, aInterfaceID, bInterfaceID int64, spec CableSpec) (int64, error) {
	if aInterfaceID == bInterfaceID {
		return 0, errors.New("cable cannot terminate twice on one interface")
	}
	ai, bi := w.interfaceIndex(aInterfaceID), w.interfaceIndex(bInterfaceID)
	if ai < 0 {
		return 0, fmt.Errorf("interface %d: %w", aInterfaceID, ErrNotFound)
	}
	if bi < 0 {
		return 0, fmt.Errorf("interface %d: %w", bInterfaceID, ErrNotFound)
	}
	for _, idx := range []int{ai, bi} {
		if iface := w.data.Interfaces[idx]; iface.CableID != nil {
			return 0, fmt.Errorf("interface %d has cable %d: %w", iface.ID, *iface.CableID, ErrCabled)
		}
	}

	id := nextID(w.data.Cables, func(r CableRow) int64 { return r.ID })
	status := spec.Status
	if status == "" {
		status = "connected"
	}
	w.data.Cables = append(w.data.Cables, CableRow{
		ID:         id,
		Type:       spec.Type,
		Status:     status,
		Label:      spec.Label,
		Length:     spec.Length,
		LengthUnit: spec.LengthUnit,
	})
	for _, side := range []struct {
		end CableEnd
		idx int
	}{{EndA, ai}, {EndB, bi}} {
		iface := &w.data.Interfaces[side.idx]
		iface.CableID = ptr(id)
		w.data.Terminations = append(w.data.Terminations, TerminationRow{
			ID:         nextID(w.data.Terminations, func(r TerminationRow) int64 { return r.ID }),
			CableID:    id,
			End:        side.end,
			ObjectType: ObjectInterface,
			ObjectID:   iface.ID,
			DeviceID:   ptr(iface.DeviceID),
		})
	}
	return id, nil
}

func (w *memWriter) hasDevice(id int64) bool {
	for _, d := range w.data.Devices {
		if d.ID == id {
			return true
		}
	}
	return false
}

func (w *memWriter) interfaceIndex(id int64) int {
	for i, iface := range w.data.Interfaces {
		if iface.ID == id {
			return i
		}
	}
	return -1
}

// scopedDevices returns the ids of devices whose site name starts with
// prefix. An empty prefix selects every device, sited or not.
func (w *memWriter) scopedDevices(prefix string) map[int64]bool {
	sites := w.scopedSites(prefix)
	out := make(map[int64]bool)
	for _, d := range w.data.Devices {
		if prefix == "" || (d.SiteID != nil && sites[*d.SiteID]) {
			out[d.ID] = true
		}
	}
	return out
}

func (w *memWriter) scopedSites(prefix string) map[int64]bool {
	out := make(map[int64]bool)
	for _, s := range w.data.Sites {
		if strings.HasPrefix(s.Name, prefix) {
			out[s.ID] = true
		}
	}
	return out
}

func inScope(prefix string, siteID *int64, sites map[int64]bool) bool {
	return prefix == "" || (siteID != nil && sites[*siteID])
}

// filter keeps rows for which keep returns true and reports how many were dropped
func filter[T any](rows []T, keep func(T) bool) ([]T, int64) {
	out := rows[:0:0]
	var dropped int64
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		} else {
			dropped++
		}
	}
	return out, dropped
}

func (w *memWriter) Delete(_ context.Context, kind Kind, prefix string) (int64, error) {
	d := w.data
	sites := w.scopedSites(prefix)
	named := func(name string) bool { return strings.HasPrefix(name, prefix) }
	var n int64

	switch kind {
	case KindCircuitTermination:
		if prefix == "" {
			n = int64(len(d.CircuitTerminations))
			d.CircuitTerminations = nil
		}
	case KindCircuit:
		doomed := make(map[int64]bool)
		d.Circuits, n = filter(d.Circuits, func(r CircuitRow) bool {
			doomed[r.ID] = named(r.CID)
			return !doomed[r.ID]
		})
		for _, t := range d.CircuitTerminations {
			if doomed[t.CircuitID] {
				return 0, fmt.Errorf("cannot delete circuits: termination %d references circuit %d", t.ID, t.CircuitID)
			}
		}
	case KindCircuitType, KindProvider:
		doomed := make(map[int64]bool)
		if kind == KindCircuitType {
			d.CircuitTypes, n = filter(d.CircuitTypes, func(r CircuitTypeRow) bool {
				doomed[r.ID] = named(r.Name)
				return !doomed[r.ID]
			})
		} else {
			d.Providers, n = filter(d.Providers, func(r ProviderRow) bool {
				doomed[r.ID] = named(r.Name)
				return !doomed[r.ID]
			})
		}
		for _, c := range d.Circuits {
			ref := c.TypeID
			if kind == KindProvider {
				ref = c.ProviderID
			}
			if doomed[ref] {
				return 0, fmt.Errorf("cannot delete %s: circuit %d references %d", kind, c.ID, ref)
			}
		}
	case KindCable:
		devices := w.scopedDevices(prefix)
		doomed := make(map[int64]bool)
		for _, t := range d.Terminations {
			if prefix == "" || (t.DeviceID != nil && devices[*t.DeviceID]) {
				doomed[t.CableID] = true
			}
		}
		if prefix == "" {
			for _, c := range d.Cables {
				doomed[c.ID] = true
			}
		}
		d.Cables, n = filter(d.Cables, func(c CableRow) bool { return !doomed[c.ID] })
		d.Terminations, _ = filter(d.Terminations, func(t TerminationRow) bool { return !doomed[t.CableID] })
		for i := range d.Interfaces {
			if c := d.Interfaces[i].CableID; c != nil && doomed[*c] {
				d.Interfaces[i].CableID = nil
			}
		}
	case KindIPAddress:
		devices := w.scopedDevices(prefix)
		owner := make(map[int64]int64, len(d.Interfaces))
		for _, i := range d.Interfaces {
			owner[i.ID] = i.DeviceID
		}
		doomed := make(map[int64]bool)
		d.IPAddresses, n = filter(d.IPAddresses, func(ip IPAddressRow) bool {
			keep := prefix != "" && (ip.InterfaceID == nil || !devices[owner[*ip.InterfaceID]])
			if !keep {
				doomed[ip.ID] = true
			}
			return keep
		})
		for i := range d.Devices {
			if p := d.Devices[i].PrimaryIP4ID; p != nil && doomed[*p] {
				d.Devices[i].PrimaryIP4ID = nil
			}
			if p := d.Devices[i].PrimaryIP6ID; p != nil && doomed[*p] {
				d.Devices[i].PrimaryIP6ID = nil
			}
		}
	case KindInterface:
		devices := w.scopedDevices(prefix)
		d.Interfaces, n = filter(d.Interfaces, func(i InterfaceRow) bool { return !devices[i.DeviceID] })
	case KindDevice:
		d.Devices, n = filter(d.Devices, func(r DeviceRow) bool { return !inScope(prefix, r.SiteID, sites) })
	case KindVMInterface:
		vms := make(map[int64]bool)
		for _, vm := range d.VirtualMachines {
			if inScope(prefix, vm.SiteID, sites) {
				vms[vm.ID] = true
			}
		}
		d.VMInterfaces, n = filter(d.VMInterfaces, func(r VMInterfaceRow) bool { return !vms[r.VirtualMachineID] })
	case KindVirtualMachine:
		doomed := make(map[int64]bool)
		d.VirtualMachines, n = filter(d.VirtualMachines, func(r VirtualMachineRow) bool {
			doomed[r.ID] = inScope(prefix, r.SiteID, sites)
			return !doomed[r.ID]
		})
		for _, i := range d.VMInterfaces {
			if doomed[i.VirtualMachineID] {
				return 0, fmt.Errorf("cannot delete virtual machines: interface %d references vm %d", i.ID, i.VirtualMachineID)
			}
		}
	case KindCluster:
		doomed := make(map[int64]bool)
		d.Clusters, n = filter(d.Clusters, func(r ClusterRow) bool {
			doomed[r.ID] = named(r.Name)
			return !doomed[r.ID]
		})
		for _, vm := range d.VirtualMachines {
			if vm.ClusterID != nil && doomed[*vm.ClusterID] {
				return 0, fmt.Errorf("cannot delete clusters: vm %d references cluster %d", vm.ID, *vm.ClusterID)
			}
		}
	case KindRack:
		d.Racks, n = filter(d.Racks, func(r RackRow) bool { return !inScope(prefix, &r.SiteID, sites) })
	case KindPrefix:
		d.Prefixes, n = filter(d.Prefixes, func(r PrefixRow) bool { return !inScope(prefix, r.SiteID, sites) })
	case KindVLAN:
		d.VLANs, n = filter(d.VLANs, func(r VLANRow) bool { return !inScope(prefix, r.SiteID, sites) })
	case KindVLANGroup:
		d.VLANGroups, n = filter(d.VLANGroups, func(r VLANGroupRow) bool { return !named(r.Name) })
	case KindSite:
		if ref, ok := w.siteReference(sites); ok {
			return 0, fmt.Errorf("cannot delete sites: %s", ref)
		}
		d.Sites, n = filter(d.Sites, func(r Site) bool { return !sites[r.ID] })
		for id := range sites {
			delete(d.SiteTenants, id)
		}
	case KindClusterGroup:
		doomed := make(map[int64]bool)
		d.ClusterGroups, n = filter(d.ClusterGroups, func(r ClusterGroupRow) bool {
			doomed[r.ID] = named(r.Name)
			return !doomed[r.ID]
		})
		for i := range d.Clusters {
			if g := d.Clusters[i].GroupID; g != nil && doomed[*g] {
				d.Clusters[i].GroupID = nil
			}
		}
	case KindClusterType:
		doomed := make(map[int64]bool)
		d.ClusterTypes, n = filter(d.ClusterTypes, func(r ClusterTypeRow) bool {
			doomed[r.ID] = named(r.Name)
			return !doomed[r.ID]
		})
		for _, c := range d.Clusters {
			if doomed[c.TypeID] {
				return 0, fmt.Errorf("cannot delete cluster types: cluster %d references type %d", c.ID, c.TypeID)
			}
		}
	case KindDeviceType:
		d.DeviceTypes, n = filter(d.DeviceTypes, func(r DeviceTypeRow) bool { return !named(r.Model) })
	case KindRole:
		d.Roles, n = filter(d.Roles, func(r DeviceRole) bool { return !named(r.Name) })
	case KindManufacturer:
		d.Manufacturers, n = filter(d.Manufacturers, func(r Manufacturer) bool { return !named(r.Name) })
	case KindTenant:
		d.Tenants, n = filter(d.Tenants, func(r TenantRow) bool { return !named(r.Name) })
	case KindTenantGroup:
		d.TenantGroups, n = filter(d.TenantGroups, func(r TenantGroupRow) bool { return !named(r.Name) })
	default:
		return 0, fmt.Errorf("unknown record kind %q", kind)
	}
	return n, nil
}

// siteReference reports a record that still points at one of the sites
func (w *memWriter) siteReference(sites map[int64]bool) (string, bool) {
	for _, r := range w.data.Devices {
		if r.SiteID != nil && sites[*r.SiteID] {
			return fmt.Sprintf("device %d references site %d", r.ID, *r.SiteID), true
		}
	}
	for _, r := range w.data.VirtualMachines {
		if r.SiteID != nil && sites[*r.SiteID] {
			return fmt.Sprintf("virtual machine %d references site %d", r.ID, *r.SiteID), true
		}
	}
	for _, r := range w.data.Racks {
		if sites[r.SiteID] {
			return fmt.Sprintf("rack %d references site %d", r.ID, r.SiteID), true
		}
	}
	for _, r := range w.data.VLANs {
		if r.SiteID != nil && sites[*r.SiteID] {
			return fmt.Sprintf("vlan %d references site %d", r.ID, *r.SiteID), true
		}
	}
	for _, r := range w.data.Prefixes {
		if r.SiteID != nil && sites[*r.SiteID] {
			return fmt.Sprintf("prefix %d references site %d", r.ID, *r.SiteID), true
		}
	}
	return "", false
}
