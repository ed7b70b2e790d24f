package netbox

import (
	"context"
	"fmt"
)

// Capture copies what r exposes into a Dataset. Stores that hold a Dataset
// return a copy of it; other readers are walked through the Reader methods,
// which keeps devices, their catalog and primary addresses, interfaces,
// cables and circuit terminations. Tenants, racks, VLANs and prefixes are
// not reachable through Reader and are left out.
func Capture(ctx context.Context, r Reader) (*Dataset, error) {
	if src, ok := r.(interface{ Dataset() *Dataset }); ok {
		return src.Dataset(), nil
	}

	ds := &Dataset{}
	if shape := r.Shape(); shape != ShapeUnknown {
		ds.Shape = shape
	}
	c := &capture{
		ds:    ds,
		sites: make(map[int64]bool),
		types: make(map[int64]bool),
		mfrs:  make(map[int64]bool),
		roles: make(map[int64]bool),
	}

	set, err := r.ListDevices(ctx, DeviceFilter{})
	if err != nil {
		return nil, fmt.Errorf("capture devices: %w", err)
	}
	for i := range set.Devices {
		c.device(&set.Devices[i])
	}

	ifaces, err := r.ListInterfaces(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("capture interfaces: %w", err)
	}
	for _, i := range ifaces {
		ds.Interfaces = append(ds.Interfaces, InterfaceRow{
			ID:       i.ID,
			DeviceID: i.DeviceID,
			Name:     i.Name,
			Type:     i.Type,
			Enabled:  i.Enabled,
			MgmtOnly: i.MgmtOnly,
			CableID:  i.CableID,
		})
	}

	cables, err := r.ListCables(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("capture cables: %w", err)
	}
	for _, cable := range cables {
		ds.Cables = append(ds.Cables, CableRow{
			ID:         cable.ID,
			Type:       cable.Type,
			Status:     cable.Status,
			Label:      cable.Label,
			Length:     cable.Length,
			LengthUnit: cable.LengthUnit,
		})
		for _, t := range cable.A {
			c.termination(cable.ID, EndA, t)
		}
		for _, t := range cable.B {
			c.termination(cable.ID, EndB, t)
		}
	}

	ds.CircuitTerminations, err = r.ListCircuitTerminations(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture circuit terminations: %w", err)
	}
	return ds, nil
}

type capture struct {
	ds    *Dataset
	sites map[int64]bool
	types map[int64]bool
	mfrs  map[int64]bool
	roles map[int64]bool
}

func (c *capture) device(d *Device) {
	row := DeviceRow{ID: d.ID, Name: d.Name, Status: d.Status}
	if s := d.Site; s != nil {
		row.SiteID = ptr(s.ID)
		if !c.sites[s.ID] {
			c.sites[s.ID] = true
			c.ds.Sites = append(c.ds.Sites, *s)
		}
	}
	if dt := d.DeviceType; dt != nil {
		row.DeviceTypeID = ptr(dt.ID)
		if !c.types[dt.ID] {
			c.types[dt.ID] = true
			typeRow := DeviceTypeRow{ID: dt.ID, Model: dt.Model, Slug: dt.Slug, PartNumber: dt.PartNumber}
			if m := dt.Manufacturer; m != nil {
				typeRow.ManufacturerID = m.ID
				if !c.mfrs[m.ID] {
					c.mfrs[m.ID] = true
					c.ds.Manufacturers = append(c.ds.Manufacturers, *m)
				}
			}
			c.ds.DeviceTypes = append(c.ds.DeviceTypes, typeRow)
		}
	}
	if role := d.Role; role != nil {
		row.RoleID = ptr(role.ID)
		if !c.roles[role.ID] {
			c.roles[role.ID] = true
			c.ds.Roles = append(c.ds.Roles, *role)
		}
	}
	if ip := d.PrimaryIP4; ip != nil {
		row.PrimaryIP4ID = ptr(ip.ID)
		c.ds.IPAddresses = append(c.ds.IPAddresses, IPAddressRow{ID: ip.ID, Address: ip.Address, Status: "active"})
	}
	if ip := d.PrimaryIP6; ip != nil {
		row.PrimaryIP6ID = ptr(ip.ID)
		c.ds.IPAddresses = append(c.ds.IPAddresses, IPAddressRow{ID: ip.ID, Address: ip.Address, Status: "active"})
	}
	c.ds.Devices = append(c.ds.Devices, row)
}

// termination rebuilds a cabletermination row. Legacy terminations reuse the
// interface id as their own, so rows are renumbered.
func (c *capture) termination(cableID int64, end CableEnd, t Termination) {
	row := TerminationRow{
		ID:         int64(len(c.ds.Terminations) + 1),
		CableID:    cableID,
		End:        end,
		ObjectType: t.ObjectType,
		ObjectID:   t.ObjectID,
	}
	switch {
	case t.Device != nil:
		row.DeviceID = ptr(t.Device.ID)
	case t.Object != nil && t.Object.Device != nil:
		row.DeviceID = ptr(t.Object.Device.ID)
	}
	c.ds.Terminations = append(c.ds.Terminations, row)
}
