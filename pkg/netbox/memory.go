package netbox

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MemoryStore serves a Dataset from memory. It is used for snapshots, the
// TUI demo mode and tests, and supports write transactions.
type MemoryStore struct {
	mu   sync.RWMutex
	data *Dataset
}

// NewMemoryStore wraps a copy of data
func NewMemoryStore(data *Dataset) *MemoryStore {
	if data == nil {
		data = &Dataset{}
	}
	return &MemoryStore{data: data.Clone()}
}

// Dataset returns a copy of the current data
func (s *MemoryStore) Dataset() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }
func (s *MemoryStore) Close() error                   { return nil }

func (s *MemoryStore) Shape() SchemaShape {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.Shape == "" {
		return ShapeUnknown
	}
	return s.data.Shape
}

// index holds lookup maps over one Dataset
type index struct {
	sites       map[int64]*Site
	types       map[int64]*DeviceTypeRow
	mfrs        map[int64]*Manufacturer
	roles       map[int64]*DeviceRole
	ips         map[int64]*IPAddressRow
	devices     map[int64]*DeviceRow
	interfaces  map[int64]*InterfaceRow
	ifaceCount  map[int64]int
	circuitTerm map[int64]*CircuitTermination
}

func newIndex(d *Dataset) *index {
	ix := &index{
		sites:       make(map[int64]*Site, len(d.Sites)),
		types:       make(map[int64]*DeviceTypeRow, len(d.DeviceTypes)),
		mfrs:        make(map[int64]*Manufacturer, len(d.Manufacturers)),
		roles:       make(map[int64]*DeviceRole, len(d.Roles)),
		ips:         make(map[int64]*IPAddressRow, len(d.IPAddresses)),
		devices:     make(map[int64]*DeviceRow, len(d.Devices)),
		interfaces:  make(map[int64]*InterfaceRow, len(d.Interfaces)),
		ifaceCount:  make(map[int64]int),
		circuitTerm: make(map[int64]*CircuitTermination, len(d.CircuitTerminations)),
	}
	for i := range d.Sites {
		ix.sites[d.Sites[i].ID] = &d.Sites[i]
	}
	for i := range d.DeviceTypes {
		ix.types[d.DeviceTypes[i].ID] = &d.DeviceTypes[i]
	}
	for i := range d.Manufacturers {
		ix.mfrs[d.Manufacturers[i].ID] = &d.Manufacturers[i]
	}
	for i := range d.Roles {
		ix.roles[d.Roles[i].ID] = &d.Roles[i]
	}
	for i := range d.IPAddresses {
		ix.ips[d.IPAddresses[i].ID] = &d.IPAddresses[i]
	}
	for i := range d.Devices {
		ix.devices[d.Devices[i].ID] = &d.Devices[i]
	}
	for i := range d.Interfaces {
		ix.interfaces[d.Interfaces[i].ID] = &d.Interfaces[i]
		ix.ifaceCount[d.Interfaces[i].DeviceID]++
	}
	for i := range d.CircuitTerminations {
		ix.circuitTerm[d.CircuitTerminations[i].ID] = &d.CircuitTerminations[i]
	}
	return ix
}

func (ix *index) deviceRef(id int64) *DeviceRef {
	d, ok := ix.devices[id]
	if !ok {
		return nil
	}
	return &DeviceRef{ID: d.ID, Name: d.Name}
}

func (ix *index) ip(id *int64) *IPAddress {
	if id == nil {
		return nil
	}
	row, ok := ix.ips[*id]
	if !ok {
		return nil
	}
	return &IPAddress{ID: row.ID, Address: row.Address}
}

// device joins a device row with its related records. Dangling references
// leave the related pointer nil and are reported.
func (ix *index) device(row *DeviceRow) (Device, []RecordError) {
	var problems []RecordError
	dangling := func(what string, id int64) {
		problems = append(problems, RecordError{
			Kind: "device",
			ID:   row.ID,
			Err:  fmt.Sprintf("%s %d: %v", what, id, ErrNotFound),
		})
	}

	d := Device{
		ID:             row.ID,
		Name:           row.Name,
		Status:         row.Status,
		PrimaryIP4:     ix.ip(row.PrimaryIP4ID),
		PrimaryIP6:     ix.ip(row.PrimaryIP6ID),
		InterfaceCount: ix.ifaceCount[row.ID],
	}
	if row.SiteID != nil {
		if site, ok := ix.sites[*row.SiteID]; ok {
			cp := *site
			d.Site = &cp
		} else {
			dangling("site", *row.SiteID)
		}
	}
	if row.DeviceTypeID != nil {
		if dt, ok := ix.types[*row.DeviceTypeID]; ok {
			d.DeviceType = &DeviceType{ID: dt.ID, Model: dt.Model, Slug: dt.Slug, PartNumber: dt.PartNumber}
			if m, ok := ix.mfrs[dt.ManufacturerID]; ok {
				cp := *m
				d.DeviceType.Manufacturer = &cp
			}
		} else {
			dangling("device type", *row.DeviceTypeID)
		}
	}
	if row.RoleID != nil {
		if r, ok := ix.roles[*row.RoleID]; ok {
			cp := *r
			d.Role = &cp
		} else {
			dangling("role", *row.RoleID)
		}
	}
	return d, problems
}

func sortedDevices(d *Dataset) []DeviceRow {
	rows := slices.Clone(d.Devices)
	slices.SortFunc(rows, func(a, b DeviceRow) int { return cmp.Compare(a.ID, b.ID) })
	return rows
}

func (s *MemoryStore) ListDevices(ctx context.Context, filter DeviceFilter) (*DeviceSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ix := newIndex(s.data)
	model := strings.ToLower(filter.ModelContains)
	set := &DeviceSet{}
	for _, row := range sortedDevices(s.data) {
		if filter.Limit > 0 && len(set.Devices) >= filter.Limit {
			break
		}
		if filter.ID != nil && row.ID != *filter.ID {
			continue
		}
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.SiteID != nil && (row.SiteID == nil || *row.SiteID != *filter.SiteID) {
			continue
		}
		if model != "" {
			dt, ok := ix.types[deref(row.DeviceTypeID)]
			if !ok || !strings.Contains(strings.ToLower(dt.Model), model) {
				continue
			}
		}
		device, problems := ix.device(&row)
		set.Devices = append(set.Devices, device)
		set.Skipped = append(set.Skipped, problems...)
	}
	return set, nil
}

func (s *MemoryStore) ListDeviceSummaries(ctx context.Context, limit int) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ix := newIndex(s.data)
	var out []Device
	for _, row := range sortedDevices(s.data) {
		if limit > 0 && len(out) >= limit {
			break
		}
		d := Device{ID: row.ID, Name: row.Name, Status: row.Status}
		if site, ok := ix.sites[deref(row.SiteID)]; ok && row.SiteID != nil {
			cp := *site
			d.Site = &cp
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *MemoryStore) ListCables(ctx context.Context, limit int) ([]Cable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ix := newIndex(s.data)
	rows := slices.Clone(s.data.Cables)
	slices.SortFunc(rows, func(a, b CableRow) int { return cmp.Compare(a.ID, b.ID) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	byCable := make(map[int64][]TerminationRow)
	for _, t := range s.data.Terminations {
		byCable[t.CableID] = append(byCable[t.CableID], t)
	}

	legacy := s.data.Shape == ShapeLegacy
	cables := make([]Cable, 0, len(rows))
	for _, row := range rows {
		c := Cable{
			ID:         row.ID,
			Type:       row.Type,
			Status:     row.Status,
			Label:      row.Label,
			Length:     row.Length,
			LengthUnit: row.LengthUnit,
		}
		terms := byCable[row.ID]
		slices.SortFunc(terms, func(a, b TerminationRow) int { return cmp.Compare(a.ID, b.ID) })
		for _, t := range terms {
			var term Termination
			if legacy {
				term = ix.legacyTermination(t)
			} else {
				term = ix.termination(t)
			}
			switch t.End {
			case EndA:
				c.A = append(c.A, term)
			case EndB:
				c.B = append(c.B, term)
			}
		}
		cables = append(cables, c)
	}
	return cables, nil
}

// termination builds a cabletermination-shaped record: the linked object
// plus the device cached on the row.
func (ix *index) termination(row TerminationRow) Termination {
	t := Termination{ID: row.ID, ObjectType: row.ObjectType, ObjectID: row.ObjectID}
	if row.DeviceID != nil {
		t.Device = ix.deviceRef(*row.DeviceID)
	}

	switch row.ObjectType {
	case ObjectInterface:
		iface, ok := ix.interfaces[row.ObjectID]
		if !ok {
			t.Err = fmt.Errorf("interface %d: %w", row.ObjectID, ErrNotFound)
			return t
		}
		t.Object = &Terminable{ID: iface.ID, Type: row.ObjectType, Name: iface.Name, Device: ix.deviceRef(iface.DeviceID)}
		t.Name = iface.Name
	case ObjectDevice:
		t.Device = ix.deviceRef(row.ObjectID)
		if t.Device == nil {
			t.Err = fmt.Errorf("device %d: %w", row.ObjectID, ErrNotFound)
		}
	case ObjectCircuitTermination:
		ct, ok := ix.circuitTerm[row.ObjectID]
		if !ok {
			t.Err = fmt.Errorf("circuit termination %d: %w", row.ObjectID, ErrNotFound)
			return t
		}
		t.Object = &Terminable{ID: ct.ID, Type: row.ObjectType, Name: fmt.Sprintf("circuit %d side %s", ct.CircuitID, ct.Term)}
	default:
		t.Object = &Terminable{ID: row.ObjectID, Type: row.ObjectType, Name: fmt.Sprintf("%s %d", row.ObjectType, row.ObjectID)}
	}
	return t
}

// legacyTermination builds the pre-3.3 shape where the termination is the
// interface row itself.
func (ix *index) legacyTermination(row TerminationRow) Termination {
	t := Termination{ID: row.ObjectID, ObjectType: row.ObjectType, ObjectID: row.ObjectID}
	if row.ObjectType != ObjectInterface {
		return t
	}
	iface, ok := ix.interfaces[row.ObjectID]
	if !ok {
		t.Err = fmt.Errorf("interface %d: %w", row.ObjectID, ErrNotFound)
		return t
	}
	t.Name = iface.Name
	t.Device = ix.deviceRef(iface.DeviceID)
	return t
}

// ListInterfaces returns interfaces of the given devices, or of all devices
// when deviceIDs is nil.
func (s *MemoryStore) ListInterfaces(ctx context.Context, deviceIDs []int64) ([]Interface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var want map[int64]bool
	if deviceIDs != nil {
		want = make(map[int64]bool, len(deviceIDs))
		for _, id := range deviceIDs {
			want[id] = true
		}
	}

	ix := newIndex(s.data)
	var out []Interface
	for _, row := range s.data.Interfaces {
		if want != nil && !want[row.DeviceID] {
			continue
		}
		iface := Interface{
			ID:       row.ID,
			DeviceID: row.DeviceID,
			Name:     row.Name,
			Type:     row.Type,
			Enabled:  row.Enabled,
			MgmtOnly: row.MgmtOnly,
			CableID:  row.CableID,
		}
		if d, ok := ix.devices[row.DeviceID]; ok {
			iface.DeviceName = d.Name
		}
		out = append(out, iface)
	}
	slices.SortFunc(out, func(a, b Interface) int {
		return cmp.Or(cmp.Compare(a.DeviceID, b.DeviceID), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *MemoryStore) ListCircuitTerminations(ctx context.Context) ([]CircuitTermination, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.CircuitTerminations), nil
}

func (s *MemoryStore) Counts(ctx context.Context) (Counts, error) {
	if err := ctx.Err(); err != nil {
		return Counts{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ix := newIndex(s.data)
	c := Counts{
		Devices:    len(s.data.Devices),
		Sites:      len(s.data.Sites),
		Cables:     len(s.data.Cables),
		Interfaces: len(s.data.Interfaces),
		VLANs:      len(s.data.VLANs),
	}
	names := make(map[string]bool)
	for _, d := range s.data.Devices {
		if d.SiteID == nil {
			continue
		}
		c.DevicesWithSites++
		if site, ok := ix.sites[*d.SiteID]; ok {
			names[site.Name] = true
		}
	}
	c.DistinctSiteNames = len(names)
	return c, nil
}

func (s *MemoryStore) StatusBreakdown(ctx context.Context, limit int) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int)
	for i, d := range sortedDevices(s.data) {
		if limit > 0 && i >= limit {
			break
		}
		out[d.Status]++
	}
	return out, nil
}

func (s *MemoryStore) TopSites(ctx context.Context, limit int) ([]SiteCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ix := newIndex(s.data)
	counts := make(map[string]int)
	for _, d := range s.data.Devices {
		if d.SiteID == nil {
			continue
		}
		if site, ok := ix.sites[*d.SiteID]; ok && site.Name != "" {
			counts[site.Name]++
		}
	}
	out := make([]SiteCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, SiteCount{Name: name, DeviceCount: n})
	}
	slices.SortFunc(out, func(a, b SiteCount) int {
		return cmp.Or(cmp.Compare(b.DeviceCount, a.DeviceCount), strings.Compare(a.Name, b.Name))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// WithTx runs fn against a copy of the data and installs the copy only when
// fn succeeds. fn must not call back into the store's read methods.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(w Writer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := &memWriter{data: s.data.Clone()}
	if err := fn(w); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = w.data
	return nil
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
