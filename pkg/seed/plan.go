// Package seed populates and clears a NetBox database. A Plan is a
// declarative catalog of records keyed by name; Apply writes it through a
// netbox.Writer inside one transaction with get-or-create semantics, so
// applying a plan twice leaves the database unchanged.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

type TenantGroup struct {
	Name string
	Slug string
}

type Tenant struct {
	Name  string
	Slug  string
	Group string
}

type Manufacturer struct {
	Name string
	Slug string
}

type DeviceType struct {
	Manufacturer string
	Model        string
	Slug         string
	PartNumber   string
}

type Role struct {
	Name  string
	Slug  string
	Color string
}

type Site struct {
	Name    string
	Slug    string
	Address string
	Tenant  string
}

type Rack struct {
	Site string
	Name string
}

type VLANGroup struct {
	Name string
	Slug string
}

type VLAN struct {
	VID   int
	Name  string
	Group string
	Site  string
}

// Prefix references its VLAN by name
type Prefix struct {
	Prefix      string
	VLAN        string
	Site        string
	Description string
}

type Interface struct {
	Name     string
	Type     string
	MgmtOnly bool
}

// Device is placed in Rack at Position when both are set. MgmtIP, when set,
// is assigned to the MgmtInterface and made the device's primary IPv4.
type Device struct {
	Name          string
	Model         string
	Role          string
	Site          string
	Rack          string
	Position      float64
	Tenant        string
	Interfaces    []Interface
	MgmtInterface string
	MgmtIP        string
}

type Cable struct {
	ADevice    string
	AInterface string
	BDevice    string
	BInterface string
	Type       string
	Length     float64
	LengthUnit string
}

type ClusterType struct {
	Name string
	Slug string
}

type ClusterGroup struct {
	Name string
	Slug string
}

type Cluster struct {
	Name   string
	Type   string
	Group  string
	Tenant string
}

// VirtualMachine belongs to Cluster and, when Site is set, to that site
type VirtualMachine struct {
	Name       string
	Cluster    string
	Site       string
	Tenant     string
	Interfaces []string
}

type Provider struct {
	Name string
	Slug string
}

type CircuitType struct {
	Name string
	Slug string
}

// Plan is an ordered catalog. References between entries use names.
type Plan struct {
	Name            string
	TenantGroups    []TenantGroup
	Tenants         []Tenant
	Manufacturers   []Manufacturer
	DeviceTypes     []DeviceType
	Roles           []Role
	Sites           []Site
	Racks           []Rack
	VLANGroups      []VLANGroup
	VLANs           []VLAN
	Prefixes        []Prefix
	Devices         []Device
	Cables          []Cable
	ClusterTypes    []ClusterType
	ClusterGroups   []ClusterGroup
	Clusters        []Cluster
	VirtualMachines []VirtualMachine
	Providers       []Provider
	CircuitTypes    []CircuitType
}

// Tally counts records by whether Apply created them or found them
type Tally struct {
	Created  int
	Existing int
}

// Report summarizes one Apply
type Report struct {
	Plan  string
	Kinds map[netbox.Kind]*Tally
}

func newReport(name string) *Report {
	return &Report{Plan: name, Kinds: make(map[netbox.Kind]*Tally)}
}

func (r *Report) add(kind netbox.Kind, created bool) {
	t, ok := r.Kinds[kind]
	if !ok {
		t = &Tally{}
		r.Kinds[kind] = t
	}
	if created {
		t.Created++
	} else {
		t.Existing++
	}
}

// Created returns how many records of kind were created
func (r *Report) Created(kind netbox.Kind) int {
	if t, ok := r.Kinds[kind]; ok {
		return t.Created
	}
	return 0
}

// Apply writes plan in one transaction. Any failure rolls back every write.
func Apply(ctx context.Context, runner netbox.TxRunner, plan *Plan, logger logging.Logger) (*Report, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("seed"), logging.String("plan", plan.Name))
	timer := logging.StartTimer(logger, "plan applied")

	var report *Report
	err := runner.WithTx(ctx, func(w netbox.Writer) error {
		a := &applier{w: w, report: newReport(plan.Name), logger: logger, ids: make(map[string]int64)}
		if err := a.apply(ctx, plan); err != nil {
			return err
		}
		report = a.report
		return nil
	})
	if err != nil {
		timer.EndError(err)
		return nil, fmt.Errorf("apply %s: %w", plan.Name, err)
	}
	timer.End(
		logging.Int("devices_created", report.Created(netbox.KindDevice)),
		logging.Int("cables_created", report.Created(netbox.KindCable)),
	)
	return report, nil
}

// applier resolves plan names to ids as it writes
type applier struct {
	w      netbox.Writer
	report *Report
	logger logging.Logger
	ids    map[string]int64
}

func key(kind netbox.Kind, parts ...string) string {
	return string(kind) + "/" + strings.Join(parts, "/")
}

func (a *applier) record(kind netbox.Kind, ref netbox.Ref, parts ...string) {
	a.ids[key(kind, parts...)] = ref.ID
	a.report.add(kind, ref.Created)
}

func (a *applier) lookup(kind netbox.Kind, parts ...string) (int64, error) {
	id, ok := a.ids[key(kind, parts...)]
	if !ok {
		return 0, fmt.Errorf("%s %q is not in the plan", kind, strings.Join(parts, "/"))
	}
	return id, nil
}

// optional resolves an empty name to nil
func (a *applier) optional(kind netbox.Kind, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	id, err := a.lookup(kind, name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (a *applier) apply(ctx context.Context, p *Plan) error {
	steps := []func(context.Context, *Plan) error{
		a.organization,
		a.catalog,
		a.sites,
		a.vlans,
		a.devices,
		a.cables,
		a.virtualization,
		a.circuits,
	}
	for _, step := range steps {
		if err := step(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (a *applier) organization(ctx context.Context, p *Plan) error {
	for _, g := range p.TenantGroups {
		ref, err := a.w.EnsureTenantGroup(ctx, g.Name, g.Slug)
		if err != nil {
			return fmt.Errorf("tenant group %q: %w", g.Name, err)
		}
		a.record(netbox.KindTenantGroup, ref, g.Name)
	}
	for _, t := range p.Tenants {
		group, err := a.optional(netbox.KindTenantGroup, t.Group)
		if err != nil {
			return err
		}
		ref, err := a.w.EnsureTenant(ctx, t.Name, t.Slug, group)
		if err != nil {
			return fmt.Errorf("tenant %q: %w", t.Name, err)
		}
		a.record(netbox.KindTenant, ref, t.Name)
	}
	return nil
}

func (a *applier) catalog(ctx context.Context, p *Plan) error {
	for _, m := range p.Manufacturers {
		ref, err := a.w.EnsureManufacturer(ctx, m.Name, m.Slug)
		if err != nil {
			return fmt.Errorf("manufacturer %q: %w", m.Name, err)
		}
		a.record(netbox.KindManufacturer, ref, m.Name)
	}
	for _, dt := range p.DeviceTypes {
		mfr, err := a.lookup(netbox.KindManufacturer, dt.Manufacturer)
		if err != nil {
			return err
		}
		ref, err := a.w.EnsureDeviceType(ctx, mfr, dt.Model, dt.Slug, dt.PartNumber)
		if err != nil {
			return fmt.Errorf("device type %q: %w", dt.Model, err)
		}
		a.record(netbox.KindDeviceType, ref, dt.Model)
	}
	for _, r := range p.Roles {
		ref, err := a.w.EnsureRole(ctx, r.Name, r.Slug, r.Color)
		if err != nil {
			return fmt.Errorf("role %q: %w", r.Name, err)
		}
		a.record(netbox.KindRole, ref, r.Name)
	}
	return nil
}

func (a *applier) sites(ctx context.Context, p *Plan) error {
	for _, s := range p.Sites {
		tenant, err := a.optional(netbox.KindTenant, s.Tenant)
		if err != nil {
			return err
		}
		ref, err := a.w.EnsureSite(ctx, netbox.SiteSpec{
			Name:            s.Name,
			Slug:            s.Slug,
			Status:          "active",
			PhysicalAddress: s.Address,
			TenantID:        tenant,
		})
		if err != nil {
			return fmt.Errorf("site %q: %w", s.Name, err)
		}
		a.record(netbox.KindSite, ref, s.Name)
	}
	for _, r := range p.Racks {
		site, err := a.lookup(netbox.KindSite, r.Site)
		if err != nil {
			return err
		}
		ref, err := a.w.EnsureRack(ctx, site, r.Name)
		if err != nil {
			return fmt.Errorf("rack %q: %w", r.Name, err)
		}
		a.record(netbox.KindRack, ref, r.Site, r.Name)
	}
	return nil
}

func (a *applier) vlans(ctx context.Context, p *Plan) error {
	for _, g := range p.VLANGroups {
		ref, err := a.w.EnsureVLANGroup(ctx, g.Name, g.Slug)
		if err != nil {
			return fmt.Errorf("vlan group %q: %w", g.Name, err)
		}
		a.record(netbox.KindVLANGroup, ref, g.Name)
	}
	for _, v := range p.VLANs {
		group, err := a.optional(netbox.KindVLANGroup, v.Group)
		if err != nil {
			return err
		}
		site, err := a.optional(netbox.KindSite, v.Site)
		if err != nil {
			return err
		}
		ref, err := a.w.EnsureVLAN(ctx, netbox.VLANSpec{VID: v.VID, Name: v.Name, GroupID: group, SiteID: site})
		if err != nil {
			return fmt.Errorf("vlan %d: %w", v.VID, err)
		}
		a.record(netbox.KindVLAN, ref, v.Name)
	}
	for _, pf := range p.Prefixes {
		vlan, err := a.optional(netbox.KindVLAN, pf.VLAN)
		if err != nil {
			return err
		}
		site, err := a.optional(netbox.KindSite, pf.Site)
		if err != nil {
			return err
		}
		ref, err := a.w.EnsurePrefix(ctx, netbox.PrefixSpec{
			Prefix:      pf.Prefix,
			VLANID:      vlan,
			SiteID:      site,
			Description: pf.Description,
		})
		if err != nil {
			return fmt.Errorf("prefix %s: %w", pf.Prefix, err)
		}
		a.record(netbox.KindPrefix, ref, pf.Prefix)
	}
	return nil
}

func (a *applier) devices(ctx context.Context, p *Plan) error {
	for _, d := range p.Devices {
		if err := a.device(ctx, d); err != nil {
			return fmt.Errorf("device %q: %w", d.Name, err)
		}
	}
	return nil
}

func (a *applier) device(ctx context.Context, d Device) error {
	dt, err := a.lookup(netbox.KindDeviceType, d.Model)
	if err != nil {
		return err
	}
	role, err := a.lookup(netbox.KindRole, d.Role)
	if err != nil {
		return err
	}
	site, err := a.lookup(netbox.KindSite, d.Site)
	if err != nil {
		return err
	}
	tenant, err := a.optional(netbox.KindTenant, d.Tenant)
	if err != nil {
		return err
	}
	spec := netbox.DeviceSpec{
		Name:         d.Name,
		DeviceTypeID: dt,
		RoleID:       role,
		SiteID:       site,
		TenantID:     tenant,
		Status:       "active",
	}
	if d.Rack != "" {
		rack, err := a.lookup(netbox.KindRack, d.Site, d.Rack)
		if err != nil {
			return err
		}
		spec.RackID = &rack
		if d.Position > 0 {
			pos := d.Position
			spec.Position = &pos
		}
	}
	ref, err := a.w.EnsureDevice(ctx, spec)
	if err != nil {
		return err
	}
	a.record(netbox.KindDevice, ref, d.Name)

	for _, iface := range d.Interfaces {
		ir, err := a.w.EnsureInterface(ctx, netbox.InterfaceSpec{
			DeviceID: ref.ID,
			Name:     iface.Name,
			Type:     iface.Type,
			Enabled:  true,
			MgmtOnly: iface.MgmtOnly,
		})
		if err != nil {
			return fmt.Errorf("interface %q: %w", iface.Name, err)
		}
		a.record(netbox.KindInterface, ir, d.Name, iface.Name)
	}

	if d.MgmtIP == "" {
		return nil
	}
	mgmt, err := a.lookup(netbox.KindInterface, d.Name, d.MgmtInterface)
	if err != nil {
		return err
	}
	ip, err := a.w.EnsureIPAddress(ctx, d.MgmtIP, &mgmt)
	if err != nil {
		return fmt.Errorf("ip %s: %w", d.MgmtIP, err)
	}
	a.record(netbox.KindIPAddress, ip, d.MgmtIP)
	if strings.Contains(d.MgmtIP, ":") {
		return nil
	}
	return a.w.SetPrimaryIP4(ctx, ref.ID, ip.ID)
}

// cables creates every planned cable. A cable whose interface is already
// cabled counts as existing, which keeps reruns idempotent.
func (a *applier) cables(ctx context.Context, p *Plan) error {
	for _, c := range p.Cables {
		aIface, err := a.lookup(netbox.KindInterface, c.ADevice, c.AInterface)
		if err != nil {
			return err
		}
		bIface, err := a.lookup(netbox.KindInterface, c.BDevice, c.BInterface)
		if err != nil {
			return err
		}
		spec := netbox.CableSpec{Type: c.Type, Status: "connected", LengthUnit: c.LengthUnit}
		if c.Length > 0 {
			length := c.Length
			spec.Length = &length
		}
		id, err := a.w.CreateCable(ctx, aIface, bIface, spec)
		if errors.Is(err, netbox.ErrCabled) {
			a.logger.Debug("cable exists",
				logging.String("a", c.ADevice+":"+c.AInterface),
				logging.String("b", c.BDevice+":"+c.BInterface),
			)
			a.report.add(netbox.KindCable, false)
			continue
		}
		if err != nil {
			return fmt.Errorf("cable %s:%s to %s:%s: %w", c.ADevice, c.AInterface, c.BDevice, c.BInterface, err)
		}
		a.logger.Debug("cable created", logging.CableID(id))
		a.report.add(netbox.KindCable, true)
	}
	return nil
}

func (a *applier) virtualization(ctx context.Context, p *Plan) error {
	for _, t := range p.ClusterTypes {
		ref, err := a.w.EnsureClusterType(ctx, t.Name, t.Slug)
		if err != nil {
			return fmt.Errorf("cluster type %q: %w", t.Name, err)
		}
		a.record(netbox.KindClusterType, ref, t.Name)
	}
	for _, g := range p.ClusterGroups {
		ref, err := a.w.EnsureClusterGroup(ctx, g.Name, g.Slug)
		if err != nil {
			return fmt.Errorf("cluster group %q: %w", g.Name, err)
		}
		a.record(netbox.KindClusterGroup, ref, g.Name)
	}
	for _, c := range p.Clusters {
		typ, err := a.lookup(netbox.KindClusterType, c.Type)
		if err != nil {
			return err
		}
		group, err := a.optional(netbox.KindClusterGroup, c.Group)
		if err != nil {
			return err
		}
		tenant, err := a.optional(netbox.KindTenant, c.Tenant)
		if err != nil {
			return err
		}
		ref, err := a.w.EnsureCluster(ctx, netbox.ClusterSpec{Name: c.Name, TypeID: typ, GroupID: group, TenantID: tenant})
		if err != nil {
			return fmt.Errorf("cluster %q: %w", c.Name, err)
		}
		a.record(netbox.KindCluster, ref, c.Name)
	}
	for _, vm := range p.VirtualMachines {
		if err := a.virtualMachine(ctx, vm); err != nil {
			return fmt.Errorf("virtual machine %q: %w", vm.Name, err)
		}
	}
	return nil
}

func (a *applier) virtualMachine(ctx context.Context, vm VirtualMachine) error {
	cluster, err := a.lookup(netbox.KindCluster, vm.Cluster)
	if err != nil {
		return err
	}
	site, err := a.optional(netbox.KindSite, vm.Site)
	if err != nil {
		return err
	}
	tenant, err := a.optional(netbox.KindTenant, vm.Tenant)
	if err != nil {
		return err
	}
	ref, err := a.w.EnsureVirtualMachine(ctx, netbox.VirtualMachineSpec{
		Name:      vm.Name,
		ClusterID: cluster,
		SiteID:    site,
		TenantID:  tenant,
		Status:    "active",
	})
	if err != nil {
		return err
	}
	a.record(netbox.KindVirtualMachine, ref, vm.Cluster, vm.Name)
	for _, name := range vm.Interfaces {
		ir, err := a.w.EnsureVMInterface(ctx, ref.ID, name)
		if err != nil {
			return fmt.Errorf("interface %q: %w", name, err)
		}
		a.record(netbox.KindVMInterface, ir, vm.Cluster, vm.Name, name)
	}
	return nil
}

// circuits writes the provider catalog. Circuits themselves are not planned.
func (a *applier) circuits(ctx context.Context, p *Plan) error {
	for _, pr := range p.Providers {
		ref, err := a.w.EnsureProvider(ctx, pr.Name, pr.Slug)
		if err != nil {
			return fmt.Errorf("provider %q: %w", pr.Name, err)
		}
		a.record(netbox.KindProvider, ref, pr.Name)
	}
	for _, t := range p.CircuitTypes {
		ref, err := a.w.EnsureCircuitType(ctx, t.Name, t.Slug)
		if err != nil {
			return fmt.Errorf("circuit type %q: %w", t.Name, err)
		}
		a.record(netbox.KindCircuitType, ref, t.Name)
	}
	return nil
}
