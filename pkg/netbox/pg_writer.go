package netbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// pgWriter writes NetBox rows inside one transaction. Rows are inserted the
// way NetBox 4.x stores them; NetBox's cached cable paths are not traced, so
// run `manage.py trace_paths` after seeding if the NetBox UI needs them.
type pgWriter struct {
	tx           pgx.Tx
	shape        SchemaShape
	roleColumn   string
	contentTypes map[string]int64
}

// column is one insert value. cast, when set, is appended to the
// placeholder so text parameters can feed inet/cidr columns.
type column struct {
	name  string
	value any
	cast  string
}

func col(name string, value any) column { return column{name: name, value: value} }

func timestamps(cols ...column) []column {
	now := time.Now().UTC()
	return append(cols,
		col("created", now),
		col("last_updated", now),
		col("custom_field_data", map[string]any{}),
	)
}

// organizational columns: name/slug models with a description
func organizational(name, slug string, extra ...column) []column {
	cols := append([]column{col("name", name), col("slug", slug), col("description", "")}, extra...)
	return timestamps(cols...)
}

// primary columns: models with description and comments
func primary(extra ...column) []column {
	return timestamps(append(extra, col("description", ""), col("comments", ""))...)
}

func (w *pgWriter) insert(ctx context.Context, table string, cols []column) (int64, error) {
	names := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = c.name
		marks[i] = fmt.Sprintf("$%d%s", i+1, c.cast)
		args[i] = c.value
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(names, ", "), strings.Join(marks, ", "))

	var id int64
	if err := w.tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	return id, nil
}

// ensure returns the id selected by lookup, inserting cols when no row matches
func (w *pgWriter) ensure(ctx context.Context, table, lookup string, lookupArgs []any, cols []column) (Ref, error) {
	var id int64
	err := w.tx.QueryRow(ctx, lookup, lookupArgs...).Scan(&id)
	if err == nil {
		return Ref{ID: id}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Ref{}, fmt.Errorf("lookup in %s: %w", table, err)
	}
	id, err = w.insert(ctx, table, cols)
	if err != nil {
		return Ref{}, err
	}
	return Ref{ID: id, Created: true}, nil
}

func (w *pgWriter) contentType(ctx context.Context, objectType string) (int64, error) {
	if id, ok := w.contentTypes[objectType]; ok {
		return id, nil
	}
	app, model, ok := strings.Cut(objectType, ".")
	if !ok {
		return 0, fmt.Errorf("malformed object type %q", objectType)
	}
	var id int64
	err := w.tx.QueryRow(ctx,
		`SELECT id FROM django_content_type WHERE app_label = $1 AND model = $2`, app, model).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("content type %s: %w", objectType, err)
	}
	if w.contentTypes == nil {
		w.contentTypes = make(map[string]int64)
	}
	w.contentTypes[objectType] = id
	return id, nil
}

func (w *pgWriter) EnsureTenantGroup(ctx context.Context, name, slug string) (Ref, error) {
	var tree int64
	if err := w.tx.QueryRow(ctx, `SELECT COALESCE(MAX(tree_id), 0) + 1 FROM tenancy_tenantgroup`).Scan(&tree); err != nil {
		return Ref{}, fmt.Errorf("next tenant group tree: %w", err)
	}
	return w.ensure(ctx, "tenancy_tenantgroup",
		`SELECT id FROM tenancy_tenantgroup WHERE name = $1`, []any{name},
		organizational(name, slug,
			col("parent_id", nil),
			col("tree_id", tree), col("lft", 1), col("rght", 2), col("level", 0),
		))
}

func (w *pgWriter) EnsureTenant(ctx context.Context, name, slug string, groupID *int64) (Ref, error) {
	return w.ensure(ctx, "tenancy_tenant",
		`SELECT id FROM tenancy_tenant WHERE name = $1`, []any{name},
		primary(col("name", name), col("slug", slug), col("group_id", groupID)))
}

func (w *pgWriter) EnsureManufacturer(ctx context.Context, name, slug string) (Ref, error) {
	return w.ensure(ctx, "dcim_manufacturer",
		`SELECT id FROM dcim_manufacturer WHERE name = $1`, []any{name},
		organizational(name, slug))
}

func (w *pgWriter) EnsureDeviceType(ctx context.Context, manufacturerID int64, model, slug, partNumber string) (Ref, error) {
	return w.ensure(ctx, "dcim_devicetype",
		`SELECT id FROM dcim_devicetype WHERE manufacturer_id = $1 AND model = $2`, []any{manufacturerID, model},
		primary(
			col("manufacturer_id", manufacturerID),
			col("model", model),
			col("slug", slug),
			col("part_number", partNumber),
			col("u_height", 1),
			col("is_full_depth", true),
			col("subdevice_role", ""),
			col("exclude_from_utilization", false),
		))
}

func (w *pgWriter) EnsureRole(ctx context.Context, name, slug, color string) (Ref, error) {
	return w.ensure(ctx, "dcim_devicerole",
		`SELECT id FROM dcim_devicerole WHERE name = $1`, []any{name},
		organizational(name, slug, col("color", color), col("vm_role", true)))
}

func (w *pgWriter) EnsureSite(ctx context.Context, spec SiteSpec) (Ref, error) {
	status := spec.Status
	if status == "" {
		status = "active"
	}
	return w.ensure(ctx, "dcim_site",
		`SELECT id FROM dcim_site WHERE name = $1`, []any{spec.Name},
		primary(
			col("name", spec.Name),
			col("_name", spec.Name),
			col("slug", spec.Slug),
			col("status", status),
			col("facility", ""),
			col("time_zone", ""),
			col("physical_address", spec.PhysicalAddress),
			col("shipping_address", ""),
			col("tenant_id", spec.TenantID),
		))
}

func (w *pgWriter) EnsureRack(ctx context.Context, siteID int64, name string) (Ref, error) {
	return w.ensure(ctx, "dcim_rack",
		`SELECT id FROM dcim_rack WHERE site_id = $1 AND name = $2`, []any{siteID, name},
		primary(
			col("site_id", siteID),
			col("name", name),
			col("_name", name),
			col("status", "active"),
			col("u_height", 42),
			col("width", 19),
			col("starting_unit", 1),
			col("desc_units", false),
		))
}

func (w *pgWriter) EnsureVLANGroup(ctx context.Context, name, slug string) (Ref, error) {
	return w.ensure(ctx, "ipam_vlangroup",
		`SELECT id FROM ipam_vlangroup WHERE name = $1`, []any{name},
		organizational(name, slug, column{name: "vid_ranges", value: "{\"[1,4095)\"}", cast: "::text::int4range[]"}))
}

func (w *pgWriter) EnsureVLAN(ctx context.Context, spec VLANSpec) (Ref, error) {
	return w.ensure(ctx, "ipam_vlan",
		`SELECT id FROM ipam_vlan
		 WHERE vid = $1 AND group_id IS NOT DISTINCT FROM $2 AND site_id IS NOT DISTINCT FROM $3`,
		[]any{spec.VID, spec.GroupID, spec.SiteID},
		primary(
			col("vid", spec.VID),
			col("name", spec.Name),
			col("group_id", spec.GroupID),
			col("site_id", spec.SiteID),
			col("status", "active"),
		))
}

func (w *pgWriter) EnsurePrefix(ctx context.Context, spec PrefixSpec) (Ref, error) {
	cols := primary(
		column{name: "prefix", value: spec.Prefix, cast: "::text::cidr"},
		col("vlan_id", spec.VLANID),
		col("site_id", spec.SiteID),
		col("status", "active"),
		col("is_pool", false),
		col("mark_utilized", false),
		col("_depth", 0),
		col("_children", 0),
	)
	// description is part of primary(); replace its empty default
	for i := range cols {
		if cols[i].name == "description" {
			cols[i].value = spec.Description
		}
	}
	return w.ensure(ctx, "ipam_prefix",
		`SELECT id FROM ipam_prefix WHERE prefix = $1::text::cidr`, []any{spec.Prefix}, cols)
}

func (w *pgWriter) EnsureDevice(ctx context.Context, spec DeviceSpec) (Ref, error) {
	status := spec.Status
	if status == "" {
		status = "active"
	}
	cols := []column{
		col("name", spec.Name),
		col("_name", spec.Name),
		col("device_type_id", spec.DeviceTypeID),
		col(w.roleColumn, spec.RoleID),
		col("site_id", spec.SiteID),
		col("rack_id", spec.RackID),
		col("position", spec.Position),
		col("tenant_id", spec.TenantID),
		col("status", status),
		col("face", ""),
		col("serial", ""),
	}
	for _, counter := range []string{
		"console_port_count", "console_server_port_count", "power_port_count",
		"power_outlet_count", "interface_count", "front_port_count",
		"rear_port_count", "device_bay_count", "module_bay_count", "inventory_item_count",
	} {
		cols = append(cols, col(counter, 0))
	}
	return w.ensure(ctx, "dcim_device",
		`SELECT id FROM dcim_device WHERE name = $1 AND site_id = $2`, []any{spec.Name, spec.SiteID},
		primary(cols...))
}

func (w *pgWriter) EnsureInterface(ctx context.Context, spec InterfaceSpec) (Ref, error) {
	ref, err := w.ensure(ctx, "dcim_interface",
		`SELECT id FROM dcim_interface WHERE device_id = $1 AND name = $2`, []any{spec.DeviceID, spec.Name},
		timestamps(
			col("device_id", spec.DeviceID),
			col("name", spec.Name),
			col("_name", spec.Name),
			col("label", ""),
			col("description", ""),
			col("type", spec.Type),
			col("enabled", spec.Enabled),
			col("mgmt_only", spec.MgmtOnly),
			col("mark_connected", false),
		))
	if err != nil || !ref.Created {
		return ref, err
	}
	if _, err := w.tx.Exec(ctx,
		`UPDATE dcim_device SET interface_count = interface_count + 1 WHERE id = $1`, spec.DeviceID); err != nil {
		return Ref{}, fmt.Errorf("update interface count: %w", err)
	}
	return ref, nil
}

func (w *pgWriter) EnsureIPAddress(ctx context.Context, address string, interfaceID *int64) (Ref, error) {
	var assignedType *int64
	if interfaceID != nil {
		ct, err := w.contentType(ctx, ObjectInterface)
		if err != nil {
			return Ref{}, err
		}
		assignedType = &ct
	}
	return w.ensure(ctx, "ipam_ipaddress",
		`SELECT id FROM ipam_ipaddress WHERE address = $1::text::inet`, []any{address},
		primary(
			column{name: "address", value: address, cast: "::text::inet"},
			col("status", "active"),
			col("role", ""),
			col("dns_name", ""),
			col("assigned_object_type_id", assignedType),
			col("assigned_object_id", interfaceID),
		))
}

func (w *pgWriter) SetPrimaryIP4(ctx context.Context, deviceID, ipID int64) error {
	tag, err := w.tx.Exec(ctx, `UPDATE dcim_device SET primary_ip4_id = $2 WHERE id = $1`, deviceID, ipID)
	if err != nil {
		return fmt.Errorf("set primary ip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("device %d: %w", deviceID, ErrNotFound)
	}
	return nil
}

func (w *pgWriter) EnsureClusterType(ctx context.Context, name, slug string) (Ref, error) {
	return w.ensure(ctx, "virtualization_clustertype",
		`SELECT id FROM virtualization_clustertype WHERE name = $1`, []any{name},
		organizational(name, slug))
}

func (w *pgWriter) EnsureClusterGroup(ctx context.Context, name, slug string) (Ref, error) {
	return w.ensure(ctx, "virtualization_clustergroup",
		`SELECT id FROM virtualization_clustergroup WHERE name = $1`, []any{name},
		organizational(name, slug))
}

func (w *pgWriter) EnsureCluster(ctx context.Context, spec ClusterSpec) (Ref, error) {
	return w.ensure(ctx, "virtualization_cluster",
		`SELECT id FROM virtualization_cluster WHERE name = $1 AND group_id IS NOT DISTINCT FROM $2`,
		[]any{spec.Name, spec.GroupID},
		primary(
			col("name", spec.Name),
			col("type_id", spec.TypeID),
			col("group_id", spec.GroupID),
			col("tenant_id", spec.TenantID),
			col("status", "active"),
		))
}

// EnsureVirtualMachine writes the NetBox 4.1 column set (serial and the
// component counters are NOT NULL there).
func (w *pgWriter) EnsureVirtualMachine(ctx context.Context, spec VirtualMachineSpec) (Ref, error) {
	status := spec.Status
	if status == "" {
		status = "active"
	}
	return w.ensure(ctx, "virtualization_virtualmachine",
		`SELECT id FROM virtualization_virtualmachine WHERE name = $1 AND cluster_id = $2`,
		[]any{spec.Name, spec.ClusterID},
		primary(
			col("name", spec.Name),
			col("_name", spec.Name),
			col("status", status),
			col("cluster_id", spec.ClusterID),
			col("site_id", spec.SiteID),
			col("tenant_id", spec.TenantID),
			col("serial", ""),
			col("interface_count", 0),
			col("virtual_disk_count", 0),
		))
}

func (w *pgWriter) EnsureVMInterface(ctx context.Context, vmID int64, name string) (Ref, error) {
	ref, err := w.ensure(ctx, "virtualization_vminterface",
		`SELECT id FROM virtualization_vminterface WHERE virtual_machine_id = $1 AND name = $2`, []any{vmID, name},
		timestamps(
			col("virtual_machine_id", vmID),
			col("name", name),
			col("_name", name),
			col("description", ""),
			col("enabled", true),
			col("mode", ""),
		))
	if err != nil || !ref.Created {
		return ref, err
	}
	if _, err := w.tx.Exec(ctx,
		`UPDATE virtualization_virtualmachine SET interface_count = interface_count + 1 WHERE id = $1`, vmID); err != nil {
		return Ref{}, fmt.Errorf("update vm interface count: %w", err)
	}
	return ref, nil
}

func (w *pgWriter) EnsureProvider(ctx context.Context, name, slug string) (Ref, error) {
	return w.ensure(ctx, "circuits_provider",
		`SELECT id FROM circuits_provider WHERE name = $1`, []any{name},
		primary(col("name", name), col("slug", slug)))
}

func (w *pgWriter) EnsureCircuitType(ctx context.Context, name, slug string) (Ref, error) {
	return w.ensure(ctx, "circuits_circuittype",
		`SELECT id FROM circuits_circuittype WHERE name = $1`, []any{name},
		organizational(name, slug, col("color", "")))
}

func (w *pgWriter) FindInterface(ctx context.Context, deviceID int64, name string) (int64, error) {
	var id int64
	err := w.tx.QueryRow(ctx,
		`SELECT id FROM dcim_interface WHERE device_id = $1 AND name = $2`, deviceID, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("interface %q on device %d: %w", name, deviceID, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("find interface: %w", err)
	}
	return id, nil
}

type cableEndpoint struct {
	interfaceID int64
	deviceID    int64
	siteID      *int64
}

func (w *pgWriter) endpoint(ctx context.Context, interfaceID int64) (cableEndpoint, error) {
	var (
		e       cableEndpoint
		cableID *int64
	)
	err := w.tx.QueryRow(ctx, `
		SELECT i.id, i.device_id, d.site_id, i.cable_id
		FROM dcim_interface i
		JOIN dcim_device d ON d.id = i.device_id
		WHERE i.id = $1`, interfaceID).Scan(&e.interfaceID, &e.deviceID, &e.siteID, &cableID)
	if errors.Is(err, pgx.ErrNoRows) {
		return e, fmt.Errorf("interface %d: %w", interfaceID, ErrNotFound)
	}
	if err != nil {
		return e, fmt.Errorf("load interface %d: %w", interfaceID, err)
	}
	if cableID != nil {
		return e, fmt.Errorf("interface %d has cable %d: %w", interfaceID, *cableID, ErrCabled)
	}
	return e, nil
}

func (w *pgWriter) CreateCable(ctx context.Context, aInterfaceID, bInterfaceID int64, spec CableSpec) (int64, error) {
	if aInterfaceID == bInterfaceID {
		return 0, errors.New("cable cannot terminate twice on one interface")
	}
	a, err := w.endpoint(ctx, aInterfaceID)
	if err != nil {
		return 0, err
	}
	b, err := w.endpoint(ctx, bInterfaceID)
	if err != nil {
		return 0, err
	}
	ifaceType, err := w.contentType(ctx, ObjectInterface)
	if err != nil {
		return 0, err
	}

	status := spec.Status
	if status == "" {
		status = "connected"
	}
	cols := []column{
		col("type", spec.Type),
		col("status", status),
		col("label", spec.Label),
		col("length", spec.Length),
		col("length_unit", spec.LengthUnit),
		col("color", ""),
	}
	if w.shape == ShapeLegacy {
		cols = append(cols,
			col("termination_a_type_id", ifaceType),
			col("termination_a_id", a.interfaceID),
			col("_termination_a_device_id", a.deviceID),
			col("termination_b_type_id", ifaceType),
			col("termination_b_id", b.interfaceID),
			col("_termination_b_device_id", b.deviceID),
		)
	}
	cableID, err := w.insert(ctx, "dcim_cable", primary(cols...))
	if err != nil {
		return 0, err
	}

	for _, side := range []struct {
		end CableEnd
		ep  cableEndpoint
	}{{EndA, a}, {EndB, b}} {
		if w.shape == ShapeLegacy {
			if _, err := w.tx.Exec(ctx, `UPDATE dcim_interface SET cable_id = $2 WHERE id = $1`,
				side.ep.interfaceID, cableID); err != nil {
				return 0, fmt.Errorf("attach cable: %w", err)
			}
			continue
		}
		now := time.Now().UTC()
		if _, err := w.insert(ctx, "dcim_cabletermination", []column{
			col("cable_id", cableID),
			col("cable_end", string(side.end)),
			col("termination_type_id", ifaceType),
			col("termination_id", side.ep.interfaceID),
			col("_device_id", side.ep.deviceID),
			col("_site_id", side.ep.siteID),
			col("created", now),
			col("last_updated", now),
		}); err != nil {
			return 0, err
		}
		if _, err := w.tx.Exec(ctx, `UPDATE dcim_interface SET cable_id = $2, cable_end = $3 WHERE id = $1`,
			side.ep.interfaceID, cableID, string(side.end)); err != nil {
			return 0, fmt.Errorf("attach cable: %w", err)
		}
	}
	return cableID, nil
}

// scopedSelect returns ids of every row (empty prefix) or of rows whose
// scope name matches the prefix.
func (w *pgWriter) scopedSelect(ctx context.Context, prefix, all, scoped string, extra ...any) ([]int64, error) {
	query, args := all, []any(nil)
	if prefix != "" {
		query = scoped
		args = append([]any{escapeLike(prefix) + "%"}, extra...)
	}
	rows, err := w.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (w *pgWriter) exec(ctx context.Context, query string, args ...any) error {
	_, err := w.tx.Exec(ctx, query, args...)
	return err
}

func (w *pgWriter) hasTable(ctx context.Context, table string) (bool, error) {
	var ok bool
	err := w.tx.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&ok)
	return ok, err
}

func (w *pgWriter) deleteIDs(ctx context.Context, table string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := w.tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1)", table), ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const siteJoin = "JOIN dcim_site s ON s.id = %s WHERE s.name LIKE $1"

func (w *pgWriter) Delete(ctx context.Context, kind Kind, prefix string) (int64, error) {
	n, err := w.delete(ctx, kind, prefix)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", kind, err)
	}
	return n, nil
}

func (w *pgWriter) delete(ctx context.Context, kind Kind, prefix string) (int64, error) {
	byName := func(table, field string) (int64, error) {
		ids, err := w.scopedSelect(ctx, prefix,
			fmt.Sprintf("SELECT id FROM %s", table),
			fmt.Sprintf("SELECT id FROM %s WHERE %s LIKE $1", table, field))
		if err != nil {
			return 0, err
		}
		return w.deleteIDs(ctx, table, ids)
	}
	bySite := func(table string) ([]int64, error) {
		return w.scopedSelect(ctx, prefix,
			fmt.Sprintf("SELECT id FROM %s", table),
			fmt.Sprintf("SELECT t.id FROM %s t "+siteJoin, table, "t.site_id"))
	}
	deviceScope := "SELECT d.id FROM dcim_device d " + fmt.Sprintf(siteJoin, "d.site_id")
	vmScope := "SELECT v.id FROM virtualization_virtualmachine v " + fmt.Sprintf(siteJoin, "v.site_id")

	switch kind {
	case KindCircuitTermination:
		if prefix != "" {
			return 0, nil
		}
		tag, err := w.tx.Exec(ctx, "DELETE FROM circuits_circuittermination")
		if err != nil {
			return 0, err
		}
		return tag.RowsAffected(), nil

	case KindCircuit:
		return byName("circuits_circuit", "cid")
	case KindCircuitType:
		return byName("circuits_circuittype", "name")

	case KindProvider:
		for _, table := range []string{"circuits_provideraccount", "circuits_providernetwork"} {
			ok, err := w.hasTable(ctx, table)
			if err != nil {
				return 0, err
			}
			if !ok {
				continue
			}
			if err := w.exec(ctx, fmt.Sprintf(`
				DELETE FROM %s
				WHERE provider_id IN (SELECT id FROM circuits_provider WHERE name LIKE $1)`, table), escapeLike(prefix)+"%"); err != nil {
				return 0, err
			}
		}
		return byName("circuits_provider", "name")

	case KindCable:
		scoped := "SELECT DISTINCT t.cable_id FROM dcim_cabletermination t JOIN dcim_device d ON d.id = t._device_id " +
			fmt.Sprintf(siteJoin, "d.site_id")
		if w.shape == ShapeLegacy {
			scoped = "SELECT DISTINCT c.id FROM dcim_cable c JOIN dcim_device d ON d.id IN (c._termination_a_device_id, c._termination_b_device_id) " +
				fmt.Sprintf(siteJoin, "d.site_id")
		}
		ids, err := w.scopedSelect(ctx, prefix, "SELECT id FROM dcim_cable", scoped)
		if err != nil || len(ids) == 0 {
			return 0, err
		}
		if w.shape == ShapeLegacy {
			if err := w.exec(ctx, `UPDATE dcim_interface SET cable_id = NULL, _path_id = NULL WHERE cable_id = ANY($1)`, ids); err != nil {
				return 0, err
			}
		} else {
			if err := w.exec(ctx, `DELETE FROM dcim_cabletermination WHERE cable_id = ANY($1)`, ids); err != nil {
				return 0, err
			}
			if err := w.exec(ctx, `UPDATE dcim_interface SET cable_id = NULL, cable_end = '', _path_id = NULL WHERE cable_id = ANY($1)`, ids); err != nil {
				return 0, err
			}
		}
		return w.deleteIDs(ctx, "dcim_cable", ids)

	case KindIPAddress:
		ifaceType, err := w.contentType(ctx, ObjectInterface)
		if err != nil {
			return 0, err
		}
		ids, err := w.scopedSelect(ctx, prefix, "SELECT id FROM ipam_ipaddress", `
			SELECT ip.id FROM ipam_ipaddress ip
			JOIN dcim_interface i ON i.id = ip.assigned_object_id AND ip.assigned_object_type_id = $2
			JOIN dcim_device d ON d.id = i.device_id
			`+fmt.Sprintf(siteJoin, "d.site_id"), ifaceType)
		if err != nil || len(ids) == 0 {
			return 0, err
		}
		for _, table := range []string{"dcim_device", "virtualization_virtualmachine"} {
			if err := w.exec(ctx, fmt.Sprintf(`
				UPDATE %s SET
					primary_ip4_id = CASE WHEN primary_ip4_id = ANY($1) THEN NULL ELSE primary_ip4_id END,
					primary_ip6_id = CASE WHEN primary_ip6_id = ANY($1) THEN NULL ELSE primary_ip6_id END
				WHERE primary_ip4_id = ANY($1) OR primary_ip6_id = ANY($1)`, table), ids); err != nil {
				return 0, err
			}
		}
		return w.deleteIDs(ctx, "ipam_ipaddress", ids)

	case KindVMInterface:
		ids, err := w.scopedSelect(ctx, prefix, "SELECT id FROM virtualization_vminterface",
			"SELECT i.id FROM virtualization_vminterface i WHERE i.virtual_machine_id IN ("+vmScope+")")
		if err != nil {
			return 0, err
		}
		return w.deleteIDs(ctx, "virtualization_vminterface", ids)

	case KindVirtualMachine:
		ids, err := w.scopedSelect(ctx, prefix, "SELECT id FROM virtualization_virtualmachine", vmScope)
		if err != nil || len(ids) == 0 {
			return 0, err
		}
		// virtual disks arrived in NetBox 4.0
		disks, err := w.hasTable(ctx, "virtualization_virtualdisk")
		if err != nil {
			return 0, err
		}
		if disks {
			if err := w.exec(ctx, `DELETE FROM virtualization_virtualdisk WHERE virtual_machine_id = ANY($1)`, ids); err != nil {
				return 0, err
			}
		}
		return w.deleteIDs(ctx, "virtualization_virtualmachine", ids)

	case KindCluster:
		if err := w.exec(ctx, `
			UPDATE dcim_device SET cluster_id = NULL
			WHERE cluster_id IN (SELECT id FROM virtualization_cluster WHERE name LIKE $1)`, escapeLike(prefix)+"%"); err != nil {
			return 0, err
		}
		return byName("virtualization_cluster", "name")

	case KindInterface:
		ids, err := w.scopedSelect(ctx, prefix, "SELECT id FROM dcim_interface",
			"SELECT i.id FROM dcim_interface i WHERE i.device_id IN ("+deviceScope+")")
		if err != nil {
			return 0, err
		}
		return w.deleteIDs(ctx, "dcim_interface", ids)

	case KindDevice:
		ids, err := w.scopedSelect(ctx, prefix, "SELECT id FROM dcim_device", deviceScope)
		if err != nil {
			return 0, err
		}
		return w.deleteIDs(ctx, "dcim_device", ids)

	case KindRack, KindPrefix, KindVLAN:
		table := map[Kind]string{KindRack: "dcim_rack", KindPrefix: "ipam_prefix", KindVLAN: "ipam_vlan"}[kind]
		ids, err := bySite(table)
		if err != nil {
			return 0, err
		}
		if kind == KindVLAN && len(ids) > 0 {
			if err := w.exec(ctx, `UPDATE ipam_prefix SET vlan_id = NULL WHERE vlan_id = ANY($1)`, ids); err != nil {
				return 0, err
			}
		}
		return w.deleteIDs(ctx, table, ids)

	case KindVLANGroup:
		if err := w.exec(ctx, `
			UPDATE ipam_vlan SET group_id = NULL
			WHERE group_id IN (SELECT id FROM ipam_vlangroup WHERE name LIKE $1)`, escapeLike(prefix)+"%"); err != nil {
			return 0, err
		}
		return byName("ipam_vlangroup", "name")

	case KindSite:
		return byName("dcim_site", "name")

	case KindClusterGroup:
		if err := w.exec(ctx, `
			UPDATE virtualization_cluster SET group_id = NULL
			WHERE group_id IN (SELECT id FROM virtualization_clustergroup WHERE name LIKE $1)`, escapeLike(prefix)+"%"); err != nil {
			return 0, err
		}
		return byName("virtualization_clustergroup", "name")
	case KindClusterType:
		return byName("virtualization_clustertype", "name")

	case KindDeviceType:
		return byName("dcim_devicetype", "model")
	case KindRole:
		return byName("dcim_devicerole", "name")
	case KindManufacturer:
		return byName("dcim_manufacturer", "name")

	case KindTenant:
		for _, table := range []string{"dcim_site", "dcim_device", "virtualization_cluster", "virtualization_virtualmachine", "circuits_circuit"} {
			if err := w.exec(ctx, fmt.Sprintf(`
				UPDATE %s SET tenant_id = NULL
				WHERE tenant_id IN (SELECT id FROM tenancy_tenant WHERE name LIKE $1)`, table), escapeLike(prefix)+"%"); err != nil {
				return 0, err
			}
		}
		return byName("tenancy_tenant", "name")

	case KindTenantGroup:
		if err := w.exec(ctx, `
			UPDATE tenancy_tenant SET group_id = NULL
			WHERE group_id IN (SELECT id FROM tenancy_tenantgroup WHERE name LIKE $1)`, escapeLike(prefix)+"%"); err != nil {
			return 0, err
		}
		return byName("tenancy_tenantgroup", "name")
	}
	return 0, fmt.Errorf("unknown record kind %q", kind)
}
