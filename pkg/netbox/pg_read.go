package netbox

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const deviceSelect = `
	SELECT d.id, COALESCE(d.name, ''), d.status,
	       d.site_id, s.id, s.name, s.slug, s.status, s.physical_address,
	       d.device_type_id, dt.id, dt.model, dt.slug, dt.part_number,
	       m.id, m.name, m.slug,
	       d.%[1]s, r.id, r.name, r.slug, r.color,
	       ip4.id, ip4.address::text, ip6.id, ip6.address::text,
	       (SELECT count(*) FROM dcim_interface i WHERE i.device_id = d.id)
	FROM dcim_device d
	LEFT JOIN dcim_site s ON s.id = d.site_id
	LEFT JOIN dcim_devicetype dt ON dt.id = d.device_type_id
	LEFT JOIN dcim_manufacturer m ON m.id = dt.manufacturer_id
	LEFT JOIN dcim_devicerole r ON r.id = d.%[1]s
	LEFT JOIN ipam_ipaddress ip4 ON ip4.id = d.primary_ip4_id
	LEFT JOIN ipam_ipaddress ip6 ON ip6.id = d.primary_ip6_id`

// deviceScan receives one joined device row. Every joined column is
// nullable so a dangling reference never fails the whole listing.
type deviceScan struct {
	id                          int64
	name, status                string
	siteRef, siteID             *int64
	siteName, siteSlug          *string
	siteStatus, siteAddress     *string
	typeRef, typeID             *int64
	model, typeSlug, partNumber *string
	mfrID                       *int64
	mfrName, mfrSlug            *string
	roleRef, roleID             *int64
	roleName, roleSlug, color   *string
	ip4ID                       *int64
	ip4                         *string
	ip6ID                       *int64
	ip6                         *string
	interfaces                  int
}

func (r *deviceScan) targets() []any {
	return []any{
		&r.id, &r.name, &r.status,
		&r.siteRef, &r.siteID, &r.siteName, &r.siteSlug, &r.siteStatus, &r.siteAddress,
		&r.typeRef, &r.typeID, &r.model, &r.typeSlug, &r.partNumber,
		&r.mfrID, &r.mfrName, &r.mfrSlug,
		&r.roleRef, &r.roleID, &r.roleName, &r.roleSlug, &r.color,
		&r.ip4ID, &r.ip4, &r.ip6ID, &r.ip6,
		&r.interfaces,
	}
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (r *deviceScan) device() (Device, []RecordError) {
	var problems []RecordError
	dangling := func(what string, id int64) {
		problems = append(problems, RecordError{
			Kind: "device",
			ID:   r.id,
			Err:  fmt.Sprintf("%s %d: %v", what, id, ErrNotFound),
		})
	}

	d := Device{ID: r.id, Name: r.name, Status: r.status, InterfaceCount: r.interfaces}
	switch {
	case r.siteID != nil:
		d.Site = &Site{
			ID:              *r.siteID,
			Name:            str(r.siteName),
			Slug:            str(r.siteSlug),
			Status:          str(r.siteStatus),
			PhysicalAddress: str(r.siteAddress),
		}
	case r.siteRef != nil:
		dangling("site", *r.siteRef)
	}
	switch {
	case r.typeID != nil:
		d.DeviceType = &DeviceType{ID: *r.typeID, Model: str(r.model), Slug: str(r.typeSlug), PartNumber: str(r.partNumber)}
		if r.mfrID != nil {
			d.DeviceType.Manufacturer = &Manufacturer{ID: *r.mfrID, Name: str(r.mfrName), Slug: str(r.mfrSlug)}
		}
	case r.typeRef != nil:
		dangling("device type", *r.typeRef)
	}
	switch {
	case r.roleID != nil:
		d.Role = &DeviceRole{ID: *r.roleID, Name: str(r.roleName), Slug: str(r.roleSlug), Color: str(r.color)}
	case r.roleRef != nil:
		dangling("role", *r.roleRef)
	}
	if r.ip4ID != nil {
		d.PrimaryIP4 = &IPAddress{ID: *r.ip4ID, Address: str(r.ip4)}
	}
	if r.ip6ID != nil {
		d.PrimaryIP6 = &IPAddress{ID: *r.ip6ID, Address: str(r.ip6)}
	}
	return d, problems
}

func (s *PGStore) ListDevices(ctx context.Context, filter DeviceFilter) (*DeviceSet, error) {
	var (
		where []string
		args  []any
	)
	if filter.ID != nil {
		args = append(args, *filter.ID)
		where = append(where, fmt.Sprintf("d.id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("d.status = $%d", len(args)))
	}
	if filter.SiteID != nil {
		args = append(args, *filter.SiteID)
		where = append(where, fmt.Sprintf("d.site_id = $%d", len(args)))
	}
	if filter.ModelContains != "" {
		args = append(args, "%"+escapeLike(filter.ModelContains)+"%")
		where = append(where, fmt.Sprintf("dt.model ILIKE $%d", len(args)))
	}

	query := fmt.Sprintf(deviceSelect, s.roleColumn)
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limitArg(filter.Limit))
	query += fmt.Sprintf("\n\tORDER BY d.id\n\tLIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	set := &DeviceSet{}
	for rows.Next() {
		var r deviceScan
		if err := rows.Scan(r.targets()...); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		device, problems := r.device()
		set.Devices = append(set.Devices, device)
		set.Skipped = append(set.Skipped, problems...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return set, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *PGStore) ListDeviceSummaries(ctx context.Context, limit int) ([]Device, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT d.id, COALESCE(d.name, ''), d.status, s.id, s.name, s.slug
		FROM dcim_device d
		LEFT JOIN dcim_site s ON s.id = d.site_id
		ORDER BY d.id
		LIMIT $1`, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list device summaries: %w", err)
	}
	defer rows.Close()

	var out []Device
	for rows.Next() {
		var (
			d                  Device
			siteID             *int64
			siteName, siteSlug *string
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Status, &siteID, &siteName, &siteSlug); err != nil {
			return nil, fmt.Errorf("failed to scan device summary: %w", err)
		}
		if siteID != nil {
			d.Site = &Site{ID: *siteID, Name: str(siteName), Slug: str(siteSlug)}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// portTables maps termination object types that belong to a device to the
// table holding them.
var portTables = map[string]string{
	ObjectInterface:         "dcim_interface",
	ObjectFrontPort:         "dcim_frontport",
	ObjectRearPort:          "dcim_rearport",
	ObjectConsolePort:       "dcim_consoleport",
	ObjectConsoleServerPort: "dcim_consoleserverport",
	ObjectPowerPort:         "dcim_powerport",
	ObjectPowerOutlet:       "dcim_poweroutlet",
}

type objectKey struct {
	typ string
	id  int64
}

// objectSet is the result of resolving termination targets. Failed holds
// per-type lookup errors; a termination whose type failed carries that error.
type objectSet struct {
	found  map[objectKey]*Terminable
	failed map[string]error
}

func (o *objectSet) lookup(typ string, id int64) (*Terminable, error) {
	if err, ok := o.failed[typ]; ok {
		return nil, err
	}
	obj, ok := o.found[objectKey{typ, id}]
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", typ, id, ErrNotFound)
	}
	return obj, nil
}

// loadObjects fetches every referenced termination target with one query
// per object type.
func (s *PGStore) loadObjects(ctx context.Context, refs map[string][]int64) *objectSet {
	set := &objectSet{found: make(map[objectKey]*Terminable), failed: make(map[string]error)}
	for typ, ids := range refs {
		var (
			query string
			scan  func(pgx.Rows) (*Terminable, error)
		)
		switch {
		case portTables[typ] != "":
			query = fmt.Sprintf(`
				SELECT o.id, o.name, o.device_id, COALESCE(d.name, '')
				FROM %s o
				LEFT JOIN dcim_device d ON d.id = o.device_id
				WHERE o.id = ANY($1)`, portTables[typ])
			scan = func(rows pgx.Rows) (*Terminable, error) {
				t := &Terminable{Type: typ}
				var (
					deviceID   *int64
					deviceName string
				)
				if err := rows.Scan(&t.ID, &t.Name, &deviceID, &deviceName); err != nil {
					return nil, err
				}
				if deviceID != nil {
					t.Device = &DeviceRef{ID: *deviceID, Name: deviceName}
				}
				return t, nil
			}
		case typ == ObjectCircuitTermination:
			query = `SELECT id, circuit_id, term_side FROM circuits_circuittermination WHERE id = ANY($1)`
			scan = func(rows pgx.Rows) (*Terminable, error) {
				var ct CircuitTermination
				if err := rows.Scan(&ct.ID, &ct.CircuitID, &ct.Term); err != nil {
					return nil, err
				}
				return &Terminable{ID: ct.ID, Type: typ, Name: fmt.Sprintf("circuit %d side %s", ct.CircuitID, ct.Term)}, nil
			}
		case typ == ObjectPowerFeed:
			query = `SELECT id, name FROM dcim_powerfeed WHERE id = ANY($1)`
			scan = func(rows pgx.Rows) (*Terminable, error) {
				t := &Terminable{Type: typ}
				return t, rows.Scan(&t.ID, &t.Name)
			}
		default:
			for _, id := range ids {
				set.found[objectKey{typ, id}] = &Terminable{ID: id, Type: typ, Name: fmt.Sprintf("%s %d", typ, id)}
			}
			continue
		}

		if err := s.collectObjects(ctx, query, ids, scan, set.found); err != nil {
			set.failed[typ] = fmt.Errorf("lookup %s: %w", typ, err)
		}
	}
	return set
}

func (s *PGStore) collectObjects(ctx context.Context, query string, ids []int64, scan func(pgx.Rows) (*Terminable, error), into map[objectKey]*Terminable) error {
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return err
		}
		into[objectKey{t.Type, t.ID}] = t
	}
	return rows.Err()
}

type cableScan struct {
	id         int64
	typ        *string
	status     *string
	label      *string
	length     *float64
	lengthUnit *string
}

func (c *cableScan) cable() Cable {
	return Cable{
		ID:         c.id,
		Type:       str(c.typ),
		Status:     str(c.status),
		Label:      str(c.label),
		Length:     c.length,
		LengthUnit: str(c.lengthUnit),
	}
}

func (s *PGStore) ListCables(ctx context.Context, limit int) ([]Cable, error) {
	if s.shape == ShapeLegacy {
		return s.listLegacyCables(ctx, limit)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, type, status, label, length, length_unit
		FROM dcim_cable
		ORDER BY id
		LIMIT $1`, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list cables: %w", err)
	}
	var (
		cables []Cable
		ids    []int64
	)
	for rows.Next() {
		var c cableScan
		if err := rows.Scan(&c.id, &c.typ, &c.status, &c.label, &c.length, &c.lengthUnit); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cable: %w", err)
		}
		cables = append(cables, c.cable())
		ids = append(ids, c.id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cables: %w", err)
	}
	if len(cables) == 0 {
		return cables, nil
	}

	type termRow struct {
		cableID int64
		end     string
		term    Termination
	}
	rows, err = s.pool.Query(ctx, `
		SELECT t.id, t.cable_id, t.cable_end, ct.app_label || '.' || ct.model, t.termination_id,
		       dev.id, COALESCE(dev.name, '')
		FROM dcim_cabletermination t
		JOIN django_content_type ct ON ct.id = t.termination_type_id
		LEFT JOIN dcim_device dev ON dev.id = t._device_id
		WHERE t.cable_id = ANY($1)
		ORDER BY t.cable_id, t.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list cable terminations: %w", err)
	}
	var terms []termRow
	refs := make(map[string][]int64)
	for rows.Next() {
		var (
			r          termRow
			deviceID   *int64
			deviceName string
		)
		if err := rows.Scan(&r.term.ID, &r.cableID, &r.end, &r.term.ObjectType, &r.term.ObjectID, &deviceID, &deviceName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cable termination: %w", err)
		}
		if deviceID != nil {
			r.term.Device = &DeviceRef{ID: *deviceID, Name: deviceName}
		}
		terms = append(terms, r)
		refs[r.term.ObjectType] = append(refs[r.term.ObjectType], r.term.ObjectID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cable terminations: %w", err)
	}

	objects := s.loadObjects(ctx, refs)
	byID := make(map[int64]*Cable, len(cables))
	for i := range cables {
		byID[cables[i].ID] = &cables[i]
	}
	for _, r := range terms {
		t := r.term
		obj, err := objects.lookup(t.ObjectType, t.ObjectID)
		if err != nil {
			t.Err = err
		} else {
			t.Object = obj
			t.Name = obj.Name
		}
		c := byID[r.cableID]
		switch CableEnd(r.end) {
		case EndA:
			c.A = append(c.A, t)
		case EndB:
			c.B = append(c.B, t)
		}
	}
	return cables, nil
}

// listLegacyCables reads pre-3.3 cables, whose A and B terminations are
// columns on the cable row. Each termination is returned shaped as the
// interface it points at.
func (s *PGStore) listLegacyCables(ctx context.Context, limit int) ([]Cable, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.type, c.status, c.label, c.length, c.length_unit,
		       cta.app_label || '.' || cta.model, c.termination_a_id,
		       ctb.app_label || '.' || ctb.model, c.termination_b_id
		FROM dcim_cable c
		LEFT JOIN django_content_type cta ON cta.id = c.termination_a_type_id
		LEFT JOIN django_content_type ctb ON ctb.id = c.termination_b_type_id
		ORDER BY c.id
		LIMIT $1`, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list cables: %w", err)
	}

	type ends struct {
		aType, bType *string
		aID, bID     *int64
	}
	var (
		cables []Cable
		raw    []ends
	)
	refs := make(map[string][]int64)
	for rows.Next() {
		var (
			c cableScan
			e ends
		)
		if err := rows.Scan(&c.id, &c.typ, &c.status, &c.label, &c.length, &c.lengthUnit, &e.aType, &e.aID, &e.bType, &e.bID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan cable: %w", err)
		}
		cables = append(cables, c.cable())
		raw = append(raw, e)
		if e.aType != nil && e.aID != nil {
			refs[*e.aType] = append(refs[*e.aType], *e.aID)
		}
		if e.bType != nil && e.bID != nil {
			refs[*e.bType] = append(refs[*e.bType], *e.bID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list cables: %w", err)
	}

	objects := s.loadObjects(ctx, refs)
	shaped := func(typ *string, id *int64) []Termination {
		if typ == nil || id == nil {
			return nil
		}
		t := Termination{ID: *id, ObjectType: *typ, ObjectID: *id}
		obj, err := objects.lookup(*typ, *id)
		if err != nil {
			t.Err = err
			return []Termination{t}
		}
		t.Name = obj.Name
		t.Device = obj.Device
		return []Termination{t}
	}
	for i := range cables {
		cables[i].A = shaped(raw[i].aType, raw[i].aID)
		cables[i].B = shaped(raw[i].bType, raw[i].bID)
	}
	return cables, nil
}

func (s *PGStore) ListInterfaces(ctx context.Context, deviceIDs []int64) ([]Interface, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.device_id, COALESCE(d.name, ''), i.name, i.type, i.enabled, i.mgmt_only, i.cable_id
		FROM dcim_interface i
		JOIN dcim_device d ON d.id = i.device_id
		WHERE $1::bigint[] IS NULL OR i.device_id = ANY($1)
		ORDER BY i.device_id, i.id`, deviceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	defer rows.Close()

	var out []Interface
	for rows.Next() {
		var i Interface
		if err := rows.Scan(&i.ID, &i.DeviceID, &i.DeviceName, &i.Name, &i.Type, &i.Enabled, &i.MgmtOnly, &i.CableID); err != nil {
			return nil, fmt.Errorf("failed to scan interface: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (s *PGStore) ListCircuitTerminations(ctx context.Context) ([]CircuitTermination, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, circuit_id, term_side FROM circuits_circuittermination ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list circuit terminations: %w", err)
	}
	defer rows.Close()

	var out []CircuitTermination
	for rows.Next() {
		var ct CircuitTermination
		if err := rows.Scan(&ct.ID, &ct.CircuitID, &ct.Term); err != nil {
			return nil, fmt.Errorf("failed to scan circuit termination: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (s *PGStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM dcim_device),
			(SELECT count(*) FROM dcim_device WHERE site_id IS NOT NULL),
			(SELECT count(DISTINCT s.name) FROM dcim_device d JOIN dcim_site s ON s.id = d.site_id),
			(SELECT count(*) FROM dcim_site),
			(SELECT count(*) FROM dcim_cable),
			(SELECT count(*) FROM dcim_interface),
			(SELECT count(*) FROM ipam_vlan)`).Scan(
		&c.Devices,
		&c.DevicesWithSites,
		&c.DistinctSiteNames,
		&c.Sites,
		&c.Cables,
		&c.Interfaces,
		&c.VLANs,
	)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count records: %w", err)
	}
	return c, nil
}

func (s *PGStore) StatusBreakdown(ctx context.Context, limit int) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT status, count(*)
		FROM (SELECT status FROM dcim_device ORDER BY id LIMIT $1) d
		GROUP BY status`, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to count statuses: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (s *PGStore) TopSites(ctx context.Context, limit int) ([]SiteCount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.name, count(d.id) AS n
		FROM dcim_device d
		JOIN dcim_site s ON s.id = d.site_id
		WHERE s.name <> ''
		GROUP BY s.name
		ORDER BY n DESC, s.name
		LIMIT $1`, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to rank sites: %w", err)
	}
	defer rows.Close()

	var out []SiteCount
	for rows.Next() {
		var sc SiteCount
		if err := rows.Scan(&sc.Name, &sc.DeviceCount); err != nil {
			return nil, fmt.Errorf("failed to scan site count: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
