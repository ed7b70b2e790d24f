package netbox

import "context"

// SchemaShape identifies how a NetBox database stores cable terminations
type SchemaShape string

const (
	// ShapeCableTermination is NetBox 3.3 and later: one dcim_cabletermination
	// row per terminated object, with the owning device cached on the row.
	ShapeCableTermination SchemaShape = "cabletermination"
	// ShapeLegacy is NetBox before 3.3: termination_a/termination_b columns
	// on dcim_cable pointing straight at interface rows.
	ShapeLegacy SchemaShape = "legacy"
	// ShapeUnknown covers mixed or uninspected data
	ShapeUnknown SchemaShape = "unknown"
)

// DeviceFilter narrows a device listing. Zero values mean no filter.
type DeviceFilter struct {
	ID            *int64
	Status        string
	SiteID        *int64
	ModelContains string
	Limit         int
}

// DeviceSet is the result of a device listing. Skipped lists rows that were
// dropped or degraded to a stub while decoding.
type DeviceSet struct {
	Devices []Device
	Skipped []RecordError
}

// Counts are table-level totals used by the debug endpoint and dashboards
type Counts struct {
	Devices           int `json:"total_devices"`
	DevicesWithSites  int `json:"devices_with_sites"`
	DistinctSiteNames int `json:"total_sites"`
	Sites             int `json:"sites"`
	Cables            int `json:"total_cables"`
	Interfaces        int `json:"interfaces"`
	VLANs             int `json:"vlans"`
}

// SiteCount is a site name with the number of devices assigned to it
type SiteCount struct {
	Name        string `json:"name"`
	DeviceCount int    `json:"device_count"`
}

// Reader is the read side of a NetBox data source
type Reader interface {
	Shape() SchemaShape
	ListDevices(ctx context.Context, filter DeviceFilter) (*DeviceSet, error)
	// ListDeviceSummaries is a minimal listing (id, name, status, site) used
	// when the full device query fails
	ListDeviceSummaries(ctx context.Context, limit int) ([]Device, error)
	ListCables(ctx context.Context, limit int) ([]Cable, error)
	ListInterfaces(ctx context.Context, deviceIDs []int64) ([]Interface, error)
	ListCircuitTerminations(ctx context.Context) ([]CircuitTermination, error)
	Counts(ctx context.Context) (Counts, error)
	// StatusBreakdown counts statuses over the first limit devices by id
	StatusBreakdown(ctx context.Context, limit int) (map[string]int, error)
	// TopSites returns named sites ordered by device count, largest first
	TopSites(ctx context.Context, limit int) ([]SiteCount, error)
}

// Store is a NetBox data source with a lifecycle
type Store interface {
	Reader
	Ping(ctx context.Context) error
	Close() error
}

// TxRunner runs fn inside one transaction: every write fn makes through w
// is committed together, or none is when fn returns an error.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(w Writer) error) error
}
