package topology

import (
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

const (
	sampleDevices     = 10
	sampleCables      = 5
	sampleTerminals   = 2
	sampleConnections = 3
)

// Debug is the diagnostic payload attached to enhanced extractions
type Debug struct {
	TotalDevicesQueried  int                  `json:"total_devices_queried"`
	DevicesWithSites     int                  `json:"devices_with_sites"`
	DevicesWithoutSites  int                  `json:"devices_without_sites"`
	DeviceStatuses       map[string]int       `json:"device_statuses"`
	SampleDevices        []SampleDevice       `json:"sample_devices"`
	SkippedDevices       []netbox.RecordError `json:"skipped_devices"`
	SchemaShape          netbox.SchemaShape   `json:"schema_shape"`
	MethodUsed           string               `json:"method_used"`
	TotalCablesFound     int                  `json:"total_cables_found"`
	CableDetails         []CableDetail        `json:"cable_details"`
	DeviceConnections    int                  `json:"device_connections"`
	CircuitConnections   int                  `json:"circuit_connections"`
	CableOutcomes        map[CableOutcome]int `json:"cable_outcomes"`
	ConnectionError      string               `json:"connection_error,omitempty"`
	DevicesProcessed     int                  `json:"devices_processed"`
	SitesCreated         int                  `json:"sites_created"`
	RealConnectionsFound int                  `json:"real_connections_found"`
	SyntheticLinks       int                  `json:"synthetic_links"`
	ConnectionSample     []Connection         `json:"connection_sample"`
}

type SampleDevice struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Site          string `json:"site,omitempty"`
	Status        string `json:"status"`
	HasDeviceType bool   `json:"has_device_type"`
	HasRole       bool   `json:"has_role"`
}

// CableDetail describes how the first few cables' terminations resolved
type CableDetail struct {
	ID      int64             `json:"id"`
	Type    string            `json:"type"`
	Status  string            `json:"status"`
	ACount  int               `json:"a_terminations_count"`
	BCount  int               `json:"b_terminations_count"`
	A       []TerminationInfo `json:"a_terminations"`
	B       []TerminationInfo `json:"b_terminations"`
	Outcome CableOutcome      `json:"outcome"`
}

type TerminationInfo struct {
	ObjectType    string `json:"termination_type"`
	ObjectID      int64  `json:"termination_id"`
	Description   string `json:"description"`
	DeviceID      int64  `json:"device_id,omitempty"`
	DeviceName    string `json:"device_name,omitempty"`
	InterfaceName string `json:"interface_name,omitempty"`
	InOurDevices  bool   `json:"in_our_devices"`
	Error         string `json:"error,omitempty"`
}

func newDebug(shape netbox.SchemaShape) *Debug {
	return &Debug{
		DeviceStatuses:   map[string]int{},
		SampleDevices:    []SampleDevice{},
		SkippedDevices:   []netbox.RecordError{},
		SchemaShape:      shape,
		MethodUsed:       "none",
		CableDetails:     []CableDetail{},
		CableOutcomes:    map[CableOutcome]int{},
		ConnectionSample: []Connection{},
	}
}

func (d *Debug) recordDevices(set *netbox.DeviceSet) {
	d.TotalDevicesQueried = len(set.Devices)
	for i := range set.Devices {
		dev := &set.Devices[i]
		if dev.Site != nil {
			d.DevicesWithSites++
		}
		d.DeviceStatuses[dev.Status]++
		if i < sampleDevices {
			s := SampleDevice{
				ID:            dev.ID,
				Name:          dev.Name,
				Status:        dev.Status,
				HasDeviceType: dev.DeviceType != nil,
				HasRole:       dev.Role != nil,
			}
			if dev.Site != nil {
				s.Site = dev.Site.Name
			}
			d.SampleDevices = append(d.SampleDevices, s)
		}
	}
	d.DevicesWithoutSites = d.TotalDevicesQueried - d.DevicesWithSites
	d.SkippedDevices = append(d.SkippedDevices, set.Skipped...)
}

func describeSide(terms []netbox.Termination, chain Chain, set map[int64]bool) []TerminationInfo {
	out := []TerminationInfo{}
	for _, t := range terms[:min(sampleTerminals, len(terms))] {
		info := TerminationInfo{ObjectType: t.ObjectType, ObjectID: t.ObjectID, Description: t.Describe()}
		if t.Err != nil {
			info.Error = t.Err.Error()
		} else if ep, ok := chain.Resolve(t); ok {
			info.DeviceID = ep.DeviceID
			info.DeviceName = ep.DeviceName
			info.InterfaceName = ep.Interface
			info.InOurDevices = set[ep.DeviceID]
		}
		out = append(out, info)
	}
	return out
}

func (d *Debug) recordCable(c netbox.Cable, outcome CableOutcome, chain Chain, set map[int64]bool) {
	if len(d.CableDetails) >= sampleCables {
		return
	}
	d.CableDetails = append(d.CableDetails, CableDetail{
		ID:      c.ID,
		Type:    c.Type,
		Status:  c.Status,
		ACount:  len(c.A),
		BCount:  len(c.B),
		A:       describeSide(c.A, chain, set),
		B:       describeSide(c.B, chain, set),
		Outcome: outcome,
	})
}
