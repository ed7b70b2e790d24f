package api

import (
	"time"

	"github.com/dd0wney/cluso-netcanvas/pkg/canvas"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
	"github.com/dd0wney/cluso-netcanvas/pkg/topology"
)

// API Request/Response Types

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

// Ref is an id, name and slug of a related record. ID and Slug are null
// when the relation is unset.
type Ref struct {
	ID   *int64  `json:"id"`
	Name string  `json:"name"`
	Slug *string `json:"slug"`
}

// DeviceTypeRef is a device type in API responses
type DeviceTypeRef struct {
	ID           *int64  `json:"id"`
	Model        string  `json:"model"`
	Manufacturer string  `json:"manufacturer"`
	Slug         *string `json:"slug"`
}

// StatusValue is a choice field with its display label
type StatusValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DeviceResponse is a device in the topology API
type DeviceResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	DeviceType  DeviceTypeRef     `json:"device_type"`
	Site        Ref               `json:"site"`
	Role        Ref               `json:"role"`
	Status      StatusValue       `json:"status"`
	PrimaryIP4  *string           `json:"primary_ip4"`
	PrimaryIP6  *string           `json:"primary_ip6"`
	Category    topology.Category `json:"category"`
	Icon        string            `json:"icon"`
}

// InterfaceResponse is an interface in the topology API
type InterfaceResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Device     int64  `json:"device"`
	DeviceName string `json:"device_name"`
	Type       string `json:"type"`
	Enabled    bool   `json:"enabled"`
	Connected  bool   `json:"connected"`
}

// TopologyMetadata summarizes a topology API response
type TopologyMetadata struct {
	TotalDevices     int       `json:"total_devices"`
	TotalInterfaces  int       `json:"total_interfaces"`
	TotalConnections int       `json:"total_connections"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// TopologyResponse is the body of GET /api/topology
type TopologyResponse struct {
	Devices     []DeviceResponse      `json:"devices"`
	Interfaces  []InterfaceResponse   `json:"interfaces"`
	Connections []topology.Connection `json:"connections"`
	Metadata    TopologyMetadata      `json:"metadata"`
}

// SampleDevice is one entry of the debug endpoint's device sample
type SampleDevice struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Site       *string `json:"site"`
	Status     string  `json:"status"`
	DeviceType *string `json:"device_type"`
	Role       *string `json:"role"`
}

// DebugResponse is the body of GET /api/debug
type DebugResponse struct {
	TotalDevices     int                `json:"total_devices"`
	DevicesWithSites int                `json:"devices_with_sites"`
	TotalSites       int                `json:"total_sites"`
	TotalCables      int                `json:"total_cables"`
	DeviceStatuses   map[string]int     `json:"device_statuses"`
	SampleDevices    []SampleDevice     `json:"sample_devices"`
	Sites            []netbox.SiteCount `json:"sites"`
}

// DebugErrorResponse is the failure body of GET /api/debug
type DebugErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CanvasListResponse is the body of GET /api/canvases
type CanvasListResponse struct {
	Count   int             `json:"count"`
	Results []canvas.Canvas `json:"results"`
}
