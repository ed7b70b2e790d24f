package topology

import "fmt"

const (
	// MaxAPIDevices caps the device limit accepted by the topology API
	MaxAPIDevices = 500
	// DefaultAPIDevices is used when the API caller gives no limit
	DefaultAPIDevices = 100
)

// Options parameterizes one extraction
type Options struct {
	Name              string    // label for logs and metrics
	Status            string    // device status filter, empty for all
	DeviceCap         int       // maximum devices loaded, 0 for no cap
	CableCap          int       // maximum cables loaded, 0 for no cap
	Grouping          GroupMode // site grouping
	Strict            bool      // require both cable ends in the loaded device set
	DeviceID          *int64    // only this device
	SiteID            *int64    // only devices at this site
	ModelContains     string    // case-insensitive device type model filter
	IncludeInterfaces bool      // load interfaces of the loaded devices
	Debug             bool      // attach the debug payload
	Synthesize        bool      // add logical links when no cables resolve
	Fallback          bool      // degrade instead of failing when devices cannot be loaded
	Layout            string    // layout algorithm, empty for none
}

// DashboardOptions is the standard dashboard: active devices only
func DashboardOptions() Options {
	return Options{
		Name:      "dashboard",
		Status:    "active",
		DeviceCap: 200,
		CableCap:  100,
		Grouping:  GroupBySite,
		Strict:    true,
		Fallback:  true,
	}
}

// EnhancedOptions is the enhanced dashboard: every status plus debug detail
func EnhancedOptions() Options {
	return Options{
		Name:      "enhanced",
		DeviceCap: 300,
		CableCap:  100,
		Grouping:  GroupBySite,
		Strict:    true,
		Debug:     true,
		Fallback:  true,
	}
}

// APIOptions serves the JSON topology API. limit is clamped to
// [1, MaxAPIDevices]; zero or less selects DefaultAPIDevices.
func APIOptions(limit int) Options {
	if limit <= 0 {
		limit = DefaultAPIDevices
	}
	return Options{
		Name:              "api",
		DeviceCap:         min(limit, MaxAPIDevices),
		CableCap:          200,
		Grouping:          GroupBySite,
		Strict:            true,
		IncludeInterfaces: true,
	}
}

// Presets names the extraction presets accepted by Preset
var Presets = []string{"dashboard", "enhanced", "api"}

// Preset returns the named preset; an empty name is the dashboard. limit
// only applies to "api".
func Preset(name string, limit int) (Options, error) {
	switch name {
	case "", "dashboard":
		return DashboardOptions(), nil
	case "enhanced":
		return EnhancedOptions(), nil
	case "api":
		return APIOptions(limit), nil
	}
	return Options{}, fmt.Errorf("unknown preset %q", name)
}
