package domain

// DevicePort describes a weight indicator port available on the host.
type DevicePort struct {
	Path         string `json:"path"`
	Manufacturer string `json:"manufacturer"`
	SerialNumber string `json:"serialNumber"`
	Description  string `json:"description"`
}

// DeviceState is the adapter's current target.
type DeviceState struct {
	Path       string
	Connected  bool
	Simulation bool
}
