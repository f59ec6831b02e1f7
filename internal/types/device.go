package types

import "time"

// DeviceConfig describes how to reach the device serving schemas.  When
// Dir is set the device is emulated from *.yang files in that directory.
type DeviceConfig struct {
	Host            string
	Port            int
	Username        string
	Password        string
	KeyFile         string
	KnownHosts      string
	InsecureHostKey bool
	Timeout         time.Duration
	Dir             string
}
