package types

// Feature names one of the two hardware access methods that can be
// toggled at runtime.
type Feature string

const (
	FeatureRFID        Feature = "RFID"
	FeatureFingerprint Feature = "FINGERPRINT"
)

// DisplayName returns the feature name as it appears in alert messages
// ("RFID access enabled", "Fingerprint access disabled").
func (f Feature) DisplayName() string {
	switch f {
	case FeatureRFID:
		return "RFID"
	case FeatureFingerprint:
		return "Fingerprint"
	}
	return string(f)
}

// AccessControlConfig is the single logical configuration row: which
// access methods are currently enabled. Mutated only through the
// optimistic-update contract in store.ConfigStore.
type AccessControlConfig struct {
	RFIDEnabled        bool `json:"rfid_enabled"`
	FingerprintEnabled bool `json:"fingerprint_enabled"`
}

// Enabled returns the toggle value for the given feature.
func (c AccessControlConfig) Enabled(f Feature) bool {
	if f == FeatureRFID {
		return c.RFIDEnabled
	}
	return c.FingerprintEnabled
}

// Other returns the toggle value of the feature that is not f. The
// optimistic update conditions on this value (see store.ConfigStore).
func (c AccessControlConfig) Other(f Feature) bool {
	if f == FeatureRFID {
		return c.FingerprintEnabled
	}
	return c.RFIDEnabled
}
