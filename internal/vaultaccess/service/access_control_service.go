package service

import (
	"context"
	"errors"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/notify"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

var ErrInvalidFeature = errors.New("feature must be RFID or FINGERPRINT")

// AccessControlService owns the two hardware toggles. Updates go
// through the store's optimistic contract; a ConflictError from a
// concurrent toggle of the other feature surfaces to the caller, who
// re-reads and retries.
type AccessControlService struct {
	config     store.ConfigStore
	alerts     *AlertService
	dispatcher *notify.Dispatcher
}

func NewAccessControlService(cs store.ConfigStore, alerts *AlertService, d *notify.Dispatcher) *AccessControlService {
	return &AccessControlService{config: cs, alerts: alerts, dispatcher: d}
}

func (s *AccessControlService) Get(ctx context.Context) (types.AccessControlConfig, error) {
	return s.config.Get(ctx)
}

// UpdateToggle sets one feature's toggle, conditioned on the caller's
// last-observed value of the other feature. On success it emits the
// ACCESS_CONTROL alert and signals config observers; alerts are not
// deduplicated, so repeating an identical update emits again.
func (s *AccessControlService) UpdateToggle(ctx context.Context, feature types.Feature, enabled, expectedOther bool) (types.AccessControlConfig, error) {
	switch feature {
	case types.FeatureRFID, types.FeatureFingerprint:
	default:
		return types.AccessControlConfig{}, ErrInvalidFeature
	}

	cfg, err := s.config.UpdateToggle(ctx, feature, enabled, expectedOther)
	if err != nil {
		return types.AccessControlConfig{}, err
	}

	s.alerts.ConfigToggled(ctx, feature, enabled)
	s.dispatcher.Publish(notify.TopicConfig)
	return cfg, nil
}
