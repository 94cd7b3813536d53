package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/store"
	"github.com/SahiDemon/vaultaccess/server/internal/vaultaccess/types"
)

type ConfigStore struct {
	mu  sync.Mutex
	cfg types.AccessControlConfig
}

func NewConfigStore(initial types.AccessControlConfig) *ConfigStore {
	return &ConfigStore{cfg: initial}
}

func (s *ConfigStore) Get(_ context.Context) (types.AccessControlConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg, nil
}

// UpdateToggle mirrors the sqlite store's conditional update: the check
// on the other toggle and the write happen under one lock, so two
// racing callers cannot both succeed against the same observed state.
func (s *ConfigStore) UpdateToggle(_ context.Context, feature types.Feature, newValue, expectedOther bool) (types.AccessControlConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch feature {
	case types.FeatureRFID:
		if s.cfg.FingerprintEnabled != expectedOther {
			return types.AccessControlConfig{}, store.ErrConflict
		}
		s.cfg.RFIDEnabled = newValue
	case types.FeatureFingerprint:
		if s.cfg.RFIDEnabled != expectedOther {
			return types.AccessControlConfig{}, store.ErrConflict
		}
		s.cfg.FingerprintEnabled = newValue
	default:
		return types.AccessControlConfig{}, fmt.Errorf("UpdateToggle: unknown feature %q", feature)
	}
	return s.cfg, nil
}
