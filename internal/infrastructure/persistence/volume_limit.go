package persistence

import (
	"context"
	"errors"

	"github.com/mangodeliveries/backend/internal/domain/admin"
	"github.com/mangodeliveries/backend/internal/domain/shared"
)

// SettingsVolumeLimit adapts the settings singleton to the pricing
// engine's volume limit check. A missing row falls back to the defaults.
type SettingsVolumeLimit struct {
	settings admin.SettingsRepository
}

// NewSettingsVolumeLimit creates a SettingsVolumeLimit
func NewSettingsVolumeLimit(settings admin.SettingsRepository) *SettingsVolumeLimit {
	return &SettingsVolumeLimit{settings: settings}
}

// MaxVolume returns the director-tunable maximum cargo volume
func (l *SettingsVolumeLimit) MaxVolume(ctx context.Context) (float64, error) {
	settings, err := l.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return admin.DefaultSettings().MaxVolume, nil
		}
		return 0, err
	}
	return settings.MaxVolume, nil
}
