package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"guild-backend/internal/apperr"
	"guild-backend/internal/config"
	"guild-backend/internal/model"
	"guild-backend/internal/repository"
)

// SettingsService manages the single site-branding record.
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	defaults     model.Settings
}

// NewSettingsService creates a new SettingsService instance. The site
// config supplies the values seeded on first read.
func NewSettingsService(settingsRepo *repository.SettingsRepository, site config.SiteConfig) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		defaults: model.Settings{
			WebsiteName: site.WebsiteName,
			WebsiteLogo: site.WebsiteLogo,
			Description: site.Description,
		},
	}
}

// Get returns the settings record, creating it from defaults on first use.
func (s *SettingsService) Get(ctx context.Context) (*model.Settings, error) {
	settings, err := s.settingsRepo.GetOrCreate(ctx, s.defaults)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return settings, nil
}

// Update applies a partial update; nil fields keep their current value.
func (s *SettingsService) Update(ctx context.Context, websiteName, websiteLogo, description *string) (*model.Settings, error) {
	if _, err := s.settingsRepo.GetOrCreate(ctx, s.defaults); err != nil {
		return nil, apperr.Internal(err)
	}
	settings, err := s.settingsRepo.Update(ctx, websiteName, websiteLogo, description)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	log.Info().Msg("Site settings updated")
	return settings, nil
}
