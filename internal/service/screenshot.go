package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"guild-backend/internal/apperr"
	"guild-backend/internal/model"
	"guild-backend/internal/repository"
)

// DefaultGalleryLimit caps the public approved-screenshot gallery.
const DefaultGalleryLimit = 50

// ScreenshotService handles submission and moderation of performance
// screenshots.
type ScreenshotService struct {
	screenshotRepo *repository.ScreenshotRepository
	userRepo       *repository.UserRepository
	approvalPoints int
}

// NewScreenshotService creates a new ScreenshotService instance.
// approvalPoints is the weekly-score credit granted on approval.
func NewScreenshotService(
	screenshotRepo *repository.ScreenshotRepository,
	userRepo *repository.UserRepository,
	approvalPoints int,
) *ScreenshotService {
	return &ScreenshotService{
		screenshotRepo: screenshotRepo,
		userRepo:       userRepo,
		approvalPoints: approvalPoints,
	}
}

// SubmitInput is the player-provided submission payload.
type SubmitInput struct {
	ImageURL    string
	Description string
	Kills       int
	Headshots   int
	DamageDealt int
	Survival    string
}

// Submit records a new screenshot in pending status.
func (s *ScreenshotService) Submit(ctx context.Context, playerID uuid.UUID, in SubmitInput) (*model.Screenshot, error) {
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.ImageURL == "" {
		return nil, apperr.New(apperr.KindValidation, "image URL is required")
	}
	if in.Kills < 0 || in.Headshots < 0 || in.DamageDealt < 0 {
		return nil, apperr.New(apperr.KindValidation, "stats cannot be negative")
	}

	shot, err := s.screenshotRepo.Create(ctx, &model.Screenshot{
		ID:          uuid.New(),
		PlayerID:    playerID,
		ImageURL:    in.ImageURL,
		Description: in.Description,
		Kills:       in.Kills,
		Headshots:   in.Headshots,
		DamageDealt: in.DamageDealt,
		Survival:    in.Survival,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	log.Info().
		Str("screenshot_id", shot.ID.String()).
		Str("player_id", playerID.String()).
		Msg("Screenshot submitted for review")

	return s.resolvePlayer(ctx, shot)
}

// Pending retrieves the moderation queue, oldest first.
func (s *ScreenshotService) Pending(ctx context.Context) ([]*model.Screenshot, error) {
	shots, err := s.screenshotRepo.ListPending(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.resolvePlayers(ctx, shots)
}

// Approved retrieves the public gallery of approved screenshots, newest
// first. A non-positive limit falls back to the default gallery size.
func (s *ScreenshotService) Approved(ctx context.Context, limit int) ([]*model.Screenshot, error) {
	if limit <= 0 {
		limit = DefaultGalleryLimit
	}
	shots, err := s.screenshotRepo.ListApproved(ctx, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.resolvePlayers(ctx, shots)
}

// ByPlayer retrieves every screenshot one player has submitted.
func (s *ScreenshotService) ByPlayer(ctx context.Context, playerID uuid.UUID) ([]*model.Screenshot, error) {
	if _, err := s.userRepo.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Internal(err)
	}
	shots, err := s.screenshotRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.resolvePlayers(ctx, shots)
}

// Approve marks a pending screenshot approved and credits the submitter's
// weekly score. Re-reviewing a decided screenshot is rejected, so the
// credit is granted at most once.
func (s *ScreenshotService) Approve(ctx context.Context, id, adminID uuid.UUID, comment string) (*model.Screenshot, error) {
	shot, err := s.screenshotRepo.Approve(ctx, id, adminID, comment, s.approvalPoints)
	if err != nil {
		return nil, s.mapReviewErr(err)
	}

	log.Info().
		Str("screenshot_id", id.String()).
		Str("admin_id", adminID.String()).
		Int("points", s.approvalPoints).
		Msg("Screenshot approved")

	return s.resolvePlayer(ctx, shot)
}

// Reject marks a pending screenshot rejected. No score changes.
func (s *ScreenshotService) Reject(ctx context.Context, id, adminID uuid.UUID, comment string) (*model.Screenshot, error) {
	shot, err := s.screenshotRepo.Reject(ctx, id, adminID, comment)
	if err != nil {
		return nil, s.mapReviewErr(err)
	}

	log.Info().
		Str("screenshot_id", id.String()).
		Str("admin_id", adminID.String()).
		Msg("Screenshot rejected")

	return s.resolvePlayer(ctx, shot)
}

func (s *ScreenshotService) resolvePlayer(ctx context.Context, shot *model.Screenshot) (*model.Screenshot, error) {
	player, err := s.userRepo.GetByID(ctx, shot.PlayerID)
	if err == nil {
		shot.Player = player
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.Internal(err)
	}
	return shot, nil
}

func (s *ScreenshotService) resolvePlayers(ctx context.Context, shots []*model.Screenshot) ([]*model.Screenshot, error) {
	ids := make([]uuid.UUID, 0, len(shots))
	seen := make(map[uuid.UUID]bool, len(shots))
	for _, shot := range shots {
		if !seen[shot.PlayerID] {
			seen[shot.PlayerID] = true
			ids = append(ids, shot.PlayerID)
		}
	}
	players, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	byID := make(map[uuid.UUID]*model.User, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	for _, shot := range shots {
		shot.Player = byID[shot.PlayerID]
	}
	return shots, nil
}

func (s *ScreenshotService) mapReviewErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrScreenshotNotFound):
		return apperr.New(apperr.KindNotFound, "screenshot not found")
	case errors.Is(err, repository.ErrScreenshotNotPending):
		return apperr.New(apperr.KindInvalidState, "screenshot has already been reviewed")
	}
	return apperr.Internal(err)
}
