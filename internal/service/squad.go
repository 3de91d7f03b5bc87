package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"guild-backend/internal/apperr"
	"guild-backend/internal/model"
	"guild-backend/internal/pkg/lock"
	"guild-backend/internal/repository"
)

// Squad formation bounds.
const (
	MinSquadNameLen   = 3
	MaxSquadNameLen   = 50
	MaxDescriptionLen = 500
	MinSquadMembers   = 2
	MaxSquadMembers   = 10
	DefaultMaxMembers = 4
)

// SquadService handles squad formation, membership and moderation.
type SquadService struct {
	squadRepo *repository.SquadRepository
	userRepo  *repository.UserRepository
	locks     *lock.SquadLock
}

// NewSquadService creates a new SquadService instance.
func NewSquadService(
	squadRepo *repository.SquadRepository,
	userRepo *repository.UserRepository,
	locks *lock.SquadLock,
) *SquadService {
	return &SquadService{
		squadRepo: squadRepo,
		userRepo:  userRepo,
		locks:     locks,
	}
}

// ValidateSquadName checks the trimmed name against the length bounds and
// returns the trimmed value.
func ValidateSquadName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < MinSquadNameLen {
		return "", apperr.Newf(apperr.KindValidation, "squad name must be at least %d characters", MinSquadNameLen)
	}
	if len(name) > MaxSquadNameLen {
		return "", apperr.Newf(apperr.KindValidation, "squad name cannot exceed %d characters", MaxSquadNameLen)
	}
	return name, nil
}

// Create forms a new squad in pending status with the requester as leader
// and sole member.
func (s *SquadService) Create(ctx context.Context, leaderID uuid.UUID, name, description string, maxMembers int) (*model.SquadView, error) {
	name, err := ValidateSquadName(name)
	if err != nil {
		return nil, err
	}
	if len(description) > MaxDescriptionLen {
		return nil, apperr.Newf(apperr.KindValidation, "description cannot exceed %d characters", MaxDescriptionLen)
	}
	if maxMembers == 0 {
		maxMembers = DefaultMaxMembers
	}
	if maxMembers < MinSquadMembers || maxMembers > MaxSquadMembers {
		return nil, apperr.Newf(apperr.KindValidation, "maxMembers must be between %d and %d", MinSquadMembers, MaxSquadMembers)
	}

	active, err := s.squadRepo.HasActiveSquad(ctx, leaderID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if active {
		return nil, apperr.New(apperr.KindConflict, "you already belong to an active squad")
	}

	squad, err := s.squadRepo.Create(ctx, &model.Squad{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		LeaderID:    leaderID,
		MaxMembers:  maxMembers,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	log.Info().
		Str("squad_id", squad.ID.String()).
		Str("leader_id", leaderID.String()).
		Str("name", name).
		Msg("Squad created and sent for approval")

	return s.resolveView(ctx, squad)
}

// GetByID retrieves a squad with its roster resolved.
func (s *SquadService) GetByID(ctx context.Context, squadID uuid.UUID) (*model.SquadView, error) {
	squad, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return nil, s.mapSquadErr(err)
	}
	return s.resolveView(ctx, squad)
}

// PendingList retrieves all pending squads for the admin approval panel.
func (s *SquadService) PendingList(ctx context.Context) ([]*model.SquadView, error) {
	squads, err := s.squadRepo.ListByStatus(ctx, model.SquadStatusPending)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.resolveViews(ctx, squads)
}

// ApprovedList retrieves all approved squads sorted by wins then recency.
func (s *SquadService) ApprovedList(ctx context.Context) ([]*model.SquadView, error) {
	squads, err := s.squadRepo.ListApproved(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.resolveViews(ctx, squads)
}

// GetByUser retrieves the approved squad the user belongs to, if any.
func (s *SquadService) GetByUser(ctx context.Context, userID uuid.UUID) (*model.SquadView, error) {
	squad, err := s.squadRepo.GetApprovedByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSquadNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "user not in any squad")
		}
		return nil, apperr.Internal(err)
	}
	return s.resolveView(ctx, squad)
}

// Approve transitions a pending squad to approved and stamps the squad
// reference onto every member.
func (s *SquadService) Approve(ctx context.Context, squadID, adminID uuid.UUID, comment string) (*model.SquadView, error) {
	squad, err := s.squadRepo.Approve(ctx, squadID, adminID, comment)
	if err != nil {
		return nil, s.mapSquadErr(err)
	}

	log.Info().
		Str("squad_id", squadID.String()).
		Str("admin_id", adminID.String()).
		Msg("Squad approved")

	return s.resolveView(ctx, squad)
}

// Reject transitions a pending squad to rejected.
func (s *SquadService) Reject(ctx context.Context, squadID, adminID uuid.UUID, comment string) (*model.SquadView, error) {
	squad, err := s.squadRepo.Reject(ctx, squadID, adminID, comment)
	if err != nil {
		return nil, s.mapSquadErr(err)
	}

	log.Info().
		Str("squad_id", squadID.String()).
		Str("admin_id", adminID.String()).
		Msg("Squad rejected")

	return s.resolveView(ctx, squad)
}

// Rename changes a squad's name. Only the leader or an admin may rename.
func (s *SquadService) Rename(ctx context.Context, squadID, requesterID uuid.UUID, requesterRole, newName string) (*model.SquadView, error) {
	newName, err := ValidateSquadName(newName)
	if err != nil {
		return nil, err
	}

	squad, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return nil, s.mapSquadErr(err)
	}
	if squad.LeaderID != requesterID && requesterRole != model.RoleAdmin {
		return nil, apperr.New(apperr.KindForbidden, "only the squad leader or an admin can rename the squad")
	}

	updated, err := s.squadRepo.UpdateName(ctx, squadID, newName)
	if err != nil {
		return nil, s.mapSquadErr(err)
	}
	return s.resolveView(ctx, updated)
}

// AddMember appends a user to the squad on behalf of its leader.
func (s *SquadService) AddMember(ctx context.Context, squadID, requesterID, targetID uuid.UUID) error {
	squad, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return s.mapSquadErr(err)
	}
	if squad.LeaderID != requesterID {
		return apperr.New(apperr.KindForbidden, "only the squad leader can add members")
	}
	return s.addMember(ctx, squadID, targetID)
}

// AddMemberAsAdmin appends a user to the squad, bypassing the leader check.
func (s *SquadService) AddMemberAsAdmin(ctx context.Context, squadID, targetID uuid.UUID) error {
	if _, err := s.squadRepo.GetByID(ctx, squadID); err != nil {
		return s.mapSquadErr(err)
	}
	return s.addMember(ctx, squadID, targetID)
}

func (s *SquadService) addMember(ctx context.Context, squadID, targetID uuid.UUID) error {
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.New(apperr.KindNotFound, "user not found")
		}
		return apperr.Internal(err)
	}

	err := s.locks.WithLock(squadID, func() error {
		return s.squadRepo.AddMember(ctx, squadID, targetID)
	})
	if err != nil {
		return s.mapSquadErr(err)
	}
	return nil
}

// RemoveMember removes a user from the squad on behalf of its leader. The
// leader cannot be removed through this path; deactivation is the only way
// out for a leader.
func (s *SquadService) RemoveMember(ctx context.Context, squadID, requesterID, targetID uuid.UUID) error {
	squad, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return s.mapSquadErr(err)
	}
	if squad.LeaderID != requesterID {
		return apperr.New(apperr.KindForbidden, "only the squad leader can remove members")
	}
	if targetID == squad.LeaderID {
		return apperr.New(apperr.KindInvalidState, "the leader cannot be removed from the squad")
	}

	err = s.locks.WithLock(squadID, func() error {
		return s.squadRepo.RemoveMember(ctx, squadID, targetID)
	})
	if err != nil {
		return s.mapSquadErr(err)
	}
	return nil
}

// Leave removes the requester from the squad. The leader must deactivate
// the squad instead of leaving it.
func (s *SquadService) Leave(ctx context.Context, squadID, requesterID uuid.UUID) error {
	squad, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return s.mapSquadErr(err)
	}
	if requesterID == squad.LeaderID {
		return apperr.New(apperr.KindInvalidState, "the leader cannot leave; deactivate the squad instead")
	}

	err = s.locks.WithLock(squadID, func() error {
		return s.squadRepo.RemoveMember(ctx, squadID, requesterID)
	})
	if err != nil {
		return s.mapSquadErr(err)
	}
	return nil
}

// Deactivate retires an approved squad. Only the leader or an admin may do
// so; every member's squad reference is cleared at once.
func (s *SquadService) Deactivate(ctx context.Context, squadID, requesterID uuid.UUID, requesterRole string) (*model.SquadView, error) {
	squad, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return nil, s.mapSquadErr(err)
	}
	if squad.LeaderID != requesterID && requesterRole != model.RoleAdmin {
		return nil, apperr.New(apperr.KindForbidden, "only the squad leader or an admin can deactivate the squad")
	}

	updated, err := s.squadRepo.Deactivate(ctx, squadID)
	if err != nil {
		return nil, s.mapSquadErr(err)
	}

	log.Info().
		Str("squad_id", squadID.String()).
		Str("requester_id", requesterID.String()).
		Msg("Squad deactivated")

	return s.resolveView(ctx, updated)
}

// KickMember removes a member on behalf of an admin. The leader still
// cannot be kicked; squad deletion or deactivation handles that case.
func (s *SquadService) KickMember(ctx context.Context, squadID, targetID, adminID uuid.UUID, reason string) error {
	squad, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return s.mapSquadErr(err)
	}
	if targetID == squad.LeaderID {
		return apperr.New(apperr.KindInvalidState, "the leader cannot be removed from the squad")
	}

	err = s.locks.WithLock(squadID, func() error {
		return s.squadRepo.RemoveMember(ctx, squadID, targetID)
	})
	if err != nil {
		return s.mapSquadErr(err)
	}

	log.Info().
		Str("squad_id", squadID.String()).
		Str("target_id", targetID.String()).
		Str("admin_id", adminID.String()).
		Str("reason", reason).
		Msg("Member kicked from squad")
	return nil
}

// DeleteSquad permanently removes a squad from any status.
func (s *SquadService) DeleteSquad(ctx context.Context, squadID, adminID uuid.UUID, reason string) error {
	if err := s.squadRepo.Delete(ctx, squadID); err != nil {
		return s.mapSquadErr(err)
	}

	log.Info().
		Str("squad_id", squadID.String()).
		Str("admin_id", adminID.String()).
		Str("reason", reason).
		Msg("Squad deleted")
	return nil
}

// AdminList retrieves squads for the admin panel with derived analytics.
func (s *SquadService) AdminList(ctx context.Context, statusFilter, search string) ([]*model.SquadSummary, error) {
	squads, err := s.squadRepo.ListAll(ctx, statusFilter, search)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	summaries := make([]*model.SquadSummary, 0, len(squads))
	for _, squad := range squads {
		view, err := s.resolveView(ctx, squad)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, SummarizeSquad(view))
	}
	return summaries, nil
}

// Analytics retrieves the full roster of one squad with leader and
// activity flags.
func (s *SquadService) Analytics(ctx context.Context, squadID uuid.UUID) ([]*model.SquadMemberInfo, error) {
	squad, err := s.squadRepo.GetByID(ctx, squadID)
	if err != nil {
		return nil, s.mapSquadErr(err)
	}
	view, err := s.resolveView(ctx, squad)
	if err != nil {
		return nil, err
	}
	return ClassifyMembers(view), nil
}

// Stats aggregates global squad counters.
func (s *SquadService) Stats(ctx context.Context) (*model.SquadStats, error) {
	stats, err := s.squadRepo.Stats(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return stats, nil
}

// resolveView loads the leader and member records for a squad, keeping the
// roster in join order.
func (s *SquadService) resolveView(ctx context.Context, squad *model.Squad) (*model.SquadView, error) {
	users, err := s.userRepo.GetByIDs(ctx, squad.MemberIDs)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	byID := make(map[uuid.UUID]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	view := &model.SquadView{Squad: *squad}
	for _, id := range squad.MemberIDs {
		if u, ok := byID[id]; ok {
			view.Members = append(view.Members, u)
		}
	}
	if leader, ok := byID[squad.LeaderID]; ok {
		view.Leader = leader
	} else {
		leader, err := s.userRepo.GetByID(ctx, squad.LeaderID)
		if err == nil {
			view.Leader = leader
		}
	}
	return view, nil
}

func (s *SquadService) resolveViews(ctx context.Context, squads []*model.Squad) ([]*model.SquadView, error) {
	views := make([]*model.SquadView, 0, len(squads))
	for _, squad := range squads {
		view, err := s.resolveView(ctx, squad)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// mapSquadErr translates repository sentinels into the error taxonomy.
func (s *SquadService) mapSquadErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrSquadNotFound):
		return apperr.New(apperr.KindNotFound, "squad not found")
	case errors.Is(err, repository.ErrSquadNotPending):
		return apperr.New(apperr.KindInvalidState, "squad is not pending approval")
	case errors.Is(err, repository.ErrSquadNotApproved):
		return apperr.New(apperr.KindInvalidState, "squad is not approved")
	case errors.Is(err, repository.ErrSquadFull):
		return apperr.New(apperr.KindConflict, "squad is full")
	case errors.Is(err, repository.ErrAlreadyMember):
		return apperr.New(apperr.KindConflict, "user is already a member of this squad")
	case errors.Is(err, repository.ErrInActiveSquad):
		return apperr.New(apperr.KindConflict, "user already belongs to an active squad")
	case errors.Is(err, repository.ErrNotMember):
		return apperr.New(apperr.KindInvalidState, "user is not a member of this squad")
	}
	return apperr.Internal(err)
}
