package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slidewise/slidewise-server/models"
	"github.com/slidewise/slidewise-server/store"
)

type WorkspaceService interface {
	Onboarder
	// Get returns the workspace with members populated. Owner or member only.
	Get(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Workspace, error)
	// Rename is owner only.
	Rename(ctx context.Context, workspaceID, userID uuid.UUID, name string) (*models.Workspace, error)
	// ListInvitations lists pending invitations of the workspace. Owner or member only.
	ListInvitations(ctx context.Context, workspaceID, userID uuid.UUID) ([]models.Invitation, error)
}

type workspaceService struct {
	stores        store.Stores
	invitationTTL time.Duration
	now           func() time.Time
}

// NewWorkspaceService builds the workspace service. A zero invitationTTL
// means invitations never expire.
func NewWorkspaceService(stores store.Stores, invitationTTL time.Duration) WorkspaceService {
	return &workspaceService{
		stores:        stores,
		invitationTTL: invitationTTL,
		now:           time.Now,
	}
}

func (s *workspaceService) access() access {
	return access{workspaces: s.stores.Workspaces()}
}

func (s *workspaceService) Onboard(ctx context.Context, stores store.Stores, user *models.User, invitationToken string) error {
	if invitationToken != "" {
		inv, err := s.matchInvitation(ctx, stores, user, invitationToken)
		if err != nil {
			return err
		}
		if inv != nil {
			return s.joinByInvitation(ctx, stores, user, inv)
		}
		slog.InfoContext(ctx, "invitation token did not match, creating default workspace",
			"user_id", user.ID,
		)
	}

	ws := &models.Workspace{
		Name:    models.DefaultWorkspaceName(user.FirstName),
		OwnerID: user.ID,
	}
	if err := stores.Workspaces().Create(ctx, ws); err != nil {
		return Internal(fmt.Errorf("creating default workspace: %w", err))
	}
	if err := stores.Workspaces().AddMember(ctx, ws.ID, user.ID); err != nil {
		return Internal(fmt.Errorf("adding owner to workspace: %w", err))
	}
	if err := stores.Users().AddWorkspace(ctx, user.ID, ws.ID); err != nil {
		return Internal(fmt.Errorf("linking workspace to user: %w", err))
	}
	user.Workspaces = append(user.Workspaces, *ws)
	return nil
}

// matchInvitation returns the pending, unexpired invitation addressed to the
// user's email whose id is token, or nil when there is none.
func (s *workspaceService) matchInvitation(ctx context.Context, stores store.Stores, user *models.User, token string) (*models.Invitation, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, nil
	}
	inv, err := stores.Invitations().GetForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, Internal(fmt.Errorf("loading invitation: %w", err))
	}
	if inv.RecipientEmail != user.Email || inv.Status != models.InvitationPending || inv.Expired(s.invitationTTL, s.now()) {
		return nil, nil
	}
	return inv, nil
}

func (s *workspaceService) joinByInvitation(ctx context.Context, stores store.Stores, user *models.User, inv *models.Invitation) error {
	ws, err := stores.Workspaces().GetByID(ctx, inv.WorkspaceID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// The user is left without a workspace; the invitation is consumed anyway.
		slog.WarnContext(ctx, "invited workspace no longer exists, user has no workspace",
			"user_id", user.ID,
			"invitation_id", inv.ID,
			"workspace_id", inv.WorkspaceID,
		)
	case err != nil:
		return Internal(fmt.Errorf("loading invited workspace: %w", err))
	default:
		if err := stores.Workspaces().AddMember(ctx, ws.ID, user.ID); err != nil {
			return Internal(fmt.Errorf("adding member: %w", err))
		}
		if err := stores.Users().AddWorkspace(ctx, user.ID, ws.ID); err != nil {
			return Internal(fmt.Errorf("linking workspace to user: %w", err))
		}
		user.Workspaces = append(user.Workspaces, *ws)
	}

	if err := stores.Invitations().Delete(ctx, inv.ID); err != nil {
		return Internal(fmt.Errorf("consuming invitation: %w", err))
	}

	slog.InfoContext(ctx, "user joined workspace by invitation",
		"user_id", user.ID,
		"invitation_id", inv.ID,
		"workspace_id", inv.WorkspaceID,
	)
	return nil
}

func (s *workspaceService) Get(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Workspace, error) {
	return s.access().memberWorkspace(ctx, workspaceID, userID, ErrWorkspaceNotFound)
}

func (s *workspaceService) Rename(ctx context.Context, workspaceID, userID uuid.UUID, name string) (*models.Workspace, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Validation(`"name" is required`)
	}
	if len(name) > 255 {
		return nil, Validation(`"name" length must be less than or equal to 255 characters long`)
	}
	if _, err := s.access().ownedWorkspace(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	ws, err := s.stores.Workspaces().Update(ctx, workspaceID, &name, nil)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, Internal(fmt.Errorf("renaming workspace: %w", err))
	}

	slog.InfoContext(ctx, "workspace renamed",
		"workspace_id", workspaceID,
		"user_id", userID,
	)
	return ws, nil
}

func (s *workspaceService) ListInvitations(ctx context.Context, workspaceID, userID uuid.UUID) ([]models.Invitation, error) {
	if _, err := s.access().memberWorkspace(ctx, workspaceID, userID, ErrWorkspaceNotFound); err != nil {
		return nil, err
	}
	invs, err := s.stores.Invitations().ListPendingForWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, Internal(fmt.Errorf("listing invitations: %w", err))
	}
	return invs, nil
}
