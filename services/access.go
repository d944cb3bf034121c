package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/slidewise/slidewise-server/models"
	"github.com/slidewise/slidewise-server/store"
)

// IsOwner reports whether userID owns ws.
func IsOwner(ws *models.Workspace, userID uuid.UUID) bool {
	return ws != nil && ws.OwnerID == userID
}

// IsMember treats the owner as a member whether or not the member set says so.
func IsMember(ws *models.Workspace, userID uuid.UUID) bool {
	if ws == nil {
		return false
	}
	return IsOwner(ws, userID) || ws.HasMember(userID)
}

// access resolves workspaces and applies the predicates above against a store.
type access struct {
	workspaces store.WorkspaceStore
}

// memberWorkspace loads the workspace with its members and requires userID to
// be owner or member. missing is returned when the workspace does not exist.
func (a access) memberWorkspace(ctx context.Context, workspaceID, userID uuid.UUID, missing *Error) (*models.Workspace, error) {
	ws, err := a.workspaces.GetWithMembers(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, missing
		}
		return nil, Internal(fmt.Errorf("loading workspace: %w", err))
	}
	if !IsMember(ws, userID) {
		return nil, ErrAccessDenied
	}
	return ws, nil
}

func (a access) ownedWorkspace(ctx context.Context, workspaceID, userID uuid.UUID) (*models.Workspace, error) {
	ws, err := a.workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, Internal(fmt.Errorf("loading workspace: %w", err))
	}
	if !IsOwner(ws, userID) {
		return nil, ErrOwnerOnly
	}
	return ws, nil
}
