package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/slidewise/slidewise-server/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// GetWithWorkspaces loads the user and its workspace set.
	GetWithWorkspaces(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByLogin matches email (already lowercased) or username.
	GetByLogin(ctx context.Context, email, username string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	AddWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) error
}

type WorkspaceStore interface {
	Create(ctx context.Context, w *models.Workspace) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
	// GetWithMembers loads the workspace and its member set (public fields only).
	GetWithMembers(ctx context.Context, id uuid.UUID) (*models.Workspace, error)
	// IsMember checks the member set only; the owner is not implied.
	IsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error)
	AddMember(ctx context.Context, workspaceID, userID uuid.UUID) error
	Update(ctx context.Context, id uuid.UUID, name, logoURL *string) (*models.Workspace, error)
	ListOwnedBy(ctx context.Context, ownerID uuid.UUID) ([]models.Workspace, error)
}

type InvitationStore interface {
	// Create returns ErrDuplicate when (recipient_email, workspace_id) exists.
	Create(ctx context.Context, inv *models.Invitation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Invitation, error)
	// ListPendingForEmail populates sender and workspace display fields.
	ListPendingForEmail(ctx context.Context, email string) ([]models.Invitation, error)
	ListPendingForWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type PresentationStore interface {
	Create(ctx context.Context, p *models.Presentation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Presentation, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Presentation, error)
	Update(ctx context.Context, p *models.Presentation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Stores exposes every store bound to one connection or transaction.
type Stores interface {
	Users() UserStore
	Workspaces() WorkspaceStore
	Invitations() InvitationStore
	Presentations() PresentationStore
}

// TxRunner runs fn inside a transaction with stores bound to it. Returning an
// error from fn rolls everything back.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores Stores) error) error
}

// Pinger is satisfied by drivers that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}
