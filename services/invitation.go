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

type CreateInvitationInput struct {
	WorkspaceID    string `json:"workspaceId" validate:"required,uuid"`
	RecipientEmail string `json:"recipientEmail" validate:"required,max=255,email"`
}

type InvitationService interface {
	// Create issues a pending invitation. Owner only.
	Create(ctx context.Context, sender *models.User, in CreateInvitationInput) (*models.Invitation, error)
	// ListMine lists pending invitations addressed to the user's email.
	ListMine(ctx context.Context, user *models.User) ([]models.Invitation, error)
	// Accept joins the user to the invited workspace and consumes the invitation.
	Accept(ctx context.Context, user *models.User, invitationID uuid.UUID) (*models.Workspace, error)
}

type invitationService struct {
	stores store.Stores
	tx     store.TxRunner
	ttl    time.Duration
	now    func() time.Time
}

func NewInvitationService(stores store.Stores, tx store.TxRunner, ttl time.Duration) InvitationService {
	return &invitationService{
		stores: stores,
		tx:     tx,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *invitationService) Create(ctx context.Context, sender *models.User, in CreateInvitationInput) (*models.Invitation, error) {
	in.RecipientEmail = strings.ToLower(strings.TrimSpace(in.RecipientEmail))
	in.WorkspaceID = strings.TrimSpace(in.WorkspaceID)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	workspaceID := uuid.MustParse(in.WorkspaceID)

	ws, err := access{workspaces: s.stores.Workspaces()}.ownedWorkspace(ctx, workspaceID, sender.ID)
	if err != nil {
		return nil, err
	}

	recipient, err := s.stores.Users().GetByEmail(ctx, in.RecipientEmail)
	switch {
	case err == nil:
		if IsOwner(ws, recipient.ID) {
			return nil, ErrAlreadyMember
		}
		member, err := s.stores.Workspaces().IsMember(ctx, ws.ID, recipient.ID)
		if err != nil {
			return nil, Internal(fmt.Errorf("checking membership: %w", err))
		}
		if member {
			return nil, ErrAlreadyMember
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, Internal(fmt.Errorf("looking up recipient: %w", err))
	}

	inv := &models.Invitation{
		SenderID:       sender.ID,
		RecipientEmail: in.RecipientEmail,
		WorkspaceID:    ws.ID,
		Status:         models.InvitationPending,
	}
	if err := s.stores.Invitations().Create(ctx, inv); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrInvitationPending
		}
		return nil, Internal(fmt.Errorf("creating invitation: %w", err))
	}

	slog.InfoContext(ctx, "invitation created",
		"invitation_id", inv.ID,
		"workspace_id", ws.ID,
		"sender_id", sender.ID,
	)
	return inv, nil
}

func (s *invitationService) ListMine(ctx context.Context, user *models.User) ([]models.Invitation, error) {
	invs, err := s.stores.Invitations().ListPendingForEmail(ctx, strings.ToLower(user.Email))
	if err != nil {
		return nil, Internal(fmt.Errorf("listing invitations: %w", err))
	}
	live := invs[:0]
	for _, inv := range invs {
		if !inv.Expired(s.ttl, s.now()) {
			live = append(live, inv)
		}
	}
	return live, nil
}

func (s *invitationService) Accept(ctx context.Context, user *models.User, invitationID uuid.UUID) (*models.Workspace, error) {
	var joined *models.Workspace
	err := s.tx.WithTx(ctx, func(stores store.Stores) error {
		inv, err := stores.Invitations().GetForUpdate(ctx, invitationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationNotFound
			}
			return Internal(fmt.Errorf("loading invitation: %w", err))
		}
		// Wrong recipient, consumed, or expired all read as not found.
		if inv.RecipientEmail != strings.ToLower(user.Email) ||
			inv.Status != models.InvitationPending ||
			inv.Expired(s.ttl, s.now()) {
			return ErrInvitationNotFound
		}

		ws, err := stores.Workspaces().GetByID(ctx, inv.WorkspaceID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationNotFound
			}
			return Internal(fmt.Errorf("loading workspace: %w", err))
		}

		if err := stores.Workspaces().AddMember(ctx, ws.ID, user.ID); err != nil {
			return Internal(fmt.Errorf("adding member: %w", err))
		}
		if err := stores.Users().AddWorkspace(ctx, user.ID, ws.ID); err != nil {
			return Internal(fmt.Errorf("linking workspace to user: %w", err))
		}
		if err := stores.Invitations().UpdateStatus(ctx, inv.ID, models.InvitationAccepted); err != nil {
			return Internal(fmt.Errorf("marking invitation accepted: %w", err))
		}
		if err := stores.Invitations().Delete(ctx, inv.ID); err != nil {
			return Internal(fmt.Errorf("deleting invitation: %w", err))
		}
		joined = ws
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "invitation accepted",
		"invitation_id", invitationID,
		"workspace_id", joined.ID,
		"user_id", user.ID,
	)
	return joined, nil
}
