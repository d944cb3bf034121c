package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/slidewise/slidewise-server/models"
	"github.com/slidewise/slidewise-server/store"
	"github.com/slidewise/slidewise-server/utils"
)

// FileStore persists an uploaded file and returns the URL it is served from.
type FileStore interface {
	Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error)
}

type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=1024"`
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ProfileUpdate changes the caller's workspace settings. WorkspaceID selects
// the workspace; when nil the first workspace the caller owns is used.
type ProfileUpdate struct {
	WorkspaceID   *uuid.UUID
	WorkspaceName *string
	Logo          *Upload
}

type UserService interface {
	// Profile returns the user with workspaces populated.
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, in ChangePasswordInput) error
}

type userService struct {
	stores store.Stores
	files  FileStore
}

func NewUserService(stores store.Stores, files FileStore) UserService {
	return &userService{stores: stores, files: files}
}

func (s *userService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.stores.Users().GetWithWorkspaces(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, Internal(fmt.Errorf("loading profile: %w", err))
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*models.User, error) {
	var name *string
	if in.WorkspaceName != nil {
		trimmed := strings.TrimSpace(*in.WorkspaceName)
		if trimmed != "" {
			if len(trimmed) > 255 {
				return nil, Validation(`"workspaceName" length must be less than or equal to 255 characters long`)
			}
			name = &trimmed
		}
	}
	if name == nil && in.Logo == nil {
		return s.Profile(ctx, userID)
	}

	ws, err := s.targetWorkspace(ctx, userID, in.WorkspaceID)
	if err != nil {
		return nil, err
	}

	var logoURL *string
	if in.Logo != nil {
		url, err := s.uploadLogo(ctx, ws.ID, in.Logo)
		if err != nil {
			return nil, err
		}
		logoURL = &url
	}

	if _, err := s.stores.Workspaces().Update(ctx, ws.ID, name, logoURL); err != nil {
		return nil, Internal(fmt.Errorf("updating workspace: %w", err))
	}

	slog.InfoContext(ctx, "workspace settings updated",
		"workspace_id", ws.ID,
		"user_id", userID,
		"renamed", name != nil,
		"logo", logoURL != nil,
	)
	return s.Profile(ctx, userID)
}

func (s *userService) targetWorkspace(ctx context.Context, userID uuid.UUID, workspaceID *uuid.UUID) (*models.Workspace, error) {
	if workspaceID != nil {
		return access{workspaces: s.stores.Workspaces()}.ownedWorkspace(ctx, *workspaceID, userID)
	}
	owned, err := s.stores.Workspaces().ListOwnedBy(ctx, userID)
	if err != nil {
		return nil, Internal(fmt.Errorf("listing owned workspaces: %w", err))
	}
	if len(owned) == 0 {
		return nil, ErrNoOwnedWorkspace
	}
	return &owned[0], nil
}

func (s *userService) uploadLogo(ctx context.Context, workspaceID uuid.UUID, logo *Upload) (string, error) {
	if !strings.HasPrefix(logo.ContentType, "image/") {
		return "", Validation(`"logo" must be an image`)
	}
	// SVG can carry script and logos are served from our own origin.
	if mediaType, _, _ := mime.ParseMediaType(logo.ContentType); mediaType == "image/svg+xml" ||
		strings.EqualFold(path.Ext(logo.Filename), ".svg") {
		return "", Validation(`"logo" must be a raster image`)
	}
	if s.files == nil {
		return "", Internal(errors.New("no file store configured"))
	}
	objectPath := fmt.Sprintf("logos/%s/%s%s", workspaceID, uuid.NewString(), strings.ToLower(path.Ext(logo.Filename)))
	url, err := s.files.Upload(ctx, objectPath, logo.Body, logo.ContentType)
	if err != nil {
		return "", Internal(fmt.Errorf("uploading logo: %w", err))
	}
	return url, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, in ChangePasswordInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	user, err := s.stores.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return Internal(fmt.Errorf("loading user: %w", err))
	}
	if !utils.CheckPassword(user.Password, in.OldPassword) {
		return ErrInvalidOldPassword
	}

	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return Internal(fmt.Errorf("hashing password: %w", err))
	}
	if err := s.stores.Users().UpdatePassword(ctx, userID, hash); err != nil {
		return Internal(fmt.Errorf("updating password: %w", err))
	}

	slog.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}
