package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/slidewise/slidewise-server/ai"
	"github.com/slidewise/slidewise-server/models"
	"github.com/slidewise/slidewise-server/store"
)

// ContentGenerator is the AI content service.
type ContentGenerator interface {
	GenerateStoryline(ctx context.Context, topic string) (*ai.Storyline, error)
	GeneratePresentation(ctx context.Context, storyline *ai.Storyline) (*ai.GeneratedDeck, error)
	GenerateSlideContent(ctx context.Context, topic string, slideType ai.SlideType) (*ai.GeneratedContent, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type CreatePresentationInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	WorkspaceID string `json:"workspaceId" validate:"required,uuid"`
}

// UpdatePresentationInput replaces the title when non-empty and the whole
// slide list when present.
type UpdatePresentationInput struct {
	Title  *string         `json:"title"`
	Slides *[]models.Slide `json:"slides"`
}

type GeneratePresentationInput struct {
	Storyline   *ai.Storyline `json:"storyline" validate:"required"`
	WorkspaceID string        `json:"workspaceId" validate:"required,uuid"`
}

type GenerateSlideInput struct {
	Topic     string `json:"topic" validate:"required,max=1000"`
	SlideType string `json:"slideType"`
}

type PresentationService interface {
	List(ctx context.Context, userID uuid.UUID, workspaceID string) ([]models.Presentation, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.Presentation, error)
	Create(ctx context.Context, userID uuid.UUID, in CreatePresentationInput) (*models.Presentation, error)
	Update(ctx context.Context, userID, id uuid.UUID, in UpdatePresentationInput) (*models.Presentation, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error

	GenerateStoryline(ctx context.Context, topic string) (*ai.Storyline, error)
	GeneratePresentation(ctx context.Context, userID uuid.UUID, in GeneratePresentationInput) (*models.Presentation, *ai.GeneratedDeck, error)
	GenerateSlideContent(ctx context.Context, userID, id uuid.UUID, in GenerateSlideInput) (*ai.GeneratedContent, ai.SlideType, error)
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type presentationService struct {
	stores store.Stores
	ai     ContentGenerator
}

func NewPresentationService(stores store.Stores, generator ContentGenerator) PresentationService {
	return &presentationService{stores: stores, ai: generator}
}

func (s *presentationService) access() access {
	return access{workspaces: s.stores.Workspaces()}
}

func parseWorkspaceID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, Validation(`"workspaceId" is required`)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, Validation(`"workspaceId" must be a valid id`)
	}
	return id, nil
}

// load fetches a presentation the user may act on. A presentation whose
// workspace is gone is denied.
func (s *presentationService) load(ctx context.Context, userID, id uuid.UUID) (*models.Presentation, error) {
	p, err := s.stores.Presentations().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPresentationNotFound
		}
		return nil, Internal(fmt.Errorf("loading presentation: %w", err))
	}
	if _, err := s.access().memberWorkspace(ctx, p.WorkspaceID, userID, ErrAccessDenied); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *presentationService) List(ctx context.Context, userID uuid.UUID, workspaceID string) ([]models.Presentation, error) {
	wsID, err := parseWorkspaceID(workspaceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access().memberWorkspace(ctx, wsID, userID, ErrWorkspaceNotFound); err != nil {
		return nil, err
	}
	ps, err := s.stores.Presentations().ListByWorkspace(ctx, wsID)
	if err != nil {
		return nil, Internal(fmt.Errorf("listing presentations: %w", err))
	}
	return ps, nil
}

func (s *presentationService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Presentation, error) {
	return s.load(ctx, userID, id)
}

func (s *presentationService) Create(ctx context.Context, userID uuid.UUID, in CreatePresentationInput) (*models.Presentation, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.WorkspaceID = strings.TrimSpace(in.WorkspaceID)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	wsID := uuid.MustParse(in.WorkspaceID)
	if _, err := s.access().memberWorkspace(ctx, wsID, userID, ErrWorkspaceNotFound); err != nil {
		return nil, err
	}

	p := &models.Presentation{
		Title:       in.Title,
		WorkspaceID: wsID,
		Slides:      []models.Slide{},
	}
	if err := s.stores.Presentations().Create(ctx, p); err != nil {
		return nil, Internal(fmt.Errorf("creating presentation: %w", err))
	}

	slog.InfoContext(ctx, "presentation created",
		"presentation_id", p.ID,
		"workspace_id", wsID,
		"user_id", userID,
	)
	return p, nil
}

func (s *presentationService) Update(ctx context.Context, userID, id uuid.UUID, in UpdatePresentationInput) (*models.Presentation, error) {
	p, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if title := strings.TrimSpace(*in.Title); title != "" {
			if len(title) > 255 {
				return nil, Validation(`"title" length must be less than or equal to 255 characters long`)
			}
			p.Title = title
		}
	}
	if in.Slides != nil {
		p.Slides = *in.Slides
		if p.Slides == nil {
			p.Slides = []models.Slide{}
		}
	}

	if err := s.stores.Presentations().Update(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPresentationNotFound
		}
		return nil, Internal(fmt.Errorf("updating presentation: %w", err))
	}
	return p, nil
}

func (s *presentationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	if err := s.stores.Presentations().Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPresentationNotFound
		}
		return Internal(fmt.Errorf("deleting presentation: %w", err))
	}

	slog.InfoContext(ctx, "presentation deleted",
		"presentation_id", id,
		"user_id", userID,
	)
	return nil
}

func (s *presentationService) GenerateStoryline(ctx context.Context, topic string) (*ai.Storyline, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, Validation(`"topic" is required`)
	}

	storyline, err := s.ai.GenerateStoryline(ctx, topic)
	if err != nil {
		return nil, Upstream("Failed to generate storyline", err)
	}
	if storyline.Title == "" || storyline.Storyline == nil {
		return nil, ErrInvalidAIResponse
	}
	return storyline, nil
}

func (s *presentationService) GeneratePresentation(ctx context.Context, userID uuid.UUID, in GeneratePresentationInput) (*models.Presentation, *ai.GeneratedDeck, error) {
	in.WorkspaceID = strings.TrimSpace(in.WorkspaceID)
	if in.Storyline == nil {
		return nil, nil, Validation("Storyline and workspace ID are required.")
	}
	if err := validateInput(in); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(in.Storyline.Title) == "" {
		return nil, nil, Validation(`"storyline.title" is required`)
	}
	wsID := uuid.MustParse(in.WorkspaceID)
	if _, err := s.access().memberWorkspace(ctx, wsID, userID, ErrWorkspaceNotFound); err != nil {
		return nil, nil, err
	}

	deck, err := s.ai.GeneratePresentation(ctx, in.Storyline)
	if err != nil {
		return nil, nil, Upstream("Failed to generate presentation", err)
	}
	if deck.Slides == nil {
		return nil, nil, ErrInvalidAIResponse
	}

	p := &models.Presentation{
		Title:       in.Storyline.Title,
		WorkspaceID: wsID,
		Slides:      slidesFromDeck(deck),
	}
	if err := s.stores.Presentations().Create(ctx, p); err != nil {
		return nil, nil, Internal(fmt.Errorf("saving generated presentation: %w", err))
	}

	slog.InfoContext(ctx, "presentation generated",
		"presentation_id", p.ID,
		"workspace_id", wsID,
		"user_id", userID,
		"slides", len(p.Slides),
	)
	return p, deck, nil
}

// slidesFromDeck joins bullets into newline-delimited content and keeps the
// image prompt as speaker notes.
func slidesFromDeck(deck *ai.GeneratedDeck) []models.Slide {
	slides := make([]models.Slide, 0, len(deck.Slides))
	for _, gs := range deck.Slides {
		slides = append(slides, models.Slide{
			Title:   gs.Title,
			Content: strings.Join(gs.Bullets, "\n"),
			Notes:   gs.ImagePrompt,
		})
	}
	return slides
}

func (s *presentationService) GenerateSlideContent(ctx context.Context, userID, id uuid.UUID, in GenerateSlideInput) (*ai.GeneratedContent, ai.SlideType, error) {
	in.Topic = strings.TrimSpace(in.Topic)
	if err := validateInput(in); err != nil {
		return nil, "", err
	}
	if _, err := s.load(ctx, userID, id); err != nil {
		return nil, "", err
	}

	slideType := ai.ParseSlideType(strings.TrimSpace(in.SlideType))
	content, err := s.ai.GenerateSlideContent(ctx, in.Topic, slideType)
	if err != nil {
		return nil, "", Upstream("Failed to generate slide content", err)
	}
	return content, slideType, nil
}

var errImageFailed = errors.New("no image URL returned")

func (s *presentationService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", Validation("Prompt required")
	}

	url, err := s.ai.GenerateImage(ctx, prompt)
	if err != nil {
		return "", Upstream("Image generation failed", err)
	}
	if url == "" {
		return "", Upstream("Image generation failed", errImageFailed)
	}
	return url, nil
}
