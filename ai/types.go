package ai

import (
	"encoding/json"
	"errors"
)

// ErrMalformed is returned when the model answers with something that is not the requested JSON.
var ErrMalformed = errors.New("malformed AI response")

type Chapter struct {
	Chapter     json.Number `json:"chapter"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

// Storyline is the outline a presentation is generated from. Raw keeps the
// exact JSON the model produced so callers can hand it back unchanged.
type Storyline struct {
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	Storyline []Chapter `json:"storyline"`

	Raw json.RawMessage `json:"-"`
}

func (s Storyline) MarshalJSON() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	type plain Storyline
	return json.Marshal(plain(s))
}

type GeneratedSlide struct {
	Title       string   `json:"title"`
	Bullets     []string `json:"bullets"`
	ImagePrompt string   `json:"image_prompt"`
}

type GeneratedDeck struct {
	Slides []GeneratedSlide `json:"slides"`
}

// SlideType selects the prompt and answer shape for single-slide generation.
type SlideType string

const (
	SlideTitle   SlideType = "title"
	SlideContent SlideType = "content"
	SlideImage   SlideType = "image"
	SlideDefault SlideType = "default"
)

// ParseSlideType maps an empty value to content and anything unrecognised to default.
func ParseSlideType(s string) SlideType {
	switch SlideType(s) {
	case "":
		return SlideContent
	case SlideTitle, SlideContent, SlideImage:
		return SlideType(s)
	default:
		return SlideDefault
	}
}

// GeneratedContent is the union of single-slide answers; each slide type fills
// only its own fields.
type GeneratedContent struct {
	Title       string   `json:"title,omitempty"`
	Bullets     []string `json:"bullets,omitempty"`
	ImagePrompt string   `json:"image_prompt,omitempty"`
}
