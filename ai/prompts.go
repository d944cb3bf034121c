package ai

import (
	"fmt"
	"strings"
)

func storylinePrompt(topic string) string {
	return fmt.Sprintf(`Generate a presentation storyline for the topic: %q.
The storyline should be a structured outline of the presentation. It should include:
1. A main title for the presentation.
2. A subtitle or a short introductory phrase.
3. A list of 5-7 chapters, each with:
    - A chapter title.
    - A brief description of the chapter's content (1-2 sentences).

Output as JSON in this exact format, with no extra text or explanations before or after the JSON block:
{
  "title": "Main Presentation Title",
  "subtitle": "Presentation Subtitle",
  "storyline": [
    {
      "chapter": 1,
      "title": "Chapter 1 Title",
      "description": "Description for chapter 1."
    },
    {
      "chapter": 2,
      "title": "Chapter 2 Title",
      "description": "Description for chapter 2."
    }
  ]
}`, topic)
}

func presentationPrompt(s *Storyline) string {
	chapters := make([]string, 0, len(s.Storyline))
	for _, c := range s.Storyline {
		chapters = append(chapters, fmt.Sprintf("Chapter %s: %s\nDescription: %s", c.Chapter, c.Title, c.Description))
	}

	return fmt.Sprintf(`Based on the following storyline, generate a complete presentation.

Presentation Title: %q
Presentation Subtitle: %q

Storyline Chapters:
%s

For each chapter, create one slide. Each slide must contain:
- A title (it can be the chapter title or a more engaging version of it).
- 2-4 concise bullet points that expand on the chapter's description.
- A visual description for a relevant image (image_prompt).

Output as a single JSON object in this exact format, with no extra text or explanations:
{
  "slides": [
    {
      "title": "Slide 1 Title",
      "bullets": ["Point 1", "Point 2"],
      "image_prompt": "A visual description for slide 1."
    },
    {
      "title": "Slide 2 Title",
      "bullets": ["Point 1", "Point 2"],
      "image_prompt": "A visual description for slide 2."
    }
  ]
}`, s.Title, s.Subtitle, strings.Join(chapters, "\n\n"))
}

func slidePrompt(topic string, t SlideType) string {
	switch t {
	case SlideTitle:
		return fmt.Sprintf("Create a compelling title slide for a presentation about %q.\nReturn only the title as a string, no JSON.", topic)
	case SlideContent:
		return fmt.Sprintf("Create 3-4 bullet points for a slide about %q.\nReturn as JSON: {\"bullets\": [\"point 1\", \"point 2\", \"point 3\"]}", topic)
	case SlideImage:
		return fmt.Sprintf("Generate a visual description for an image that would represent %q.\nReturn as JSON: {\"image_prompt\": \"description\"}", topic)
	default:
		return fmt.Sprintf("Generate content for a slide about %q.\nReturn as JSON: {\"title\": \"slide title\", \"bullets\": [\"point 1\", \"point 2\"], \"image_prompt\": \"description\"}", topic)
	}
}
