package models

import (
	"encoding/json"
	"fmt"
)

type BlockType string

const (
	BlockHeading    BlockType = "heading"
	BlockParagraph  BlockType = "paragraph"
	BlockCallout    BlockType = "callout"
	BlockTextCard   BlockType = "textCard"
	BlockNumberCard BlockType = "numberCard"
	BlockIconCard   BlockType = "iconCard"
	BlockEmbed      BlockType = "embed"
	BlockMockup     BlockType = "mockup"
	BlockQuote      BlockType = "quote"
	BlockSticky     BlockType = "sticky"
	BlockImage      BlockType = "image"
)

var textBlockTypes = map[BlockType]bool{
	BlockHeading:    true,
	BlockParagraph:  true,
	BlockCallout:    true,
	BlockTextCard:   true,
	BlockNumberCard: true,
	BlockIconCard:   true,
	BlockEmbed:      true,
	BlockMockup:     true,
	BlockQuote:      true,
	BlockSticky:     true,
}

// Block is a closed union of the editor's slide blocks: *TextBlock,
// *ImageBlock, or *UnknownBlock for types this server does not recognise.
type Block interface {
	Type() string
	isBlock()
}

// Position is the block's placement on the editor canvas, when set.
type Position struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

type TextBlock struct {
	Kind    BlockType
	Content string
	Position
}

type ImageBlock struct {
	Alt string
	URL string
	Position
}

// UnknownBlock keeps the raw JSON so the editor gets back exactly what it sent.
type UnknownBlock struct {
	Kind string
	Raw  json.RawMessage
}

func (b *TextBlock) Type() string    { return string(b.Kind) }
func (b *ImageBlock) Type() string   { return string(BlockImage) }
func (b *UnknownBlock) Type() string { return b.Kind }

func (*TextBlock) isBlock()    {}
func (*ImageBlock) isBlock()   {}
func (*UnknownBlock) isBlock() {}

type blockWire struct {
	Type    string   `json:"type"`
	Content string   `json:"content"`
	URL     string   `json:"url,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
}

// Blocks is the ordered block list of a slide.
type Blocks []Block

func (bs Blocks) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(bs))
	for i, b := range bs {
		raw, err := marshalBlock(b)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func (bs *Blocks) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	if raws == nil {
		*bs = nil
		return nil
	}
	out := make(Blocks, 0, len(raws))
	for i, raw := range raws {
		b, err := unmarshalBlock(raw)
		if err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, b)
	}
	*bs = out
	return nil
}

func marshalBlock(b Block) (json.RawMessage, error) {
	switch v := b.(type) {
	case *TextBlock:
		return json.Marshal(blockWire{Type: string(v.Kind), Content: v.Content, X: v.X, Y: v.Y})
	case *ImageBlock:
		return json.Marshal(blockWire{Type: string(BlockImage), Content: v.Alt, URL: v.URL, X: v.X, Y: v.Y})
	case *UnknownBlock:
		if len(v.Raw) == 0 {
			return json.Marshal(blockWire{Type: v.Kind})
		}
		return v.Raw, nil
	default:
		return nil, fmt.Errorf("unsupported block %T", b)
	}
}

func unmarshalBlock(raw json.RawMessage) (Block, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	kind := BlockType(head.Type)
	if kind == BlockImage || textBlockTypes[kind] {
		var w blockWire
		if err := json.Unmarshal(raw, &w); err == nil {
			pos := Position{X: w.X, Y: w.Y}
			if kind == BlockImage {
				return &ImageBlock{Alt: w.Content, URL: w.URL, Position: pos}, nil
			}
			return &TextBlock{Kind: kind, Content: w.Content, Position: pos}, nil
		}
	}
	keep := make(json.RawMessage, len(raw))
	copy(keep, raw)
	return &UnknownBlock{Kind: head.Type, Raw: keep}, nil
}
