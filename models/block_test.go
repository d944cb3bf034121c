package models_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/slidewise/slidewise-server/models"
)

var _ = Describe("Blocks", func() {
	It("decodes text and image variants with positions", func() {
		var bs models.Blocks
		err := json.Unmarshal([]byte(`[
			{"type":"heading","content":"Hello","x":10,"y":20},
			{"type":"image","content":"alt text","url":"https://img/1.png"}
		]`), &bs)
		Expect(err).NotTo(HaveOccurred())
		Expect(bs).To(HaveLen(2))

		text, ok := bs[0].(*models.TextBlock)
		Expect(ok).To(BeTrue())
		Expect(text.Kind).To(Equal(models.BlockHeading))
		Expect(text.Content).To(Equal("Hello"))
		Expect(*text.X).To(Equal(10.0))
		Expect(*text.Y).To(Equal(20.0))

		img, ok := bs[1].(*models.ImageBlock)
		Expect(ok).To(BeTrue())
		Expect(img.URL).To(Equal("https://img/1.png"))
		Expect(img.Alt).To(Equal("alt text"))
		Expect(img.X).To(BeNil())
	})

	It("keeps unknown block types verbatim", func() {
		raw := `[{"type":"chart","series":[1,2,3],"content":{"nested":true}}]`
		var bs models.Blocks
		Expect(json.Unmarshal([]byte(raw), &bs)).To(Succeed())

		unknown, ok := bs[0].(*models.UnknownBlock)
		Expect(ok).To(BeTrue())
		Expect(unknown.Type()).To(Equal("chart"))

		out, err := json.Marshal(bs)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(MatchJSON(raw))
	})

	It("falls back to unknown when a known type has a malformed body", func() {
		var bs models.Blocks
		Expect(json.Unmarshal([]byte(`[{"type":"quote","content":42}]`), &bs)).To(Succeed())
		_, ok := bs[0].(*models.UnknownBlock)
		Expect(ok).To(BeTrue())
	})

	It("rejects entries that are not objects", func() {
		var bs models.Blocks
		Expect(json.Unmarshal([]byte(`["heading"]`), &bs)).NotTo(Succeed())
	})

	It("round-trips a slide with blocks", func() {
		x := 1.5
		slide := models.Slide{
			Title:   "Intro",
			Content: "a\nb",
			Blocks: models.Blocks{
				&models.TextBlock{Kind: models.BlockSticky, Content: "note", Position: models.Position{X: &x}},
			},
		}
		data, err := json.Marshal(slide)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(MatchJSON(`{"title":"Intro","content":"a\nb","notes":"","blocks":[{"type":"sticky","content":"note","x":1.5}]}`))

		var back models.Slide
		Expect(json.Unmarshal(data, &back)).To(Succeed())
		Expect(back.Blocks).To(HaveLen(1))
		Expect(back.Blocks[0].Type()).To(Equal("sticky"))
	})

	It("omits blocks when a slide has none", func() {
		data, err := json.Marshal(models.Slide{Title: "t"})
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(MatchJSON(`{"title":"t","content":"","notes":""}`))
	})
})
