package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/slidewise/slidewise-server/controllers"
)

var _ = Describe("HTTP API", func() {
	var s *server

	BeforeEach(func() {
		s = newServer()
	})

	Describe("health", func() {
		It("answers on / and /health", func() {
			w := s.serve(httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("SlideWise server is running"))

			var health map[string]string
			w = s.call(http.MethodGet, "/health", "", nil, &health)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(health["status"]).To(Equal("ok"))
		})
	})

	Describe("auth", func() {
		It("registers, logs in by email or username and reads the profile", func() {
			token := s.register("Ada", "ada_lovelace", "Ada@X.com", "")

			p := s.me(token)
			Expect(p.Email).To(Equal("ada@x.com"))
			Expect(p.Workspaces).To(HaveLen(1))
			Expect(p.Workspaces[0].Name).To(Equal("Ada's Workspace"))

			var out struct {
				Token string `json:"token"`
			}
			w := s.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ADA@x.com", "password": "password123"}, &out)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(s.me(out.Token).ID).To(Equal(p.ID))

			w = s.call(http.MethodPost, "/api/auth/login", "", gin.H{"identifier": "ada_lovelace", "password": "password123"}, &out)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("never echoes the password hash", func() {
			token := s.register("Ada", "ada_lovelace", "ada@x.com", "")
			w := s.call(http.MethodGet, "/api/user/me", token, nil, nil)
			Expect(w.Body.String()).NotTo(ContainSubstring("password"))
		})

		It("reports failures with kind and message", func() {
			s.register("Ada", "ada_lovelace", "ada@x.com", "")

			var body errorBody
			w := s.call(http.MethodPost, "/api/auth/login", "", gin.H{"identifier": "ada@x.com", "password": "wrong-password"}, &body)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(body.Kind).To(Equal("authentication"))

			w = s.call(http.MethodPost, "/api/auth/register", "", gin.H{
				"firstName": "Ada", "lastName": "Again", "username": "someone_else",
				"email": "ada@x.com", "password": "password123",
			}, &body)
			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(body.Message).To(Equal("User with this email already exists"))

			w = s.call(http.MethodPost, "/api/auth/register", "", gin.H{"firstName": "A"}, &body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(body.Kind).To(Equal("validation"))
		})

		It("rejects malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{nope"))
			req.Header.Set("Content-Type", "application/json")
			Expect(s.serve(req).Code).To(Equal(http.StatusBadRequest))
		})

		It("guards protected routes", func() {
			var body errorBody
			w := s.call(http.MethodGet, "/api/user/me", "", nil, &body)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(body.Message).To(Equal("Access denied. No token provided."))

			w = s.call(http.MethodGet, "/api/user/me", "not-a-jwt", nil, &body)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(body.Message).To(Equal("Invalid token"))
		})

		It("changes the password", func() {
			token := s.register("Ada", "ada_lovelace", "ada@x.com", "")

			w := s.call(http.MethodPost, "/api/user/change-password", token, gin.H{"oldPassword": "wrong-one", "newPassword": "new-password-1"}, nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))

			w = s.call(http.MethodPost, "/api/user/change-password", token, gin.H{"oldPassword": "password123", "newPassword": "new-password-1"}, nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			w = s.call(http.MethodPost, "/api/auth/login", "", gin.H{"identifier": "ada_lovelace", "password": "new-password-1"}, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("workspace settings", func() {
		It("renames through JSON", func() {
			token := s.register("Ada", "ada_lovelace", "ada@x.com", "")
			var p profile
			w := s.call(http.MethodPut, "/api/user/me", token, gin.H{"workspaceName": "Engines Ltd"}, &p)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(p.Workspaces[0].Name).To(Equal("Engines Ltd"))
		})

		It("uploads a logo through multipart and serves it back", func() {
			token := s.register("Ada", "ada_lovelace", "ada@x.com", "")

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			Expect(mw.WriteField("workspaceName", "Engines Ltd")).To(Succeed())
			h := textproto.MIMEHeader{}
			h.Set("Content-Disposition", `form-data; name="logo"; filename="logo.png"`)
			h.Set("Content-Type", "image/png")
			part, err := mw.CreatePart(h)
			Expect(err).NotTo(HaveOccurred())
			_, err = io.WriteString(part, "fake-png")
			Expect(err).NotTo(HaveOccurred())
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPut, "/api/user/me", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			req.Header.Set("auth-token", token)
			w := s.serve(req)
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

			p := s.me(token)
			Expect(p.Workspaces[0].Name).To(Equal("Engines Ltd"))
			Expect(p.Workspaces[0].LogoURL).To(HavePrefix("/uploads/logos/"))

			w = s.serve(httptest.NewRequest(http.MethodGet, p.Workspaces[0].LogoURL, nil))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("fake-png"))
		})
	})

	Describe("oversized uploads", func() {
		It("rejects a logo over the limit without storing it", func() {
			token := s.register("Ada", "ada_lovelace", "ada@x.com", "")

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			h := textproto.MIMEHeader{}
			h.Set("Content-Disposition", `form-data; name="logo"; filename="huge.png"`)
			h.Set("Content-Type", "image/png")
			part, err := mw.CreatePart(h)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write(bytes.Repeat([]byte{0x89}, controllers.MaxLogoSize+1<<17))
			Expect(err).NotTo(HaveOccurred())
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPut, "/api/user/me", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			req.Header.Set("auth-token", token)
			w := s.serve(req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))

			var body errorBody
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Kind).To(Equal("validation"))
			Expect(filepath.Join(s.uploadDir, "logos")).NotTo(BeADirectory())
			Expect(s.me(token).Workspaces[0].LogoURL).To(BeEmpty())
		})
	})

	Describe("collaboration", func() {
		It("invites, accepts and shares presentations", func() {
			ada := s.register("Ada", "ada_lovelace", "ada@x.com", "")
			bob := s.register("Bob", "bob_builder", "bob@x.com", "")
			wsID := s.me(ada).Workspaces[0].ID

			var inv struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			}
			w := s.call(http.MethodPost, "/api/invitations", ada, gin.H{"workspaceId": wsID, "recipientEmail": "BOB@x.com"}, &inv)
			Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
			Expect(inv.Status).To(Equal("pending"))

			w = s.call(http.MethodPost, "/api/invitations", ada, gin.H{"workspaceId": wsID, "recipientEmail": "bob@x.com"}, nil)
			Expect(w.Code).To(Equal(http.StatusConflict))

			var mine []struct {
				ID     string `json:"id"`
				Sender struct {
					FirstName string `json:"firstName"`
				} `json:"sender"`
			}
			w = s.call(http.MethodGet, "/api/invitations", bob, nil, &mine)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mine).To(HaveLen(1))
			Expect(mine[0].Sender.FirstName).To(Equal("Ada"))

			var created struct {
				ID string `json:"id"`
			}
			w = s.call(http.MethodPost, "/api/presentations", ada, gin.H{"title": "Engines", "workspaceId": wsID}, &created)
			Expect(w.Code).To(Equal(http.StatusCreated))

			w = s.call(http.MethodGet, "/api/presentations/"+created.ID, bob, nil, nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))

			var accepted struct {
				Message   string `json:"message"`
				Workspace struct {
					ID string `json:"id"`
				} `json:"workspace"`
			}
			w = s.call(http.MethodPost, "/api/invitations/"+inv.ID+"/accept", bob, nil, &accepted)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(accepted.Message).To(Equal("Invitation accepted successfully"))
			Expect(accepted.Workspace.ID).To(Equal(wsID))

			w = s.call(http.MethodPost, "/api/invitations/"+inv.ID+"/accept", bob, nil, nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))

			w = s.call(http.MethodGet, "/api/presentations/"+created.ID, bob, nil, nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var ws struct {
				Members []struct {
					ID string `json:"id"`
				} `json:"members"`
			}
			w = s.call(http.MethodGet, "/api/workspaces/"+wsID, bob, nil, &ws)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(ws.Members).To(HaveLen(2))

			w = s.call(http.MethodPut, "/api/workspaces/"+wsID, bob, gin.H{"name": "Bob's now"}, nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("joins the inviting workspace when registering with a token", func() {
			ada := s.register("Ada", "ada_lovelace", "ada@x.com", "")
			wsID := s.me(ada).Workspaces[0].ID

			var inv struct {
				ID string `json:"id"`
			}
			w := s.call(http.MethodPost, "/api/invitations", ada, gin.H{"workspaceId": wsID, "recipientEmail": "carol@x.com"}, &inv)
			Expect(w.Code).To(Equal(http.StatusCreated))

			carol := s.register("Carol", "carol_singer", "carol@x.com", inv.ID)
			p := s.me(carol)
			Expect(p.Workspaces).To(HaveLen(1))
			Expect(p.Workspaces[0].ID).To(Equal(wsID))

			var pending []any
			w = s.call(http.MethodGet, "/api/workspaces/"+wsID+"/invitations", ada, nil, &pending)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(pending).To(BeEmpty())
		})

		It("maps malformed ids to not found", func() {
			ada := s.register("Ada", "ada_lovelace", "ada@x.com", "")
			Expect(s.call(http.MethodGet, "/api/presentations/not-an-id", ada, nil, nil).Code).To(Equal(http.StatusNotFound))
			Expect(s.call(http.MethodGet, "/api/workspaces/not-an-id", ada, nil, nil).Code).To(Equal(http.StatusNotFound))
			Expect(s.call(http.MethodPost, "/api/invitations/not-an-id/accept", ada, nil, nil).Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("presentations", func() {
		var (
			ada  string
			wsID string
		)

		BeforeEach(func() {
			ada = s.register("Ada", "ada_lovelace", "ada@x.com", "")
			wsID = s.me(ada).Workspaces[0].ID
		})

		It("round-trips slides with editor blocks", func() {
			var created struct {
				ID string `json:"id"`
			}
			w := s.call(http.MethodPost, "/api/presentations", ada, gin.H{"title": "Deck", "workspaceId": wsID}, &created)
			Expect(w.Code).To(Equal(http.StatusCreated))

			slides := []gin.H{{
				"title":   "Intro",
				"content": "a\nb",
				"notes":   "",
				"blocks": []gin.H{
					{"type": "heading", "content": "Hello"},
					{"type": "image", "url": "https://img.test/a.png", "content": "alt"},
					{"type": "hologram", "content": "kept", "glow": 3},
				},
			}}
			w = s.call(http.MethodPut, "/api/presentations/"+created.ID, ada, gin.H{"slides": slides}, nil)
			Expect(w.Code).To(Equal(http.StatusOK), w.Body.String())

			var got struct {
				Title  string `json:"title"`
				Slides []struct {
					Blocks []map[string]any `json:"blocks"`
				} `json:"slides"`
			}
			w = s.call(http.MethodGet, "/api/presentations/"+created.ID, ada, nil, &got)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got.Title).To(Equal("Deck"))
			Expect(got.Slides).To(HaveLen(1))
			Expect(got.Slides[0].Blocks).To(HaveLen(3))
			Expect(got.Slides[0].Blocks[0]).To(HaveKeyWithValue("type", "heading"))
			Expect(got.Slides[0].Blocks[1]).To(HaveKeyWithValue("url", "https://img.test/a.png"))
			Expect(got.Slides[0].Blocks[2]).To(HaveKeyWithValue("glow", BeNumerically("==", 3)))

			var list []any
			w = s.call(http.MethodGet, "/api/presentations?workspaceId="+wsID, ada, nil, &list)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(list).To(HaveLen(1))

			w = s.call(http.MethodDelete, "/api/presentations/"+created.ID, ada, nil, nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			w = s.call(http.MethodGet, "/api/presentations/"+created.ID, ada, nil, nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("generates a storyline, a deck and slide content", func() {
			var storyline map[string]any
			w := s.call(http.MethodPost, "/api/presentations/generate-storyline", ada, gin.H{"topic": "Steam"}, &storyline)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(storyline).To(HaveKeyWithValue("title", "Steam"))
			Expect(storyline).To(HaveKey("storyline"))

			var generated struct {
				Presentation struct {
					ID     string `json:"id"`
					Title  string `json:"title"`
					Slides []struct {
						Title   string `json:"title"`
						Content string `json:"content"`
						Notes   string `json:"notes"`
					} `json:"slides"`
				} `json:"presentation"`
				AIContent struct {
					Slides []any `json:"slides"`
				} `json:"aiContent"`
			}
			w = s.call(http.MethodPost, "/api/presentations/generate", ada, gin.H{"storyline": storyline, "workspaceId": wsID}, &generated)
			Expect(w.Code).To(Equal(http.StatusCreated), w.Body.String())
			Expect(generated.Presentation.Title).To(Equal("Steam"))
			Expect(generated.Presentation.Slides).To(HaveLen(1))
			Expect(generated.Presentation.Slides[0].Content).To(Equal("one\ntwo"))
			Expect(generated.Presentation.Slides[0].Notes).To(Equal("a picture"))
			Expect(generated.AIContent.Slides).To(HaveLen(1))

			var slide struct {
				SlideContent struct {
					Title string `json:"title"`
				} `json:"slideContent"`
				SlideType string `json:"slideType"`
			}
			w = s.call(http.MethodPost, "/api/presentations/"+generated.Presentation.ID+"/generate-slide", ada,
				gin.H{"topic": "Gears", "slideType": "sparkly"}, &slide)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(slide.SlideContent.Title).To(Equal("Gears"))
			Expect(slide.SlideType).To(Equal("default"))
		})

		It("requires a storyline and workspace to generate", func() {
			var body errorBody
			w := s.call(http.MethodPost, "/api/presentations/generate", ada, gin.H{"workspaceId": wsID}, &body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(body.Kind).To(Equal("validation"))
		})

		It("generates an image for a prompt", func() {
			var out struct {
				ImageURL string `json:"imageUrl"`
			}
			w := s.call(http.MethodPost, "/api/images/generate", ada, gin.H{"prompt": "a steam engine"}, &out)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(out.ImageURL).To(Equal("https://img.test/a-steam-engine.png"))
		})

		It("rejects image requests without a prompt or a token", func() {
			var body errorBody
			w := s.call(http.MethodPost, "/api/images/generate", ada, gin.H{"prompt": ""}, &body)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(body.Message).To(Equal("Prompt required"))

			w = s.call(http.MethodPost, "/api/images/generate", "", gin.H{"prompt": "a steam engine"}, nil)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("reports a missing image URL as a bad gateway", func() {
			var body errorBody
			w := s.call(http.MethodPost, "/api/images/generate", ada, gin.H{"prompt": "nothing"}, &body)
			Expect(w.Code).To(Equal(http.StatusBadGateway))
			Expect(body.Kind).To(Equal("upstream"))
		})
	})
})
