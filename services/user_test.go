package services_test

import (
	"context"
	"strings"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/slidewise/slidewise-server/models"
	"github.com/slidewise/slidewise-server/services"
)

var _ = Describe("UserService", func() {
	var (
		ctx context.Context
		e   *env
		ada *models.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		e = newEnv()
		ada = e.register(registerInput("Ada", "ada_lovelace", "ada@x.com"))
	})

	Describe("UpdateProfile", func() {
		It("renames the first owned workspace and uploads a logo", func() {
			name := "Analytical Engines"
			profile, err := e.users.UpdateProfile(ctx, ada.ID, services.ProfileUpdate{
				WorkspaceName: &name,
				Logo: &services.Upload{
					Filename:    "Logo.PNG",
					ContentType: "image/png",
					Body:        strings.NewReader("png"),
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Workspaces).To(HaveLen(1))
			Expect(profile.Workspaces[0].Name).To(Equal(name))
			Expect(profile.Workspaces[0].LogoURL).To(HavePrefix("https://files.test/logos/"))
			Expect(profile.Workspaces[0].LogoURL).To(HaveSuffix(".png"))

			Expect(e.files.uploads).To(HaveLen(1))
			Expect(e.files.uploads[0].body).To(Equal("png"))
			Expect(e.files.uploads[0].contentType).To(Equal("image/png"))
		})

		It("rejects logos that are not images", func() {
			_, err := e.users.UpdateProfile(ctx, ada.ID, services.ProfileUpdate{
				Logo: &services.Upload{Filename: "x.txt", ContentType: "text/plain", Body: strings.NewReader("x")},
			})
			Expect(kindOf(err)).To(Equal(services.KindValidation))
			Expect(e.files.uploads).To(BeEmpty())
		})

		DescribeTable("rejects SVG logos",
			func(filename, contentType string) {
				_, err := e.users.UpdateProfile(ctx, ada.ID, services.ProfileUpdate{
					Logo: &services.Upload{Filename: filename, ContentType: contentType, Body: strings.NewReader("<svg/>")},
				})
				Expect(kindOf(err)).To(Equal(services.KindValidation))
				Expect(e.files.uploads).To(BeEmpty())
			},
			Entry("by content type", "logo.img", "image/svg+xml; charset=utf-8"),
			Entry("by extension", "logo.SVG", "image/png"),
		)

		It("only updates workspaces the caller owns", func() {
			bob := e.register(registerInput("Bob", "bob_builder", "bob@x.com"))
			target := e.onlyWorkspace(bob)
			name := "Hijacked"

			_, err := e.users.UpdateProfile(ctx, ada.ID, services.ProfileUpdate{WorkspaceID: &target, WorkspaceName: &name})
			Expect(err).To(MatchError(services.ErrOwnerOnly))
		})

		It("reports callers who own no workspace", func() {
			orphan := &models.User{FirstName: "Eve", LastName: "Orphan", Username: "eve_orphan", Email: "eve@x.com", Password: "x"}
			Expect(e.db.Users().Create(ctx, orphan)).To(Succeed())
			name := "Mine"

			_, err := e.users.UpdateProfile(ctx, orphan.ID, services.ProfileUpdate{WorkspaceName: &name})
			Expect(err).To(MatchError(services.ErrNoOwnedWorkspace))
		})

		It("returns the profile unchanged when there is nothing to update", func() {
			blank := "   "
			profile, err := e.users.UpdateProfile(ctx, ada.ID, services.ProfileUpdate{WorkspaceName: &blank})
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Workspaces[0].Name).To(Equal("Ada's Workspace"))
		})
	})

	Describe("ChangePassword", func() {
		It("rotates the password", func() {
			Expect(e.users.ChangePassword(ctx, ada.ID, services.ChangePasswordInput{
				OldPassword: "password123", NewPassword: "new-password-1",
			})).To(Succeed())

			_, _, err := e.auth.Login(ctx, services.LoginInput{Identifier: "ada_lovelace", Password: "password123"})
			Expect(err).To(MatchError(services.ErrInvalidCredentials))
			_, _, err = e.auth.Login(ctx, services.LoginInput{Identifier: "ada_lovelace", Password: "new-password-1"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a wrong old password as a validation error", func() {
			err := e.users.ChangePassword(ctx, ada.ID, services.ChangePasswordInput{
				OldPassword: "nope-nope", NewPassword: "new-password-1",
			})
			Expect(err).To(MatchError(services.ErrInvalidOldPassword))
			Expect(kindOf(err)).To(Equal(services.KindValidation))
		})

		It("enforces the password policy on the new password", func() {
			err := e.users.ChangePassword(ctx, ada.ID, services.ChangePasswordInput{
				OldPassword: "password123", NewPassword: "short",
			})
			Expect(kindOf(err)).To(Equal(services.KindValidation))
		})

		It("reports unknown users", func() {
			err := e.users.ChangePassword(ctx, uuid.New(), services.ChangePasswordInput{
				OldPassword: "password123", NewPassword: "new-password-1",
			})
			Expect(err).To(MatchError(services.ErrUserNotFound))
		})
	})
})
