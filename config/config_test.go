package config_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/trace"

	"github.com/slidewise/slidewise-server/config"
)

var managedEnv = []string{
	"APP_ENV", "PORT", "STORE_DRIVER", "TOKEN_SECRET", "TOKEN_TTL", "INVITATION_TTL",
	"CORS_ORIGINS", "DATABASE_URL", "DB_HOST", "DB_PASSWORD", "OPENROUTER_KEY",
	"AI_TIMEOUT", "SUPABASE_URL", "SUPABASE_KEY", "OTEL_EXPORTER_OTLP_ENDPOINT",
}

// unsetManaged clears the variables Parse reads; Setenv restores them afterwards.
func unsetManaged() {
	for _, k := range managedEnv {
		GinkgoT().Setenv(k, "")
		Expect(os.Unsetenv(k)).To(Succeed())
	}
}

var _ = Describe("Parse", func() {
	BeforeEach(unsetManaged)

	It("requires TOKEN_SECRET", func() {
		_, err := config.Parse()
		Expect(err).To(MatchError(ContainSubstring("TOKEN_SECRET")))
	})

	It("applies defaults", func() {
		GinkgoT().Setenv("TOKEN_SECRET", "s3cret")

		cfg, err := config.Parse()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal("5001"))
		Expect(cfg.StoreDriver).To(Equal("postgres"))
		Expect(cfg.TokenTTL).To(Equal(24 * time.Hour))
		Expect(cfg.InvitationTTL).To(BeZero())
		Expect(cfg.CORSOrigins).To(Equal([]string{"http://localhost:3000"}))
		Expect(cfg.AI.Timeout).To(Equal(time.Minute))
		Expect(cfg.IsDevelopment()).To(BeTrue())
		Expect(cfg.Storage.UseSupabase()).To(BeFalse())
		Expect(cfg.OTel.Enabled()).To(BeFalse())
	})

	It("reads overrides", func() {
		GinkgoT().Setenv("TOKEN_SECRET", "s3cret")
		GinkgoT().Setenv("APP_ENV", "production")
		GinkgoT().Setenv("STORE_DRIVER", "memory")
		GinkgoT().Setenv("INVITATION_TTL", "168h")
		GinkgoT().Setenv("CORS_ORIGINS", "https://a.test,https://b.test")
		GinkgoT().Setenv("SUPABASE_URL", "https://x.supabase.co")
		GinkgoT().Setenv("SUPABASE_KEY", "key")

		cfg, err := config.Parse()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.IsProduction()).To(BeTrue())
		Expect(cfg.StoreDriver).To(Equal("memory"))
		Expect(cfg.InvitationTTL).To(Equal(7 * 24 * time.Hour))
		Expect(cfg.CORSOrigins).To(Equal([]string{"https://a.test", "https://b.test"}))
		Expect(cfg.Storage.UseSupabase()).To(BeTrue())
	})

	It("rejects unknown drivers and negative TTLs", func() {
		GinkgoT().Setenv("TOKEN_SECRET", "s3cret")
		GinkgoT().Setenv("STORE_DRIVER", "mongo")
		_, err := config.Parse()
		Expect(err).To(MatchError(ContainSubstring("STORE_DRIVER")))

		GinkgoT().Setenv("STORE_DRIVER", "memory")
		GinkgoT().Setenv("TOKEN_TTL", "-1h")
		_, err = config.Parse()
		Expect(err).To(HaveOccurred())
	})

	It("rejects malformed durations", func() {
		GinkgoT().Setenv("TOKEN_SECRET", "s3cret")
		GinkgoT().Setenv("AI_TIMEOUT", "soon")
		_, err := config.Parse()
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("DBConfig", func() {
	It("prefers DATABASE_URL", func() {
		c := config.DBConfig{URL: "postgres://u:p@db/app", Host: "ignored"}
		Expect(c.DSN()).To(Equal("postgres://u:p@db/app"))
	})

	It("assembles a key/value DSN", func() {
		c := config.DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "app", SSLMode: "disable"}
		Expect(c.DSN()).To(Equal("host=db user=u password=p dbname=app port=5432 sslmode=disable TimeZone=UTC"))
	})
})

var _ = Describe("TraceHandler", func() {
	It("stamps trace and span ids from the context", func() {
		var buf bytes.Buffer
		logger := slog.New(config.NewTraceHandler(slog.NewJSONHandler(&buf, nil)))

		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    trace.TraceID{1, 2, 3},
			SpanID:     trace.SpanID{4, 5, 6},
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)
		logger.With("component", "test").InfoContext(ctx, "hello")

		var line map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &line)).To(Succeed())
		Expect(line).To(HaveKeyWithValue("trace_id", sc.TraceID().String()))
		Expect(line).To(HaveKeyWithValue("span_id", sc.SpanID().String()))
		Expect(line).To(HaveKeyWithValue("component", "test"))
	})

	It("leaves records without a span alone", func() {
		var buf bytes.Buffer
		slog.New(config.NewTraceHandler(slog.NewJSONHandler(&buf, nil))).InfoContext(context.Background(), "hello")
		Expect(buf.String()).NotTo(ContainSubstring("trace_id"))
	})
})
