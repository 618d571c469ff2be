package store_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/autofix/internal/model"
	"basegraph.app/autofix/internal/store"
)

var _ = Describe("LocalSettingsStore", func() {
	var (
		ctx  context.Context
		path string
		buf  *bytes.Buffer
		s    *store.LocalSettingsStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		path = filepath.Join(GinkgoT().TempDir(), ".autofix", "config.json")
		buf = &bytes.Buffer{}
		s = store.NewLocalSettingsStore(path, slog.New(slog.NewJSONHandler(buf, nil)))
	})

	It("writes defaults when the file does not exist", func() {
		settings, err := s.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(settings).To(Equal(model.DefaultSettings()))

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`"maxConcurrentIssues": 3`))
	})

	It("merges file values over defaults per top-level key", func() {
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(`{"maxConcurrentIssues": 7, "swarm": {"topology": "star"}}`), 0o644)).To(Succeed())

		settings, err := s.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(settings.MaxConcurrentIssues).To(Equal(7))
		Expect(settings.WebhookPort).To(Equal(3000))
		Expect(settings.Swarm.Topology).To(Equal("star"))
		Expect(settings.Swarm.MaxAgents).To(Equal(5))
		Expect(settings.Sparc.Mode).To(Equal("tdd"))
	})

	It("falls back to defaults on invalid JSON without rewriting the file", func() {
		Expect(os.MkdirAll(filepath.Dir(path), 0o755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(`{not json`), 0o644)).To(Succeed())

		settings, err := s.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(settings).To(Equal(model.DefaultSettings()))
		Expect(buf.String()).To(ContainSubstring("invalid settings file, using defaults"))

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{not json`))
	})

	It("adds a repository once even when configured twice", func() {
		repo := "a/b"
		_, err := s.Configure(ctx, store.ConfigureParams{Repository: &repo})
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Configure(ctx, store.ConfigureParams{Repository: &repo})
		Expect(err).NotTo(HaveOccurred())

		fresh := store.NewLocalSettingsStore(path, nil)
		settings, err := fresh.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(settings.Repositories).To(Equal([]string{"a/b"}))
	})

	It("applies toggles, port and label replacement and persists them", func() {
		off := false
		port := 8081
		updated, err := s.Configure(ctx, store.ConfigureParams{
			Enabled:       &off,
			Port:          &port,
			SparcEnabled:  &off,
			AutoFixLabels: []string{"autofix"},
			Repositories:  []string{"x/y", "z/w"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Enabled).To(BeFalse())
		Expect(updated.Sparc.Enabled).To(BeFalse())
		Expect(updated.Swarm.Enabled).To(BeTrue())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		var onDisk model.Settings
		Expect(json.Unmarshal(data, &onDisk)).To(Succeed())
		Expect(onDisk.WebhookPort).To(Equal(8081))
		Expect(onDisk.AutoFixLabels).To(Equal([]string{"autofix"}))
		Expect(onDisk.Repositories).To(Equal([]string{"x/y", "z/w"}))
	})

	It("rejects an out-of-range port and keeps the previous file", func() {
		port := 70000
		_, err := s.Configure(ctx, store.ConfigureParams{Port: &port})
		Expect(err).To(MatchError(model.ErrInvalidSettings))

		settings, err := s.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(settings.WebhookPort).To(Equal(3000))
	})
})
