package settings_test

import (
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/settings"
)

var _ = Describe("FileStore", func() {
	var (
		dir   string
		store *settings.FileStore
	)

	BeforeEach(func() {
		dir = filepath.Join(GinkgoT().TempDir(), "relay")
		store = settings.NewFileStore(dir)
	})

	Describe("Load", func() {
		It("returns the defaults on a fresh store and persists them", func() {
			s, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(settings.Defaults()))

			data, err := os.ReadFile(store.Path())
			Expect(err).NotTo(HaveOccurred())

			var onDisk settings.Settings
			Expect(json.Unmarshal(data, &onDisk)).To(Succeed())
			Expect(onDisk).To(Equal(settings.Defaults()))
		})

		It("writes pretty-printed JSON with the record's field names", func() {
			_, err := store.Load()
			Expect(err).NotTo(HaveOccurred())

			data, err := os.ReadFile(store.Path())
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("\n  \"api_url\": \"http://localhost:8080\""))
			Expect(string(data)).To(ContainSubstring("\"refresh_interval\": 30"))
			Expect(string(data)).To(ContainSubstring("\"notifications\": true"))
			Expect(string(data)).To(ContainSubstring("\"dark_mode\": true"))
		})

		It("fails on a corrupt file", func() {
			Expect(os.MkdirAll(dir, 0o755)).To(Succeed())
			Expect(os.WriteFile(store.Path(), []byte("{not json"), 0o644)).To(Succeed())

			_, err := store.Load()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to parse settings"))
		})
	})

	Describe("Save and Load", func() {
		It("round-trips a record", func() {
			saved := settings.Settings{
				APIURL:          "https://fleet.example.com",
				RefreshInterval: 5,
				Notifications:   false,
				DarkMode:        false,
			}
			Expect(store.Save(saved)).To(Succeed())

			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(saved))
		})

		It("leaves no temp files behind", func() {
			Expect(store.Save(settings.Defaults())).To(Succeed())

			entries, err := os.ReadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Name()).To(Equal(settings.FileName))
		})
	})

	Describe("Reset", func() {
		It("persists and returns the defaults", func() {
			Expect(store.Save(settings.Settings{APIURL: "http://other.test", RefreshInterval: 1})).To(Succeed())

			s, err := store.Reset()
			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(settings.Defaults()))

			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(settings.Defaults()))
		})
	})
})

var _ = Describe("MemoryStore", func() {
	It("behaves like a fresh file store", func() {
		store := settings.NewMemoryStore()

		s, err := store.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(settings.Defaults()))

		custom := settings.Settings{APIURL: "http://api.test", RefreshInterval: 10}
		Expect(store.Save(custom)).To(Succeed())
		Expect(store.Load()).To(Equal(custom))

		Expect(store.Reset()).To(Equal(settings.Defaults()))
	})
})

var _ = Describe("Validate", func() {
	DescribeTable("checks the record",
		func(s settings.Settings, valid bool) {
			if valid {
				Expect(s.Validate()).To(Succeed())
			} else {
				Expect(s.Validate()).NotTo(Succeed())
			}
		},
		Entry("defaults", settings.Defaults(), true),
		Entry("https with path", settings.Settings{APIURL: "https://api.test/base", RefreshInterval: 1}, true),
		Entry("missing scheme", settings.Settings{APIURL: "api.test", RefreshInterval: 1}, false),
		Entry("ftp scheme", settings.Settings{APIURL: "ftp://api.test", RefreshInterval: 1}, false),
		Entry("empty url", settings.Settings{RefreshInterval: 1}, false),
		Entry("zero interval", settings.Settings{APIURL: "http://api.test"}, false),
	)
})
