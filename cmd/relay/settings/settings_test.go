package settingscmder

import (
	"bytes"
	"context"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/cmd/relay/wiring"
	"github.com/papercomputeco/relay/pkg/settings"
	"github.com/papercomputeco/relay/pkg/shell"
)

var _ = Describe("Settings Command", func() {
	var (
		dataDir string
		opts    *wiring.Options
	)

	BeforeEach(func() {
		dataDir = GinkgoT().TempDir()
		opts = &wiring.Options{DataDir: dataDir}
	})

	execute := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewSettingsCmd(opts)
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	It("shows the defaults on first run", func() {
		out, err := execute("show")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("http://localhost:8080"))
	})

	It("saves only the flags that were given", func() {
		_, err := execute("save", "--api-url", "https://api.example.com", "--dark-mode=false")
		Expect(err).NotTo(HaveOccurred())

		s, err := settings.NewFileStore(dataDir).Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.APIURL).To(Equal("https://api.example.com"))
		Expect(s.DarkMode).To(BeFalse())
		Expect(s.RefreshInterval).To(Equal(settings.Defaults().RefreshInterval))
	})

	It("rejects invalid settings without touching the file", func() {
		_, err := execute("save", "--api-url", "not a url")
		Expect(err).To(MatchError(shell.ErrInvalidSettings))

		s, err := settings.NewFileStore(dataDir).Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.APIURL).To(Equal(settings.Defaults().APIURL))
	})

	It("resets to the defaults", func() {
		_, err := execute("save", "--api-url", "https://api.example.com")
		Expect(err).NotTo(HaveOccurred())

		out, err := execute("reset")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("http://localhost:8080"))

		s, err := settings.NewFileStore(dataDir).Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(Equal(settings.Defaults()))
	})
})
