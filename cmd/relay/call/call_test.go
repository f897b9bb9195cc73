package callcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/relay/cmd/relay/wiring"
	"github.com/papercomputeco/relay/pkg/settings"
	"github.com/papercomputeco/relay/proxy"
)

var _ = Describe("Call Commands", func() {
	var (
		ctx      context.Context
		dataDir  string
		upstream *httptest.Server
		lastBody []byte
		lastPath string
		opts     *wiring.Options
	)

	BeforeEach(func() {
		ctx = context.Background()
		dataDir = GinkgoT().TempDir()

		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastPath = r.URL.Path
			lastBody, _ = io.ReadAll(r.Body)

			switch r.URL.Path {
			case "/missing":
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte("not here"))
			case "/blob":
				_, _ = w.Write([]byte{0x00, 0x01, 0x02})
			default:
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"method":"` + r.Method + `"}`))
			}
		}))

		s := settings.Defaults()
		s.APIURL = upstream.URL
		Expect(settings.NewFileStore(dataDir).Save(s)).To(Succeed())

		opts = &wiring.Options{DataDir: dataDir}
	})

	AfterEach(func() {
		upstream.Close()
	})

	execute := func(cmd *cobra.Command, args ...string) (string, error) {
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	It("prints the decoded response of a GET", func() {
		out, err := execute(NewGetCmd(opts), "/api/v1/nodes")
		Expect(err).NotTo(HaveOccurred())
		Expect(lastPath).To(Equal("/api/v1/nodes"))

		var decoded map[string]any
		Expect(json.Unmarshal([]byte(out), &decoded)).To(Succeed())
		Expect(decoded).To(HaveKeyWithValue("method", "GET"))
	})

	It("sends --data as the POST body", func() {
		_, err := execute(NewPostCmd(opts), "/items", "--data", `{"name":"a"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(lastBody)).To(MatchJSON(`{"name":"a"}`))
	})

	It("sends an empty object when PUT has no --data", func() {
		_, err := execute(NewPutCmd(opts), "/items/1")
		Expect(err).NotTo(HaveOccurred())
		Expect(string(lastBody)).To(MatchJSON(`{}`))
	})

	It("rejects invalid --data", func() {
		_, err := execute(NewPostCmd(opts), "/items", "--data", "{nope")
		Expect(err).To(MatchError(ContainSubstring("--data is not valid JSON")))
	})

	It("returns upstream failures", func() {
		_, err := execute(NewDeleteCmd(opts), "/missing")
		Expect(proxy.KindOf(err)).To(Equal(proxy.KindUpstream))
		Expect(err.Error()).To(ContainSubstring("API error (404 Not Found): not here"))
	})

	It("writes downloads to --output", func() {
		target := filepath.Join(dataDir, "blob.bin")
		_, err := execute(NewDownloadCmd(opts), "/blob", "-o", target)
		Expect(err).NotTo(HaveOccurred())

		data, err := os.ReadFile(target)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal([]byte{0x00, 0x01, 0x02}))
	})

	It("writes downloads to stdout without --output", func() {
		out, err := execute(NewDownloadCmd(opts), "/blob")
		Expect(err).NotTo(HaveOccurred())
		Expect([]byte(out)).To(Equal([]byte{0x00, 0x01, 0x02}))
	})

	It("uploads a local file", func() {
		path := filepath.Join(dataDir, "report.txt")
		Expect(os.WriteFile(path, []byte("report body"), 0o644)).To(Succeed())

		_, err := execute(NewUploadCmd(opts), "/files", path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(lastBody)).To(ContainSubstring(`name="file"; filename="report.txt"`))
		Expect(string(lastBody)).To(ContainSubstring("report body"))
	})

	It("fails uploads of missing files before any request", func() {
		lastPath = ""
		_, err := execute(NewUploadCmd(opts), "/files", filepath.Join(dataDir, "nope.txt"))
		Expect(proxy.KindOf(err)).To(Equal(proxy.KindFileRead))
		Expect(lastPath).To(BeEmpty())
	})
})
