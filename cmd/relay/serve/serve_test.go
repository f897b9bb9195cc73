package servecmder

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/cmd/relay/wiring"
	"github.com/papercomputeco/relay/pkg/settings"
)

var _ = Describe("Serve Command", func() {
	freeAddr := func() string {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()
		return ln.Addr().String()
	}

	It("serves commands until the context is cancelled", func() {
		dataDir := GinkgoT().TempDir()
		addr := freeAddr()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cmd := NewServeCmd(&wiring.Options{DataDir: dataDir})
		cmd.SetArgs([]string{"--listen", addr})

		done := make(chan error, 1)
		go func() {
			done <- cmd.ExecuteContext(ctx)
		}()

		Eventually(func() int {
			resp, err := http.Get("http://" + addr + "/health")
			if err != nil {
				return 0
			}
			resp.Body.Close()
			return resp.StatusCode
		}, 5*time.Second, 50*time.Millisecond).Should(Equal(http.StatusOK))

		By("applying edits to settings.json without a save command")
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"pong":true}`))
		}))
		defer upstream.Close()

		s := settings.Defaults()
		s.APIURL = upstream.URL
		Expect(settings.NewFileStore(dataDir).Save(s)).To(Succeed())

		Eventually(func() string {
			resp, err := http.Post("http://"+addr+"/invoke/api_get", "application/json", strings.NewReader(`{"endpoint":"/ping"}`))
			if err != nil {
				return ""
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			return string(body)
		}, 5*time.Second, 50*time.Millisecond).Should(MatchJSON(`{"pong":true}`))

		cancel()
		Eventually(done, 5*time.Second).Should(Receive(BeNil()))
	})
})
