package settings_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/settings"
)

var _ = Describe("Watcher", func() {
	var (
		dir     string
		watcher *settings.Watcher
		cancel  context.CancelFunc
		reloads atomic.Int32
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		reloads.Store(0)

		var err error
		watcher, err = settings.NewWatcher(dir, 20*time.Millisecond, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		go func() {
			defer GinkgoRecover()
			Expect(watcher.Watch(ctx, func() error {
				reloads.Add(1)
				return nil
			})).To(Succeed())
		}()
	})

	AfterEach(func() {
		cancel()
		Expect(watcher.Close()).To(Succeed())
	})

	It("coalesces a burst of writes to the settings file", func() {
		store := settings.NewFileStore(dir)
		for i := 0; i < 5; i++ {
			Expect(store.Save(settings.Settings{APIURL: "http://api.test", RefreshInterval: uint32(i + 1)})).To(Succeed())
		}

		Eventually(reloads.Load, 2*time.Second, 10*time.Millisecond).Should(BeNumerically(">=", 1))
		Expect(reloads.Load()).To(BeNumerically("<", 5))
	})

	It("ignores other files in the data directory", func() {
		Expect(os.WriteFile(filepath.Join(dir, "journal.db"), []byte("x"), 0o644)).To(Succeed())

		Consistently(reloads.Load, 150*time.Millisecond, 10*time.Millisecond).Should(BeZero())
	})
})
