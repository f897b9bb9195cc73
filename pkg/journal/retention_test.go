package journal_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/journal"
)

var _ = Describe("Retention", func() {
	var (
		ctx    context.Context
		storer *journal.MemoryStorer
	)

	BeforeEach(func() {
		ctx = context.Background()
		storer = journal.NewMemoryStorer(0)
	})

	It("prunes entries older than the max age", func() {
		now := time.Now()
		Expect(storer.Put(ctx, entryAt("GET", "/stale", now.Add(-48*time.Hour)))).To(Succeed())
		Expect(storer.Put(ctx, entryAt("GET", "/fresh", now.Add(-time.Minute)))).To(Succeed())

		r := journal.NewRetention(storer, journal.DefaultPruneSchedule, 24*time.Hour, zap.NewNop())
		removed, err := r.PruneOnce(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(removed).To(Equal(1))
		Expect(storer.Count(ctx)).To(Equal(1))
	})

	It("rejects an invalid schedule", func() {
		r := journal.NewRetention(storer, "every now and then", time.Hour, zap.NewNop())
		Expect(r.Start(ctx)).To(MatchError(ContainSubstring("invalid prune schedule")))
	})

	It("is a no-op when disabled", func() {
		r := journal.NewRetention(storer, "", time.Hour, zap.NewNop())
		Expect(r.Start(ctx)).To(Succeed())
		r.Stop()
	})

	It("starts and stops with its context", func() {
		runCtx, cancel := context.WithCancel(ctx)
		r := journal.NewRetention(storer, "@every 1h", time.Hour, zap.NewNop())
		Expect(r.Start(runCtx)).To(Succeed())
		cancel()
		r.Stop()
	})
})
