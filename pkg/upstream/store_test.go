package upstream_test

import (
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/relay/pkg/upstream"
)

var _ = Describe("Store", func() {
	var store *upstream.Store

	BeforeEach(func() {
		store = upstream.NewStore("")
	})

	It("starts at the default base URL", func() {
		url, err := store.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal(upstream.DefaultBaseURL))
	})

	It("returns the latest value after Set", func() {
		Expect(store.Set("http://api.test")).To(Succeed())

		url, err := store.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("http://api.test"))
	})

	It("applies Update to the current value", func() {
		Expect(store.Set("http://api.test")).To(Succeed())
		Expect(store.Update(func(current string) string { return current + "/v2" })).To(Succeed())

		url, err := store.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("http://api.test/v2"))
	})

	It("keeps one of the written values under concurrent writers", func() {
		const writers = 64
		written := make([]string, writers)
		for i := range written {
			written[i] = fmt.Sprintf("http://node-%02d.test:8080", i)
		}

		var wg sync.WaitGroup
		for _, url := range written {
			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				defer GinkgoRecover()
				Expect(store.Set(u)).To(Succeed())
			}(url)
		}
		wg.Wait()

		url, err := store.Get()
		Expect(err).NotTo(HaveOccurred())
		Expect(written).To(ContainElement(url))
	})

	Context("when a critical section panics", func() {
		BeforeEach(func() {
			Expect(func() {
				_ = store.Update(func(string) string { panic("boom") })
			}).To(PanicWith("boom"))
		})

		It("is poisoned", func() {
			Expect(store.Poisoned()).To(BeTrue())
		})

		It("fails every later operation with ErrLockPoisoned", func() {
			_, err := store.Get()
			Expect(err).To(MatchError(upstream.ErrLockPoisoned))
			Expect(store.Set("http://api.test")).To(MatchError(upstream.ErrLockPoisoned))
			Expect(store.Update(func(s string) string { return s })).To(MatchError(upstream.ErrLockPoisoned))
		})
	})
})
