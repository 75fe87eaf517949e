package inmemory_test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/measures/pkg/storage"
	"github.com/papercomputeco/measures/pkg/storage/inmemory"
)

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
	})

	It("satisfies storage.Driver", func() {
		var _ storage.Driver = driver
	})

	It("starts empty", func() {
		records, err := driver.ListAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})

	It("assigns IDs starting at 1", func() {
		a, err := driver.Record(ctx, "aa", []int{1})
		Expect(err).NotTo(HaveOccurred())
		b, err := driver.Record(ctx, "abbcc", []int{2, 6})
		Expect(err).NotTo(HaveOccurred())

		Expect(a.ID).To(Equal(int64(1)))
		Expect(b.ID).To(Equal(int64(2)))
	})

	It("lists newest first", func() {
		_, _ = driver.Record(ctx, "aa", []int{1})
		_, _ = driver.Record(ctx, "abbcc", []int{2, 6})

		records, err := driver.ListAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].Sequence).To(Equal("abbcc"))
		Expect(records[1].Sequence).To(Equal("aa"))
	})

	It("isolates stored rows from caller mutation", func() {
		processed := []int{2, 6}
		rec, err := driver.Record(ctx, "abbcc", processed)
		Expect(err).NotTo(HaveOccurred())

		processed[0] = 99
		rec.Processed[1] = 99

		records, err := driver.ListAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records[0].Processed).To(Equal([]int{2, 6}))
	})

	It("records an empty sequence", func() {
		rec, err := driver.Record(ctx, "", []int{})
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Sequence).To(BeEmpty())
		Expect(rec.Processed).To(BeEmpty())
	})

	It("returns ErrClosed after Close", func() {
		Expect(driver.Close()).To(Succeed())

		_, err := driver.Record(ctx, "aa", []int{1})
		Expect(err).To(MatchError(storage.ErrClosed))
		_, err = driver.ListAll(ctx)
		Expect(err).To(MatchError(storage.ErrClosed))
	})

	It("assigns unique IDs under concurrent writers", func() {
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				_, err := driver.Record(ctx, "aa", []int{1})
				Expect(err).NotTo(HaveOccurred())
			}()
		}
		wg.Wait()

		records, err := driver.ListAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(50))

		seen := map[int64]bool{}
		for _, r := range records {
			Expect(seen[r.ID]).To(BeFalse())
			seen[r.ID] = true
		}
	})
})
