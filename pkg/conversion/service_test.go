package conversion_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/measures/pkg/conversion"
	"github.com/papercomputeco/measures/pkg/decoder"
	"github.com/papercomputeco/measures/pkg/history"
	"github.com/papercomputeco/measures/pkg/logger"
	"github.com/papercomputeco/measures/pkg/storage"
	"github.com/papercomputeco/measures/pkg/storage/inmemory"
	"github.com/papercomputeco/measures/pkg/worker"
)

type recordingEnqueuer struct {
	mu   sync.Mutex
	jobs []worker.Job
}

func (r *recordingEnqueuer) Enqueue(job worker.Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, job)
	return true
}

type failingDriver struct{}

var errStoreDown = errors.New("store down")

func (failingDriver) Record(context.Context, string, []int) (*storage.Record, error) {
	return nil, errStoreDown
}

func (failingDriver) ListAll(context.Context) ([]*storage.Record, error) {
	return nil, errStoreDown
}

func (failingDriver) Close() error { return nil }

var _ = Describe("Service", func() {
	var (
		ctx    context.Context
		driver *inmemory.Driver
		hist   *history.Store
		events *recordingEnqueuer
		svc    *conversion.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		hist = history.NewStore(filepath.Join(GinkgoT().TempDir(), "secure_history.enc"), logger.Nop())
		events = &recordingEnqueuer{}

		var err error
		svc, err = conversion.NewService(&conversion.Config{
			Storer:  driver,
			History: hist,
			Events:  events,
			Logger:  logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewService", func() {
		It("requires a storage driver", func() {
			_, err := conversion.NewService(&conversion.Config{History: hist})
			Expect(err).To(MatchError(ContainSubstring("storage driver")))
		})

		It("requires a history store", func() {
			_, err := conversion.NewService(&conversion.Config{Storer: driver})
			Expect(err).To(MatchError(ContainSubstring("history store")))
		})

		It("runs without an event queue or logger", func() {
			s, err := conversion.NewService(&conversion.Config{Storer: driver, History: hist})
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Convert(ctx, "aa")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Processed).To(Equal([]int{1}))
		})
	})

	Describe("Convert", func() {
		It("records the conversion in every sink", func() {
			res, err := svc.Convert(ctx, "abbcc")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Sequence).To(Equal("abbcc"))
			Expect(res.Processed).To(Equal([]int{2, 6}))

			records, err := driver.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(res.AuditID).To(Equal(records[0].ID))

			Expect(hist.Entries()).To(Equal([]history.Entry{{Sequence: "abbcc", Processed: []int{2, 6}}}))

			Expect(events.jobs).To(HaveLen(1))
			Expect(events.jobs[0].Event.AuditID).To(Equal(res.AuditID))
			Expect(events.jobs[0].Event.Processed).To(Equal([]int{2, 6}))
		})

		It("returns a validation error and touches no sink", func() {
			_, err := svc.Convert(ctx, "ABC")

			var verr *decoder.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())

			records, _ := driver.ListAll(ctx)
			Expect(records).To(BeEmpty())
			Expect(hist.Len()).To(BeZero())
			Expect(events.jobs).To(BeEmpty())
		})

		It("converts empty input to an empty list and records it", func() {
			res, err := svc.Convert(ctx, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Sequence).To(BeEmpty())
			Expect(res.Processed).To(Equal([]int{}))

			records, err := driver.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].Sequence).To(BeEmpty())

			Expect(hist.Entries()).To(Equal([]history.Entry{{Sequence: "", Processed: []int{}}}))
			Expect(events.jobs).To(HaveLen(1))
		})

		It("skips history and events when the audit log fails", func() {
			s, err := conversion.NewService(&conversion.Config{
				Storer:  failingDriver{},
				History: hist,
				Events:  events,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Convert(ctx, "aa")
			Expect(err).To(MatchError(conversion.ErrRecord))
			Expect(err).To(MatchError(errStoreDown))
			Expect(hist.Len()).To(BeZero())
			Expect(events.jobs).To(BeEmpty())
		})
	})

	Describe("AuditLog", func() {
		It("returns an empty non-nil slice", func() {
			records, err := svc.AuditLog(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).NotTo(BeNil())
			Expect(records).To(BeEmpty())
		})

		It("lists newest first", func() {
			_, err := svc.Convert(ctx, "aa")
			Expect(err).NotTo(HaveOccurred())
			_, err = svc.Convert(ctx, "abbcc")
			Expect(err).NotTo(HaveOccurred())

			records, err := svc.AuditLog(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].Sequence).To(Equal("abbcc"))
		})
	})

	Describe("SecureHistory", func() {
		It("lists oldest first", func() {
			_, _ = svc.Convert(ctx, "aa")
			_, _ = svc.Convert(ctx, "abbcc")

			Expect(svc.SecureHistory()).To(Equal([]history.Entry{
				{Sequence: "aa", Processed: []int{1}},
				{Sequence: "abbcc", Processed: []int{2, 6}},
			}))
		})
	})
})
