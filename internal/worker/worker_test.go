package worker_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/autofix/internal/model"
	"basegraph.app/autofix/internal/pipeline"
	"basegraph.app/autofix/internal/queue"
	"basegraph.app/autofix/internal/worker"
)

type fakeProcessor struct {
	mu        sync.Mutex
	processed []string
	panicOn   map[int]bool
	failOn    map[int]bool
}

func (f *fakeProcessor) Process(ctx context.Context, record model.ProcessingRecord) pipeline.Outcome {
	f.mu.Lock()
	f.processed = append(f.processed, record.IssueID)
	f.mu.Unlock()

	if f.panicOn[record.Issue.Number] {
		panic("implement blew up")
	}
	if f.failOn[record.Issue.Number] {
		return pipeline.Outcome{Err: errors.New("stage failed")}
	}
	return pipeline.Outcome{}
}

func (f *fakeProcessor) Processed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.processed...)
}

type countingSource struct {
	active int
}

func (s *countingSource) Next(ctx context.Context) (model.ProcessingRecord, error) {
	<-ctx.Done()
	return model.ProcessingRecord{}, ctx.Err()
}

func (s *countingSource) Complete(ctx context.Context, issueID string) {}

func (s *countingSource) ActiveCount() int { return s.active }

var _ = Describe("Worker", func() {
	var (
		ctx       context.Context
		cancel    context.CancelFunc
		q         *queue.AdmissionQueue
		processor *fakeProcessor
		w         *worker.Worker
		done      chan error
		repo      model.Repository
		discard   *slog.Logger
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		discard = slog.New(slog.NewTextHandler(io.Discard, nil))
		q = queue.NewAdmissionQueue(1, discard)
		processor = &fakeProcessor{panicOn: map[int]bool{}, failOn: map[int]bool{}}
		w = worker.New(q, processor, discard)
		repo = model.Repository{FullName: "acme/app"}

		done = make(chan error, 1)
		go func() { done <- w.Run(ctx) }()
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive())
	})

	It("processes admitted issues and releases their slots", func() {
		q.Enqueue(ctx, model.IssueRef{Number: 1}, repo, false)
		q.Enqueue(ctx, model.IssueRef{Number: 2}, repo, false)

		Eventually(processor.Processed).Should(Equal([]string{"acme/app#1", "acme/app#2"}))
		Eventually(q.ActiveCount).Should(BeZero())
		Expect(q.PendingCount()).To(BeZero())
	})

	It("keeps draining after a panic in processing", func() {
		processor.panicOn[1] = true

		q.Enqueue(ctx, model.IssueRef{Number: 1}, repo, false)
		q.Enqueue(ctx, model.IssueRef{Number: 2}, repo, false)

		Eventually(processor.Processed).Should(ContainElement("acme/app#2"))
		Eventually(q.ActiveCount).Should(BeZero())
	})

	It("releases the slot when processing reports an error", func() {
		processor.failOn[3] = true

		q.Enqueue(ctx, model.IssueRef{Number: 3}, repo, false)

		Eventually(processor.Processed).Should(ContainElement("acme/app#3"))
		Eventually(q.ActiveCount).Should(BeZero())
	})

	It("stops when the queue closes", func() {
		q.Close()
		Eventually(done).Should(Receive(BeNil()))
		done <- nil
	})

	It("stops on Stop", func() {
		stopped := make(chan struct{})
		go func() {
			w.Stop()
			close(stopped)
		}()
		Eventually(stopped).Should(BeClosed())
		Eventually(done).Should(Receive(BeNil()))
		done <- nil
	})
})

type blockingProcessor struct {
	started chan struct{}
	release chan struct{}

	mu  sync.Mutex
	ctx context.Context
}

func (b *blockingProcessor) Process(ctx context.Context, record model.ProcessingRecord) pipeline.Outcome {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
	close(b.started)
	<-b.release
	return pipeline.Outcome{}
}

func (b *blockingProcessor) ctxErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ctx.Err()
}

var _ = Describe("Worker shutdown", func() {
	It("does not cancel the in-flight run on Stop or ctx cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		discard := slog.New(slog.NewTextHandler(io.Discard, nil))
		q := queue.NewAdmissionQueue(1, discard)
		processor := &blockingProcessor{started: make(chan struct{}), release: make(chan struct{})}
		w := worker.New(q, processor, discard)

		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		q.Enqueue(ctx, model.IssueRef{Number: 4}, model.Repository{FullName: "acme/app"}, false)
		Eventually(processor.started).Should(BeClosed())

		stopped := make(chan struct{})
		go func() {
			w.Stop()
			close(stopped)
		}()
		cancel()

		Consistently(processor.ctxErr, 200*time.Millisecond).Should(Succeed())
		Consistently(stopped, 100*time.Millisecond).ShouldNot(BeClosed())
		Expect(q.IsActive("acme/app#4")).To(BeTrue())

		close(processor.release)
		Eventually(stopped).Should(BeClosed())
		Eventually(done).Should(Receive())
		Expect(q.ActiveCount()).To(BeZero())
	})
})

var _ = Describe("Drain", func() {
	It("returns immediately when nothing is active", func() {
		Expect(worker.Drain(context.Background(), &countingSource{}, time.Millisecond, time.Second)).To(BeZero())
	})

	It("gives up at the deadline and reports what is left", func() {
		left := worker.Drain(context.Background(), &countingSource{active: 2}, time.Millisecond, 20*time.Millisecond)
		Expect(left).To(Equal(2))
	})
})
