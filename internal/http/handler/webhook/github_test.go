package webhook_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/autofix/internal/http/handler/webhook"
	"basegraph.app/autofix/internal/mapper"
	"basegraph.app/autofix/internal/service"
	"basegraph.app/autofix/internal/store"
)

type fakeDispatcher struct {
	mu     sync.Mutex
	events []*mapper.Event
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, event *mapper.Event) service.DispatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return service.DispatchResult{Enqueued: true}
}

type failingDeliveries struct{}

func (failingDeliveries) MarkSeen(ctx context.Context, deliveryID string) (bool, error) {
	return false, errors.New("redis down")
}

const issuesPayload = `{
  "action": "opened",
  "issue": {"number": 12, "title": "Crash on save", "body": "TypeError", "labels": [{"name": "bug"}]},
  "repository": {"full_name": "acme/app"},
  "sender": {"login": "octocat"}
}`

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

var _ = Describe("GitHubWebhookHandler", func() {
	var (
		engine     *gin.Engine
		dispatcher *fakeDispatcher
		deliveries store.DeliveryStore
		secret     string
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		dispatcher = &fakeDispatcher{}
		deliveries = store.NewMemoryDeliveryStore(0)
		secret = "s3cret"
	})

	JustBeforeEach(func() {
		h := webhook.NewGitHubWebhookHandler(secret, deliveries, mapper.NewGitHubEventMapper(), dispatcher)
		engine = gin.New()
		engine.POST("/github-webhook", h.HandleEvent)
	})

	post := func(event, delivery, signature, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/github-webhook", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-GitHub-Event", event)
		if delivery != "" {
			req.Header.Set("X-GitHub-Delivery", delivery)
		}
		if signature != "" {
			req.Header.Set("X-Hub-Signature-256", signature)
		}
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		return rec
	}

	It("dispatches a correctly signed issue event", func() {
		rec := post("issues", "d-1", sign(secret, issuesPayload), issuesPayload)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"status":"ok"}`))
		Expect(dispatcher.events).To(HaveLen(1))
		Expect(dispatcher.events[0].Type).To(Equal(mapper.EventIssueOpened))
		Expect(dispatcher.events[0].Issue.Number).To(Equal(12))
		Expect(dispatcher.events[0].Repository.FullName).To(Equal("acme/app"))
	})

	It("rejects a wrong signature without side effects", func() {
		rec := post("issues", "d-2", sign("other", issuesPayload), issuesPayload)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body.String()).To(MatchJSON(`{"error":"Invalid signature"}`))
		Expect(dispatcher.events).To(BeEmpty())

		// The rejected delivery was not recorded.
		Expect(post("issues", "d-2", sign(secret, issuesPayload), issuesPayload).Code).To(Equal(http.StatusOK))
		Expect(dispatcher.events).To(HaveLen(1))
	})

	It("rejects a missing signature", func() {
		rec := post("issues", "d-3", "", issuesPayload)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(dispatcher.events).To(BeEmpty())
	})

	It("acknowledges a redelivery without dispatching it again", func() {
		sig := sign(secret, issuesPayload)
		Expect(post("issues", "d-4", sig, issuesPayload).Code).To(Equal(http.StatusOK))
		Expect(post("issues", "d-4", sig, issuesPayload).Code).To(Equal(http.StatusOK))
		Expect(dispatcher.events).To(HaveLen(1))
	})

	It("acknowledges unsupported events", func() {
		body := `{"zen":"Keep it logically awesome."}`
		rec := post("ping", "d-5", sign(secret, body), body)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(dispatcher.events).To(BeEmpty())
	})

	It("returns 500 for an undecodable payload", func() {
		body := `{"action":`
		rec := post("issues", "d-6", sign(secret, body), body)
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).To(MatchJSON(`{"error":"Internal server error"}`))
		Expect(dispatcher.events).To(BeEmpty())
	})

	Context("without a secret", func() {
		BeforeEach(func() {
			secret = ""
		})

		It("accepts unsigned deliveries", func() {
			Expect(post("issues", "", "", issuesPayload).Code).To(Equal(http.StatusOK))
			Expect(dispatcher.events).To(HaveLen(1))
		})
	})

	Context("when the delivery store fails", func() {
		BeforeEach(func() {
			deliveries = failingDeliveries{}
		})

		It("still dispatches", func() {
			Expect(post("issues", "d-7", sign(secret, issuesPayload), issuesPayload).Code).To(Equal(http.StatusOK))
			Expect(dispatcher.events).To(HaveLen(1))
		})
	})
})
