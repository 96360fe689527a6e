package guard_test

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"

	"github.com/dayanaadylkhanova/powcaptcha/internal/adapter/guard"
	"github.com/dayanaadylkhanova/powcaptcha/internal/entity"
	"github.com/dayanaadylkhanova/powcaptcha/internal/service"
	"github.com/dayanaadylkhanova/powcaptcha/pkg/altcha"
)

func newKey() string {
	return "powcaptcha." + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func BackendTestSuite(open func() guard.Backend) func() {
	return func() {
		var (
			b   guard.Backend
			ctx = context.Background()
		)
		BeforeAll(func() {
			b = open()
			DeferCleanup(b.Close)
		})

		It("should be reachable", func() {
			Expect(b.Ping(ctx)).To(Succeed())
		})

		It("should report unknown keys as not outstanding", func() {
			s := b.Session(uuid.NewString())
			Expect(s.Get(ctx, newKey())).To(BeFalse())
		})

		It("should remember an outstanding key", func() {
			s := b.Session(uuid.NewString())
			k := newKey()
			Expect(s.Set(ctx, k, true)).To(Succeed())
			Expect(s.Get(ctx, k)).To(BeTrue())
		})

		It("should consume a key at most once", func() {
			s := b.Session(uuid.NewString())
			k := newKey()
			Expect(s.Set(ctx, k, true)).To(Succeed())

			Expect(s.ConsumeIfPresent(ctx, k)).To(BeTrue())
			Expect(s.Get(ctx, k)).To(BeFalse())
			Expect(s.ConsumeIfPresent(ctx, k)).To(BeFalse())
		})

		It("should not consume unknown or consumed keys", func() {
			s := b.Session(uuid.NewString())
			Expect(s.ConsumeIfPresent(ctx, newKey())).To(BeFalse())

			k := newKey()
			Expect(s.Set(ctx, k, false)).To(Succeed())
			Expect(s.Get(ctx, k)).To(BeFalse())
			Expect(s.ConsumeIfPresent(ctx, k)).To(BeFalse())
		})

		It("should isolate sessions", func() {
			owner := b.Session(uuid.NewString())
			other := b.Session(uuid.NewString())
			k := newKey()
			Expect(owner.Set(ctx, k, true)).To(Succeed())

			Expect(other.Get(ctx, k)).To(BeFalse())
			Expect(other.ConsumeIfPresent(ctx, k)).To(BeFalse())
			Expect(owner.Get(ctx, k)).To(BeTrue())
		})

		It("should reject an empty session id", func() {
			s := b.Session("")
			_, err := s.Get(ctx, newKey())
			Expect(err).To(MatchError(guard.ErrEmptySession))
		})

		It("should let exactly one concurrent consumer win", func() {
			s := b.Session(uuid.NewString())
			k := newKey()
			Expect(s.Set(ctx, k, true)).To(Succeed())

			const workers = 16
			var (
				wg   sync.WaitGroup
				wins atomic.Int32
			)
			wg.Add(workers)
			for i := 0; i < workers; i++ {
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					ok, err := s.ConsumeIfPresent(ctx, k)
					Expect(err).NotTo(HaveOccurred())
					if ok {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			Expect(wins.Load()).To(BeEquivalentTo(1))
		})

		It("should back the captcha engine end to end", func() {
			pc, err := service.NewPowCaptcha(testLogger, service.Options{
				Difficulty: entity.Custom(1000),
				Secret:     []byte("conformance"),
			})
			Expect(err).NotTo(HaveOccurred())

			sess := b.Session(uuid.NewString())
			ch, err := pc.IssueChallenge(ctx, sess)
			Expect(err).NotTo(HaveOccurred())

			payload, err := altcha.SolvePayload(ctx, ch, 2)
			Expect(err).NotTo(HaveOccurred())
			code, err := payload.Encode()
			Expect(err).NotTo(HaveOccurred())

			Expect(pc.CheckAnswer(ctx, sess, code)).To(BeTrue())
			Expect(pc.CheckAnswer(ctx, sess, code)).To(BeFalse())
			Expect(pc.CheckAnswer(ctx, b.Session(uuid.NewString()), code)).To(BeFalse())
		})
	}
}

var _ = Describe("Memory backend", Ordered, Label("unit"), BackendTestSuite(func() guard.Backend {
	return guard.NewMemory(time.Minute, 1000)
}))

var _ = Describe("JetStream backend", Ordered, Label("integration"), BackendTestSuite(func() guard.Backend {
	b, err := guard.NewJetStreamWithContext(testLogger, embeddedJetstream, "guard-test", time.Minute)
	Expect(err).NotTo(HaveOccurred())
	return b
}))

var _ = Describe("Etcd backend", Ordered, Label("integration"), BackendTestSuite(func() guard.Backend {
	endpoints := lo.Compact(strings.Split(os.Getenv("ETCD_ENDPOINTS"), ","))
	if len(endpoints) == 0 {
		Skip("ETCD_ENDPOINTS is not set")
	}
	b, err := guard.NewEtcd(context.Background(), testLogger, endpoints, "/powcaptcha-test/"+uuid.NewString(), time.Minute)
	Expect(err).NotTo(HaveOccurred())
	return b
}))

var _ = Describe("Memory backend expiry", func() {
	It("should forget keys after the TTL", func() {
		b := guard.NewMemory(50*time.Millisecond, 100)
		DeferCleanup(b.Close)
		s := b.Session(uuid.NewString())
		k := newKey()
		Expect(s.Set(context.Background(), k, true)).To(Succeed())

		Eventually(func() bool {
			ok, _ := s.Get(context.Background(), k)
			return ok
		}).WithTimeout(time.Second).WithPolling(20 * time.Millisecond).Should(BeFalse())
		Expect(s.ConsumeIfPresent(context.Background(), k)).To(BeFalse())
	})

	It("should keep the expiry when a key is consumed", func() {
		b := guard.NewMemory(time.Minute, 100)
		DeferCleanup(b.Close)
		k := newKey()
		Expect(b.Set(context.Background(), k, true)).To(Succeed())
		Expect(b.ConsumeIfPresent(context.Background(), k)).To(BeTrue())
		Expect(b.Get(context.Background(), k)).To(BeFalse())
	})
})

var _ = Describe("Open", func() {
	It("should pick the in-memory backend by default", func() {
		b, err := guard.Open(context.Background(), testLogger, guard.Options{})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(b.Close)
		Expect(b).To(BeAssignableToTypeOf(&guard.Memory{}))
	})

	It("should reject unknown backends", func() {
		_, err := guard.Open(context.Background(), testLogger, guard.Options{Kind: "redis"})
		Expect(err).To(MatchError(guard.ErrUnknownKind))
	})
})
