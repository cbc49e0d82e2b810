package resilience_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/devmesh-org/taskmesh/internal/resilience"
)

var _ = Describe("CircuitBreaker", func() {
	var (
		cb  *resilience.CircuitBreaker
		cfg resilience.Config
	)

	BeforeEach(func() {
		cfg = resilience.Config{
			FailureThreshold:    2,
			ResetTimeout:        50 * time.Millisecond,
			SuccessThreshold:    1,
			MaxRequestsHalfOpen: 1,
		}
		cb = resilience.New("test-dep", cfg, nil)
	})

	When("every call succeeds", func() {
		It("stays closed", func() {
			for i := 0; i < 5; i++ {
				err := cb.Execute(context.Background(), func(context.Context) error { return nil })
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(cb.State()).To(Equal(resilience.StateClosed))
		})
	})

	When("consecutive failures reach the threshold", func() {
		It("opens and rejects further calls without invoking fn", func() {
			failing := errors.New("downstream unavailable")
			for i := 0; i < cfg.FailureThreshold; i++ {
				_ = cb.Execute(context.Background(), func(context.Context) error { return failing })
			}
			Expect(cb.State()).To(Equal(resilience.StateOpen))

			called := false
			err := cb.Execute(context.Background(), func(context.Context) error {
				called = true
				return nil
			})
			Expect(err).To(HaveOccurred())
			Expect(called).To(BeFalse())
		})

		It("transitions to half-open after the reset timeout and closes on success", func() {
			failing := errors.New("downstream unavailable")
			for i := 0; i < cfg.FailureThreshold; i++ {
				_ = cb.Execute(context.Background(), func(context.Context) error { return failing })
			}
			Expect(cb.State()).To(Equal(resilience.StateOpen))

			Eventually(func() error {
				return cb.Allow()
			}, time.Second, 10*time.Millisecond).Should(Succeed())
			Expect(cb.State()).To(Equal(resilience.StateHalfOpen))

			err := cb.Execute(context.Background(), func(context.Context) error { return nil })
			Expect(err).NotTo(HaveOccurred())
			Expect(cb.State()).To(Equal(resilience.StateClosed))
		})
	})
})
