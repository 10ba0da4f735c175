package subscription_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"telcobridge.dev/gateway/internal/model"
	"telcobridge.dev/gateway/internal/store"
	"telcobridge.dev/gateway/internal/subscription"
)

var _ = Describe("Sweep", func() {
	var (
		ctx     context.Context
		st      *store.Store[model.DeviceDetail]
		sink    *recorderSink
		adapter *subscription.Roaming
	)

	phone := "+306912345678"

	newRequest := func(expireTime *time.Time) model.SubscriptionRequest[model.DeviceDetail] {
		return model.SubscriptionRequest[model.DeviceDetail]{
			Protocol: model.ProtocolHTTP,
			Sink:     "https://consumer.example.com/hook",
			Types:    []string{model.EventRoamingStatus},
			Config: model.SubscriptionConfig[model.DeviceDetail]{
				SubscriptionDetail:     model.DeviceDetail{Device: &model.Device{PhoneNumber: &phone}},
				SubscriptionExpireTime: expireTime,
			},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		st = store.New[model.DeviceDetail](store.NewMemKV(), "roaming_status")
		sink = &recorderSink{}
		adapter = subscription.NewRoaming(st, &mockNEF{}, sink, "https://gateway.example.com")
	})

	It("expires subscriptions past their expire time", func() {
		past := time.Now().UTC().Add(-time.Minute)
		future := time.Now().UTC().Add(time.Hour)

		expired, err := adapter.Create(ctx, newRequest(&past))
		Expect(err).NotTo(HaveOccurred())
		alive, err := adapter.Create(ctx, newRequest(&future))
		Expect(err).NotTo(HaveOccurred())
		openEnded, err := adapter.Create(ctx, newRequest(nil))
		Expect(err).NotTo(HaveOccurred())

		Expect(adapter.Sweep(ctx)).To(Succeed())

		stored, err := adapter.Get(ctx, expired.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Status).To(Equal(model.StatusExpired))

		for _, id := range []string{alive.ID, openEnded.ID} {
			stored, err := adapter.Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(model.StatusActive))
		}

		ends := sink.ofType(model.EventRoamingSubscriptionEnd)
		Expect(ends).To(HaveLen(1))
	})

	It("does not re-expire an already terminal subscription", func() {
		past := time.Now().UTC().Add(-time.Minute)
		sub, err := adapter.Create(ctx, newRequest(&past))
		Expect(err).NotTo(HaveOccurred())
		Expect(adapter.Delete(ctx, sub.ID, model.TerminationSubscriptionDeleted)).To(Succeed())
		sink.events = nil

		Expect(adapter.Sweep(ctx)).To(Succeed())
		Expect(sink.all()).To(BeEmpty())
	})
})
