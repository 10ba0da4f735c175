package subscription_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"telcobridge.dev/gateway/internal/model"
	"telcobridge.dev/gateway/internal/nef"
	"telcobridge.dev/gateway/internal/store"
	"telcobridge.dev/gateway/internal/subscription"
)

var _ = Describe("Reachability", func() {
	var (
		ctx     context.Context
		st      *store.Store[model.DeviceDetail]
		nefMock *mockNEF
		sink    *recorderSink
		adapter *subscription.Reachability
	)

	phone := "+306912345678"

	newRequest := func(types []string) model.SubscriptionRequest[model.DeviceDetail] {
		return model.SubscriptionRequest[model.DeviceDetail]{
			Protocol: model.ProtocolHTTP,
			Sink:     "https://consumer.example.com/hook",
			Types:    types,
			Config: model.SubscriptionConfig[model.DeviceDetail]{
				SubscriptionDetail: model.DeviceDetail{Device: &model.Device{PhoneNumber: &phone}},
			},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		st = store.New[model.DeviceDetail](store.NewMemKV(), "reachability_status")
		nefMock = &mockNEF{}
		sink = &recorderSink{}
		adapter = subscription.NewReachability(st, nefMock, sink, "https://gateway.example.com")
	})

	Describe("Create", func() {
		It("maps reachability-sms onto UE_REACHABILITY with SMS type", func() {
			_, err := adapter.Create(ctx, newRequest([]string{model.EventReachabilitySMS}))
			Expect(err).NotTo(HaveOccurred())

			upstream := nefMock.lastCreated()
			Expect(upstream.MonitoringType).To(Equal(nef.MonitoringUEReachability))
			Expect(upstream.ReachabilityType).NotTo(BeNil())
			Expect(*upstream.ReachabilityType).To(Equal(nef.ReachabilitySMS))
		})

		It("maps reachability-disconnected onto LOSS_OF_CONNECTIVITY", func() {
			_, err := adapter.Create(ctx, newRequest([]string{model.EventReachabilityDisconnected}))
			Expect(err).NotTo(HaveOccurred())

			upstream := nefMock.lastCreated()
			Expect(upstream.MonitoringType).To(Equal(nef.MonitoringLossOfConnectivity))
			Expect(upstream.ReachabilityType).To(BeNil())
		})

		It("rejects an unknown event type", func() {
			_, err := adapter.Create(ctx, newRequest([]string{"org.camaraproject.nope.v0.whatever"}))
			Expect(err).To(HaveOccurred())
			Expect(nefMock.created).To(BeEmpty())
		})
	})

	Describe("HandleReport", func() {
		It("translates a loss-of-connectivity report", func() {
			sub, err := adapter.Create(ctx, newRequest([]string{model.EventReachabilityDisconnected}))
			Expect(err).NotTo(HaveOccurred())

			Expect(adapter.HandleReport(ctx, sub.ID, nef.MonitoringEventReport{
				MonitoringType: nef.MonitoringLossOfConnectivity,
			})).To(Succeed())

			events := sink.ofType(model.EventReachabilityDisconnected)
			Expect(events).To(HaveLen(1))
			data, ok := events[0].data.(model.ReachabilityEventData)
			Expect(ok).To(BeTrue())
			Expect(data.SubscriptionID).To(Equal(sub.ID))
		})

		It("drops reports whose event type is not subscribed", func() {
			sub, err := adapter.Create(ctx, newRequest([]string{model.EventReachabilitySMS}))
			Expect(err).NotTo(HaveOccurred())

			Expect(adapter.HandleReport(ctx, sub.ID, nef.MonitoringEventReport{
				MonitoringType: nef.MonitoringLossOfConnectivity,
			})).To(Succeed())
			Expect(sink.all()).To(BeEmpty())
		})
	})

	Describe("Retrieve", func() {
		It("probes DATA and SMS connectivity", func() {
			probed := []nef.ReachabilityType{}
			nefMock.probeFn = func(_ context.Context, sub nef.MonitoringEventSubscription) (*nef.MonitoringEventReport, error) {
				probed = append(probed, *sub.ReachabilityType)
				if *sub.ReachabilityType == nef.ReachabilityData {
					t := nef.ReachabilityData
					return &nef.MonitoringEventReport{
						MonitoringType:   nef.MonitoringUEReachability,
						ReachabilityType: &t,
					}, nil
				}
				return nil, nil
			}

			resp, err := adapter.Retrieve(ctx, &model.Device{PhoneNumber: &phone})
			Expect(err).NotTo(HaveOccurred())
			Expect(probed).To(Equal([]nef.ReachabilityType{nef.ReachabilityData, nef.ReachabilitySMS}))
			Expect(resp.Reachable).To(BeTrue())
			Expect(resp.Connectivity).To(Equal([]model.ConnectivityType{model.ConnectivityData}))
			Expect(resp.LastStatusTime).NotTo(BeNil())
		})

		It("reports unreachable when neither probe yields a report", func() {
			resp, err := adapter.Retrieve(ctx, &model.Device{PhoneNumber: &phone})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Reachable).To(BeFalse())
			Expect(resp.Connectivity).To(BeEmpty())
		})
	})
})
