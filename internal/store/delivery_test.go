package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/autofix/internal/store"
)

var _ = Describe("memory DeliveryStore", func() {
	It("reports the second sighting of a delivery as duplicate", func() {
		ds := store.NewMemoryDeliveryStore(time.Hour)
		ctx := context.Background()

		dup, err := ds.MarkSeen(ctx, "d-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(dup).To(BeFalse())

		dup, err = ds.MarkSeen(ctx, "d-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(dup).To(BeTrue())

		dup, err = ds.MarkSeen(ctx, "d-2")
		Expect(err).NotTo(HaveOccurred())
		Expect(dup).To(BeFalse())
	})

	It("forgets deliveries older than the window", func() {
		ds := store.NewMemoryDeliveryStore(time.Nanosecond)
		ctx := context.Background()

		_, err := ds.MarkSeen(ctx, "d-1")
		Expect(err).NotTo(HaveOccurred())
		time.Sleep(time.Millisecond)

		dup, err := ds.MarkSeen(ctx, "d-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(dup).To(BeFalse())
	})
})
