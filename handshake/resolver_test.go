package handshake

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/ir"
)

var _ = Describe("ResolvePort", func() {
	var mod *ir.HardwareModule

	BeforeEach(func() {
		mod = &ir.HardwareModule{
			Name: "add",
			Ports: append(clockReset(),
				port("in0", ir.In, 32),
				port("inCtrl", ir.In, 0),
				port("out0", ir.Out, 32),
				port("outCtrl", ir.Out, 0),
			),
		}
	})

	It("should resolve a data port", func() {
		ref, err := ResolvePort(mod, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(Equal(PortRef{
			Name:      "in0",
			Ready:     "in0_ready",
			Valid:     "in0_valid",
			Data:      "in0_data",
			DataWidth: 32,
		}))
		Expect(ref.HasData()).To(BeTrue())
	})

	It("should resolve a control port without data", func() {
		ref, err := ResolvePort(mod, 3)

		Expect(err).NotTo(HaveOccurred())
		Expect(ref.Name).To(Equal("outCtrl"))
		Expect(ref.HasData()).To(BeFalse())
	})

	It("should not count clock and reset", func() {
		_, err := ResolvePort(mod, 4)

		Expect(errs.IsKind(err, errs.KindMalformedBundle)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("'add'"))
	})

	It("should require a ready signal", func() {
		mod.Ports[2].Fields = mod.Ports[2].Fields[1:]

		_, err := ResolvePort(mod, 0)

		Expect(errs.IsKind(err, errs.KindMalformedBundle)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring(`"ready"`))
	})

	It("should reject a zero-width data signal", func() {
		mod.Ports[2].Fields[2].Width = 0

		_, err := ResolvePort(mod, 0)

		Expect(errs.IsKind(err, errs.KindMalformedBundle)).To(BeTrue())
	})
})

var _ = Describe("ResolveAddressWidth", func() {
	It("should use the first address signal", func() {
		p := memPort("mem", 1, 1, 32, 3)
		p.Fields[len(p.Fields)-2].Fields[2].Width = 5

		w, err := ResolveAddressWidth(p)

		Expect(err).NotTo(HaveOccurred())
		Expect(w).To(Equal(3))
	})

	It("should find store addresses", func() {
		w, err := ResolveAddressWidth(memPort("mem", 0, 1, 32, 4))

		Expect(err).NotTo(HaveOccurred())
		Expect(w).To(Equal(4))
	})

	It("should fail without address signals", func() {
		_, err := ResolveAddressWidth(memPort("mem", 0, 0, 32, 3))

		Expect(errs.IsKind(err, errs.KindMalformedBundle)).To(BeTrue())
	})

	It("should fail on a zero address width", func() {
		_, err := ResolveAddressWidth(memPort("mem", 1, 0, 32, 0))

		Expect(errs.IsKind(err, errs.KindMalformedBundle)).To(BeTrue())
	})

	It("should compute widths from lengths", func() {
		Expect(AddressWidthForLength(0)).To(Equal(1))
		Expect(AddressWidthForLength(2)).To(Equal(1))
		Expect(AddressWidthForLength(8)).To(Equal(3))
		Expect(AddressWidthForLength(9)).To(Equal(4))
		Expect(AddressWidthForLength(3)).To(Equal(2))
	})

	It("should compute widths for the largest lengths", func() {
		Expect(AddressWidthForLength(5000000000000000000)).To(Equal(63))
		Expect(AddressWidthForLength(math.MaxInt)).To(Equal(63))
	})
})

var _ = Describe("MemSignal", func() {
	It("should follow the memory naming convention", func() {
		Expect(LoadData.Port("mem", 0)).To(Equal("mem_ldData0"))
		Expect(LoadAddr.Port("mem", 1)).To(Equal("mem_ldAddr1"))
		Expect(LoadDone.Port("mem", 2)).To(Equal("mem_ldDone2"))
		Expect(StoreData.Port("a", 0)).To(Equal("a_stData0"))
		Expect(StoreAddr.Port("a", 0)).To(Equal("a_stAddr0"))
		Expect(StoreDone.Port("a", 0)).To(Equal("a_stDone0"))
	})

	It("should know which groups carry data", func() {
		Expect(LoadDone.HasData()).To(BeFalse())
		Expect(StoreDone.HasData()).To(BeFalse())
		Expect(StoreData.HasData()).To(BeTrue())
		Expect(LoadAddr.IsAddress()).To(BeTrue())
		Expect(LoadData.IsAddress()).To(BeFalse())
	})
})
