package ir

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wrapgen/errs"
)

func handshakePort(name string, dir Direction, width int) Port {
	p := Port{
		Name:      name,
		Direction: dir,
		Fields: []Field{
			{Name: "ready", Width: 1, Flip: true},
			{Name: "valid", Width: 1},
		},
	}
	if width > 0 {
		p.Fields = append(p.Fields, Field{Name: "data", Width: width})
	}
	return p
}

var _ = Describe("HardwareModule", func() {
	var (
		sig *FunctionSignature
		mod *HardwareModule
	)

	BeforeEach(func() {
		sig = &FunctionSignature{
			Name:    "add",
			Args:    []Type{IntType{Width: 32}},
			Results: []Type{IntType{Width: 32}},
		}
		mod = &HardwareModule{
			Name: "add",
			Ports: []Port{
				handshakePort("in0", In, 32),
				handshakePort("inCtrl", In, 0),
				handshakePort("out0", Out, 32),
				handshakePort("outCtrl", Out, 0),
				{Name: ClockPort, Direction: In, Width: 1},
				{Name: ResetPort, Direction: In, Width: 1},
			},
		}
	})

	It("should skip clock and reset", func() {
		ports := mod.HandshakePorts()

		Expect(ports).To(HaveLen(4))
		Expect(ports[3].Name).To(Equal("outCtrl"))
	})

	It("should accept matching port counts", func() {
		Expect(mod.CheckPortCount(sig)).To(Succeed())
		Expect(mod.CheckClockReset()).To(Succeed())
	})

	It("should place control ports after data ports", func() {
		Expect(InCtrlIndex(sig)).To(Equal(1))
		Expect(ResultIndex(sig, 0)).To(Equal(2))
		Expect(ResultIndex(sig, sig.NumResults())).To(Equal(3))
	})

	It("should reject a missing port", func() {
		mod.Ports = mod.Ports[1:]

		err := mod.CheckPortCount(sig)

		Expect(errs.IsKind(err, errs.KindInputShape)).To(BeTrue())
	})

	It("should reject an output port among the inputs", func() {
		mod.Ports[1].Direction = Out

		err := mod.CheckPortCount(sig)

		Expect(errs.IsKind(err, errs.KindInputShape)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("inCtrl"))
	})

	It("should accept a module without clock and reset", func() {
		mod.Ports = mod.Ports[:4]

		Expect(mod.CheckClockReset()).To(Succeed())
	})

	It("should report a bundled reset", func() {
		mod.Ports[5] = handshakePort(ResetPort, In, 1)

		err := mod.CheckClockReset()

		Expect(errs.IsKind(err, errs.KindMalformedBundle)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("reset"))
	})

	It("should report a wide clock", func() {
		mod.Ports[4].Width = 2

		err := mod.CheckClockReset()

		Expect(errs.IsKind(err, errs.KindMalformedBundle)).To(BeTrue())
	})

	It("should look up nested fields", func() {
		p := Port{Name: "mem", Fields: []Field{
			{Name: "ldAddr0", Fields: []Field{{Name: "data", Width: 3}}},
		}}

		f, ok := p.Field("ldAddr0")
		Expect(ok).To(BeTrue())
		Expect(f.IsBundle()).To(BeTrue())

		d, ok := f.Field("data")
		Expect(ok).To(BeTrue())
		Expect(d.Width).To(Equal(3))

		_, ok = p.Field("stAddr0")
		Expect(ok).To(BeFalse())
	})
})
