package handshake

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/ir"
)

var _ = Describe("Memory expansion", func() {
	var (
		sig *ir.FunctionSignature
		ref *ir.ReferenceFunction
		mod *ir.HardwareModule
	)

	build := func(loads, stores int) {
		mem := ir.MemRefType{Shape: []int{8}, Elem: ir.IntType{Width: 32}}
		sig = &ir.FunctionSignature{Name: "kernel", Args: []ir.Type{mem}}
		ref = &ir.ReferenceFunction{
			Name: "kernel",
			Args: []ir.Type{mem, ir.NoneType{}},
			Ops: []ir.Op{{
				Name:       ir.ExtMemoryOp,
				Operands:   []int{0},
				LoadCount:  loads,
				StoreCount: stores,
			}},
		}
		mod = &ir.HardwareModule{
			Name: "kernel",
			Ports: append([]ir.Port{
				memPort("arg0", loads, stores, 32, 3),
				port("inCtrl", ir.In, 0),
				port("outCtrl", ir.Out, 0),
			}, clockReset()...),
		}
	}

	It("should describe a huge memory without accesses", func() {
		build(0, 0)
		mem, err := ir.ParseType("memref<5000000000000000000xi32>")
		Expect(err).NotTo(HaveOccurred())
		sig.Args[0] = mem
		ref.Args[0] = mem

		desc, err := DescribeMemory(sig, ref, mod, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(desc.Length).To(Equal(5000000000000000000))
		Expect(desc.AddrWidth).To(Equal(63))
	})

	Context("with one load port", func() {
		BeforeEach(func() { build(1, 0) })

		It("should describe the memory", func() {
			desc, err := DescribeMemory(sig, ref, mod, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(desc).To(Equal(ir.MemoryDescriptor{
				Arg:        0,
				Name:       "arg0",
				Elem:       ir.IntType{Width: 32},
				Length:     8,
				AddrWidth:  3,
				LoadCount:  1,
				StoreCount: 0,
			}))
		})

		It("should expand to one load triple and no stores", func() {
			desc, err := DescribeMemory(sig, ref, mod, 0)
			Expect(err).NotTo(HaveOccurred())

			exp, err := ExpandMemory(mod, desc)

			Expect(err).NotTo(HaveOccurred())
			Expect(exp.Stores).To(BeEmpty())
			Expect(exp.Loads).To(HaveLen(1))
			Expect(exp.Loads[0].Data.Data).To(Equal("arg0_ldData0_data"))
			Expect(exp.Loads[0].Addr.Ready).To(Equal("arg0_ldAddr0_ready"))
			Expect(exp.Loads[0].Done.Name).To(Equal("arg0_ldDone0"))
			Expect(exp.Loads[0].Done.HasData()).To(BeFalse())
		})
	})

	Context("with several loads and stores", func() {
		BeforeEach(func() { build(2, 3) })

		It("should keep index order", func() {
			desc, err := DescribeMemory(sig, ref, mod, 0)
			Expect(err).NotTo(HaveOccurred())

			exp, err := ExpandMemory(mod, desc)

			Expect(err).NotTo(HaveOccurred())
			Expect(exp.Loads).To(HaveLen(2))
			Expect(exp.Stores).To(HaveLen(3))
			for i, g := range exp.Loads {
				Expect(g.Addr.Name).To(Equal(LoadAddr.Port("arg0", i)))
			}
			for i, g := range exp.Stores {
				Expect(g.Data.Name).To(Equal(StoreData.Port("arg0", i)))
				Expect(g.Done.Name).To(Equal(StoreDone.Port("arg0", i)))
			}
		})

		It("should report a group missing from the bundle", func() {
			desc, err := DescribeMemory(sig, ref, mod, 0)
			Expect(err).NotTo(HaveOccurred())
			desc.StoreCount = 4

			_, err = ExpandMemory(mod, desc)

			Expect(errs.IsKind(err, errs.KindMalformedBundle)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("stData3"))
		})

		It("should report an element width mismatch", func() {
			mod.Ports[0].Fields[0].Fields[2].Width = 16
			desc, err := DescribeMemory(sig, ref, mod, 0)
			Expect(err).NotTo(HaveOccurred())

			_, err = ExpandMemory(mod, desc)

			Expect(errs.IsKind(err, errs.KindTypeMismatch)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("arg0_ldData0"))
		})
	})

	Context("without accesses", func() {
		BeforeEach(func() { build(0, 0) })

		It("should still describe the memory", func() {
			desc, err := DescribeMemory(sig, ref, mod, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(desc.AddrWidth).To(Equal(3))

			exp, err := ExpandMemory(mod, desc)

			Expect(err).NotTo(HaveOccurred())
			Expect(exp.Loads).To(BeEmpty())
			Expect(exp.Stores).To(BeEmpty())
		})
	})

	Context("with two consumers", func() {
		BeforeEach(func() {
			build(1, 0)
			ref.Ops = append(ref.Ops,
				ir.Op{Name: ir.ExtMemoryOp, Operands: []int{0}, LoadCount: 1})
		})

		It("should fail with a cardinality error", func() {
			_, err := DescribeMemory(sig, ref, mod, 0)

			Expect(errs.IsKind(err, errs.KindConsumerCardinality)).To(BeTrue())
		})
	})

	It("should reject multidimensional memories", func() {
		build(1, 0)
		sig.Args[0] = ir.MemRefType{Shape: []int{2, 4}, Elem: ir.IntType{Width: 32}}

		_, err := DescribeMemory(sig, ref, mod, 0)

		Expect(errs.IsKind(err, errs.KindUnsupportedType)).To(BeTrue())
	})
})
