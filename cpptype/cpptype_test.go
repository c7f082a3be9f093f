package cpptype

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/ir"
)

var _ = Describe("Name", func() {
	DescribeTable("maps supported types",
		func(t ir.Type, want string) {
			name, err := Name(t)

			Expect(err).NotTo(HaveOccurred())
			Expect(name).To(Equal(want))
		},
		Entry("i1", ir.IntType{Width: 1}, "uint8_t"),
		Entry("i8", ir.IntType{Width: 8}, "uint8_t"),
		Entry("i9", ir.IntType{Width: 9}, "uint16_t"),
		Entry("i32", ir.IntType{Width: 32}, "uint32_t"),
		Entry("i33", ir.IntType{Width: 33}, "uint64_t"),
		Entry("si16", ir.IntType{Width: 16, Sign: ir.Signed}, "uint16_t"),
		Entry("ui64", ir.IntType{Width: 64, Sign: ir.Unsigned}, "uint64_t"),
		Entry("index", ir.IndexType{}, "uint64_t"),
		Entry("memref", ir.MemRefType{Shape: []int{8}, Elem: ir.IntType{Width: 32}},
			"uint32_t*"),
	)

	DescribeTable("rejects unsupported types",
		func(t ir.Type) {
			_, err := Name(t)

			Expect(errs.IsKind(err, errs.KindUnsupportedType)).To(BeTrue())
		},
		Entry("none", ir.NoneType{}),
		Entry("nil", nil),
		Entry("zero width", ir.IntType{Width: 0}),
		Entry("too wide", ir.IntType{Width: 65}),
		Entry("2d memref", ir.MemRefType{Shape: []int{2, 2}, Elem: ir.IntType{Width: 8}}),
		Entry("memref of memref", ir.MemRefType{
			Shape: []int{2},
			Elem:  ir.MemRefType{Shape: []int{2}, Elem: ir.IntType{Width: 8}},
		}),
		Entry("memref of none", ir.MemRefType{Shape: []int{2}, Elem: ir.NoneType{}}),
	)
})

var _ = Describe("Emit", func() {
	It("should write the type token", func() {
		var b strings.Builder

		Expect(Emit(&b, ir.IntType{Width: 32})).To(Succeed())
		Expect(b.String()).To(Equal("uint32_t"))
	})

	It("should write nothing on failure", func() {
		var b strings.Builder

		Expect(Emit(&b, ir.NoneType{})).NotTo(Succeed())
		Expect(b.String()).To(BeEmpty())
	})

	It("should write address types from a width", func() {
		var b strings.Builder

		Expect(EmitWidth(&b, 3)).To(Succeed())
		Expect(b.String()).To(Equal("uint8_t"))
	})

	It("should reject a zero address width", func() {
		var b strings.Builder

		err := EmitWidth(&b, 0)

		Expect(errs.IsKind(err, errs.KindUnsupportedType)).To(BeTrue())
	})
})
