package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/wrapgen/design"
	"github.com/sarchlab/wrapgen/server"
)

var _ = Describe("Server", func() {
	var (
		s      *server.Server
		router *mux.Router
	)

	BeforeEach(func() {
		f, err := design.Load(filepath.Join("testdata", "adder.yaml"))
		Expect(err).NotTo(HaveOccurred())

		s = server.NewServer(f).WithProfileDuration(10 * time.Millisecond)
		router = s.Router()
	})

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]any {
		var rsp map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		return rsp
	}

	It("should list symbols", func() {
		rec := get("/api/symbols")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var syms []design.Symbol
		Expect(json.Unmarshal(rec.Body.Bytes(), &syms)).To(Succeed())
		Expect(syms).To(ContainElement(
			design.Symbol{Name: "add", Kind: design.ModuleSymbol}))
	})

	It("should serialize a symbol", func() {
		rec := get("/api/symbol/add")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("add"))
	})

	It("should report unknown symbols", func() {
		rec := get("/api/symbol/nothing")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(decode(rec)["kind"]).To(Equal("not_found"))
	})

	It("should generate a wrapper", func() {
		rec := get("/api/generate/add?type=handshakeFIRRTL")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("class addSim"))
		Expect(rec.Body.String()).To(ContainSubstring(`#include "Vadd.h"`))
	})

	It("should default to the handshake wrapper", func() {
		rec := get("/api/generate/add")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("addSimInterface"))
	})

	It("should report unsupported wrapper types", func() {
		rec := get("/api/generate/add?type=calyx")

		Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(decode(rec)["kind"]).To(Equal("unsupported"))
	})

	It("should report unknown wrapper types", func() {
		rec := get("/api/generate/add?type=verilog")

		Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
	})

	It("should report symbols missing a module", func() {
		rec := get("/api/generate/sum")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(decode(rec)["error"]).To(ContainSubstring("sum"))
	})

	It("should report resource usage", func() {
		rec := get("/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)).To(HaveKey("memory_size"))
	})

	It("should collect a profile", func() {
		rec := get("/api/profile")

		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should reject other methods", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec,
			httptest.NewRequest(http.MethodPost, "/api/symbols", nil))

		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})

	It("should serve over the network", func() {
		url, err := s.StartServer()
		Expect(err).NotTo(HaveOccurred())
		defer s.Shutdown(context.Background())

		rsp, err := http.Get(url + "/api/symbols")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(rsp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring("reference"))
	})
})
