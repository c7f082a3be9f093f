// Package server exposes a design document over HTTP so that wrappers can be
// inspected and generated on demand.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"go.uber.org/zap"

	"github.com/sarchlab/wrapgen/design"
	"github.com/sarchlab/wrapgen/errs"
	"github.com/sarchlab/wrapgen/wrapper"
)

// Server serves the definitions of a design document and the wrappers
// generated from them.
type Server struct {
	design          *design.File
	portNumber      int
	openBrowser     bool
	profileDuration time.Duration

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a Server for a loaded design document.
func NewServer(f *design.File) *Server {
	return &Server{
		design:          f,
		profileDuration: time.Second,
	}
}

// WithPortNumber sets the port number of the server. Ports below 1000 are
// replaced by a random one.
func (s *Server) WithPortNumber(portNumber int) *Server {
	if portNumber < 1000 && portNumber != 0 {
		Logger().Warn("port number not allowed, using a random port instead",
			zap.Int("port", portNumber))
		portNumber = 0
	}

	s.portNumber = portNumber

	return s
}

// WithBrowser makes StartServer open the server's URL in a browser.
func (s *Server) WithBrowser(open bool) *Server {
	s.openBrowser = open
	return s
}

// WithProfileDuration sets how long /api/profile samples the CPU.
func (s *Server) WithProfileDuration(d time.Duration) *Server {
	s.profileDuration = d
	return s
}

// Router returns the routes of the server.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/symbols", s.listSymbols).Methods(http.MethodGet)
	r.HandleFunc("/api/symbol/{name}", s.symbolDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/generate/{name}", s.generate).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", s.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", s.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts serving in the background and returns the server URL.
func (s *Server) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(s.portNumber))
	if err != nil {
		return "", err
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := "http://localhost:" +
		strconv.Itoa(listener.Addr().(*net.TCPAddr).Port)

	Logger().Info("serving design",
		zap.String("path", s.design.Path),
		zap.String("url", url))

	go func() {
		err := s.httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger().Error("server stopped", zap.Error(err))
		}
	}()

	if s.openBrowser {
		if err := browser.OpenURL(url + "/api/symbols"); err != nil {
			Logger().Warn("could not open browser", zap.Error(err))
		}
	}

	return url, nil
}

// Shutdown stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) listSymbols(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.design.Symbols())
}

func (s *Server) symbolDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	def, ok := s.design.Definition(name)
	if !ok {
		writeError(w, errs.NotFound(errs.PhaseLoad, name, s.design.Path))
		return
	}

	buf := bytes.NewBuffer(nil)

	serializer := goseth.NewSerializer()
	serializer.SetRoot(def)
	serializer.SetMaxDepth(1)
	if err := serializer.Serialize(buf); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	kindName := r.URL.Query().Get("type")
	if kindName == "" {
		kindName = wrapper.HandshakeFIRRTL.String()
	}

	kind, err := wrapper.ParseKind(kindName)
	if err != nil {
		writeError(w, err)
		return
	}

	in, err := s.inputs(name)
	if err != nil {
		writeError(w, err)
		return
	}

	src, err := wrapper.Render(kind, in)
	if err != nil {
		writeError(w, err)
		return
	}

	Logger().Debug("generated wrapper",
		zap.String("symbol", name),
		zap.String("type", kind.String()))

	w.Header().Set("Content-Type", "text/x-c++src")
	_, _ = w.Write(src)
}

func (s *Server) inputs(name string) (wrapper.Inputs, error) {
	fn, err := s.design.Function(name)
	if err != nil {
		return wrapper.Inputs{}, err
	}

	ref, err := s.design.Reference(name)
	if err != nil {
		return wrapper.Inputs{}, err
	}

	m, err := s.design.Module(name)
	if err != nil {
		return wrapper.Inputs{}, err
	}

	return wrapper.Inputs{Signature: fn, Reference: ref, Module: m}, nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (s *Server) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		writeError(w, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		writeError(w, err)
		return
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memory.RSS,
	})
}

func (s *Server) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		writeError(w, err)
		return
	}

	time.Sleep(s.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, prof)
}

type errorRsp struct {
	Error string `json:"error"`
	Phase string `json:"phase,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	rsp := errorRsp{Error: err.Error()}
	status := http.StatusInternalServerError

	var e *errs.Error
	if errors.As(err, &e) {
		rsp.Phase = string(e.Phase)
		rsp.Kind = string(e.Kind)

		switch e.Kind {
		case errs.KindNotFound:
			status = http.StatusNotFound
		case errs.KindIO:
			// I/O failures stay server errors.
		default:
			status = http.StatusUnprocessableEntity
		}
	}

	writeJSON(w, status, rsp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		Logger().Error("could not encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
