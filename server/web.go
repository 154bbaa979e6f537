package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/rs/cors"
	"github.com/zenazn/goji/web"

	"github.com/janelia-flyem/omezarr"
	"github.com/janelia-flyem/omezarr/layer"
	"github.com/janelia-flyem/omezarr/ngff"
	"github.com/janelia-flyem/omezarr/storage"
)

// Service serves the layers of OME-Zarr hierarchies over HTTP:
//
//	GET /api/about
//	GET /api/layers?path=<path>
//	GET /api/properties/<layer index>?path=<path>
//
// Layer lists are returned as JSON and property tables as Arrow IPC streams.
type Service struct {
	config  *Config
	mux     *web.Mux
	resolve omezarr.Resolver

	mu     sync.Mutex
	layers *lru.Cache
}

// New returns a service for the configuration.  A nil configuration uses
// DefaultConfig.
func New(config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	s := &Service{
		config:  config,
		mux:     web.New(),
		resolve: storage.ParseURL,
		layers:  lru.New(config.Cache.Layers),
	}
	if len(config.Server.CORSOrigins) > 0 {
		s.mux.Use(cors.New(cors.Options{
			AllowedOrigins: config.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead},
		}).Handler)
	}
	s.mux.Use(logHandler)
	s.mux.Get("/api/about", s.aboutHandler)
	s.mux.Get("/api/layers", s.layersHandler)
	s.mux.Get("/api/properties/:index", s.propertiesHandler)
	s.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpError(w, r, http.StatusNotFound, "unknown endpoint")
	})
	return s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Serve listens on the configured address until the context is done.
func Serve(ctx context.Context, config *Config) error {
	s := New(config)
	srv := &http.Server{Addr: s.config.Server.HTTPAddress, Handler: s}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	ngff.Infof("Serving layers on %s\n", srv.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// BadRequest writes a 400 response with the formatted message and logs it.
func BadRequest(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) {
	httpError(w, r, http.StatusBadRequest, format, args...)
}

func httpError(w http.ResponseWriter, r *http.Request, status int, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	errorMsg := fmt.Sprintf("%s (%s).", message, r.URL.Path)
	ngff.Errorf("%s\n", errorMsg)
	http.Error(w, errorMsg, status)
}

func logHandler(c *web.C, h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		timedLog := ngff.NewTimeLog()
		h.ServeHTTP(w, r)
		timedLog.Debugf("HTTP %s: %s", r.Method, r.URL)
	}
	return http.HandlerFunc(fn)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		httpError(w, r, http.StatusInternalServerError, "can't encode response: %v", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Service) aboutHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cached := s.layers.Len()
	s.mu.Unlock()
	writeJSON(w, r, map[string]interface{}{
		"omezarr":       omezarr.Version,
		"schemes":       storage.Schemes(),
		"cached layers": cached,
	})
}

// getLayers returns the layers for the requested path, reading them if they
// aren't cached.  A nil list with no error means the path isn't OME-Zarr.
func (s *Service) getLayers(r *http.Request) ([]layer.Data, error) {
	ref, err := s.config.resolvePath(r.URL.Query().Get("path"))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	v, found := s.layers.Get(ref)
	s.mu.Unlock()
	if found {
		return v.([]layer.Data), nil
	}

	ctx := r.Context()
	if s.config.Server.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.Server.Timeout)*time.Second)
		defer cancel()
	}
	read, err := omezarr.GetReaderWith(ctx, s.resolve, ref)
	if err != nil {
		return nil, err
	}
	if read == nil {
		return nil, nil
	}
	layers, err := read()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.layers.Add(ref, layers)
	s.mu.Unlock()
	return layers, nil
}

func (s *Service) layersHandler(w http.ResponseWriter, r *http.Request) {
	layers, err := s.getLayers(r)
	if err != nil {
		BadRequest(w, r, "can't read layers: %v", err)
		return
	}
	if layers == nil {
		httpError(w, r, http.StatusNotFound, "%q is not an OME-Zarr hierarchy", r.URL.Query().Get("path"))
		return
	}
	writeJSON(w, r, layers)
}

func (s *Service) propertiesHandler(c web.C, w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(c.URLParams["index"])
	if err != nil {
		BadRequest(w, r, "bad layer index %q", c.URLParams["index"])
		return
	}
	layers, err := s.getLayers(r)
	if err != nil {
		BadRequest(w, r, "can't read layers: %v", err)
		return
	}
	if layers == nil {
		httpError(w, r, http.StatusNotFound, "%q is not an OME-Zarr hierarchy", r.URL.Query().Get("path"))
		return
	}
	if index < 0 || index >= len(layers) {
		httpError(w, r, http.StatusNotFound, "no layer %d, only %d layers", index, len(layers))
		return
	}
	cols, ok := layers[index].Metadata["properties"].(layer.Columns)
	if !ok {
		httpError(w, r, http.StatusNotFound, "layer %d has no properties", index)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.apache.arrow.stream")
	if err := layer.WriteProperties(w, cols); err != nil {
		ngff.Errorf("can't write properties of layer %d: %v\n", index, err)
	}
}
