package http

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"weighbridge-server/internal/metrics"
	"weighbridge-server/internal/storage"
)

// RouterConfig collects what the HTTP surface serves.
type RouterConfig struct {
	API       *APIHandler
	Images    storage.ImageStore
	WebSocket http.Handler
	Metrics   *metrics.Metrics
	WebRoot   string
	AccessLog io.Writer
}

// NewRouter registers the API, static and realtime routes and wraps them with CORS and access logging.
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	m := cfg.Metrics

	api := router.PathPrefix("/api").Subrouter()
	api.Handle("/admin-login", m.WrapHandler("/api/admin-login", http.HandlerFunc(cfg.API.AdminLogin))).Methods(http.MethodPost)
	api.Handle("/ports", m.WrapHandler("/api/ports", http.HandlerFunc(cfg.API.ListPorts))).Methods(http.MethodGet)
	api.Handle("/change-port", m.WrapHandler("/api/change-port", http.HandlerFunc(cfg.API.ChangePort))).Methods(http.MethodPost)
	api.Handle("/server-info", m.WrapHandler("/api/server-info", http.HandlerFunc(cfg.API.ServerInfo))).Methods(http.MethodGet)

	router.HandleFunc("/healthz", cfg.API.Health).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	images := NewImageHandler(cfg.Images)
	router.Handle("/uploads/{name}", m.WrapHandler("/uploads", http.HandlerFunc(images.HandleDownload))).Methods(http.MethodGet)

	// The upgrade hijacks the connection, so it is not wrapped by the metrics recorder.
	router.Handle("/ws", cfg.WebSocket)

	router.HandleFunc("/admin", servePage(cfg.WebRoot, "admin.html")).Methods(http.MethodGet)
	router.HandleFunc("/", servePage(cfg.WebRoot, "index.html")).Methods(http.MethodGet)
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.WebRoot))).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	out := cfg.AccessLog
	if out == nil {
		out = io.Discard
	}
	return handlers.LoggingHandler(out, cors(router))
}

func servePage(webRoot, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(webRoot, name))
	}
}
