package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gorilla/mux"
)

//go:embed static/index.html
var demoPage []byte

const demoPageCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; connect-src 'self'"

// RegisterDemoRoutes serves the key generation demo page at /
func RegisterDemoRoutes(r *mux.Router) {
	r.HandleFunc("/", DemoPage).Methods(http.MethodGet)
}

// DemoPage serves the embedded demo form
func DemoPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", demoPageCSP)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(demoPage)
}
