package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/spahost/internal/handler/health"
)

// StatusResponse is the body of GET|POST /api/.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

type apiRequest struct {
	Endpoint string `path:"endpoint" description:"Any non-empty endpoint name."`
}

type assetRequest struct {
	Path string `path:"path" description:"File path relative to the static root, or a client-side route."`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "spahost"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Static single-page application host with a minimal status API.")

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		// /api/
		status, _ := r.NewOperationContext(method, "/api/")
		status.SetSummary("API status")
		status.SetDescription("Returns a fixed OK payload.")
		status.AddRespStructure(StatusResponse{}, openapi.WithHTTPStatus(http.StatusOK),
			openapi.WithContentType("text/json"))
		_ = r.AddOperation(status)

		// /api/{endpoint}
		invalid, _ := r.NewOperationContext(method, "/api/{endpoint}")
		invalid.SetSummary("Unknown API endpoint")
		invalid.SetDescription("Every endpoint other than the empty one answers 400 Bad Request.")
		invalid.AddReqStructure(apiRequest{})
		invalid.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusBadRequest),
			openapi.WithContentType("text/plain"))
		_ = r.AddOperation(invalid)
	}

	// GET /{path}
	getAsset, _ := r.NewOperationContext(http.MethodGet, "/{path}")
	getAsset.SetSummary("Static asset")
	getAsset.SetDescription("Serves an indexed file, the entry document for / and declared client routes, " +
		"or the not-found document with 404.")
	getAsset.AddReqStructure(assetRequest{})
	getAsset.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/html"))
	getAsset.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNotModified))
	getAsset.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNotFound),
		openapi.WithContentType("text/html"))
	_ = r.AddOperation(getAsset)

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Served on the ops listener. Reports the asset index and front door state.")
	getHealthz.AddRespStructure(health.Report{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Report{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
