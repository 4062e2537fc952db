package handlers

import (
	_ "embed"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var openAPIDoc []byte

const SwaggerDocPath = "/swagger/doc.json"

// SwaggerDocHandler serves the embedded OpenAPI document.
func SwaggerDocHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDoc)
}

// SwaggerUIHandler serves the Swagger UI pointed at SwaggerDocPath.
func SwaggerUIHandler() http.HandlerFunc {
	return httpSwagger.Handler(httpSwagger.URL(SwaggerDocPath))
}
