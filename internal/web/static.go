package web

import (
	"embed"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// StaticHandler serves the embedded page assets under /static/.
func StaticHandler() http.Handler {
	return http.FileServer(http.FS(staticFS))
}
