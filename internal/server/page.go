package server

import (
	"html/template"
	"log"
	"net/http"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Pi Camera Stream</title></head>
<body>
<h1>Pi Camera Stream</h1>
<img src="/video_feed" alt="live stream">
<form action="/save_image" method="post">
	<button type="submit">Save Image</button>
</form>
{{if .Message}}<p>{{.Message}}</p>{{end}}
<p><a href="/api/snapshots">Saved snapshots</a></p>
</body>
</html>
`))

type pageData struct {
	Message string
}

// renderIndex writes the viewer page with an optional outcome message.
func renderIndex(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := indexTemplate.Execute(w, pageData{Message: message}); err != nil {
		log.Printf("render index: %v", err)
	}
}

// handleIndex handles GET / and serves the viewer page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	renderIndex(w, http.StatusOK, "")
}
