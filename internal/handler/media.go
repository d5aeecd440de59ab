package handler

import (
	"net/http"
	"strings"
)

// Media returns a handler serving stored media files from mediaDir
// under the /media/ URL prefix. Directory listings are refused.
func Media(mediaDir string) http.Handler {
	fs := http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		fs.ServeHTTP(w, r)
	})
}
