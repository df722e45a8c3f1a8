// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package web serves the single page app bundle.
package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

const indexFile = "index.html"

// SPA serves files from a directory and answers every unknown path with
// index.html, so client-side routes such as /?ref=<id> reach the app.
type SPA struct {
	root  string
	files http.Handler
}

func NewSPA(dir string) *SPA {
	return &SPA{root: dir, files: http.FileServer(http.Dir(dir))}
}

func (s *SPA) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)
	if clean == "/"+indexFile {
		s.serveIndex(w, r)
		return
	}
	name := filepath.Join(s.root, filepath.FromSlash(clean))

	info, err := os.Stat(name)
	if err != nil || info.IsDir() {
		s.serveIndex(w, r)
		return
	}

	s.files.ServeHTTP(w, r)
}

// serveIndex answers with index.html whatever the request path was
func (s *SPA) serveIndex(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(filepath.Join(s.root, indexFile))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, indexFile, info.ModTime(), f)
}
