package handlers

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// StaticFiles serves the frontend from dir. Dotfiles (.env, .git) and the
// hidden files, typically the SQLite database, answer 404 along with their
// -journal, -wal and -shm companions.
func StaticFiles(dir string, hidden ...string) http.Handler {
	root, err := filepath.Abs(dir)
	if err != nil {
		root = filepath.Clean(dir)
	}

	blocked := make(map[string]bool)
	for _, p := range hidden {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
			blocked[abs+suffix] = true
		}
	}

	files := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		for _, segment := range strings.Split(name, "/") {
			if strings.HasPrefix(segment, ".") {
				http.NotFound(w, r)
				return
			}
		}
		if blocked[filepath.Join(root, filepath.FromSlash(name))] {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
