package handlers

import (
	"io/fs"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// StaticSite serves the single-page front-end from an embedded or on-disk tree.
type StaticSite struct {
	fsys fs.FS
}

// NewStaticSite serves from dir when set, otherwise from embedded.
func NewStaticSite(embedded fs.FS, dir string) *StaticSite {
	if dir != "" {
		return &StaticSite{fsys: os.DirFS(dir)}
	}
	return &StaticSite{fsys: embedded}
}

func (s *StaticSite) FS() http.FileSystem {
	return http.FS(s.fsys)
}

// Index serves index.html. A missing file is reported in a 200 JSON body so
// the browser shows why the page is blank.
func (s *StaticSite) Index(c *gin.Context) {
	data, err := fs.ReadFile(s.fsys, "index.html")
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": "index.html not found"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// Debug lists the static files and the working directory.
func (s *StaticSite) Debug(c *gin.Context) {
	files := make([]string, 0)
	entries, err := fs.ReadDir(s.fsys, ".")
	if err == nil {
		for _, e := range entries {
			files = append(files, e.Name())
		}
	}

	pwd, _ := os.Getwd()
	c.JSON(http.StatusOK, gin.H{"static_files": files, "pwd": pwd})
}
