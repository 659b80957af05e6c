package middleware

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Static serves files under root for any unmatched GET/HEAD request. Files
// whose base name is in deny (case-insensitive) and dotfiles are never served,
// whatever path they are requested under. There is no directory listing.
func Static(root string, deny ...string) gin.HandlerFunc {
	denied := make(map[string]struct{}, len(deny))
	for _, d := range deny {
		denied[strings.ToLower(path.Base(d))] = struct{}{}
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			notFound(c)
			return
		}
		name := path.Clean("/" + c.Request.URL.Path)
		if name == "/" {
			name = "/index.html"
		}
		base := path.Base(name)
		if strings.HasPrefix(base, ".") {
			notFound(c)
			return
		}
		if _, blocked := denied[strings.ToLower(base)]; blocked {
			notFound(c)
			return
		}
		ServeFile(c, root, name)
	}
}

// ServeFile writes root/name, or 404 when it is missing or a directory.
func ServeFile(c *gin.Context, root, name string) {
	full := filepath.Join(root, filepath.FromSlash(path.Clean("/"+name)))
	f, err := os.Open(full)
	if err != nil {
		notFound(c)
		return
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil || st.IsDir() {
		notFound(c)
		return
	}
	http.ServeContent(c.Writer, c.Request, st.Name(), st.ModTime(), f)
	c.Abort()
}

func notFound(c *gin.Context) {
	c.Abort()
	c.String(http.StatusNotFound, "404 page not found")
}
