package api

import (
	"fmt"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"
)

// clfTimeLayout is the Common Log Format timestamp.
const clfTimeLayout = "02/Jan/2006:15:04:05 -0700"

// combinedLogFormat renders a request in the Apache combined log format.
func combinedLogFormat(param gin.LogFormatterParams) string {
	user := "-"
	proto := "HTTP/1.1"
	referer, userAgent := "", ""
	if param.Request != nil {
		if u, _, ok := param.Request.BasicAuth(); ok && u != "" {
			user = u
		}
		proto = param.Request.Proto
		referer = param.Request.Referer()
		userAgent = param.Request.UserAgent()
	}

	size := "-"
	if param.BodySize > 0 {
		size = fmt.Sprintf("%d", param.BodySize)
	}

	return fmt.Sprintf("%s - %s [%s] \"%s %s %s\" %d %s \"%s\" \"%s\"\n",
		param.ClientIP,
		user,
		param.TimeStamp.Format(clfTimeLayout),
		param.Method,
		param.Path,
		proto,
		param.StatusCode,
		size,
		referer,
		userAgent,
	)
}

// noListingFS serves directories only when they contain an index.html.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.IsDir() {
		return f, nil
	}

	index, err := n.fs.Open(path.Join(name, "index.html"))
	if err != nil {
		f.Close()
		return nil, os.ErrNotExist
	}
	index.Close()

	return f, nil
}

func newFileServer(root string) http.Handler {
	return http.FileServer(noListingFS{fs: http.Dir(root)})
}

// ServeStatic serves files from the site root with caching disabled.
func (h *Handler) ServeStatic(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}

	c.Header("Cache-Control", "no-cache")
	h.files.ServeHTTP(c.Writer, c.Request)
}
