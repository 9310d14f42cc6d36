// Package web embeds the HTML templates and static assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strconv"

	html "github.com/gofiber/template/html/v2"
)

//go:embed templates
var templates embed.FS

//go:embed static
var static embed.FS

// Views returns the template engine. Templates are addressed by their path
// below templates/ without the extension, e.g. "partials/header".
func Views() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("signed", func(qty int) string {
		if qty > 0 {
			return "+" + strconv.Itoa(qty)
		}
		return strconv.Itoa(qty)
	})
	return engine
}

func Static() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
