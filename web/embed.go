// Package web embeds the MapleBudget page templates and browser assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html static/*
var files embed.FS

// Templates returns the page templates, rooted at the templates directory.
func Templates() fs.FS {
	return sub("templates")
}

// Static returns the stylesheet and script, rooted at the static directory.
func Static() fs.FS {
	return sub("static")
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		// dir is a constant embedded above.
		panic(err)
	}
	return f
}
