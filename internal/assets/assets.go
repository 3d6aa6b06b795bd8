// Package assets bundles the static images shown for projects.
package assets

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/fyrsmithlabs/crxproject/internal/view"
)

//go:embed icons/*.png
var bundled embed.FS

// ProjectIcon is the resource path of the project icon.
const ProjectIcon = "icons/icon.png"

// LoadIcon loads a bundled icon by resource path.
func LoadIcon(resource string) (view.Icon, error) {
	data, err := fs.ReadFile(bundled, resource)
	if err != nil {
		return view.Icon{}, fmt.Errorf("loading icon %s: %w", resource, err)
	}
	return view.Icon{Resource: resource, Data: data}, nil
}

// MustLoadIcon is LoadIcon for resources known to be bundled.
func MustLoadIcon(resource string) view.Icon {
	icon, err := LoadIcon(resource)
	if err != nil {
		panic(err)
	}
	return icon
}
