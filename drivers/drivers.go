// Package drivers is a convenience package that registers all built-in
// storage drivers. Import it with a blank identifier to make all drivers
// available:
//
//	import _ "github.com/nuln/debom/drivers"
package drivers

import (
	"github.com/nuln/debom"
	_ "github.com/nuln/debom/driver/local"
	_ "github.com/nuln/debom/driver/rclone"
)

// Init ensures all built-in drivers are registered.
// This is called automatically by importing the package.
func Init() {}

// List returns a list of all registered storage drivers.
func List() []string {
	return debom.Drivers()
}
