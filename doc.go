// Package debom detects and removes Byte Order Mark (BOM) prefixes from
// text files stored on any supported storage backend.
//
// The core operation is [Strip], a pure function over bytes. [Processor]
// wires it to a [StorageEngine]: read a file fully, strip the BOM if the
// file starts with the signature of the configured encoding, and rewrite
// the file only when something was removed.
//
// # Supported Drivers
//
//   - local  — Local filesystem via afero (import _ "github.com/nuln/debom/driver/local")
//   - rclone — Any rclone-supported remote (import _ "github.com/nuln/debom/driver/rclone")
//
// # Quick Start
//
//	import (
//	    "github.com/nuln/debom"
//	    _ "github.com/nuln/debom/driver/local"
//	)
//
//	engine, err := debom.Open(&debom.Config{Type: "local", BasePath: "./docs"})
//	proc := debom.NewProcessor(engine, debom.UTF8, logger)
//	result := proc.File(ctx, "readme.txt")
//
// # Import All Drivers
//
//	import _ "github.com/nuln/debom/drivers"
package debom
