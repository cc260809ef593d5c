// Package assets embeds the static data shipped with the binaries.
package assets

import "embed"

// DataFS holds the default product catalog used when no catalog file is
// present in the data directory.
//
//go:embed data/products.json
var DataFS embed.FS

// ProductsPath is the catalog location inside DataFS.
const ProductsPath = "data/products.json"
