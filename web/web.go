// Package web holds the host pages served by the storefront.
package web

import _ "embed"

// CartPage is the default cart page markup.
//
//go:embed cart.html
var CartPage []byte
