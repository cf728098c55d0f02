//go:build !safebuild

package capabilities

const safeBuild = false
