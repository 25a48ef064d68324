//go:build cgo

package selector

const cgoEnabled = true
