//go:build !bufdebug

package buffer

const debugHandles = false
