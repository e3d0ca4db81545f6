//go:build !kalmandebug

package arena

const defaultPoison = false
