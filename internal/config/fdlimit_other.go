//go:build !linux && !darwin

package config

func fdLimit() uint64 {
	return 0
}
