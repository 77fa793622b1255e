//go:build !linux

package config

func detectStorage() StorageType {
	return StorageUnknown
}
