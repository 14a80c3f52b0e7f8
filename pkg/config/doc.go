// Package config provides configuration loading, validation, and hot
// reloading for the Triton adapter.
//
// Configuration is loaded from a YAML file, defaults are applied for any
// missing fields, and environment variables with the TRITON_ prefix override
// file values. A fsnotify-based watcher can reload the file at runtime so
// that changes to the model allow-list take effect without a restart.
package config
