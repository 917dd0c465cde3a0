// Package config defines the format-agnostic configuration model for the
// scheduler, along with the Loader interface for reading configuration from
// various sources.
//
// The `config.Model` is the single source of truth for the `builder`,
// `registry` and `capability` packages. Concrete implementations of the
// Loader interface, such as for HCL, are provided in separate packages.
package config
