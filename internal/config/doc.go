// Package config resolves the application's effective settings from two
// layers: a built-in defaults table and a single user-supplied YAML file
// (config.yml, then config.yaml) discovered in a root directory. Overrides
// win only when they carry a non-null value. Resolution happens once at
// startup and the result is passed by reference to every consumer.
package config
