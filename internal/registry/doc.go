// Package registry holds the engine configurations of one scheduler
// instance and resolves composite engine names to concrete engines.
//
// Engines are loaded once from configuration and are read-only during
// scheduling. A composite engine is an alias (`composite_of`) for another
// engine, possibly itself composite; resolution follows the chain under a
// hard depth cap so that a misconfigured alias loop fails fast instead of
// recursing forever.
package registry
