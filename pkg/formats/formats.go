// Package formats provides readers and writers for hull geometry files.
package formats

// Note: the vertex record codec is in vertex.go and shared with remote residency.
// Note: HPK (Hull Pack) is fully implemented in hpk.go
