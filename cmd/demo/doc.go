// Package demo implements "kvsub demo", a scripted walk-through that creates the
// sub users and runs every record operation on it, printing each result.
package demo
