// Package ffd is the Format Description decoder's public façade: Compile
// builds a schema graph from description text (the Description Compiler,
// §4.1-§4.3), Decode applies it to a byte stream (the Instance Evaluator,
// §4.4-§4.7), and Release/Invalidate/GetAttribute round out the lifecycle
// entry points of §6.
package ffd

import (
	"github.com/corwinn/libwind-ffd/internal/decode"
	"github.com/corwinn/libwind-ffd/internal/schema"
	"github.com/corwinn/libwind-ffd/ffdstream"
)

// Schema is a compiled, resolved Format Description (§3.1).
type Schema = schema.Graph

// Instance is one decoded instance tree (§3.2).
type Instance = decode.Node

// ParseOption configures Compile's structural budgets (§4.2).
type ParseOption = schema.ParseOption

// DecodeOption configures Decode's runtime budgets (§4.5.1).
type DecodeOption = decode.Option

// Compile parses and resolves a Format Description (§6 "compile"). Any
// description syntax error (§7.1) or schema semantic error (§7.2) aborts
// with a descriptive error.
func Compile(description []byte, opts ...ParseOption) (*Schema, error) {
	return schema.Parse(description, opts...)
}

// Decode applies a compiled Schema to a byte stream, producing the root
// instance node (§6 "decode"). A stream-format mismatch (§7.3) aborts with
// a descriptive error. The sentinel internal/ffderr.ErrUnsupportedVersion
// exists for the unsupported-feature soft skip (§7.4), but Decode never
// returns it: no description construct marks an input as unsupported.
func Decode(s *Schema, stream ffdstream.Stream, opts ...DecodeOption) (*Instance, error) {
	return decode.Decode(s, stream, opts...)
}

// Release detaches an instance tree's buffers and children, making them
// eligible for garbage collection immediately (§6 "release").
func Release(n *Instance) {
	decode.Release(n)
}

// Invalidate clears every cached guard resolution on s, readying it for a
// fresh Decode of a different input (§6 "invalidate", §4.7).
func Invalidate(s *Schema) {
	s.Invalidate()
}

// GetAttribute is the top-level attribute lookup entry point (§6
// "get_attribute").
func GetAttribute(s *Schema, name string) (*schema.Node, bool) {
	return s.GetAttribute(name)
}
