// Copyright (c) NodeFlow Authors.
// Licensed under the MIT License.

// Package value provides the universal data container exchanged between
// workflow nodes. A Value holds one of eight kinds (string, integer,
// float, boolean, array, object, binary, null) plus an optional metadata
// map, and converts losslessly to and from the generic trees produced by
// YAML and JSON decoders.
package value
