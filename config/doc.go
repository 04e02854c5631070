// Copyright (c) NodeFlow Authors. Licensed under the MIT License.

// Package config provides unified configuration loading for NodeFlow.
//
// Configuration is assembled from three layers, later layers winning:
//
//	defaults -> YAML file -> environment variables
//
// Typical usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("nodeflow.yaml").
//	    WithEnvPrefix("NODEFLOW").
//	    Load()
package config
