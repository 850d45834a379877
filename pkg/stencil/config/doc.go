/*
Package config provides the case-insensitive option bag carried by every template.

# Overview

A Config maps option names to values. Names are matched without regard to
case and iterate in the order they were first set, which keeps template
configuration deterministic in logs and tests.

# Basic Usage

	cfg := config.New(map[string]any{
	    "path":    "page.html",
	    "Debug":   false,
	    "inherit": true,
	})

	cfg.String("PATH", "")     // "page.html"
	cfg.Bool("debug", true)    // false
	cfg.Bool("missing", true)  // true

# Type Coercion

Bool and Int also accept strings, so options passed on the command line
("debug=false", "depth=3") read the same as YAML values. Duration accepts
Go duration strings or a number of seconds.

# Merging

Merge overlays one Config on another without mutating either:

	child := parent.Merge(config.New(map[string]any{"path": "row.html"}))

# Loading From Files

	cfg, err := config.FromFile("stencil.yaml")

YAML and JSON documents keep their key order.
*/
package config
