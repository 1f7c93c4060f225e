// Package pkg provides the libraries behind fyles, a generator for file-type
// icon sprites.
//
// # Overview
//
// fyles reads an icon for every file extension at several sizes, merges
// pixel-identical icons, packs the rest into one sprite image and writes a
// stylesheet with a class per extension and size. The pkg directory is
// organized by pipeline stage:
//
//  1. [icon] - Shared vocabulary: size classes, variants, Source and Registry
//  2. [source] - Icon inputs: image decoding plus directory and manifest sources
//  3. [catalog] - Content hashing and duplicate grouping
//  4. [pack] - Sprite placement and compositing
//  5. [stylesheet] - CSS rule generation
//  6. [sink] - Output writers
//  7. [pipeline] - Orchestration (extract → finalize → pack → style → write)
//
// # Architecture
//
// The data flow through a run:
//
//	Registry (extensions) + Source (bitmaps)
//	         ↓
//	    [pipeline] Extract: one attempt per extension and size class
//	         ↓
//	    [catalog] Add, then Finalize into duplicate groups
//	         ↓
//	    [pack] Pack + Composite
//	         ↓
//	    [stylesheet] Generate
//	         ↓
//	    [sink] sprite PNG + CSS (+ optional per-icon PNGs)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/camalot/fyles/pkg/pipeline"
//	    "github.com/camalot/fyles/pkg/sink"
//	    "github.com/camalot/fyles/pkg/source/dir"
//	)
//
//	src, _ := dir.New("icons")
//	out := sink.NewFileSink("dist/images/fyles.png", "dist/css/fyles.css")
//	st, err := pipeline.NewRunner(src, src, out, nil).
//	    Execute(context.Background(), pipeline.DefaultOptions())
//
// # Supporting Packages
//
// [errors] - Coded errors shared by every stage.
//
// [observability] - Hooks for stage and per-icon progress.
//
// [buildinfo] - Version information set at build time.
package pkg
