// Package pkg provides the core libraries of the agentcanvas graph engine.
//
// # Overview
//
// Agentcanvas is the engine behind a visual authoring canvas for AI-agent
// workflows: planning agents propose workflow entities, the engine turns them
// into a live node-and-edge graph with enriched configurations and planned
// positions, and a rendering layer consumes the resulting change
// notifications. The pkg directory is organized into four areas:
//
//  1. [canvas] - The graph engine (store, normalizer, enricher, position
//     planner, mutation API, layout strategies, change notifier)
//  2. [snapshot] - Persistence (light snapshot codec, file/memory/redis/mongo
//     stores, coalescing background writer)
//  3. [errors] - Structured error codes shared by CLI and HTTP surfaces
//  4. [buildinfo] - Build-time version information
//
// # Architecture
//
// The typical data flow:
//
//	Client request (HTTP / CLI)
//	         ↓
//	    [canvas] package (validate → normalize → enrich → mutate → notify)
//	         ↓
//	    [snapshot] package (coalesced background persistence)
//
// Change notifications fan out through the canvas notifier to the SSE event
// stream and any other registered listener. The in-memory canvas is the
// source of truth; the persisted snapshot is a best-effort mirror restored at
// startup.
package pkg
