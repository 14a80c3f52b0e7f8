// Package stream translates the provider's loosely shaped event stream
// into strict OpenAI-style chat completion chunks.
//
// Each upstream line is decoded once into an Event; text deltas and media
// resources are extracted from that single decode. Media may appear at two
// nesting depths (on the choice, or under its delta) and an event yields at
// most one media item. The Translator re-emits live chunks for streaming
// responses; Collect runs the same extraction to completion for the
// non-streaming path.
package stream
