// Package chat orchestrates one completion end to end: model allow-list
// checking, conversation session reuse or fresh agent resolution, image
// upload, message dispatch, and translation of the upstream reply stream
// into OpenAI-compatible responses.
package chat
