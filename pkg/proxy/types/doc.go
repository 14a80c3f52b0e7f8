// Package types defines OpenAI-compatible request and response types for the
// adapter's HTTP surface.
//
// The types match the OpenAI Chat Completions API format so existing OpenAI
// SDKs and tools work unchanged. Two adapter extensions are carried on top of
// the standard shapes:
//
//   - ChatCompletionRequest.ConversationID lets a client pin a request to an
//     existing upstream conversation without relying on the inline tag.
//   - ChatCompletionResponse.ConversationID (and the stream chunk equivalent)
//     reports the conversation a reply belongs to.
//
// MessageContent models the string-or-parts union the OpenAI API allows for
// message content. It unmarshals either form and remarshals in the same shape
// it was received in.
package types
