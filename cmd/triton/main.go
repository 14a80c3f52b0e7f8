// Triton is an OpenAI-compatible adapter for the Kiira chat provider.
//
// It exposes the standard chat completions API and translates it onto
// Kiira's agent-based chat protocol: guest authentication, fuzzy agent
// resolution, chat group management, image upload, and SSE stream
// translation. Conversation continuity across stateless clients is
// carried by an inline conversation tag in message content.
//
// Usage:
//
//	# Start the server with default configuration
//	triton run
//
//	# Start with a custom configuration file
//	triton run --config /etc/triton/config.yaml
//
//	# Validate a configuration file
//	triton validate --config config.yaml
//
//	# List the upstream agent catalog
//	triton agents --format json
//
//	# Show version information
//	triton version
package main

func main() {
	Execute()
}
