// Package upstream is the Kiira provider client: guest authentication,
// chat group listing and provisioning, the global agent catalog, message
// submission, resource upload, and the task event stream.
//
// The provider's responses are loosely shaped JSON envelopes (fields move
// between object and array forms across versions), so payload extraction
// goes through gjson paths rather than rigid struct decoding. Errors from
// the transport are typed (AuthError, RateLimitError, UpstreamError,
// TimeoutError, ParseError) and matched by callers with errors.As.
//
// A Client carries the per-device identity the provider keys sessions on:
// the device id, the guest token minted for it, and the currently bound
// chat group. One Client therefore serves one logical conversation at a
// time; the orchestrator creates short-lived clients per request.
package upstream
