// Package session owns one authenticated connection to the cloud
// broker and everything tied to its lifetime: the token, the websocket
// transport, topic subscriptions, inbound dispatch, outbound command
// publishing and the scheduled maintenance jobs.
//
// # Lifecycle
//
// Connect logs in, seeds the state model from the login profile, opens
// the transport with the access token as the broker password, and
// subscribes to the account and installation topics. From there the
// session moves between subscribed/receiving while healthy and
// reconnecting on transport drops. The transport's own bounded backoff
// handles retries; after a fixed number of consecutive drops the
// session gives up, stops its jobs and reports ErrRetriesExhausted
// through Err. Disconnect is explicit and idempotent.
//
// # Maintenance
//
// Three jobs run for the life of the session and stop together on
// disconnect: a 60s full-state resync (defends against missed pushes),
// a 300s referential table re-request (defends against server-side
// rotation), and a token refresh that fires a fixed margin before
// expiry and reconnects the transport, since the broker binds the
// credential at connect time.
//
// # Dispatch
//
// Inbound messages carry a type field. Recognized types fold into the
// state store or the referential translator; unknown types and decode
// failures are logged and dropped, never fatal to the transport.
package session
