// Package bridge virtualizes network access for code running inside the
// isolated rendering context.
//
// The two halves share nothing but a message port pair: the shim lives with
// the sandboxed context and intercepts its fetches, the host answers from the
// project table. Delivery is at most once and possibly never; there is no
// acknowledgement, retry, or timeout. Requests in flight when a generation is
// torn down are abandoned, not failed.
package bridge
