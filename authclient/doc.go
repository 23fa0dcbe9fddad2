// Package authclient defines the authentication backend contract consumed by the
// session store and two implementations: [Simulated], which reproduces the
// fixed-delay mock backend used during product development, and [HTTP], which
// talks to a real REST backend.
//
// Both return a [Grant] on success. A refusal the user can act on (wrong
// password, duplicate account) is a [*RejectedError]; anything else is an
// infrastructure failure.
package authclient
