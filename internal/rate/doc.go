// Package rate throttles failed logins on the development backend with
// Redis fixed-window counters.
//
// # Window semantics
//
// Each failure runs INCR and EXPIRE NX in one transaction, so the window
// starts at the first failure and is never extended by later ones. Keys:
//   - <prefix>login:<email>  per account
//   - <prefix>ip:<ip>        per client address, when enabled
package rate
