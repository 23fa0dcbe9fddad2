// Package devserver is a development REST backend for the session store's
// HTTP authentication client.
//
// Routes:
//
//	POST  /auth/login   {email,password}      -> 200 {token,user} | 401 | 429
//	POST  /auth/signup  {email,password,name} -> 201 {token,user} | 400 | 409
//	GET   /auth/me      bearer                -> 200 user | 401
//	PATCH /auth/me      bearer, partial user  -> 200 user | 400 | 401 | 403
//
// Error bodies are {"message": "..."}. Accounts live in memory with Argon2id
// hashes; tokens are JWTs issued by the jwt package. A Redis limiter, when
// configured, throttles failed logins.
//
// # What this package must NOT do
//
//   - Persist accounts. Restarting the server forgets every signup.
//   - Serve production traffic.
package devserver
