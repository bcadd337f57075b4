// Package session is the client-side session layer of docvault.
//
// A Session owns the current access/refresh credential pair, keeps it in a
// secretstore.Store across restarts, and hands out an HTTP transport (and a
// gRPC interceptor) that:
//
//   - attaches "Authorization: Bearer <access>" to every request while
//     authenticated, and nothing otherwise;
//   - on a 401 response renews the pair through the authentication
//     service, replaying the request once with the new access credential;
//   - guarantees that any number of requests failing at the same time share
//     a single call to the refresh endpoint (see Coordinator).
//
// A failed renewal ends the session: the pair is cleared in memory and in the
// store, and every waiting request receives its original 401 response.
//
// Every change to the pair is written to the store before the call that made
// it returns, and concurrent changes are serialized, so a Logout that races a
// renewal leaves nothing behind to Hydrate.
//
// Besides the HTTP transport the session offers two adapters over the same
// credential state:
//
//   - UnaryClientInterceptor, for gRPC clients: it sends the access
//     credential as "authorization" metadata and renews on
//     codes.Unauthenticated through the same Coordinator;
//   - TokenSource, an oauth2.TokenSource for code built on golang.org/x/oauth2.
//
// Typical wiring:
//
//	sess := session.New(authClient, store, session.WithLogger(log))
//	_ = sess.Hydrate(ctx)
//	api := documents.New(baseURL, sess.HTTPClient())
//	conn, _ := grpc.NewClient(target, grpc.WithUnaryInterceptor(sess.UnaryClientInterceptor()))
package session
