// Package gate is a request-processing core for JSON APIs: a routed HTTP
// dispatch pipeline with ordered middleware, JWT-based authentication
// with single-use refresh-token rotation, and per-request identity and
// tenant context.
//
// An application assembles an App from handlers and middleware, then runs
// it:
//
//	signer, err := token.New(cfg.Auth.Issuer, []byte(cfg.Auth.PrivateKey))
//	if err != nil {
//		log.Fatal(err)
//	}
//	store := tokenstore.NewMemoryStore()
//
//	app := gate.New(
//		gate.WithLogger(logger.New([]gate.ContextExtractor{middlewares.RequestIDExtractor()})),
//		gate.WithMiddleware(
//			middlewares.RequestID(),
//			middlewares.Logging(),
//			middlewares.SecurityHeaders(),
//			middlewares.RateLimit(middlewares.NewTokenBucket(10, 20)),
//			middlewares.JWTAuth(signer),
//			middlewares.Tenant(),
//		),
//		gate.WithHandlers(handlers.NewAuth(signer, store)),
//		gate.WithHealth(),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//		log.Fatal(err)
//	}
//
// Handlers receive a Context and return errors; expected failures are
// *HTTPError values rendered as a uniform JSON envelope, and anything
// else becomes a 500 server fault with the detail kept server-side.
package gate
