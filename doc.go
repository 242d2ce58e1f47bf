// Package bserve provides the routing and dispatch core for serving host-registered handlers over HTTP.
//
// # Overview
//
// Handlers are opaque pieces of host code: bserve never looks inside them. It keeps a concurrent table
// of (method, pattern) to handler, builds an immutable matcher from it when an instance starts, reads
// request bodies under a size bound, calls the handler while holding an execution token and turns
// whatever it returned into a wire response.
//
// A minimal example:
//
//	srv := bserve.NewServer()
//	srv.AddHeader("Server", "bserve")
//	srv.AddRoute(http.MethodGet, "/hello", bserve.CallableFunc(func(...any) (any, error) {
//	    return bserve.Text("hi"), nil
//	}), false)
//
//	if err := srv.Start(bserve.Port(8080)); err != nil {
//	    log.Fatal(err)
//	}
//
// # Route Table and Matcher
//
// The [RouteTable] is the source of truth. It holds one concurrent mapping per supported method
// (GET, POST, PUT, DELETE and PATCH) and can be written to at any time, also while serving. Adding the
// same method and pattern twice replaces the earlier handler. Other methods are never routed.
//
// Every started instance builds a [Matcher] from a snapshot of the table. The matcher never changes
// afterwards: routes added later are invisible to it until a new instance is started. Patterns are
// made of slash separated segments that are either literal, a named parameter ":name" or a final
// catch-all "*name". At any position a literal beats a parameter, which beats a catch-all, and the
// matcher backtracks when the preferred branch does not lead to a handler:
//
//	/users/admin/settings
//	/users/:id/profile    // "/users/admin/profile" still matches this one
//	/static/*file         // "/static/css/site.css" captures "css/site.css"
//
// Patterns are only validated while building the matcher. A malformed pattern, or one that names a
// wildcard differently than a pattern sharing its prefix, is reported with [Logger.LogRouteRejected]
// and left out.
//
// # Handlers and the Execution Token
//
// A [Handler] wraps a [Callable] and is either [Blocking] or [Suspending]. POST requests have their
// body read first, it is passed as a []byte and is the only argument. Other methods call without
// arguments.
//
// Every call into host code holds a [Token]. Blocking handlers hold it for the whole call. Suspending
// handlers hold it while producing their [Awaitable] and again while retrieving its result, but not
// while waiting for it, so other requests can be served in the meantime:
//
//	srv.AddRoute(http.MethodGet, "/slow", bserve.CallableFunc(func(...any) (any, error) {
//	    return bserve.Go(func() (any, error) {
//	        time.Sleep(time.Second)
//	        return bserve.Text("done"), nil
//	    }), nil
//	}), true)
//
// # Responses
//
// Host code returns a [Response]: plain text, a static file or a structured value that is serialized
// as JSON. Strings and byte slices are accepted as plain text. A structured payload always takes
// precedence over a static file tag. Static files are served with the conditional and range handling
// of the http package.
//
// Every response, including the fallback responses for failures, is written through a
// [ResponseBuffer] and gets the [HeaderSet] overlaid last, so the header set wins over headers such
// as Content-Type that the response itself sets.
//
// # Errors
//
// Failures are returned as [*DispatchError] values that carry a [Code]. Use [CodeOf] to read it and
// errors.Is to check the kind:
//
//   - [ErrRouteNotFound] results in a 404
//   - [ErrBodyTooLarge], [ErrBodyRead], [ErrInvocation] and [ErrRender] result in a 500
//
// Panics in host code are recovered and reported as [ErrInvocation]. No single failing request stops
// the instance.
//
// # Server Lifecycle
//
// [Server.Start] binds the [ListenerSource] and spawns a single serving goroutine that is locked to its
// own OS thread. The first call wins, later calls only log with [Logger.LogAlreadyRunning] and return
// nil. A bind failure is returned and allows another attempt. [Server.Shutdown] stops the instance for
// good.
//
// To use several cores, run several instances on one shared listening socket, see the sockshare
// package, and pass each a [SharedSocket]. The kernel distributes connections between them.
package bserve
