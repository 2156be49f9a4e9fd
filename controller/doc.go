// Package controller provides a read-only client for the UniFi controller's
// management API: device inventory, client sessions, site statistics, and
// configuration dumps.
//
// The controller's API is documented by reverse engineering, not by the
// vendor. This client mirrors that surface: it authenticates against
// /api/login with a username and password, issues exactly one of ~46 named
// queries against /api/s/{site}/... (or the handful of controller-wide
// paths), and unwraps the uniform {"meta","data"} envelope every endpoint
// returns. The data payload is passed through verbatim; no reshaping.
//
// # Basic Usage
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/kenmoini/go-unifi-facts/controller"
//	)
//
//	func main() {
//	    client, err := controller.New("https://192.168.1.1:8443", "readonly", "secret")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    ctx := context.Background()
//
//	    if _, err := client.Login(ctx); err != nil {
//	        log.Fatal(err)
//	    }
//	    defer client.Logout(ctx)
//
//	    result, err := client.Execute(ctx, controller.QueryListDevices, nil)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println(string(result.Data))
//	}
//
// # Lifecycle
//
// One client serves one invocation: Login, one Execute, optional Logout.
// Execute before a successful Login fails with *AuthError. Logout is
// best-effort; its failures are logged, never returned.
//
// # Error Handling
//
// Three error kinds cover every failure, built on github.com/cockroachdb/errors:
//
//   - *AuthError: login rejected, no session cookie issued, or Execute
//     without a session. Nothing to retry.
//   - *QueryError: the controller answered rc == "error" for a supported
//     query; Message carries the controller's text verbatim
//     (e.g. "api.err.Invalid").
//   - *TransportError: network/TLS failure, or a response the envelope could
//     not be parsed from.
//
// Unknown query names are rejected before any network I/O; test with
// errors.Is(err, controller.ErrUnknownQuery).
//
// # Query Coverage
//
// SupportedQueries lists every registered query. Several endpoints are known
// to be unreliable across controller firmware lines (the cmd/sitemgr admin
// listing 404s on some versions, list_extension 400s on others); those are
// passed through best-effort and whatever the controller answers is surfaced
// unchanged.
//
// # TLS
//
// Controllers ship with self-signed certificates, so New disables
// certificate verification. Set ClientConfig.InsecureSkipVerify to false
// when the controller has a valid certificate.
package controller
