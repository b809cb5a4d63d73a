// Package fetch retrieves raw venue pages over one of two transports.
//
// Direct fetches are plain HTTP GETs with a browser user agent, a fixed
// timeout and response validation (status, minimum size, bot-protection
// signatures). Rendered fetches drive a browser session from package browser
// and capture the settled DOM. Failures are reported as *NetworkError or
// *BlockedError.
package fetch
