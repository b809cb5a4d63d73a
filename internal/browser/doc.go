// Package browser is the boundary to the headless browser used for
// JavaScript-heavy venue pages.
//
// The rest of the module only sees the Launcher and Page interfaces: launch a
// session, navigate with a wait condition, evaluate DOM expressions, close.
// The Chrome implementation is backed by chromedp.
package browser
