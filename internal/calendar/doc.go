// Package calendar renders catalog shows as iCalendar (RFC 5545) data so a
// listing can be imported into a calendar app.
package calendar
