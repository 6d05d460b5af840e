// Package whitelist holds the roster of registration numbers eligible to
// create an account. Membership is checked exactly once, at registration;
// it is never re-validated afterwards.
package whitelist

import "context"

// Entry is one eligible student on the roster.
type Entry struct {
	Name   string
	RegNo  string
	Cohort string
}

// Roster answers eligibility lookups keyed by registration number.
type Roster interface {
	Contains(ctx context.Context, regNo string) (bool, error)
}
