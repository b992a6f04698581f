// Package access decides who may view a tribute page. The decision is a
// pure rule table over flags the caller has already resolved; it does no
// I/O and holds no state.
package access

// Outcome is the result of a tribute-page access check.
type Outcome string

const (
	Granted                Outcome = "granted"
	DeniedNotAuthenticated Outcome = "denied_not_authenticated"
	DeniedNotOwner         Outcome = "denied_not_owner"
	DeniedNotQualified     Outcome = "denied_not_qualified"
	DeniedNotFound         Outcome = "denied_not_found"
)

// Granted reports whether the outcome allows access.
func (o Outcome) Granted() bool { return o == Granted }

// Request carries the resolved inputs for one access check.
type Request struct {
	// Authenticated is false for anonymous visitors.
	Authenticated bool
	// Admin is true when the principal holds an administrative role.
	Admin bool
	// Owner is true when the principal is the decoded subject.
	Owner bool
	// Qualified is true when the subject currently holds, or has ever
	// held, a qualifying rank.
	Qualified bool
	// HasRecords is true when hall-of-fame rows exist for the subject.
	HasRecords bool
}

// Decision is the outcome plus the flags the page layer branches on.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	IsOwner bool    `json:"is_owner"`
	IsAdmin bool    `json:"is_admin"`
}

// Decide evaluates the access rule table. Rules are evaluated top to
// bottom and the first match wins; the order is part of the contract.
// In particular the qualification check precedes the data-existence
// check, so a qualified owner whose hall-of-fame rows have not been
// written yet sees "not found" rather than the misleading "not
// qualified".
func Decide(req Request) Decision {
	if !req.Authenticated {
		return Decision{Outcome: DeniedNotAuthenticated}
	}

	if req.Admin {
		return Decision{Outcome: Granted, IsAdmin: true, IsOwner: req.Owner}
	}

	if !req.Owner {
		return Decision{Outcome: DeniedNotOwner}
	}

	if !req.Qualified {
		return Decision{Outcome: DeniedNotQualified, IsOwner: true}
	}

	if !req.HasRecords {
		return Decision{Outcome: DeniedNotFound, IsOwner: true}
	}

	return Decision{Outcome: Granted, IsOwner: true}
}
