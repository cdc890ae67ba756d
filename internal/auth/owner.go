package auth

// AssertOwner authorizes a mutation of a user-owned resource. Identifiers are
// compared as canonical strings; callers fetch the resource first so a missing
// resource reports NotFound before Unauthorized.
func AssertOwner(actingID, ownerID string) error {
	if actingID == "" || actingID != ownerID {
		return ErrNotOwner
	}
	return nil
}
