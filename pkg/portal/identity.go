package portal

import "strings"

// Identity yields the judge id resolved by the external identity provider.
// ok is false while the provider has not resolved a user yet.
type Identity interface {
	JudgeID() (id string, ok bool)
}

// StaticIdentity is an identity that is always resolved, unless empty.
type StaticIdentity string

// JudgeID implements Identity.
func (s StaticIdentity) JudgeID() (string, bool) {
	id := strings.TrimSpace(string(s))
	return id, id != ""
}

// IdentityFunc adapts a function to Identity.
type IdentityFunc func() (string, bool)

// JudgeID implements Identity.
func (f IdentityFunc) JudgeID() (string, bool) {
	return f()
}

func resolveJudge(identity Identity) (string, bool) {
	if identity == nil {
		return "", false
	}
	id, ok := identity.JudgeID()
	id = strings.TrimSpace(id)
	return id, ok && id != ""
}
