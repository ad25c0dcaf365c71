package models

// Policy gates reconciler deletions. It is supplied wholesale as part of the
// desired state and is immutable during a run.
type Policy struct {
	// ProtectedNames lists entity names per type that are never deleted,
	// even when absent from the desired state.
	ProtectedNames map[EntityType][]string
	// DeleteAllowTypes, when non-empty, restricts deletion to the listed
	// types.
	DeleteAllowTypes []EntityType
	// DeleteDenyTypes always blocks deletion for the listed types, even
	// when the allow-list names them.
	DeleteDenyTypes []EntityType
}

// Deletion gate outcomes, in precedence order.
const (
	DeleteAllowed      = ""
	DeniedByTypeDeny   = "type is on the deletion deny-list"
	DeniedByTypeAllow  = "type is not on the deletion allow-list"
	DeniedByProtection = "name is protected"
)

// CanDelete evaluates the deletion gate for one entity. The deny-list wins
// over the allow-list, which wins over per-name protection. The returned
// reason is empty when deletion may proceed.
func (p Policy) CanDelete(t EntityType, name string) (bool, string) {
	for _, denied := range p.DeleteDenyTypes {
		if denied == t {
			return false, DeniedByTypeDeny
		}
	}
	if len(p.DeleteAllowTypes) > 0 {
		allowed := false
		for _, a := range p.DeleteAllowTypes {
			if a == t {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, DeniedByTypeAllow
		}
	}
	wanted := CanonicalName(name)
	for _, protected := range p.ProtectedNames[t] {
		if CanonicalName(protected) == wanted {
			return false, DeniedByProtection
		}
	}
	return true, DeleteAllowed
}
