package domain

// Capability names an action in the linking workflow.
type Capability string

const (
	CapReceiveLinkRequests Capability = "receive_link_requests"
	CapApproveLinks        Capability = "approve_links"
)

var capabilities = map[Capability][]Role{
	CapReceiveLinkRequests: {RoleCaregiver, RoleHospital},
	CapApproveLinks:        {RoleCaregiver, RoleHospital},
}

// Can reports whether role holds capability.
func (r Role) Can(c Capability) bool {
	for _, allowed := range capabilities[c] {
		if allowed == r {
			return true
		}
	}
	return false
}

// Authorize returns ErrForbidden unless role holds capability.
func Authorize(role Role, c Capability) error {
	if !role.Can(c) {
		return ErrForbidden
	}
	return nil
}
