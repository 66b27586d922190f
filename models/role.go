package models

// Role identifies which side of the marketplace an account belongs to.
type Role string

const (
	RoleHost  Role = "Host"
	RoleNurse Role = "Nurse"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleHost || r == RoleNurse
}

// WebhookChannel names one inbound webhook endpoint. Each channel has its own signing secret.
type WebhookChannel string

const (
	ChannelPropertyBooking   WebhookChannel = "property-booking"
	ChannelHostSubscription  WebhookChannel = "host-subscription"
	ChannelNurseSubscription WebhookChannel = "nurse-subscription"
)
