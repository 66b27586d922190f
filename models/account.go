package models

import "time"

// UserProfile holds the fields shared by hosts and nurses.
type UserProfile struct {
	ID               string    `bson:"id" json:"id"`
	Email            string    `bson:"email" json:"email"`
	Name             string    `bson:"name" json:"name"`
	PasswordHash     string    `bson:"passwordHash" json:"-"`
	TokenHash        string    `bson:"tokenHash,omitempty" json:"-"`
	Role             Role      `bson:"role" json:"role"`
	IsVerified       bool      `bson:"isVerified" json:"isVerified"`
	IsActive         bool      `bson:"isActive" json:"isActive"`
	IsSubscriber     bool      `bson:"isSubscriber" json:"isSubscriber"`
	Subscription     *string   `bson:"subscription" json:"subscription"`
	StripeCustomerID string    `bson:"stripeCustomerId,omitempty" json:"stripeCustomerId,omitempty"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Account is either a *Host or a *Nurse. It is resolved once, when the bearer token is verified.
type Account interface {
	Profile() *UserProfile
	AccountRole() Role
	account()
}

// Host lists properties and receives payouts through a connected account.
type Host struct {
	UserProfile     `bson:",inline"`
	StripeAccountID string `bson:"stripeAccountId,omitempty" json:"stripeAccountId,omitempty"`
	IsConnected     bool   `bson:"isConnected" json:"isConnected"`
}

func (h *Host) Profile() *UserProfile { return &h.UserProfile }
func (h *Host) AccountRole() Role      { return RoleHost }
func (h *Host) account()               {}

// CanReceivePayouts reports whether bookings may be routed to this host.
func (h *Host) CanReceivePayouts() bool {
	return h.IsActive && h.StripeAccountID != ""
}

// Nurse books properties.
type Nurse struct {
	UserProfile `bson:",inline"`
	Profession  string `bson:"profession,omitempty" json:"profession,omitempty"`
}

func (n *Nurse) Profile() *UserProfile { return &n.UserProfile }
func (n *Nurse) AccountRole() Role      { return RoleNurse }
func (n *Nurse) account()               {}
