package constants

import (
	"math"
	"time"
)

// Session and context keys
const (
	ContextKeyUserID  = "user_id"
	SessionCookieName = "stepflow_session"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*limit inside int32
	MaxPage = math.MaxInt32 / MaxPageSize
)

// Projects
const (
	DefaultProjectColor = "#3b82f6"
	MaxTitleLength      = 255
)

// Invitations
const (
	DefaultInvitationTTL = 7 * 24 * time.Hour
	InvitationTokenBytes = 32
)

// AI step suggestions
const (
	MaxAISuggestedSteps = 12
)
