package auth

import (
	"strconv"
	"strings"
)

// PolicyService manages user permissions for the Telegram front-end.
type PolicyService struct {
	AdminUserIDs   map[int64]bool // map of admin user IDs
	AllowedUserIDs map[int64]bool // map of allowed user IDs (if empty, all users are allowed)
}

// NewPolicyService creates a new PolicyService from comma-separated ID lists.
func NewPolicyService(adminUserIDsStr, allowedUserIDsStr string) *PolicyService {
	return &PolicyService{
		AdminUserIDs:   parseIDList(adminUserIDsStr),
		AllowedUserIDs: parseIDList(allowedUserIDsStr),
	}
}

func parseIDList(s string) map[int64]bool {
	ids := make(map[int64]bool)
	if s == "" {
		return ids
	}
	for _, idStr := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err == nil {
			ids[id] = true
		}
	}
	return ids
}

// IsAdmin checks if a user is an admin.
func (p *PolicyService) IsAdmin(userID int64) bool {
	return p.AdminUserIDs[userID]
}

// IsAllowed checks if a user is allowed to talk to the bot.
func (p *PolicyService) IsAllowed(userID int64) bool {
	// If the allowed users list is empty, all users are allowed
	if len(p.AllowedUserIDs) == 0 {
		return true
	}

	// Admins are always allowed
	if p.IsAdmin(userID) {
		return true
	}

	return p.AllowedUserIDs[userID]
}
