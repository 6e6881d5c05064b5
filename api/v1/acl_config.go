package v1

import (
	"github.com/epustaka/epustaka/util"
)

var authenticationAllowlist = map[string]bool{
	"/api/v1/signup": true,
	"/api/v1/signin": true,
}

// isUnauthorizeAllowed returns whether the path is exempted from authentication.
func isUnauthorizeAllowed(fullMethodName string) bool {
	return authenticationAllowlist[fullMethodName]
}

// isOnlyForAdminAllowedPath returns true if the path is allowed to be called only by admin.
func isOnlyForAdminAllowedPath(methodName string) bool {
	return util.HasPrefixes(methodName, "/api/v1/user", "/api/v1/users", "/api/v1/settings/general")
}
