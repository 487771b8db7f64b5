// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic      SecurityLevel = iota // No authentication
	SecurityAdminSecret                      // Admin action secret required in payload
)

// MessageSecurityConfig maps gateway message types to their required security level
var MessageSecurityConfig = map[string]SecurityLevel{
	// Gate and weighment workflow - Public
	"REGISTER_GATE_ENTRY":   SecurityPublic,
	"AUTHORIZE_ENTRY":       SecurityPublic,
	"AUTHORIZE_EXIT":        SecurityPublic,
	"CONFIRM_VEHICLE_ON_WB": SecurityPublic,
	"CAPTURE_FIRST_WEIGHT":  SecurityPublic,
	"CAPTURE_SECOND_WEIGHT": SecurityPublic,
	"UPDATE_PRINT_DETAILS":  SecurityPublic,

	// Listing and search - Public
	"GET_COMPLETED_FOR_DATE": SecurityPublic,
	"SEARCH_BY_SERIAL":       SecurityPublic,
	// The operator pages send no secret with bulk deletion
	"DELETE_ALL_COMPLETED": SecurityPublic,

	// Admin - Secret Protected
	"ADMIN_ACTION": SecurityAdminSecret,
}

// GetSecurityLevel returns the security level for a message type.
// Unknown message types are treated as public; the gateway rejects them anyway.
func GetSecurityLevel(messageType string) SecurityLevel {
	if level, ok := MessageSecurityConfig[messageType]; ok {
		return level
	}
	return SecurityPublic
}
