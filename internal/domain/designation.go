package domain

import "strings"

// Known designation tags.
const (
	DesignationFrontend  = "frontend"
	DesignationBackend   = "backend"
	DesignationFullstack = "fullstack"
	DesignationTester    = "tester"
)

// Display labels that do not come from a designation tag.
const (
	LabelSuperAdmin  = "Super Admin"
	LabelAdmin       = "Admin"
	LabelNotAssigned = "Not Assigned"
)

var designationLabels = map[string]string{
	DesignationFrontend:  "Frontend Developer",
	DesignationBackend:   "Backend Developer",
	DesignationFullstack: "Full Stack Developer",
	DesignationTester:    "Tester",
}

// ResolveDesignation computes the display designation. Role wins over the stored
// tag; known tags map to their label and unknown tags pass through verbatim.
func ResolveDesignation(role Role, designation string) string {
	switch role {
	case RoleSuperAdmin:
		return LabelSuperAdmin
	case RoleAdmin:
		return LabelAdmin
	}
	tag := strings.TrimSpace(designation)
	if tag == "" {
		return LabelNotAssigned
	}
	if label, ok := designationLabels[strings.ToLower(tag)]; ok {
		return label
	}
	return tag
}
