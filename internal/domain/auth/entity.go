package auth

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// User is one entry of the static dashboard login table.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
}

type Permission string

const (
	PermissionReportView     Permission = "report.view"
	PermissionReportRun      Permission = "report.run"
	PermissionReportDownload Permission = "report.download"
	PermissionWorkbookUpload Permission = "workbook.upload"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionReportView,
		PermissionReportRun,
		PermissionReportDownload,
		PermissionWorkbookUpload,
	},
	RoleViewer: {
		PermissionReportView,
		PermissionReportDownload,
	},
}

func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
