package config

// Storage keys. Each holds one JSON-encoded value.
const (
	StorageKeyToken       = "todo-app-token"
	StorageKeyUser        = "todo-app-user"
	StorageKeyTheme       = "todo-app-theme"
	StorageKeyPreferences = "todo-app-preferences"
)

// Theme preference values.
const (
	ThemeLight   = "light"
	ThemeDark    = "dark"
	DefaultTheme = ThemeLight
)

// Messages shown to the user after a failed operation.
const (
	MsgNetwork      = "Network error. Please check your connection."
	MsgUnauthorized = "Your session has expired. Please login again."
	MsgForbidden    = "You do not have permission to perform this action."
	MsgNotFound     = "The requested resource was not found."
	MsgValidation   = "Please check your input and try again."
	MsgServer       = "Server error. Please try again later."
	MsgUnknown      = "An unexpected error occurred. Please try again."
	MsgAutoLogout   = "You were logged out due to inactivity."
	MsgLoginFailed  = "Login failed. Please check your email and password."
	MsgLoginFirst   = "Please login first."
)

// Messages shown after a successful operation.
const (
	MsgLoggedIn        = "Successfully logged in!"
	MsgRegistered      = "Account created successfully!"
	MsgLoggedOut       = "Successfully logged out!"
	MsgProfileUpdated  = "Profile updated successfully!"
	MsgListCreated     = "List created successfully!"
	MsgListUpdated     = "List updated successfully!"
	MsgListDeleted     = "List deleted successfully!"
	MsgTaskCreated     = "Task created successfully!"
	MsgTaskUpdated     = "Task updated successfully!"
	MsgTaskDeleted     = "Task deleted successfully!"
	MsgTaskCompleted   = "Task marked as completed!"
	MsgTaskIncompleted = "Task marked as incomplete!"
)

// PasswordRules mirrors the backend's password policy.
type PasswordRules struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumbers   bool
	RequireSpecial   bool
	SpecialChars     string
}

// Password is the policy enforced before register requests.
var Password = PasswordRules{
	MinLength:        10,
	RequireUppercase: true,
	RequireLowercase: true,
	RequireNumbers:   true,
	RequireSpecial:   true,
	SpecialChars:     "!@#$%^&*()_+-=[]{}|;:,.<>?",
}

// Length limits for list and task fields, in characters.
const (
	TaskTitleMaxLength       = 200
	TaskDescriptionMaxLength = 1000
	ListNameMaxLength        = 100
	ListDescriptionMaxLength = 500
)

// Page sizes for list queries.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	RecentListsLimit = 6
)
