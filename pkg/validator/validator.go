package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/dkovacs/whisper/internal/domain"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const maxBodyLen = 10000

func ValidateRegister(email, username, displayName, password string) ValidationErrors {
	errs := make(ValidationErrors)

	// Email
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	// Username
	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters")
	} else if len(username) > 50 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _ and -")
	}

	// Display name
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		errs.Add("displayName", "Display name is required")
	} else if len(displayName) < 2 {
		errs.Add("displayName", "Display name must be at least 2 characters")
	} else if len(displayName) > 100 {
		errs.Add("displayName", "Display name is too long")
	}

	// Password
	validatePassword(password, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateSendMessage checks the durable send path; the sender comes
// from the access token. A message may carry an empty body when it has a
// media attachment. An empty kind is allowed and defaults later.
func ValidateSendMessage(receiverID uuid.UUID, body, kind string, hasMedia bool) ValidationErrors {
	errs := make(ValidationErrors)

	if receiverID == uuid.Nil {
		errs.Add("receiverId", "Receiver ID is required")
	}
	if strings.TrimSpace(body) == "" && !hasMedia {
		errs.Add("message", "Message body or attachment is required")
	}
	if len(body) > maxBodyLen {
		errs.Add("message", "Message is too long")
	}
	if kind != "" && !domain.ValidKind(kind) {
		errs.Add("kind", "Unknown message kind")
	}

	return errs
}

// ValidateUpdateProfile checks a profile update. Both fields are
// optional, but the request must change something.
func ValidateUpdateProfile(displayName string, hasAvatar bool) ValidationErrors {
	errs := make(ValidationErrors)

	displayName = strings.TrimSpace(displayName)
	if displayName == "" && !hasAvatar {
		errs.Add("displayName", "Nothing to update")
		return errs
	}
	if displayName != "" {
		if len(displayName) < 2 {
			errs.Add("displayName", "Display name must be at least 2 characters")
		} else if len(displayName) > 100 {
			errs.Add("displayName", "Display name is too long")
		}
	}

	return errs
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
