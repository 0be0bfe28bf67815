package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

const (
	maxContentLength  = 10000
	maxAttachments    = 10
	maxTags           = 20
	maxWallNameLength = 100
)

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
		errs.Add("display_name", "Display name is required")
	} else if len(displayName) < 2 {
		errs.Add("display_name", "Display name must be at least 2 characters")
	} else if len(displayName) > 100 {
		errs.Add("display_name", "Display name is too long")
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

func ValidateWall(name, category string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Wall name is required")
	} else if len(name) < 2 {
		errs.Add("name", "Wall name must be at least 2 characters")
	} else if len(name) > maxWallNameLength {
		errs.Add("name", "Wall name is too long")
	}

	if len(category) > 50 {
		errs.Add("category", "Category is too long")
	}

	return errs
}

// ValidateWallSettings checks the values a client is allowed to tune.
func ValidateWallSettings(maxMembers int, postPerms, commentPerms string) ValidationErrors {
	errs := make(ValidationErrors)

	if maxMembers < 1 || maxMembers > 10000 {
		errs.Add("settings.max_members", "Member limit must be between 1 and 10000")
	}
	if postPerms != "members" && postPerms != "admins" {
		errs.Add("settings.post_permissions", "Post permissions must be members or admins")
	}
	if commentPerms != "members" && commentPerms != "admins" {
		errs.Add("settings.comment_permissions", "Comment permissions must be members or admins")
	}

	return errs
}

// ValidateMessage checks a post or comment draft. Empty content is fine as
// long as the draft carries attachments; the service enforces that rule.
func ValidateMessage(content string, attachmentCount, tagCount int) ValidationErrors {
	errs := make(ValidationErrors)

	if len(content) > maxContentLength {
		errs.Add("content", fmt.Sprintf("Content must be at most %d characters", maxContentLength))
	}
	if attachmentCount > maxAttachments {
		errs.Add("attachments", fmt.Sprintf("At most %d attachments per message", maxAttachments))
	}
	if tagCount > maxTags {
		errs.Add("tags", fmt.Sprintf("At most %d tags per message", maxTags))
	}

	return errs
}

// ValidateAttachment checks a single attachment entry.
func ValidateAttachment(kind, rawURL string) ValidationErrors {
	errs := make(ValidationErrors)

	if kind != "image" && kind != "video" {
		errs.Add("kind", "Attachment kind must be image or video")
	}
	if strings.TrimSpace(rawURL) == "" {
		errs.Add("url", "Attachment URL is required")
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
