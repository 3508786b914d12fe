package service

import "errors"

var (
	// ErrNotFound covers both missing records and records owned by someone
	// else; callers never learn which.
	ErrNotFound = errors.New("not found")

	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrPasswordTooShort   = errors.New("password must be at least 5 characters")
	ErrPasswordTooLong    = errors.New("password exceeds maximum length of 72 bytes")
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")

	ErrNameRequired  = errors.New("name may not be blank")
	ErrNameTaken     = errors.New("an entry with this name already exists")
	ErrTitleRequired = errors.New("title may not be blank")

	ErrUnsupportedImage   = errors.New("image must be a JPEG or PNG file")
	ErrStorageUnavailable = errors.New("image storage is not configured")
)

// IsValidation reports whether err is caused by bad client input.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmailTaken,
		ErrPasswordTooShort,
		ErrPasswordTooLong,
		ErrInvalidCredentials,
		ErrNameRequired,
		ErrNameTaken,
		ErrTitleRequired,
		ErrUnsupportedImage,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
