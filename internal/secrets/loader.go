// Package secrets resolves credentials for the generation backends.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/spigell/profilematch/internal/apperrors"
)

// Source describes where a credential may come from.
type Source struct {
	// Name is the configuration key reported when the credential is missing.
	Name string
	// Value is an inline credential from configuration, flags or the environment.
	Value string
	// File points to a file holding the credential. It wins over Value.
	File string
}

// Load resolves the credential described by src. The result is trimmed. A missing, empty or
// unreadable credential is an *apperrors.ConfigurationError.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", &apperrors.ConfigurationError{
				Field:   name,
				Message: fmt.Sprintf("reading file %q", file),
				Err:     err,
			}
		}

		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", &apperrors.ConfigurationError{Field: name, Message: fmt.Sprintf("file %q is empty", file)}
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", &apperrors.ConfigurationError{Field: name, Message: "is not configured"}
	}

	return secret, nil
}
