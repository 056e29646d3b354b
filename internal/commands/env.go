package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when present and no --env flag is given.
const DefaultEnvFile = ".env"

// LoadEnv loads provider credentials from a dotenv file. Variables already set
// in the environment win. An explicit path must exist; the default file is
// optional. Returns the path that was loaded, or "" when none was.
func LoadEnv(path string) (string, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("load env file %s: %w", path, err)
	}
	return path, nil
}
