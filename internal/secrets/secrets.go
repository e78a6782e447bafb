// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files and
// from an optional dotenv file. In the directory each file is one secret: the
// filename is the key name and the trimmed file contents are the value.
//
// Supported keys: github-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// GitHubToken is the key for the optional GitHub access token.
const GitHubToken = "github-token"

// envNames maps secret keys to the environment variables that may carry them.
var envNames = map[string]string{
	GitHubToken: "GITHUB_TOKEN",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotenv reads KEY=VALUE pairs from a dotenv file without touching the
// process environment. Known variables (GITHUB_TOKEN) are returned under
// their secret key. A missing file yields an empty map.
func LoadDotenv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading dotenv file %s: %w", path, err)
	}

	out := make(map[string]string)
	for key, env := range envNames {
		if v := strings.TrimSpace(vars[env]); v != "" {
			out[key] = v
		}
	}
	return out, nil
}

// Resolve returns the value for key from, in order: the secrets directory,
// the process environment, then the dotenv file. Missing sources are skipped.
func Resolve(dir, dotenvPath, key string) (string, error) {
	fromDir, err := Load(dir)
	if err != nil {
		return "", err
	}
	if v, ok := fromDir[key]; ok {
		return v, nil
	}
	if env, ok := envNames[key]; ok {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}
	fromDotenv, err := LoadDotenv(dotenvPath)
	if err != nil {
		return "", err
	}
	return fromDotenv[key], nil
}
