package env

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// Prefix namespaces the variables rigsim reads, e.g. RIGSIM_SCENARIO.
const Prefix = "RIGSIM_"

// Load reads KEY=VALUE lines from path (e.g. ".env") and sets each variable that is not already
// set, so the real environment wins over the file. Empty lines and lines starting with # are
// skipped. A missing file is not an error.
func Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		_ = os.Setenv(key, value)
	}
	return scanner.Err()
}

func parseLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", false
	}
	line = strings.TrimPrefix(line, "export ")
	key, value, found := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", false
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && (value[0] == '"' && value[len(value)-1] == '"' || value[0] == '\'' && value[len(value)-1] == '\'') {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}

// String returns Prefix+name from the environment, or def when unset.
func String(name, def string) string {
	if v, ok := os.LookupEnv(Prefix + name); ok {
		return v
	}
	return def
}

// Bool returns Prefix+name parsed as a bool, or def when unset or unparsable.
func Bool(name string, def bool) bool {
	b, err := strconv.ParseBool(String(name, ""))
	if err != nil {
		return def
	}
	return b
}

// Int returns Prefix+name parsed as an int, or def when unset or unparsable.
func Int(name string, def int) int {
	n, err := strconv.Atoi(String(name, ""))
	if err != nil {
		return def
	}
	return n
}
