package config

import "os"

// ExpandEnv expands ${VAR} and $VAR references in raw YAML bytes using
// the process environment, before the document is parsed. Missing
// variables expand to an empty string; validation is responsible for
// catching fields left empty as a result.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
