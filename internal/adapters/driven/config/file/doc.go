// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the Stryda home directory
// (~/.stryda, or $STRYDA_HOME when set).
//
// Adapters:
//   - ConfigStore: TOML settings in config.toml
//   - RuleStore: YAML authority and context rule tables in rules/
package file
