// Package config loads, normalizes, and validates gendonk configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY and GENDONK_SYSTEM_PROMPT. A .env file in the working
// directory is loaded before the environment is consulted, so operators can
// keep credentials next to their spreadsheets.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
