// Package config loads settings once at startup: defaults, then config.yaml,
// then .env, then TASKS_* environment variables, validated into a Config.
package config
