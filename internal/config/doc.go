// Package config loads recipebox configuration.
//
// Configuration is layered, later layers winning:
//
//  1. Built-in defaults (New)
//  2. The project file, recipebox.json or recipebox.yaml
//  3. A .env file next to the project file, loaded into the process
//     environment without overriding variables that are already set
//  4. Environment variables (RECIPEBOX_*, MONGODB_URI)
//
// A missing project file is not an error; every setting has a default.
// Durations are written as Go duration strings ("3s", "150ms") and are
// parsed by Validate, which must be called before the typed accessors.
//
// Example recipebox.json:
//
//	{
//	    "server": {"host": "0.0.0.0", "port": 8080},
//	    "backend": {"url": "http://web:5000", "timeout": "10s"},
//	    "notifications": {"display": "3s", "fade": "150ms", "flash": "5s"},
//	    "database": {"uri": "mongodb://mongodb:27017", "name": "recipe_platform"},
//	    "log": {"level": "info", "format": "json"}
//	}
package config
