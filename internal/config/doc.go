// Package config provides configuration parsing for Metamon projects.
//
// The configuration is stored in metamon.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-app",
//	  "paths": {
//	    "pages": "pages",
//	    "output": "dist"
//	  },
//	  "manifest": {
//	    "path": "routes.json"
//	  },
//	  "dev": {
//	    "port": 3000,
//	    "host": "localhost",
//	    "openBrowser": true,
//	    "watch": ["pages"],
//	    "hotReload": true
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Pages:", cfg.PagesPath())
package config
