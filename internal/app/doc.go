// Package app provides the application context for nginx-route.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    Config  *config.Config     // Loaded configuration
//	    Paths   *config.Paths      // Local file locations
//	    FS      system.FileSystem  // Local filesystem
//	    Connect Connector          // Opens the remote store
//	}
//
// # Creating an App
//
// Use New with functional options:
//
//	// Production usage
//	a := app.New(app.WithConfig(cfg))
//
//	// Testing with custom dependencies
//	a := app.New(
//	    app.WithConfig(testConfig),
//	    app.WithFS(mockFS),
//	    app.WithConnector(fakeConnect),
//	)
//
// # Available Options
//
//	WithConfig(cfg)         // Configuration
//	WithPaths(paths)        // Custom path configuration
//	WithFS(fs)              // Custom filesystem
//	WithConnector(connect)  // Custom remote connection
package app
