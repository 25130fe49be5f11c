// Package boot starts an application around an autowire container.
//
// An App runs a chain of booters. Each booter may do work, call next to run
// the rest of the chain, and do more work once next returns:
//
//	app := boot.New(autowire.WithRegistry(reg))
//	app.Use(
//	    boot.Eager("service"),
//	    boot.Logger(boot.LogConfig{Level: "debug"}),
//	    boot.Config(boot.ConfigOptions{File: "config.yml", EnvFile: ".env", EnvPrefix: "APP"}),
//	    boot.Components(),
//	)
//	if err := app.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
package boot
