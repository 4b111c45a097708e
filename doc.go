// File: bootstrap/doc.go

// Package bootstrap composes remotely-managed configuration namespaces into
// a host application's property resolution order during startup, before the
// rest of the application (including its logging backend) exists.
//
// Features:
//   - Ordered composition of per-namespace property sources with
//     first-added-wins precedence inside the composite
//   - Idempotent installation: one named composite per resolution order,
//     safe across concurrent trigger points
//   - Placement control: front of the resolution order, or directly after
//     the system environment so OS values keep winning
//   - Optional cached key enumeration across the composite
//   - Deferred logging: records emitted before the logging backend exists
//     are buffered and replayed in order once it does
//   - File-backed namespace providers (TOML/YAML/JSON) with fsnotify-driven
//     reload
//   - Typed lookups and mapstructure-based struct decoding over the merged
//     resolution order
//
// Quick Start:
//
//	registry := bootstrap.NewRegistry(bootstrap.FileProviderFactory("/var/cache/config"))
//	env := bootstrap.NewEnvironment(bootstrap.SystemEnvironmentSource())
//	env.AddLast(bootstrap.NewMapSource("applicationConfig", map[string]string{
//	    "bootstrap.enabled":    "true",
//	    "bootstrap.namespaces": "payments,application",
//	}))
//
//	init := bootstrap.NewInitializer(registry)
//	init.PostProcessEnvironment(env) // eager path, before logging exists
//	init.InitializeContext(env)      // normal path, no-op if already done
//
//	dsn := env.GetString("database.dsn", "")
//
// Precedence:
//
// Within the installed composite the namespace listed first wins. The
// composite itself sits either at the very front of the resolution order or
// directly after the system environment chain, controlled by the
// config.override-system-properties flag.
//
// Thread Safety:
// The resolution order, the process-global properties store, and the
// deferred log sink are each guarded by their own mutex; installation is an
// atomic check-and-insert.
package bootstrap
