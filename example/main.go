// FILE: bootstrap/example/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bootstrap"
)

// ServerConfig shows typed decoding over the merged resolution order.
type ServerConfig struct {
	Host    string        `toml:"host"`
	Port    int64         `toml:"port"`
	Timeout time.Duration `toml:"timeout"`
}

func main() {
	log.Println("---")
	log.Println("PART 1: writing namespace cache files...")

	dir, err := os.MkdirTemp("", "bootstrap-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	writeFile(dir, "application.toml", `
[server]
host = "localhost"
port = 8080
timeout = "30s"

[database]
dsn = "postgres://localhost/app"
`)
	writeFile(dir, "payments.toml", `
[server]
port = 9090
`)

	log.Println("---")
	log.Println("PART 2: preparing host environment...")

	// Local configuration the host would normally load itself.
	local := bootstrap.NewMapSource("applicationConfig", map[string]string{
		"bootstrap.enabled":            "true",
		"bootstrap.eager-load.enabled": "true",
		"bootstrap.namespaces":         "payments,application",
		"app.id":                       "100004458",
	})
	env := bootstrap.NewEnvironment(bootstrap.SystemEnvironmentSource())
	env.AddLast(local)

	registry := bootstrap.NewRegistry(bootstrap.FileProviderFactory(dir))
	initializer := bootstrap.NewInitializer(registry)

	log.Println("---")
	log.Println("PART 3: eager bootstrap (before logging exists)...")
	initializer.PostProcessEnvironment(env)

	log.Println("---")
	log.Println("PART 4: normal initialization (idempotent, replays logs)...")
	initializer.InitializeContext(env)
	initializer.Deferred().DrainTo(slog.NewTextHandler(os.Stderr, nil))

	log.Printf("resolution order: %v", env.Names())

	// payments is listed first, so its server.port wins inside the
	// composite.
	port := env.GetInt64("server.port", 0)
	log.Printf("server.port = %d (payments overrides application)", port)

	var server ServerConfig
	if err := env.Scan("server", &server); err != nil {
		log.Fatal(err)
	}
	log.Printf("decoded: %+v", server)

	log.Println("---")
	log.Println("PART 5: watching for cache changes...")

	watcher, err := bootstrap.NewWatcher(dir, bootstrap.DefaultWatchOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer watcher.Close()

	for _, namespace := range []string{"payments", "application"} {
		if p, ok := registry.Get(namespace).(*bootstrap.FileProvider); ok {
			watcher.Track(p)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)
	updates := watcher.Subscribe()

	writeFile(dir, "payments.toml", `
[server]
port = 7070
`)

	select {
	case namespace := <-updates:
		log.Printf("namespace %q reloaded, server.port = %d",
			namespace, env.GetInt64("server.port", 0))
	case <-time.After(5 * time.Second):
		log.Println("no reload observed")
	}
}

func writeFile(dir, name, content string) {
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s\n", name)
}
