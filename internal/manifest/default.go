package manifest

// Built-in script names available without a manifest file.
const (
	ScriptStart    = "start"
	ScriptShutdown = "shutdown"
	ScriptTests    = "tests"
	ScriptApp      = "app"
)

// Default returns the built-in registry: a dockerised database plus sqlx
// migrations bracketing the build tool's test and run payloads.
func Default() *Registry {
	reg, err := NewRegistry(defaultScripts())
	if err != nil {
		// defaultScripts is static and has unique names.
		panic(err)
	}
	return reg
}

func defaultScripts() []Script {
	return []Script{
		{
			Name: ScriptStart,
			Steps: []Step{
				{Name: "stack up", Run: "docker compose up -d"},
				{Name: "migrate apply", Run: "sqlx migrate run"},
			},
		},
		{
			Name: ScriptShutdown,
			Steps: []Step{
				{Name: "migrate revert", Run: "sqlx migrate revert"},
				{Name: "stack down", Run: "docker compose down"},
			},
		},
		{
			Name: ScriptTests,
			Steps: []Step{
				{Script: ScriptStart},
				{Name: "test suite", Run: "cargo test"},
				{Script: ScriptShutdown},
			},
		},
		{
			Name: ScriptApp,
			Steps: []Step{
				{Script: ScriptStart},
				{Name: "run app", Run: "cargo run"},
				{Script: ScriptShutdown},
			},
		},
	}
}
