// Package config provides the configuration system for stormrepl.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (applied by the CLI)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← STORMREPL_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← --config (TOML or YAML)
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Each source is read into a plain map by the loader sub-package, the maps
// are merged with loader.DeepMerge and the result is decoded into a typed
// Config and validated.
//
// # Basic Usage
//
//	cfg, err := config.Load(config.LoadOptions{Path: "stormrepl.toml"})
//	if err != nil {
//		return err
//	}
//	fmt.Println(cfg.Inspect.Depth)
//
// # Settings
//
//	[inspect]
//	depth = 3          # nesting levels shown before [Object]/[Array]
//	unlimited = false  # ignore depth entirely
//	colors = "auto"    # auto | always | never
//
//	[repl]
//	evaluate = true
//	showListing = false
//	timeout = "5s"
//	capabilities = ["clock"]
//
//	[watch]
//	debounce = "500ms"
//
//	[logging]
//	level = "warn"     # debug | info | warn | error
//	format = "console" # console | json
package config
