package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/starview-labs/starview/internal/config"
)

// generateConfigDocs generates the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "project", "compile", "server"
}

// getConfigSchema returns the configuration schema definition.
// This is based on internal/config/config.go Config.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		// Project settings
		{Name: "application", Type: "string", Default: "starview", Description: "Application name shown in logs and run history", Category: "project"},
		{Name: "environment", Type: "string", Default: config.DefaultEnv, Description: "Environment label recorded with every run", Category: "project"},
		{Name: "views_dir", Type: "string", Default: config.DefaultViewsDir, Description: "Path to view sources directory", Category: "project"},
		{Name: "libraries_dir", Type: "string", Default: config.DefaultLibrariesDir, Description: "Directory scanned for *.star reference libraries", Category: "project"},
		{Name: "state_path", Type: "string", Default: config.DefaultStateFile, Description: "Run-history database location", Category: "project"},

		// Compilation settings
		{Name: "entry_prefix", Type: "string", Default: config.DefaultEntryPrefix, Description: "Name prefix selecting the entry type among a view's exports", Category: "compile"},
		{Name: "libraries", Type: "list", Description: "Extra reference manifest entries (path, image, or project kind)", Category: "compile"},
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "CLI rendering format: table, json, or yaml", Category: "compile"},

		// Dev server settings
		{Name: "server.host", Type: "string", Default: config.DefaultServerHost, Description: "Host the dev server binds", Category: "server"},
		{Name: "server.port", Type: "int", Default: strconv.Itoa(config.DefaultServerPort), Description: "Port the dev server listens on", Category: "server"},
		{Name: "server.watch", Type: "bool", Default: "true", Description: "Recompile views as they change on disk", Category: "server"},
	}
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Configuration", "Starview configuration reference")
	w.GeneratedMarker()

	// Title and intro
	w.Header(1, "Configuration")
	w.Paragraph("Starview is configured via `starview.yaml` in your project root. Every key can also be set through a `STARVIEW_*` environment variable or a command-line flag; flags win over environment variables, which win over the file.")

	fields := getConfigSchema()
	sections := []struct {
		category string
		title    string
		intro    string
	}{
		{"project", "Project Settings", "Project identity and directory layout:"},
		{"compile", "Compilation Settings", "How views compile and how results render:"},
		{"server", "Dev Server Settings", "Defaults for `starview serve`:"},
	}

	for _, section := range sections {
		w.Header(2, section.title)
		w.Paragraph(section.intro)

		headers := []string{"Field", "Type", "Default", "Description"}
		var rows [][]string
		for _, f := range fields {
			if f.Category != section.category {
				continue
			}
			defVal := f.Default
			if defVal == "" {
				defVal = "-"
			}
			rows = append(rows, []string{
				InlineCode(f.Name),
				f.Type,
				InlineCode(defVal),
				f.Description,
			})
		}
		w.Table(headers, rows)
	}

	// Manifest entry kinds
	w.Header(2, "Library Manifest Entries")
	w.Paragraph("Entries under `libraries` add references beyond the `libraries_dir` scan. Each entry names a `kind`:")

	kindHeaders := []string{"Kind", "Fields", "Meaning"}
	kindRows := [][]string{
		{InlineCode("path"), "`path`", "Parse a Starlark source file on disk"},
		{InlineCode("image"), "`name`, `path` or `data`", "Load a prebuilt library image from a file or inline base64"},
		{InlineCode("project"), "`name`, `entry`", "Compile a project source into an in-memory image on demand"},
	}
	w.Table(kindHeaders, kindRows)

	// Example
	w.Header(2, "Example")
	w.CodeBlock("yaml", `application: storefront
environment: dev

views_dir: views
libraries_dir: libraries

entry_prefix: View_
state_path: .starview/state.db

libraries:
  - kind: project
    name: formats.star
    entry: src/formats.star

server:
  host: localhost
  port: 8765
  watch: true`)

	// Write file
	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
