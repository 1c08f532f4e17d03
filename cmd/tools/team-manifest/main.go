// cmd/tools/team-manifest/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"survey-analyst/pkg/registry"
)

const defaultPath = "configs/team-manifest.json"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		help(out)
		return errors.New("missing command")
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		path := fs.String("path", defaultPath, "Path to manifest file")
		force := fs.Bool("force", false, "Overwrite an existing manifest")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := initManifest(*path, *force); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote default team manifest to %s\n", *path)

	case "update":
		fs := flag.NewFlagSet("update", flag.ContinueOnError)
		path := fs.String("path", defaultPath, "Path to manifest file")
		id := fs.String("id", "", "Member ID to update (or \"team\" for the team itself)")
		field := fs.String("field", "", "Field to update (name, description, instructions, timeout, retries, taskType, tools)")
		value := fs.String("value", "", "New value for the field")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" || *field == "" {
			fs.Usage()
			return errors.New("id and field are required for update")
		}
		if err := updateManifest(*path, *id, *field, *value); err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated %s, field %s to %q\n", *id, *field, *value)

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", defaultPath, "Path to manifest file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		m, err := registry.LoadManifest(*path)
		if err != nil {
			return fmt.Errorf("manifest validation failed: %w", err)
		}
		fmt.Fprintf(out, "Manifest validation passed. Found %d members.\n", len(m.Members))

	case "help":
		help(out)

	default:
		help(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func initManifest(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	return registry.SaveManifest(registry.Default(), path)
}

func updateManifest(path, id, field, value string) error {
	m, err := registry.LoadManifest(path)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	if id == "team" {
		switch field {
		case "name":
			m.Team.Name = value
		case "description":
			m.Team.Description = value
		case "instructions":
			m.Team.Instructions = value
		default:
			return fmt.Errorf("unknown team field: %s", field)
		}
	} else {
		member := m.MemberByID(id)
		if member == nil {
			return fmt.Errorf("member with ID %s not found", id)
		}
		switch field {
		case "name":
			member.Name = value
		case "description":
			member.Description = value
		case "instructions":
			member.Instructions = value
		case "taskType":
			member.TaskType = value
		case "timeout":
			member.Timeout = value
		case "tools":
			member.Tools = splitList(value)
		case "retries":
			retries, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid retries value: %w", err)
			}
			member.Retries = retries
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
	}

	if err := m.Validate(); err != nil {
		return err
	}
	return registry.SaveManifest(m, path)
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: team-manifest <command> [flags]

Commands:
  init      Write the built-in team manifest to a file
  update    Update a field of the team or one of its members
  validate  Validate a manifest file
  help      Show this help message

Examples:
  team-manifest init -path configs/team-manifest.json
  team-manifest update -id nl2sql-agent -field retries -value 3
  team-manifest update -id team -field name -value "Survey Analyst"
  team-manifest validate -path configs/team-manifest.json

Use 'team-manifest <command> -h' for more information about a command.`)
}
