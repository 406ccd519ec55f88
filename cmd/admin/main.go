package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gridironhq/site-content/pkg/sitecontent"
	"github.com/gridironhq/site-content/pkg/sitecontent/config"
)

const usage = `Site Content Admin CLI

Inspect and edit stored content directly, without going through the HTTP
admin surface. Uses the same storage configuration as the server.

USAGE:
  admin <command> [options]

COMMANDS:
  get        Print a section's canonical document
  put        Replace a section's document from a JSON file (or stdin)
  manifest   Print a section's manifest
  touch      Touch a section's manifest without writing content
  backup     Print a tracker section's backup and meta
  restore    Restore a tracker section's backup onto the canonical key
  season     Print the computed current season

ENVIRONMENT VARIABLES:
  STORAGE_TYPE       memory | fs | s3 (default: fs for this CLI)
  STORAGE_DIR        Base directory for fs storage (default: ./data/storage)
  AWS_S3_BUCKET etc. S3 settings, as for the server

  Configuration can be loaded from a .env file in the current directory.

EXAMPLES:
  admin get --section=redraft --season=2025
  admin put --section=redraft --season=2025 --file=leagues.json
  admin manifest --section=biggame-wagers --season=2025
  admin restore --section=biggame-wagers --season=2025

OPTIONS:
  --section=<slug>   Section slug (required except for season)
  --season=<year>    Season year (optional)
  --file=<path>      JSON payload for put (default: stdin)
  --editor=<email>   Recorded as the audit editor for put
`

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "--help" || command == "-h" {
		fmt.Println(usage)
		os.Exit(0)
	}

	opts := parseOptions(os.Args[2:])

	if command == "season" {
		fmt.Println(sitecontent.CurrentSeason(time.Now()))
		return
	}

	if opts.section == "" {
		log.Fatalf("--section is required for %s", command)
	}

	svc, err := createService()
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}

	ctx := context.Background()

	switch command {
	case "get":
		doc, err := svc.GetDocument(ctx, opts.section, opts.season)
		if err != nil {
			log.Fatalf("Failed to get document: %v", err)
		}
		printJSON(doc)

	case "put":
		payload, err := readPayload(opts.file)
		if err != nil {
			log.Fatalf("Failed to read payload: %v", err)
		}
		result, err := svc.WriteDocument(ctx, sitecontent.WriteDocumentRequest{
			Section: opts.section,
			Season:  opts.season,
			Payload: payload,
			Editor:  opts.editor,
		})
		if err != nil {
			log.Fatalf("Failed to write document: %v", err)
		}
		printJSON(result)

	case "manifest":
		printJSON(svc.ReadManifest(ctx, opts.section, opts.season))

	case "touch":
		if err := svc.TouchManifest(ctx, opts.section, opts.season); err != nil {
			log.Fatalf("Failed to touch manifest: %v", err)
		}
		printJSON(svc.ReadManifest(ctx, opts.section, opts.season))

	case "backup":
		doc, meta, err := svc.GetBackup(ctx, opts.section, opts.season)
		if err != nil {
			log.Fatalf("Failed to get backup: %v", err)
		}
		printJSON(map[string]any{"document": doc, "meta": meta})

	case "restore":
		result, err := svc.RestoreBackup(ctx, opts.section, opts.season)
		if err != nil {
			log.Fatalf("Failed to restore backup: %v", err)
		}
		printJSON(result)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func createService() (sitecontent.Service, error) {
	cfg := config.ServerConfig{
		StorageType: getEnv("STORAGE_TYPE", "fs"),
		StorageDir:  getEnv("STORAGE_DIR", "./data/storage"),

		S3Region:          getEnv("AWS_S3_REGION", "us-east-1"),
		S3Bucket:          os.Getenv("AWS_S3_BUCKET"),
		S3AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Endpoint:        os.Getenv("AWS_S3_ENDPOINT"),
		S3UsePathStyle:    os.Getenv("AWS_S3_USE_PATH_STYLE") == "true",

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBSchema:    getEnv("DB_SCHEMA", "content"),
	}
	return cfg.BuildService()
}

type options struct {
	section string
	season  *int
	file    string
	editor  string
}

func parseOptions(args []string) options {
	var opts options
	for _, arg := range args {
		key, value := parseFlag(arg)
		switch key {
		case "section":
			opts.section = value
		case "season":
			if n, err := strconv.Atoi(value); err == nil {
				opts.season = &n
			}
		case "file":
			opts.file = value
		case "editor":
			opts.editor = value
		}
	}
	return opts
}

func parseFlag(arg string) (string, string) {
	if !strings.HasPrefix(arg, "--") {
		return "", ""
	}
	arg = arg[2:]
	if i := strings.IndexByte(arg, '='); i >= 0 {
		return arg[:i], arg[i+1:]
	}
	return arg, "true"
}

func readPayload(file string) (any, error) {
	var data []byte
	var err error
	if file == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	return payload, nil
}

func printJSON(v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
