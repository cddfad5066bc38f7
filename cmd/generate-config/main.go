// Command generate-config writes an example console configuration built
// from the default tags.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/debemdeboas/the-press/internal/config"
)

var envOverrides = []string{
	config.EnvConfigPath,
	config.EnvAPIBaseURL,
	config.EnvPort,
	config.EnvDatabasePath,
	config.EnvS3Bucket,
	config.EnvS3Endpoint,
	config.EnvS3AccessKey,
	config.EnvS3SecretKey,
}

func main() {
	out := flag.String("out", "config.example.yaml", "Output file, or - for stdout")
	flag.Parse()

	data, err := render(config.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	if *out == "-" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", *out)
}

func render(cfg *config.Config) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("# The Press console configuration\n")
	b.WriteString("# Copy this file to config.yaml and edit as needed.\n")
	b.WriteString("# These environment variables override it (.env is read too):\n")
	for _, name := range envOverrides {
		b.WriteString("#   " + name + "\n")
	}
	b.WriteString("\n")
	b.Write(body)
	return []byte(b.String()), nil
}
