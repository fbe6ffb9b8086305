package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/katamari-chat/katamari/internal/config"
	"github.com/katamari-chat/katamari/internal/persona"
)

var personaCmd = &cobra.Command{
	Use:   "persona [file]",
	Short: "Compile persona YAML into a system prompt",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPersona,
}

func runPersona(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var data []byte
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read persona: %w", err)
	}

	compiler := persona.NewCompiler(cfg.Persona.PatternsPath)
	prompt, issues := compiler.Compile(string(data))

	for _, issue := range issues {
		fmt.Fprintf(os.Stderr, "warning: %s\n", issue)
	}
	fmt.Println(prompt)
	return nil
}
