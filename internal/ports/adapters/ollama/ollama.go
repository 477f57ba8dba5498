package ollama

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/forPelevin/narrashort/internal/domain/script"
	"github.com/forPelevin/narrashort/internal/types"
)

const defaultModel = "ilsp/meltemi-instruct-v1.5"

// Adapter generates the monologue with a local `ollama run` invocation.
type Adapter struct {
	bin   string
	model string
}

func New(binPath, model string) *Adapter {
	if binPath == "" {
		binPath = "ollama"
	}
	if model == "" {
		model = defaultModel
	}
	return &Adapter{bin: binPath, model: model}
}

func (a *Adapter) Write(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, a.bin, "run", a.model, prompt)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", types.ExternalFailure("ollama run "+a.model, stderr.Bytes(), err)
	}
	text := script.Clean(string(out))
	if text == "" {
		return "", types.ExternalFailure("ollama run "+a.model, stderr.Bytes(), errors.New("empty response"))
	}
	return text, nil
}
