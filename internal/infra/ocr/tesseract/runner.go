package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	domain "github.com/bryanwahyu/nutriguard/internal/domain/ocr"
)

const (
	DefaultBinary      = "tesseract"
	DefaultLanguage    = "eng"
	DefaultDockerImage = "jitesoft/tesseract-ocr:latest"
	DefaultTimeout     = 60 * time.Second
)

// Runner shells out to the tesseract CLI, either installed locally or inside a
// throwaway docker container. The image is piped through stdin, TSV is read from stdout.
type Runner struct {
	Binary      string
	Language    string
	UseDocker   bool
	DockerImage string
	Timeout     time.Duration
}

func NewRunner(binary, language string, useDocker bool, image string, timeout time.Duration) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	if language == "" {
		language = DefaultLanguage
	}
	if image == "" {
		image = DefaultDockerImage
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{Binary: binary, Language: language, UseDocker: useDocker, DockerImage: image, Timeout: timeout}
}

// command returns the program and arguments for one recognition run.
func (r *Runner) command() (string, []string) {
	args := []string{"stdin", "stdout", "-l", r.Language, "tsv"}
	if r.UseDocker {
		return "docker", append([]string{"run", "--rm", "-i", r.DockerImage}, args...)
	}
	return r.Binary, args
}

func (r *Runner) Extract(ctx context.Context, image []byte) (domain.Extraction, error) {
	if len(image) == 0 {
		return domain.Extraction{}, fmt.Errorf("%w: empty image", domain.ErrExtractionFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	name, args := r.command()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return domain.Extraction{}, fmt.Errorf("%w: %s exit %d: %s",
				domain.ErrExtractionFailed, name, ee.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return domain.Extraction{}, fmt.Errorf("%w: run %s: %w", domain.ErrExtractionFailed, name, err)
	}
	return ParseTSV(stdout.Bytes()), nil
}
