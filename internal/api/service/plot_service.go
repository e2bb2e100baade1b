package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dbchat"
	"dbchat/internal/apperr"
	"dbchat/internal/dao"
	"dbchat/pkg"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	plotImageExtension = ".png"
	plotsURLPath       = "/static/images"
)

// PlotService runs model-generated Python scripts and collects the produced
// image files.
type PlotService struct {
	config dbchat.AppConfig
	logger zerolog.Logger
}

func NewPlotService() *PlotService {
	cfg := dbchat.GetConfig()

	pkg.AssertNoError(os.MkdirAll(cfg.PlotConfig.StaticRoot, 0o755))
	pkg.AssertNoError(os.MkdirAll(cfg.PlotConfig.WorkingDirectory, 0o755))

	return &PlotService{
		config: cfg,
		logger: dbchat.Logger,
	}
}

// PlotDirectory returns the directory the model is told to save charts into.
// Always absolute: the interpreter runs from the working directory, so a
// relative static root in the prompt would resolve underneath it instead of
// the directory the server actually serves.
func (slf *PlotService) PlotDirectory() string {
	abs, err := filepath.Abs(slf.config.PlotConfig.StaticRoot)
	if err != nil {
		return slf.config.PlotConfig.StaticRoot
	}
	return abs
}

// GeneratePlot substitutes real credentials for the placeholders, writes the
// script and runs it through the configured interpreter. The script gets a
// single attempt; failures carry the captured output verbatim. Each run gets
// its own script file because concurrent chats share the working directory.
func (slf *PlotService) GeneratePlot(ctx context.Context, scriptContent string, conn dao.ConnConfig, fileName string) error {
	script := slf.replaceCredentialsInScript(scriptContent, conn, fileName)

	scriptFile, err := os.CreateTemp(slf.config.PlotConfig.WorkingDirectory, "plot-*.py")
	if err != nil {
		return &apperr.PlotScriptExecutionError{Message: fmt.Sprintf("cannot write plot script: %v", err)}
	}
	scriptPath := scriptFile.Name()
	defer os.Remove(scriptPath)

	if _, err := scriptFile.Write([]byte(script)); err != nil {
		scriptFile.Close()
		return &apperr.PlotScriptExecutionError{Message: fmt.Sprintf("cannot write plot script: %v", err)}
	}
	if err := scriptFile.Close(); err != nil {
		return &apperr.PlotScriptExecutionError{Message: fmt.Sprintf("cannot write plot script: %v", err)}
	}

	timeout := time.Duration(slf.config.PlotConfig.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, slf.config.PlotConfig.Interpreter, scriptPath)
	cmd.Dir = slf.config.PlotConfig.WorkingDirectory

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = strings.TrimSpace(stdout.String())
		}
		slf.logger.Error().Err(err).Str("output", output).Msg("Plot script execution failed")
		return &apperr.PlotScriptExecutionError{
			Message: fmt.Sprintf("plot script failed: %v", err),
			Output:  output,
		}
	}
	return nil
}

// CreateFileName keys the image by chat and message so a chat's plots can be
// removed by prefix.
func CreateFileName(chatID, messageID uuid.UUID) string {
	return chatID.String() + "--" + messageID.String() + plotImageExtension
}

func CreateFileURL(fileName string) string {
	return plotsURLPath + "/" + fileName
}

// DeletePlots removes all images whose name starts with prefix.
func (slf *PlotService) DeletePlots(prefix string) {
	entries, err := os.ReadDir(slf.config.PlotConfig.StaticRoot)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to list plot directory")
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			if err := os.Remove(filepath.Join(slf.config.PlotConfig.StaticRoot, entry.Name())); err != nil {
				slf.logger.Error().Err(err).Str("file", entry.Name()).Msg("Delete plot failed")
			}
		}
	}
}

func (slf *PlotService) replaceCredentialsInScript(scriptContent string, conn dao.ConnConfig, fileName string) string {
	scriptContent = strings.ReplaceAll(scriptContent, UserPlaceholder, conn.Username)
	scriptContent = strings.ReplaceAll(scriptContent, DatabasePlaceholder, conn.Database)
	scriptContent = strings.ReplaceAll(scriptContent, PlotFilePlaceholder, fileName)
	scriptContent = strings.ReplaceAll(scriptContent, PasswordPlaceholder, conn.Password)
	scriptContent = strings.ReplaceAll(scriptContent, HostPlaceholder, conn.Host)
	return strings.ReplaceAll(scriptContent, PortPlaceholder, strconv.Itoa(conn.Port))
}
