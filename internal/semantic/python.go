package semantic

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wgomg/precis/internal/config"
	"github.com/wgomg/precis/internal/utils"
)

const scriptName = "embed_sentences.py"

// ErrNoWorkers is returned once every worker process has exited.
var ErrNoWorkers = errors.New("no python embedding workers running")

type Task struct {
	RequestID string
	Sentences []string
	Result    chan<- TaskResult
}

type TaskResult struct {
	Embeddings []Embedding
	Err        error
}

type PythonWorkerPool struct {
	logger    *utils.Logger
	script    string
	venv      string
	cfg       *config.SemanticConfig
	taskQueue chan Task
	closeOnce sync.Once
	wg        sync.WaitGroup
	started   bool
	alive     atomic.Int32
}

type PythonWorker struct {
	id      int
	process *exec.Cmd
	stdin   io.WriteCloser
	stdout  io.ReadCloser
	reader  *bufio.Reader
	mu      sync.Mutex
	pool    *PythonWorkerPool
}

type PythonRequest struct {
	Sentences []string `json:"sentences"`
}

type PythonResponse struct {
	Embeddings []Embedding          `json:"embeddings"`
	Error      string               `json:"error,omitempty"`
	DebugInfo  *PythonResponseDebug `json:"debug_info"`
}

type PythonResponseDebug struct {
	ProcessingTimeMS int `json:"processing_time_ms"`
	SentenceCount    int `json:"sentence_count"`
}

func NewPythonWorkerPool(logger *utils.Logger, cfg *config.SemanticConfig) *PythonWorkerPool {
	pythonDir := filepath.Join(cfg.Python.ConfigDir, "python")
	script := filepath.Join(pythonDir, scriptName)
	venv := filepath.Join(cfg.Python.ConfigDir, "venv")

	return &PythonWorkerPool{
		logger:    logger,
		script:    script,
		venv:      venv,
		cfg:       cfg,
		taskQueue: make(chan Task, 100),
	}
}

func (p *PythonWorkerPool) Initialize() error {
	p.logger.Info(nil, "Initializing Python embedding pool with %d workers", p.cfg.WorkerCount)

	if err := p.setupEnvironment(); err != nil {
		return fmt.Errorf("failed to setup environment: %w", err)
	}

	p.start()

	p.logger.Info(nil, "Python embedding pool initialized successfully")
	return nil
}

func (p *PythonWorkerPool) start() {
	count := max(p.cfg.WorkerCount, 1)
	p.started = true
	p.alive.Store(int32(count))
	for i := range count {
		p.wg.Add(1)
		go p.runWorker(i)
	}
}

func (p *PythonWorkerPool) ModelName() string {
	return p.cfg.Model
}

// Embed splits sentences into batches and queues them for the workers.
func (p *PythonWorkerPool) Embed(ctx context.Context, sentences []string) ([]Embedding, error) {
	if p.started && p.alive.Load() == 0 {
		return nil, ErrNoWorkers
	}

	if p.cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	reqID := ""
	if id := utils.RequestID(ctx); id != nil {
		reqID = *id
	}

	batchSize := max(p.cfg.BatchSize, 1)
	var pending []chan TaskResult
	for start := 0; start < len(sentences); start += batchSize {
		result := make(chan TaskResult, 1)
		task := Task{
			RequestID: reqID,
			Sentences: sentences[start:min(start+batchSize, len(sentences))],
			Result:    result,
		}

		select {
		case p.taskQueue <- task:
		case <-ctx.Done():
			return nil, fmt.Errorf("queueing embedding batch: %w", ctx.Err())
		}
		pending = append(pending, result)
	}

	embeddings := make([]Embedding, 0, len(sentences))
	for _, result := range pending {
		select {
		case res := <-result:
			if res.Err != nil {
				return nil, res.Err
			}
			embeddings = append(embeddings, res.Embeddings...)
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for embeddings: %w", ctx.Err())
		}
	}

	if len(embeddings) != len(sentences) {
		return nil, fmt.Errorf("got %d embeddings for %d sentences", len(embeddings), len(sentences))
	}

	return embeddings, nil
}

// runWorker serves tasks until the queue closes. A broken process is
// replaced; when the replacement fails to start the worker exits.
func (p *PythonWorkerPool) runWorker(id int) {
	defer p.wg.Done()
	defer p.alive.Add(-1)

	worker, err := p.startWorker(id)
	if err != nil {
		p.logger.Error(nil, "Failed to start worker %d: %v", id, err)
		return
	}

	for task := range p.taskQueue {
		if err := worker.processTask(task); err != nil {
			p.logger.Error(&task.RequestID, "Worker %d failed: %v", id, err)
			task.Result <- TaskResult{Err: err}
			worker.close()

			if worker, err = p.startWorker(id); err != nil {
				p.logger.Error(nil, "Failed to restart worker %d: %v", id, err)
				return
			}
			p.logger.Info(nil, "Restarted worker %d", id)
		}
	}

	worker.close()
}

func (p *PythonWorkerPool) startWorker(id int) (*PythonWorker, error) {
	python := filepath.Join(p.venv, "bin", "python")

	cmd := exec.Command(python, p.script)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		return nil, fmt.Errorf("start process: %w", err)
	}

	worker := &PythonWorker{
		id:      id,
		process: cmd,
		stdin:   stdin,
		stdout:  stdout,
		reader:  bufio.NewReader(stdout),
		pool:    p,
	}

	if err := worker.handshake(); err != nil {
		worker.close()
		return nil, err
	}

	return worker, nil
}

func (w *PythonWorker) handshake() error {
	cfg := w.pool.cfg
	configJSON, err := json.Marshal(map[string]any{
		"model_name":           cfg.Model,
		"batch_size":           cfg.BatchSize,
		"normalize_embeddings": true,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if _, err := w.stdin.Write(append(configJSON, '\n')); err != nil {
		return fmt.Errorf("send config: %w", err)
	}

	line, err := w.reader.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("failed to read READY message: %w", err)
	}

	var readyMsg struct {
		Status       string `json:"status"`
		EmbeddingDim int    `json:"embedding_dim"`
	}
	if err := json.Unmarshal(line, &readyMsg); err != nil {
		return fmt.Errorf("failed to parse ready message: %w", err)
	}

	if readyMsg.Status != "ready" {
		return fmt.Errorf("unexpected startup status: %s", readyMsg.Status)
	}

	w.pool.logger.Debug(nil, "Python worker %d ready (embedding_dim=%d)", w.id, readyMsg.EmbeddingDim)
	return nil
}

func (w *PythonWorker) processTask(task Task) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	reqJSON, err := json.Marshal(PythonRequest{Sentences: task.Sentences})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	if _, err := w.stdin.Write(append(reqJSON, '\n')); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	line, err := w.reader.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("read stdout: %w", err)
	}

	var resp PythonResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	// errors reported by the script leave the process usable
	if resp.Error != "" {
		task.Result <- TaskResult{Err: fmt.Errorf("python error: %s", resp.Error)}
		return nil
	}

	if resp.DebugInfo != nil {
		w.pool.logger.Debug(
			&task.RequestID,
			"Embedding worker %d stats: process_ms=%d, sentences=%d",
			w.id,
			resp.DebugInfo.ProcessingTimeMS,
			resp.DebugInfo.SentenceCount,
		)
	}

	task.Result <- TaskResult{Embeddings: resp.Embeddings}
	return nil
}

func (w *PythonWorker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stdin != nil {
		w.stdin.Close()
	}
	if w.process == nil || w.process.Process == nil {
		return
	}

	// the script exits once stdin is closed
	done := make(chan error, 1)
	go func() { done <- w.process.Wait() }()

	select {
	case <-done:
	case <-time.After(time.Duration(w.pool.cfg.Python.ProcessShutdownTimeout) * time.Second):
		w.pool.logger.Warn(nil, "Python worker %d did not exit in time, killing it", w.id)
		w.process.Process.Kill()
		<-done
	}
}

func (p *PythonWorkerPool) Close() error {
	p.closeOnce.Do(func() {
		close(p.taskQueue)
	})
	p.wg.Wait()
	return nil
}

func (p *PythonWorkerPool) HealthCheck(ctx context.Context) error {
	if _, err := p.Embed(ctx, []string{"health check sentence"}); err != nil {
		return fmt.Errorf("health check: worker error: %w", err)
	}
	return nil
}

func (p *PythonWorkerPool) setupEnvironment() error {
	if err := os.MkdirAll(p.cfg.Python.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := p.extractScriptIfNeeded(); err != nil {
		return fmt.Errorf("failed to extract script: %w", err)
	}

	if err := p.checkPython(); err != nil {
		return fmt.Errorf("python check failed: %w", err)
	}

	if err := p.createVenv(); err != nil {
		return fmt.Errorf("failed to create venv: %w", err)
	}

	if err := p.installRequirements(); err != nil {
		return fmt.Errorf("failed to install requirements: %w", err)
	}

	return nil
}

func (p *PythonWorkerPool) checkPython() error {
	cmd := exec.Command("python3", "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("python3 not found: %w", err)
	}

	p.logger.Debug(nil, "Python3 found")
	return nil
}

func (p *PythonWorkerPool) createVenv() error {
	venvPython := filepath.Join(p.venv, "bin", "python")

	if _, err := os.Stat(venvPython); err == nil {
		p.logger.Debug(nil, "Virtual environment already exists at %s", p.venv)
		return nil
	}

	p.logger.Info(nil, "Creating virtual environment at %s", p.venv)

	cmd := exec.Command("python3", "-m", "venv", p.venv)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create venv: %s: %w", output, err)
	}

	p.logger.Info(nil, "Virtual environment created successfully")
	return nil
}

func (p *PythonWorkerPool) installRequirements() error {
	venvPip := filepath.Join(p.venv, "bin", "pip")
	requirementsPath := filepath.Join(filepath.Dir(p.script), "requirements.txt")

	p.logger.Info(nil, "Installing Python requirements from %s", requirementsPath)

	cmd := exec.Command(venvPip, "install", "-r", requirementsPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to install requirements: %s: %w", output, err)
	}

	p.logger.Info(nil, "Python requirements installed successfully")
	return nil
}

func (p *PythonWorkerPool) extractScriptIfNeeded() error {
	pythonDir := filepath.Dir(p.script)

	if err := os.MkdirAll(pythonDir, 0o755); err != nil {
		return fmt.Errorf("failed to create python directory: %w", err)
	}

	requirementsPath := filepath.Join(pythonDir, "requirements.txt")
	requirementsContent := embeddedRequirements
	if strings.TrimSpace(requirementsContent) == "" {
		requirementsContent = defaultRequirements
	}
	if err := os.WriteFile(requirementsPath, []byte(requirementsContent), 0o644); err != nil {
		return fmt.Errorf("failed to write requirements file: %w", err)
	}

	if _, err := os.Stat(p.script); err == nil {
		p.logger.Debug(nil, "Python script already exists at %s", p.script)
		return nil
	}

	p.logger.Info(nil, "Extracting embedded Python script to %s", p.script)

	if err := os.WriteFile(p.script, []byte(embeddedPythonScript), 0o755); err != nil {
		return fmt.Errorf("failed to write python script: %w", err)
	}

	p.logger.Info(nil, "Python script extracted successfully")
	return nil
}
